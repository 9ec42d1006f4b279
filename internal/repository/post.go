package repository

import (
	"context"

	"postline/internal/models"

	"gorm.io/gorm"
)

// PostRepository defines persistence operations for posts. Every list is
// ordered newest first.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	List(ctx context.Context, limit, offset int) ([]models.Post, error)
	ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, error)
	CountByAuthor(ctx context.Context, authorID uint) (int64, error)
	Search(ctx context.Context, query string, limit int) ([]models.Post, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a gorm-backed PostRepository.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

const newestFirst = "posted_at DESC, id DESC"

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

func (r *postRepository) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return r.find(ctx, r.db.WithContext(ctx).Limit(limit).Offset(offset))
}

func (r *postRepository) ListByAuthor(ctx context.Context, authorID uint, limit, offset int) ([]models.Post, error) {
	return r.find(ctx, r.db.WithContext(ctx).Where("author_id = ?", authorID).Limit(limit).Offset(offset))
}

func (r *postRepository) CountByAuthor(ctx context.Context, authorID uint) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("author_id = ?", authorID).Count(&count).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}

// Search matches query case-insensitively anywhere in title or body.
func (r *postRepository) Search(ctx context.Context, query string, limit int) ([]models.Post, error) {
	p := containsPattern(query)
	return r.find(ctx, r.db.WithContext(ctx).
		Where("LOWER(title) LIKE ? ESCAPE '!' OR LOWER(body) LIKE ? ESCAPE '!'", p, p).
		Limit(limit))
}

func (r *postRepository) find(_ context.Context, q *gorm.DB) ([]models.Post, error) {
	var posts []models.Post
	if err := q.Preload("Author").Order(newestFirst).Find(&posts).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
