package service

import (
	"context"
	"errors"
	"strconv"

	"postline/internal/models"
	"postline/internal/observability"
	"postline/internal/repository"
	"postline/internal/validation"

	"go.opentelemetry.io/otel/attribute"
)

// ImageUpload is an optional file attached to a new post.
type ImageUpload struct {
	Filename string
	Content  []byte
}

// ImageStore persists validated uploads. *ImageService implements it.
type ImageStore interface {
	Check(content []byte) error
	Store(ctx context.Context, filename string, content []byte) (string, error)
}

type PostService struct {
	posts  repository.PostRepository
	images ImageStore
}

func NewPostService(posts repository.PostRepository, images ImageStore) *PostService {
	return &PostService{posts: posts, images: images}
}

// CreatePost validates the form and the optional image, stores the image
// and persists the post stamped with the current time.
func (s *PostService) CreatePost(ctx context.Context, authorID uint, form validation.PostForm, upload *ImageUpload) (_ *models.Post, _ validation.FieldErrors, err error) {
	ctx, span := observability.StartSpan(ctx, "post", "create", attribute.Int64("author.id", int64(authorID)))
	defer func() { observability.EndSpan(span, err) }()

	hasImage := upload != nil && len(upload.Content) > 0

	errs := form.Validate()
	if hasImage {
		if msg := s.imageError(upload.Content); msg != "" {
			errs.Add("image", msg)
		}
	}
	if errs.Any() {
		return nil, errs, nil
	}

	post := &models.Post{
		AuthorID: authorID,
		Title:    form.Title,
		Body:     form.Body,
	}
	if hasImage {
		path, err := s.images.Store(ctx, upload.Filename, upload.Content)
		if err != nil {
			return nil, nil, err
		}
		post.Image = path
	}

	if err := s.posts.Create(ctx, post); err != nil {
		return nil, nil, err
	}

	observability.PostsCreated.WithLabelValues(strconv.FormatBool(hasImage)).Inc()
	return post, nil, nil
}

func (s *PostService) imageError(content []byte) string {
	if s.images == nil {
		return validation.MsgInvalidImage
	}
	err := s.images.Check(content)
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrImageTooLarge):
		return err.Error()
	default:
		return validation.MsgInvalidImage
	}
}

// Feed returns every post, newest first.
func (s *PostService) Feed(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.posts.List(ctx, limit, offset)
}
