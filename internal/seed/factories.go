package seed

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode"

	"postline/internal/models"
	"postline/internal/validation"

	"github.com/brianvoe/gofakeit/v6"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DefaultPassword is the password of every generated user.
const DefaultPassword = "Password123"

// Factory builds domain entities and persists them to the database.
// It is a thin helper used by the seeder and tests.
type Factory struct {
	db      *gorm.DB
	faker   *gofakeit.Faker
	hash    string
	maxDays int
	seq     int
}

// NewFactory creates a Factory bound to db. The default password is hashed
// once with opts.HashCost.
func NewFactory(db *gorm.DB, opts Options) (*Factory, error) {
	cost := opts.HashCost
	if cost == 0 {
		cost = bcrypt.DefaultCost
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(DefaultPassword), cost)
	if err != nil {
		return nil, fmt.Errorf("hash default password: %w", err)
	}

	seed := opts.RandomSeed
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	maxDays := opts.MaxDays
	if maxDays <= 0 {
		maxDays = 90
	}
	return &Factory{db: db, faker: gofakeit.New(seed), hash: string(hash), maxDays: maxDays}, nil
}

// BuildUser returns an unsaved active user with a valid, unique-per-factory
// username and email.
func (f *Factory) BuildUser(overrides ...func(*models.User)) *models.User {
	f.seq++
	first := clip(f.faker.FirstName(), validation.NameMaxLength)
	last := clip(f.faker.LastName(), validation.NameMaxLength)
	handle := usernameStem(first+last, 40) + fmt.Sprintf("%d", f.seq)

	user := &models.User{
		Username:  "@" + handle,
		FirstName: first,
		LastName:  last,
		Email:     fmt.Sprintf("%s@example.org", handle),
		Bio:       clip(f.faker.Sentence(12), validation.BioMaxLength),
		Password:  f.hash,
		IsActive:  true,
	}
	for _, override := range overrides {
		override(user)
	}
	return user
}

// CreateUser builds and persists a user.
func (f *Factory) CreateUser(ctx context.Context, overrides ...func(*models.User)) (*models.User, error) {
	user := f.BuildUser(overrides...)
	if err := f.db.WithContext(ctx).Create(user).Error; err != nil {
		return nil, fmt.Errorf("create user %s: %w", user.Username, err)
	}
	return user, nil
}

// BuildPost returns an unsaved post by author, backdated up to MaxDays.
func (f *Factory) BuildPost(author *models.User, overrides ...func(*models.Post)) *models.Post {
	title := strings.TrimSuffix(f.faker.Sentence(f.faker.Number(3, 8)), ".")
	post := &models.Post{
		AuthorID: author.ID,
		Title:    clip(title, validation.TitleMaxLength),
		Body:     clip(f.faker.Paragraph(1, f.faker.Number(1, 4), 10, " "), validation.BodyMaxLength),
		PostedAt: f.pastTime(),
	}
	for _, override := range overrides {
		override(post)
	}
	return post
}

// CreatePost builds and persists a post.
func (f *Factory) CreatePost(ctx context.Context, author *models.User, overrides ...func(*models.Post)) (*models.Post, error) {
	post := f.BuildPost(author, overrides...)
	if err := f.db.WithContext(ctx).Create(post).Error; err != nil {
		return nil, fmt.Errorf("create post for %s: %w", author.Username, err)
	}
	return post, nil
}

// Follow records follower -> followed. Self follows and existing edges are
// skipped; the result reports whether a row was inserted.
func (f *Factory) Follow(ctx context.Context, follower, followed *models.User) (bool, error) {
	if follower.ID == followed.ID {
		return false, nil
	}
	edge := models.Follow{FollowerID: follower.ID, FollowedID: followed.ID}
	res := f.db.WithContext(ctx).Clauses(clause.OnConflict{DoNothing: true}).Create(&edge)
	if res.Error != nil {
		return false, fmt.Errorf("follow %s -> %s: %w", follower.Username, followed.Username, res.Error)
	}
	return res.RowsAffected > 0, nil
}

func (f *Factory) pastTime() time.Time {
	back := time.Duration(f.faker.Number(0, f.maxDays*24*60)) * time.Minute
	return time.Now().Add(-back).Truncate(time.Second)
}

// usernameStem lowercases s and keeps only characters a username allows.
func usernameStem(s string, max int) string {
	var b strings.Builder
	for _, r := range strings.ToLower(s) {
		if b.Len() >= max {
			break
		}
		if r < unicode.MaxASCII && (unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_') {
			b.WriteRune(r)
		}
	}
	for b.Len() < 3 {
		b.WriteByte('x')
	}
	return b.String()
}

func clip(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}
