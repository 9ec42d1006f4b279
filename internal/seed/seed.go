// Package seed provides database seeding utilities for development and testing.
package seed

import (
	"context"
	"fmt"
	"log/slog"

	"postline/internal/models"

	"gorm.io/gorm"
)

// Options configuration for the seeder
type Options struct {
	NumUsers       int
	PostsPerUser   int
	FollowsPerUser int
	// MaxDays bounds how far back generated posts are dated.
	MaxDays int
	// HashCost is the bcrypt cost for DefaultPassword. Zero means bcrypt.DefaultCost.
	HashCost int
	// RandomSeed makes a run reproducible. Zero seeds from the clock.
	RandomSeed int64
}

// Summary counts the rows a seeding step inserted.
type Summary struct {
	Users   int
	Posts   int
	Follows int
}

func (s Summary) String() string {
	return fmt.Sprintf("%d users, %d posts, %d follows", s.Users, s.Posts, s.Follows)
}

// Seeder fills a database with generated or fixture data.
type Seeder struct {
	db      *gorm.DB
	factory *Factory
	opts    Options
}

// NewSeeder creates a Seeder writing through db.
func NewSeeder(db *gorm.DB, opts Options) (*Seeder, error) {
	factory, err := NewFactory(db, opts)
	if err != nil {
		return nil, err
	}
	return &Seeder{db: db, factory: factory, opts: opts}, nil
}

// Factory exposes the underlying entity factory.
func (s *Seeder) Factory() *Factory {
	return s.factory
}

// ClearAll deletes every follow, post and user.
func (s *Seeder) ClearAll(ctx context.Context) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, model := range []any{&models.Follow{}, &models.Post{}, &models.User{}} {
			if err := tx.Session(&gorm.Session{AllowGlobalUpdate: true}).Delete(model).Error; err != nil {
				return fmt.Errorf("clear %T: %w", model, err)
			}
		}
		return nil
	})
}

// Run generates NumUsers users, PostsPerUser posts for each and up to
// FollowsPerUser outgoing follows per user.
func (s *Seeder) Run(ctx context.Context) (Summary, error) {
	var sum Summary
	slog.InfoContext(ctx, "seeding database",
		"users", s.opts.NumUsers,
		"posts_per_user", s.opts.PostsPerUser,
		"follows_per_user", s.opts.FollowsPerUser,
	)

	users := make([]*models.User, 0, s.opts.NumUsers)
	for i := 0; i < s.opts.NumUsers; i++ {
		user, err := s.factory.CreateUser(ctx)
		if err != nil {
			return sum, err
		}
		users = append(users, user)
		sum.Users++
	}

	for _, user := range users {
		for i := 0; i < s.opts.PostsPerUser; i++ {
			if _, err := s.factory.CreatePost(ctx, user); err != nil {
				return sum, err
			}
			sum.Posts++
		}
	}

	if len(users) > 1 {
		for _, follower := range users {
			for i := 0; i < s.opts.FollowsPerUser; i++ {
				followed := users[s.factory.faker.Number(0, len(users)-1)]
				inserted, err := s.factory.Follow(ctx, follower, followed)
				if err != nil {
					return sum, err
				}
				if inserted {
					sum.Follows++
				}
			}
		}
	}

	slog.InfoContext(ctx, "seeding complete", "summary", sum.String())
	return sum, nil
}
