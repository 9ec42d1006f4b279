// Package bootstrap wires the process-wide runtime: database, Redis and
// development conveniences.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"postline/internal/cache"
	"postline/internal/config"
	"postline/internal/database"
	"postline/internal/middleware"
	"postline/internal/models"
	"postline/internal/seed"
	"postline/internal/validation"

	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	// SeedFixtures loads the built-in demo fixtures after connecting.
	SeedFixtures bool
}

// InitRuntime connects to DB and Redis and optionally loads demo fixtures.
// The Redis client is nil when Redis is unreachable.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*gorm.DB, *redis.Client, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)
	r := cache.GetClient()

	if err := ensureDevUser(ctx, cfg, db, bcrypt.DefaultCost); err != nil {
		return nil, nil, fmt.Errorf("failed to bootstrap development user: %w", err)
	}

	if opts.SeedFixtures {
		seeder, err := seed.NewSeeder(db, seed.Options{})
		if err != nil {
			return nil, nil, err
		}
		sum, err := seeder.ApplyFixtures(ctx, seed.DefaultFixtures())
		if err != nil {
			return nil, nil, fmt.Errorf("failed to load demo fixtures: %w", err)
		}
		middleware.Logger.InfoContext(ctx, "demo fixtures loaded", "summary", sum.String())
	}

	return db, r, nil
}

// ensureDevUser creates, or reactivates, the development login named by
// DEV_USERNAME. It only runs in development with DEV_BOOTSTRAP_USER set.
func ensureDevUser(ctx context.Context, cfg *config.Config, db *gorm.DB, cost int) error {
	if cfg == nil || db == nil {
		return nil
	}
	if !strings.EqualFold(cfg.Env, "development") || !cfg.DevBootstrapUser {
		return nil
	}

	username := strings.TrimSpace(cfg.DevUsername)
	if err := validation.ValidateUsername(username); err != nil {
		return fmt.Errorf("DEV_USERNAME: %w", err)
	}
	if err := validation.ValidatePassword(cfg.DevPassword); err != nil {
		return fmt.Errorf("DEV_PASSWORD: %w", err)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(cfg.DevPassword), cost)
	if err != nil {
		return fmt.Errorf("hash dev password: %w", err)
	}

	err = db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var user models.User
		findErr := tx.Where("username = ?", username).First(&user).Error
		switch {
		case errors.Is(findErr, gorm.ErrRecordNotFound):
			user = models.User{
				Username:  username,
				FirstName: "Dev",
				LastName:  "User",
				Email:     username[1:] + "@postline.local",
				Password:  string(hashed),
				IsActive:  true,
			}
			return tx.Create(&user).Error
		case findErr != nil:
			return findErr
		default:
			return tx.Model(&user).Updates(map[string]any{
				"password":  string(hashed),
				"is_active": true,
			}).Error
		}
	})
	if err != nil {
		return err
	}

	middleware.Logger.InfoContext(ctx, "development user ensured", "username", username)
	return nil
}
