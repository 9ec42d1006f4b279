package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"os"
	"time"

	"postline/internal/models"
	"postline/internal/validation"

	"golang.org/x/crypto/bcrypt"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

//go:embed fixtures/default.yml
var defaultFixtures []byte

// Fixtures is a hand-written data set: users, their posts and follows.
type Fixtures struct {
	Users   []UserFixture   `yaml:"users"`
	Posts   []PostFixture   `yaml:"posts"`
	Follows []FollowFixture `yaml:"follows"`
}

type UserFixture struct {
	Username  string `yaml:"username"`
	FirstName string `yaml:"first_name"`
	LastName  string `yaml:"last_name"`
	Email     string `yaml:"email"`
	Bio       string `yaml:"bio"`
	Password  string `yaml:"password"`
	Inactive  bool   `yaml:"inactive"`
}

type PostFixture struct {
	Author   string    `yaml:"author"`
	Title    string    `yaml:"title"`
	Body     string    `yaml:"body"`
	PostedAt time.Time `yaml:"posted_at"`
}

type FollowFixture struct {
	Follower string `yaml:"follower"`
	Followed string `yaml:"followed"`
}

// ParseFixtures decodes YAML fixtures.
func ParseFixtures(data []byte) (*Fixtures, error) {
	var fx Fixtures
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixtures: %w", err)
	}
	return &fx, nil
}

// LoadFixtures reads a fixtures file.
func LoadFixtures(path string) (*Fixtures, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read fixtures: %w", err)
	}
	return ParseFixtures(data)
}

// DefaultFixtures returns the built-in demo data set (@johndoe, @janedoe and friends).
func DefaultFixtures() *Fixtures {
	fx, err := ParseFixtures(defaultFixtures)
	if err != nil {
		panic(err)
	}
	return fx
}

// ApplyFixtures inserts fx in one transaction. Users that already exist are
// reused, so applying the same fixtures twice adds no users or follows.
// User rows go through the same validation as sign-up.
func (s *Seeder) ApplyFixtures(ctx context.Context, fx *Fixtures) (Summary, error) {
	var sum Summary
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		sum = Summary{}
		byName := make(map[string]*models.User, len(fx.Users))

		for _, uf := range fx.Users {
			user, created, err := s.ensureUser(tx, uf)
			if err != nil {
				return err
			}
			byName[user.Username] = user
			if created {
				sum.Users++
			}
		}

		lookup := func(username string) (*models.User, error) {
			if u, ok := byName[username]; ok {
				return u, nil
			}
			var u models.User
			if err := tx.Where("username = ?", username).First(&u).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return nil, fmt.Errorf("fixture references unknown user %s", username)
				}
				return nil, err
			}
			byName[username] = &u
			return &u, nil
		}

		for _, pf := range fx.Posts {
			author, err := lookup(pf.Author)
			if err != nil {
				return err
			}
			form := validation.PostForm{Title: pf.Title, Body: pf.Body}
			if errs := form.Validate(); errs.Any() {
				return fmt.Errorf("post %q: %w", pf.Title, errs)
			}
			post := models.Post{AuthorID: author.ID, Title: form.Title, Body: form.Body, PostedAt: pf.PostedAt}
			if err := tx.Create(&post).Error; err != nil {
				return fmt.Errorf("create post %q: %w", pf.Title, err)
			}
			sum.Posts++
		}

		factory := &Factory{db: tx}
		for _, ff := range fx.Follows {
			follower, err := lookup(ff.Follower)
			if err != nil {
				return err
			}
			followed, err := lookup(ff.Followed)
			if err != nil {
				return err
			}
			inserted, err := factory.Follow(ctx, follower, followed)
			if err != nil {
				return err
			}
			if inserted {
				sum.Follows++
			}
		}
		return nil
	})
	return sum, err
}

func (s *Seeder) ensureUser(tx *gorm.DB, uf UserFixture) (*models.User, bool, error) {
	var existing models.User
	err := tx.Where("username = ?", uf.Username).First(&existing).Error
	if err == nil {
		return &existing, false, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, false, err
	}

	password := uf.Password
	if password == "" {
		password = DefaultPassword
	}
	form := validation.SignUpForm{
		FirstName:       uf.FirstName,
		LastName:        uf.LastName,
		Username:        uf.Username,
		Email:           uf.Email,
		Bio:             uf.Bio,
		Password:        password,
		ConfirmPassword: password,
	}
	if errs := form.Validate(); errs.Any() {
		return nil, false, fmt.Errorf("user %s: %w", uf.Username, errs)
	}

	hash := s.factory.hash
	if password != DefaultPassword {
		cost := s.opts.HashCost
		if cost == 0 {
			cost = bcrypt.DefaultCost
		}
		h, err := bcrypt.GenerateFromPassword([]byte(password), cost)
		if err != nil {
			return nil, false, err
		}
		hash = string(h)
	}

	user := &models.User{
		Username:  form.Username,
		FirstName: form.FirstName,
		LastName:  form.LastName,
		Email:     form.Email,
		Bio:       form.Bio,
		Password:  hash,
		IsActive:  true,
	}
	if err := tx.Create(user).Error; err != nil {
		return nil, false, fmt.Errorf("create user %s: %w", uf.Username, err)
	}
	if uf.Inactive {
		if err := tx.Model(user).Update("is_active", false).Error; err != nil {
			return nil, false, err
		}
		user.IsActive = false
	}
	return user, true, nil
}
