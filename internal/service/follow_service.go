package service

import (
	"context"

	"postline/internal/models"
	"postline/internal/observability"
	"postline/internal/repository"

	"go.opentelemetry.io/otel/attribute"
)

// allRows asks gorm for an unbounded result.
const allRows = -1

// FollowService manages the follow graph and assembles profiles.
type FollowService struct {
	users   repository.UserRepository
	follows repository.FollowRepository
	posts   repository.PostRepository
}

func NewFollowService(users repository.UserRepository, follows repository.FollowRepository, posts repository.PostRepository) *FollowService {
	return &FollowService{users: users, follows: follows, posts: posts}
}

// Toggle follows target if actor does not follow them yet, and unfollows
// otherwise. Toggling oneself changes nothing and reports false.
func (s *FollowService) Toggle(ctx context.Context, actorID, targetID uint) (following bool, err error) {
	if actorID == targetID {
		observability.FollowToggles.WithLabelValues("self").Inc()
		return false, nil
	}

	ctx, span := observability.StartSpan(ctx, "follow", "toggle",
		attribute.Int64("actor.id", int64(actorID)),
		attribute.Int64("target.id", int64(targetID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	following, err = s.follows.Toggle(ctx, actorID, targetID)
	if err != nil {
		return false, err
	}
	if following {
		observability.FollowToggles.WithLabelValues("follow").Inc()
	} else {
		observability.FollowToggles.WithLabelValues("unfollow").Inc()
	}
	return following, nil
}

// IsFollowing reports whether actor follows target. Lookup failures read as
// not following.
func (s *FollowService) IsFollowing(ctx context.Context, actorID, targetID uint) bool {
	ok, err := s.follows.Exists(ctx, actorID, targetID)
	return err == nil && ok
}

// Counts returns the follower and followee counts for userID.
func (s *FollowService) Counts(ctx context.Context, userID uint) (followers, following int64, err error) {
	if followers, err = s.follows.CountFollowers(ctx, userID); err != nil {
		return 0, 0, err
	}
	if following, err = s.follows.CountFollowing(ctx, userID); err != nil {
		return 0, 0, err
	}
	return followers, following, nil
}

// Profile builds the profile page of username as seen by viewerID.
func (s *FollowService) Profile(ctx context.Context, viewerID uint, username string) (*models.Profile, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	followers, following, err := s.Counts(ctx, user.ID)
	if err != nil {
		return nil, err
	}
	posts, err := s.posts.ListByAuthor(ctx, user.ID, allRows, 0)
	if err != nil {
		return nil, err
	}
	postCount, err := s.posts.CountByAuthor(ctx, user.ID)
	if err != nil {
		return nil, err
	}

	return &models.Profile{
		User:           user,
		FullName:       user.FullName(),
		PostCount:      postCount,
		FollowerCount:  followers,
		FollowingCount: following,
		IsFollowing:    viewerID != user.ID && s.IsFollowing(ctx, viewerID, user.ID),
		IsSelf:         viewerID == user.ID,
		Posts:          posts,
	}, nil
}

// Followers lists the users following username.
func (s *FollowService) Followers(ctx context.Context, username string, limit, offset int) (*models.User, []models.User, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.follows.ListFollowers(ctx, user.ID, limit, offset)
	return user, users, err
}

// Following lists the users username follows.
func (s *FollowService) Following(ctx context.Context, username string, limit, offset int) (*models.User, []models.User, error) {
	user, err := s.lookup(ctx, username)
	if err != nil {
		return nil, nil, err
	}
	users, err := s.follows.ListFollowing(ctx, user.ID, limit, offset)
	return user, users, err
}

// ResolveUsername returns the user for username or ErrUserNotFound.
func (s *FollowService) ResolveUsername(ctx context.Context, username string) (*models.User, error) {
	return s.lookup(ctx, username)
}

func (s *FollowService) lookup(ctx context.Context, username string) (*models.User, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}
