package service

import (
	"context"
	"errors"
	"testing"

	"postline/internal/models"
)

type userRepoStub struct {
	getByIDFn        func(context.Context, uint) (*models.User, error)
	getByUsernameFn  func(context.Context, string) (*models.User, error)
	getByEmailFn     func(context.Context, string) (*models.User, error)
	createFn         func(context.Context, *models.User) error
	updateProfileFn  func(context.Context, *models.User) error
	updatePasswordFn func(context.Context, uint, string) error
	setActiveFn      func(context.Context, uint, bool) error
	listFn           func(context.Context, int, int) ([]models.User, error)
	searchFn         func(context.Context, string, int) ([]models.User, error)
}

func (s *userRepoStub) GetByID(ctx context.Context, id uint) (*models.User, error) {
	return s.getByIDFn(ctx, id)
}
func (s *userRepoStub) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	return s.getByUsernameFn(ctx, username)
}
func (s *userRepoStub) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return s.getByEmailFn(ctx, email)
}
func (s *userRepoStub) Create(ctx context.Context, user *models.User) error {
	return s.createFn(ctx, user)
}
func (s *userRepoStub) UpdateProfile(ctx context.Context, user *models.User) error {
	return s.updateProfileFn(ctx, user)
}
func (s *userRepoStub) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return s.updatePasswordFn(ctx, id, hash)
}
func (s *userRepoStub) SetActive(ctx context.Context, id uint, active bool) error {
	return s.setActiveFn(ctx, id, active)
}
func (s *userRepoStub) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *userRepoStub) Search(ctx context.Context, q string, limit int) ([]models.User, error) {
	return s.searchFn(ctx, q, limit)
}

// noopUserRepo knows no users and accepts every write.
func noopUserRepo() *userRepoStub {
	return &userRepoStub{
		getByIDFn: func(_ context.Context, id uint) (*models.User, error) {
			return nil, models.NewNotFoundError("User", id)
		},
		getByUsernameFn:  func(context.Context, string) (*models.User, error) { return nil, nil },
		getByEmailFn:     func(context.Context, string) (*models.User, error) { return nil, nil },
		createFn:         func(context.Context, *models.User) error { return nil },
		updateProfileFn:  func(context.Context, *models.User) error { return nil },
		updatePasswordFn: func(context.Context, uint, string) error { return nil },
		setActiveFn:      func(context.Context, uint, bool) error { return nil },
		listFn:           func(context.Context, int, int) ([]models.User, error) { return nil, nil },
		searchFn:         func(context.Context, string, int) ([]models.User, error) { return nil, nil },
	}
}

type followRepoStub struct {
	toggleFn         func(context.Context, uint, uint) (bool, error)
	existsFn         func(context.Context, uint, uint) (bool, error)
	countFollowersFn func(context.Context, uint) (int64, error)
	countFollowingFn func(context.Context, uint) (int64, error)
	listFollowersFn  func(context.Context, uint, int, int) ([]models.User, error)
	listFollowingFn  func(context.Context, uint, int, int) ([]models.User, error)
}

func (s *followRepoStub) Toggle(ctx context.Context, a, b uint) (bool, error) {
	return s.toggleFn(ctx, a, b)
}
func (s *followRepoStub) Exists(ctx context.Context, a, b uint) (bool, error) {
	return s.existsFn(ctx, a, b)
}
func (s *followRepoStub) CountFollowers(ctx context.Context, id uint) (int64, error) {
	return s.countFollowersFn(ctx, id)
}
func (s *followRepoStub) CountFollowing(ctx context.Context, id uint) (int64, error) {
	return s.countFollowingFn(ctx, id)
}
func (s *followRepoStub) ListFollowers(ctx context.Context, id uint, limit, offset int) ([]models.User, error) {
	return s.listFollowersFn(ctx, id, limit, offset)
}
func (s *followRepoStub) ListFollowing(ctx context.Context, id uint, limit, offset int) ([]models.User, error) {
	return s.listFollowingFn(ctx, id, limit, offset)
}

// memFollowRepo keeps edges in a map so toggles can be observed.
func memFollowRepo() (*followRepoStub, map[[2]uint]bool) {
	edges := map[[2]uint]bool{}
	count := func(match func([2]uint) bool) int64 {
		var n int64
		for e := range edges {
			if match(e) {
				n++
			}
		}
		return n
	}
	return &followRepoStub{
		toggleFn: func(_ context.Context, a, b uint) (bool, error) {
			k := [2]uint{a, b}
			if edges[k] {
				delete(edges, k)
				return false, nil
			}
			edges[k] = true
			return true, nil
		},
		existsFn: func(_ context.Context, a, b uint) (bool, error) { return edges[[2]uint{a, b}], nil },
		countFollowersFn: func(_ context.Context, id uint) (int64, error) {
			return count(func(e [2]uint) bool { return e[1] == id }), nil
		},
		countFollowingFn: func(_ context.Context, id uint) (int64, error) {
			return count(func(e [2]uint) bool { return e[0] == id }), nil
		},
		listFollowersFn: func(context.Context, uint, int, int) ([]models.User, error) { return nil, nil },
		listFollowingFn: func(context.Context, uint, int, int) ([]models.User, error) { return nil, nil },
	}, edges
}

type postRepoStub struct {
	createFn        func(context.Context, *models.Post) error
	listFn          func(context.Context, int, int) ([]models.Post, error)
	listByAuthorFn  func(context.Context, uint, int, int) ([]models.Post, error)
	countByAuthorFn func(context.Context, uint) (int64, error)
	searchFn        func(context.Context, string, int) ([]models.Post, error)
}

func (s *postRepoStub) Create(ctx context.Context, p *models.Post) error { return s.createFn(ctx, p) }
func (s *postRepoStub) List(ctx context.Context, limit, offset int) ([]models.Post, error) {
	return s.listFn(ctx, limit, offset)
}
func (s *postRepoStub) ListByAuthor(ctx context.Context, id uint, limit, offset int) ([]models.Post, error) {
	return s.listByAuthorFn(ctx, id, limit, offset)
}
func (s *postRepoStub) CountByAuthor(ctx context.Context, id uint) (int64, error) {
	return s.countByAuthorFn(ctx, id)
}
func (s *postRepoStub) Search(ctx context.Context, q string, limit int) ([]models.Post, error) {
	return s.searchFn(ctx, q, limit)
}

func noopPostRepo() *postRepoStub {
	return &postRepoStub{
		createFn:        func(context.Context, *models.Post) error { return nil },
		listFn:          func(context.Context, int, int) ([]models.Post, error) { return nil, nil },
		listByAuthorFn:  func(context.Context, uint, int, int) ([]models.Post, error) { return nil, nil },
		countByAuthorFn: func(context.Context, uint) (int64, error) { return 0, nil },
		searchFn:        func(context.Context, string, int) ([]models.Post, error) { return nil, nil },
	}
}

type imageStoreStub struct {
	checkFn func([]byte) error
	storeFn func(context.Context, string, []byte) (string, error)
}

func (s *imageStoreStub) Check(content []byte) error { return s.checkFn(content) }
func (s *imageStoreStub) Store(ctx context.Context, name string, content []byte) (string, error) {
	return s.storeFn(ctx, name, content)
}

func assertNotFound(t *testing.T, err error) {
	t.Helper()
	var appErr *models.AppError
	if !errors.As(err, &appErr) || appErr.Code != "NOT_FOUND" {
		t.Fatalf("expected not found app error, got %#v", err)
	}
}
