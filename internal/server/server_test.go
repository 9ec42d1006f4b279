package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"postline/internal/config"
	"postline/internal/models"
	"postline/internal/service"
	"postline/internal/session"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// MockUserRepository is a mock of the UserRepository interface
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) GetByID(ctx context.Context, id uint) (*models.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	args := m.Called(ctx, username)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockUserRepository) Create(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, user *models.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *MockUserRepository) UpdatePassword(ctx context.Context, id uint, hash string) error {
	return m.Called(ctx, id, hash).Error(0)
}

func (m *MockUserRepository) SetActive(ctx context.Context, id uint, active bool) error {
	return m.Called(ctx, id, active).Error(0)
}

func (m *MockUserRepository) List(ctx context.Context, limit, offset int) ([]models.User, error) {
	args := m.Called(ctx, limit, offset)
	return args.Get(0).([]models.User), args.Error(1)
}

func (m *MockUserRepository) Search(ctx context.Context, query string, limit int) ([]models.User, error) {
	args := m.Called(ctx, query, limit)
	return args.Get(0).([]models.User), args.Error(1)
}

// sessionApp mounts LoadSession in front of a handler that echoes the
// resolved username.
func sessionApp(t *testing.T, users *MockUserRepository) (*fiber.App, *session.Manager) {
	t.Helper()
	sessions := session.NewManager(testSecret, time.Hour, nil)
	s := &Server{
		config:   testConfig(t),
		sessions: sessions,
		accounts: service.NewAccountService(users),
	}

	app := fiber.New()
	app.Use(s.LoadSession())
	app.Get("/", func(c *fiber.Ctx) error {
		if u := currentUser(c); u != nil {
			return c.SendString(u.Username)
		}
		return c.SendString("anonymous")
	})
	return app, sessions
}

func TestLoadSession(t *testing.T) {
	active := &models.User{ID: 1, Username: "@johndoe", IsActive: true}
	inactive := &models.User{ID: 2, Username: "@petra", IsActive: false}

	tests := []struct {
		name        string
		user        *models.User
		lookupErr   error
		want        string
		wantCleared bool
	}{
		{"active user", active, nil, "@johndoe", false},
		{"inactive user", inactive, nil, "anonymous", true},
		{"deleted user", nil, models.NewNotFoundError("User", 3), "anonymous", true},
		{"lookup failure", nil, errors.New("db down"), "anonymous", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			users := new(MockUserRepository)
			app, sessions := sessionApp(t, users)

			id := uint(3)
			username := "@ghost"
			if tt.user != nil {
				id, username = tt.user.ID, tt.user.Username
			}
			users.On("GetByID", mock.Anything, id).Return(tt.user, tt.lookupErr)

			token, _, err := sessions.Issue(id, username)
			require.NoError(t, err)

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.AddCookie(&http.Cookie{Name: session.CookieName, Value: token})
			resp, err := app.Test(req)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			body, _ := io.ReadAll(resp.Body)
			assert.Equal(t, tt.want, string(body))

			cleared := false
			for _, c := range resp.Cookies() {
				if c.Name == session.CookieName && c.Value == "" {
					cleared = true
				}
			}
			assert.Equal(t, tt.wantCleared, cleared)
			users.AssertExpectations(t)
		})
	}
}

func TestLoadSession_NoCookieSkipsLookup(t *testing.T) {
	users := new(MockUserRepository)
	app, _ := sessionApp(t, users)

	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/", nil))
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()

	body, _ := io.ReadAll(resp.Body)
	assert.Equal(t, "anonymous", string(body))
	users.AssertNotCalled(t, "GetByID", mock.Anything, mock.Anything)
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	gormDB, err := gorm.Open(postgres.New(postgres.Config{
		Conn: db,
	}), &gorm.Config{DisableAutomaticPing: true})
	require.NoError(t, err)

	return gormDB, mock
}

func readJSON(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer func() { _ = resp.Body.Close() }()
	var out map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	return out
}

func TestReadinessCheck(t *testing.T) {
	tests := []struct {
		name       string
		dbErr      error
		redis      string
		wantStatus int
		wantState  string
	}{
		{"all healthy", nil, "up", http.StatusOK, "healthy"},
		{"database down", errors.New("connection refused"), "up", http.StatusServiceUnavailable, "unhealthy"},
		{"redis down", nil, "down", http.StatusServiceUnavailable, "unhealthy"},
		{"redis not configured", nil, "none", http.StatusOK, "degraded"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			db, dbMock := setupMockDB(t)
			if tt.dbErr != nil {
				dbMock.ExpectPing().WillReturnError(tt.dbErr)
			} else {
				dbMock.ExpectPing()
			}

			var rdb *redis.Client
			switch tt.redis {
			case "up":
				rdb = redis.NewClient(&redis.Options{Addr: miniredis.RunT(t).Addr()})
			case "down":
				rdb = redis.NewClient(&redis.Options{
					Addr:        "127.0.0.1:1",
					MaxRetries:  -1,
					DialTimeout: 200 * time.Millisecond,
				})
			}

			s, err := NewServerWithDeps(testConfig(t), db, rdb)
			require.NoError(t, err)
			app := fiber.New()
			app.Get("/health/ready", s.ReadinessCheck)

			resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health/ready", nil), -1)
			require.NoError(t, err)
			assert.Equal(t, tt.wantStatus, resp.StatusCode)
			assert.Equal(t, tt.wantState, readJSON(t, resp)["status"])
			assert.NoError(t, dbMock.ExpectationsWereMet())
		})
	}
}

func TestLivenessAndMetrics(t *testing.T) {
	env := newTestEnv(t)
	b := env.browser(t)

	resp := b.get("/health/live")
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "up", readJSON(t, resp)["status"])

	resp = b.get("/metrics")
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestErrorHandler(t *testing.T) {
	env := newTestEnv(t)
	app := fiber.New(fiber.Config{ErrorHandler: env.server.errorHandler})
	app.Get("/fiber", func(*fiber.Ctx) error { return fiber.NewError(fiber.StatusTeapot, "short and stout") })
	app.Get("/missing", func(*fiber.Ctx) error { return fmt.Errorf("profile: %w", service.ErrUserNotFound) })
	app.Get("/boom", func(*fiber.Ctx) error { return errors.New("secret dsn leaked") })

	tests := []struct {
		path       string
		wantStatus int
		wantError  string
	}{
		{"/fiber", fiber.StatusTeapot, "short and stout"},
		{"/missing", http.StatusNotFound, "User not found"},
		{"/boom", http.StatusInternalServerError, "Internal server error"},
	}
	for _, tt := range tests {
		resp, err := app.Test(httptest.NewRequest(http.MethodGet, tt.path, nil))
		require.NoError(t, err)
		assert.Equal(t, tt.wantStatus, resp.StatusCode, tt.path)
		assert.Equal(t, tt.wantError, readJSON(t, resp)["error"], tt.path)
	}
}

func TestUnknownRouteIs404(t *testing.T) {
	env := newTestEnv(t)
	resp := env.browser(t).get("/nope/")
	_ = resp.Body.Close()
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestFeatureFlagDefaults(t *testing.T) {
	env := newTestEnv(t, func(cfg *config.Config) { cfg.FeatureFlags = "post_images=off" })

	flags := env.server.FeatureFlags()
	assert.Equal(t, []string{FlagPostImages, FlagSignUp}, flags.Names())
	assert.True(t, flags.Enabled(FlagSignUp, 0))
	assert.False(t, flags.Enabled(FlagPostImages, 1))
}
