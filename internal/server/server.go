// Package server contains the HTTP handlers and page views of the application.
package server

import (
	"context"
	"errors"
	"time"

	_ "postline/docs" // swagger docs
	"postline/internal/config"
	"postline/internal/featureflags"
	"postline/internal/middleware"
	"postline/internal/models"
	"postline/internal/repository"
	"postline/internal/service"
	"postline/internal/session"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Feature flag names.
const (
	FlagSignUp     = "sign_up"
	FlagPostImages = "post_images"
)

var defaultFlags = map[string]string{
	FlagSignUp:     "on",
	FlagPostImages: "on",
}

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	featureFlags   *featureflags.Manager
	sessions       *session.Manager
	accounts       *service.AccountService
	follows        *service.FollowService
	posts          *service.PostService
	search         *service.SearchService
	images         *service.ImageService
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// bootstrap.InitRuntime builds them for the binary.
// Tests pass SQLite and miniredis here. redisClient may be nil.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) (*Server, error) {
	if cfg == nil {
		return nil, errors.New("config is required")
	}

	userRepo := repository.NewUserRepository(db)
	followRepo := repository.NewFollowRepository(db)
	postRepo := repository.NewPostRepository(db)
	images := service.NewImageService(cfg)

	return &Server{
		config:         cfg,
		db:             db,
		redis:          redisClient,
		promMiddleware: middleware.InitMetrics("postline"),
		featureFlags:   featureflags.NewManager(cfg.FeatureFlags).WithDefaults(defaultFlags),
		sessions:       session.NewManager(cfg.SessionSecret, cfg.SessionTTL(), redisClient),
		accounts:       service.NewAccountService(userRepo),
		follows:        service.NewFollowService(userRepo, followRepo, postRepo),
		posts:          service.NewPostService(postRepo, images),
		search:         service.NewSearchService(userRepo, postRepo),
		images:         images,
	}, nil
}

// FeatureFlags exposes the flag manager for startup logging.
func (s *Server) FeatureFlags() *featureflags.Manager {
	return s.featureFlags
}

// App returns the configured fiber app, building it on first use.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	bodyLimit := (s.config.ImageMaxUploadSizeMB + 1) * 1024 * 1024
	if bodyLimit < fiber.DefaultBodyLimit {
		bodyLimit = fiber.DefaultBodyLimit
	}

	app := fiber.New(fiber.Config{
		AppName:      "postline",
		BodyLimit:    bodyLimit,
		UnescapePath: true,
		ErrorHandler: s.errorHandler,
	})
	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	s.app = app
	return app
}

// errorHandler logs unexpected errors and writes the JSON error envelope.
func (s *Server) errorHandler(c *fiber.Ctx, err error) error {
	var fe *fiber.Error
	if errors.As(err, &fe) {
		return models.RespondWithError(c, fe.Code, models.NewValidationError(fe.Message))
	}

	status, appErr := mapServiceError(err)
	if status >= fiber.StatusInternalServerError {
		middleware.Logger.ErrorContext(c.UserContext(), "request failed",
			"method", c.Method(),
			"path", c.Path(),
			"error", err.Error(),
		)
	}
	return models.RespondWithError(c, status, appErr)
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	app.Use(middleware.TracingMiddleware())

	// Prometheus Metrics
	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter)
	// so browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8000,http://127.0.0.1:8000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept",
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions || !s.config.IsProduction()
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		},
	}))

	// Resolve the session cookie for every request.
	app.Use(s.LoadSession())
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	// Health checks
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)

	// Metrics endpoint for Prometheus
	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	app.Get("/metrics/dashboard", monitor.New(monitor.Config{
		Title: "postline metrics",
	}))

	// Swagger documentation
	app.Get("/swagger/*", swagger.HandlerDefault)

	// Uploaded post images
	app.Static("/media", s.images.UploadDir(), fiber.Static{Browse: false})

	app.Get("/", s.Home)

	// Guards are attached per route: a prefix-less group would run its
	// handler for every route registered after it.
	anon := s.LoginProhibited()
	app.Get("/sign_up/", anon, s.SignUpPage)
	app.Post("/sign_up/", anon, middleware.RateLimit(s.redis, 3, 10*time.Minute, "sign_up"), s.SignUp)
	app.Get("/log_in/", anon, s.LogInPage)
	app.Post("/log_in/", anon, middleware.RateLimit(s.redis, 10, 5*time.Minute, "log_in"), s.LogIn)

	app.Get("/new_post/", s.NewPostForbidden)

	auth := s.LoginRequired()
	app.Get("/log_out/", auth, s.LogOut)
	app.Get("/feed/", auth, s.Feed)
	app.Post("/new_post/", auth, middleware.RateLimit(s.redis, 10, time.Minute, "new_post"), s.NewPost)
	app.Get("/profile/:username", auth, s.ShowProfile)
	app.Get("/follow_toggle/:username", auth, s.FollowToggle)
	app.Get("/followers/:username", auth, s.Followers)
	app.Get("/following/:username", auth, s.Following)
	app.Get("/edit_profile/", auth, s.EditProfilePage)
	app.Post("/edit_profile/", auth, s.EditProfile)
	app.Get("/change_password/", auth, s.ChangePasswordPage)
	app.Post("/change_password/", auth, s.ChangePassword)
	app.Get("/search/", auth, s.Search)
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	if s.db == nil {
		dbStatus = "unhealthy"
	} else if sqlDB, err := s.db.DB(); err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	redisStatus := "healthy"
	if s.redis != nil {
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	} else {
		// Sessions still work without Redis, only logout revocation is lost.
		redisStatus = "unavailable"
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	switch {
	case dbStatus == "unhealthy" || redisStatus == "unhealthy":
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	case redisStatus == "unavailable":
		overallStatus = "degraded"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	app := s.App()
	middleware.Logger.Info("server starting", "port", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", "error", err.Error())
		}
	}

	if s.db != nil {
		if sqlDB, err := s.db.DB(); err == nil {
			if cerr := sqlDB.Close(); cerr != nil {
				middleware.Logger.Error("error closing sql DB", "error", cerr.Error())
			}
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", "error", rerr.Error())
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
