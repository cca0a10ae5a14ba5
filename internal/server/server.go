// Package server contains the HTTP handlers and routing for the board API.
package server

import (
	"context"
	"log"
	"strconv"
	"strings"
	"sync"
	"time"

	"pinboard/internal/auth"
	"pinboard/internal/cache"
	"pinboard/internal/config"
	"pinboard/internal/database"
	"pinboard/internal/middleware"
	"pinboard/internal/models"
	"pinboard/internal/repository"
	"pinboard/internal/service"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

const (
	tokenIssuer   = "pinboard-api"
	tokenAudience = "pinboard-client"
	tokenTTL      = 7 * 24 * time.Hour
)

// Prometheus collectors register against the default registry; guard against
// double registration when several servers are built in one process (tests).
var (
	promOnce sync.Once
	promMW   *fiberprometheus.FiberPrometheus
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	rdb            *redis.Client
	app            *fiber.App
	userRepo       repository.UserRepository
	postRepo       repository.PostRepository
	commentRepo    repository.CommentRepository
	userService    *service.UserService
	postService    *service.PostService
	commentService *service.CommentService
	uploadService  *service.UploadService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, err
	}
	if err := database.InitSchema(db); err != nil {
		return nil, err
	}

	cache.InitRedis(cfg.RedisURL)

	s := NewServerWithDeps(cfg, db)
	s.rdb = cache.GetClient()
	return s, nil
}

// NewServerWithDeps creates a Server using an already-initialized database.
// Use this in tests or when a bootstrap layer establishes the DB.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB) *Server {
	userRepo := repository.NewUserRepository(db)
	postRepo := repository.NewPostRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	return &Server{
		config:         cfg,
		db:             db,
		userRepo:       userRepo,
		postRepo:       postRepo,
		commentRepo:    commentRepo,
		userService:    service.NewUserService(userRepo),
		postService:    service.NewPostService(postRepo),
		commentService: service.NewCommentService(commentRepo, postRepo, cfg.EnforceCommentOwnership),
		uploadService:  service.NewUploadService(cfg.UploadDir, "/static/uploads"),
	}
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())
	app.Use(helmet.New())
	app.Use(middleware.StructuredLogger())

	promOnce.Do(func() {
		promMW = fiberprometheus.New("pinboard")
	})
	promMW.RegisterAt(app, "/metrics")
	app.Use(promMW.Middleware)
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health", s.HealthCheck)

	// Public browse
	app.Get("/", s.Home)
	app.Get("/post/:id", s.ShowPost)

	// Accounts and sessions. Credential endpoints are throttled per IP;
	// without Redis the limiter fails open.
	app.Post("/register", middleware.RateLimit(s.rdb, 10, time.Minute, "register"), s.Register)
	app.Post("/login", middleware.RateLimit(s.rdb, 10, time.Minute, "login"), s.Login)
	app.Get("/logout", s.Logout)

	// Authenticated content mutation
	app.Post("/create", s.AuthRequired(), s.CreatePost)
	app.Post("/edit/:postId", s.AuthRequired(), s.EditPost)
	app.Post("/delete/:postId", s.AuthRequired(), s.DeletePost)
	app.Post("/post/:postId/comment", s.AuthRequired(), s.AddComment)
	app.Post("/comment/:commentId/delete", s.AuthRequired(), s.DeleteComment)

	// Upload does its own identity check so a missing session yields the
	// documented 403 JSON body instead of the generic 401.
	app.Post("/upload", middleware.RateLimit(s.rdb, 30, time.Minute, "upload"), s.Upload)

	// Uploads and other assets are served from the static root.
	app.Static("/static", s.config.StaticDir)
}

// HealthCheck reports process and database health.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	status := fiber.StatusOK
	if dbStatus != "healthy" {
		status = fiber.StatusServiceUnavailable
	}

	return c.Status(status).JSON(fiber.Map{
		"status": dbStatus,
		"time":   time.Now(),
	})
}

// AuthRequired returns middleware that resolves the bearer token into a
// request-scoped identity, rejecting the request when absent or invalid.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		ident, ok := s.identityFromRequest(c)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Authentication required"))
		}

		c.Locals("identity", ident)
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, ident.UserID)
		c.SetUserContext(ctx)
		return c.Next()
	}
}

// identityFromRequest parses and validates the bearer token without enforcing
// its presence. Used by AuthRequired and by handlers with bespoke auth
// responses (upload).
func (s *Server) identityFromRequest(c *fiber.Ctx) (*auth.Identity, bool) {
	authHeader := c.Get("Authorization")
	if authHeader == "" {
		return nil, false
	}
	parts := strings.Split(authHeader, " ")
	if len(parts) != 2 || parts[0] != "Bearer" {
		return nil, false
	}

	token, err := jwt.Parse(parts[1], func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
		}
		return []byte(s.config.JWTSecret), nil
	})
	if err != nil || !token.Valid {
		return nil, false
	}

	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return nil, false
	}
	if issuer, issuerOk := claims["iss"].(string); !issuerOk || issuer != tokenIssuer {
		return nil, false
	}
	if audience, audienceOk := claims["aud"].(string); !audienceOk || audience != tokenAudience {
		return nil, false
	}

	sub, ok := claims["sub"].(string)
	if !ok {
		return nil, false
	}
	userID, err := strconv.ParseUint(sub, 10, 32)
	if err != nil {
		return nil, false
	}

	username, _ := claims["username"].(string)
	return &auth.Identity{UserID: uint(userID), Username: username}, true
}

// identity returns the identity stored by AuthRequired.
func (s *Server) identity(c *fiber.Ctx) *auth.Identity {
	ident, _ := c.Locals("identity").(*auth.Identity)
	return ident
}

// Start starts the server
func (s *Server) Start() error {
	app := fiber.New(fiber.Config{
		AppName:   "Pinboard API",
		BodyLimit: s.config.BodyLimitMB * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			log.Printf("Error: %v", err)
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)

	log.Printf("Server starting on port %s...", s.config.Port)
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			log.Printf("error shutting down HTTP server: %v", err)
		}
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			log.Printf("error closing sql DB: %v", cerr)
		}
	}

	log.Println("Server shutdown complete")
	return nil
}
