// Package server contains the HTTP handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"kms/internal/ai"
	"kms/internal/cache"
	"kms/internal/config"
	"kms/internal/database"
	"kms/internal/middleware"
	"kms/internal/models"
	"kms/internal/repository"
	"kms/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/golang-jwt/jwt/v5"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config        *config.Config
	db            *gorm.DB
	redis         *redis.Client
	userRepo      repository.UserRepository
	knowledgeSvc  *service.KnowledgeService
	technologySvc *service.TechnologyService
	aiClient      *ai.Client
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	db, err := database.Connect(cfg)
	if err != nil {
		return nil, fmt.Errorf("database connection failed: %w", err)
	}

	cache.InitRedis(cfg.RedisURL)

	return NewServerWithDeps(cfg, db, cache.GetClient()), nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis itself.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client) *Server {
	userRepo := repository.NewUserRepository(db)
	knowledgeRepo := repository.NewKnowledgeRepository(db)
	technologyRepo := repository.NewTechnologyRepository(db)
	commentRepo := repository.NewCommentRepository(db)

	return &Server{
		config:        cfg,
		db:            db,
		redis:         redisClient,
		userRepo:      userRepo,
		knowledgeSvc:  service.NewKnowledgeService(knowledgeRepo, technologyRepo, commentRepo),
		technologySvc: service.NewTechnologyService(technologyRepo, cfg.IconDir),
		aiClient:      ai.New(cfg.AIBaseURL, cfg.AIModel, cfg.AIToken),
	}
}

// Shutdown releases server resources (database pool, redis connection).
func (s *Server) Shutdown(ctx context.Context) error {
	if s.redis != nil {
		if err := s.redis.Close(); err != nil {
			return err
		}
	}
	if s.db != nil {
		sqlDB, err := s.db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	}
	return nil
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	// Panic recovery
	app.Use(recover.New())

	// Request ID for tracing
	app.Use(requestid.New())

	// Context Middleware to propagate Request ID and User ID
	app.Use(middleware.ContextMiddleware())

	// Security headers
	app.Use(helmet.New())

	// Structured Logging middleware (after requestid and context middleware)
	app.Use(middleware.StructuredLogger())

	// CORS runs before middlewares that can short-circuit (e.g. limiter) so
	// browser clients still receive CORS headers on error responses.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:8080,http://localhost:8081"
	}

	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowCredentials: true,
		MaxAge:           86400, // 24 hours
	}))

	// Global rate limiting (100 requests per minute per IP)
	app.Use(limiter.New(limiter.Config{
		Max:        100,
		Expiration: 1 * time.Minute,
		// Never rate-limit preflight requests; they are handled by CORS.
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
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
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	api := app.Group("/api")

	app.Get("/health", s.HealthCheck)

	// Uploaded technology icons
	app.Static(service.IconURLPrefix, s.technologySvc.IconDir())

	// Auth routes
	auth := api.Group("/auth")
	auth.Post("/register", middleware.RateLimit(
		s.redis, 3, 10*time.Minute, "register"), s.Register)
	auth.Post("/login", middleware.RateLimit(
		s.redis, 10, 5*time.Minute, "login"), s.Login)
	auth.Get("/me", s.AuthRequired(), s.Me)
	auth.Get("/logout", s.AuthRequired(), s.Logout)
	auth.Get("/users", s.AuthRequired(), s.AdminRequired(), s.GetAllUsers)
	auth.Delete("/users/:id", s.AuthRequired(), s.AdminRequired(), s.DeleteUser)

	// Knowledge routes; specific paths before the generic /:id
	knowledge := api.Group("/knowledge")
	knowledge.Get("/", s.GetAllKnowledge)
	knowledge.Get("/search", middleware.RateLimit(
		s.redis, 30, time.Minute, "search"), s.SearchKnowledge)
	knowledge.Post("/", s.AuthRequired(), middleware.RateLimit(
		s.redis, 5, time.Minute, "create_knowledge"), s.CreateKnowledge)
	knowledge.Get("/:id/comments", s.GetComments)
	knowledge.Post("/:id/comments", s.AuthRequired(), middleware.RateLimit(
		s.redis, 10, time.Minute, "create_comment"), s.CreateComment)
	knowledge.Patch("/:id/status", s.AuthRequired(), s.AdminRequired(), s.UpdateKnowledgeStatus)
	knowledge.Put("/:id", s.AuthRequired(), s.UpdateKnowledge)
	knowledge.Delete("/:id", s.AuthRequired(), s.DeleteKnowledge)
	knowledge.Get("/:id", s.GetKnowledge)

	// Technology catalog; mutations are admin console operations
	technology := api.Group("/technology")
	technology.Get("/", s.GetTechnologies)
	technology.Post("/", s.AuthRequired(), s.AdminRequired(), s.CreateTechnology)
	technology.Put("/:id", s.AuthRequired(), s.AdminRequired(), s.UpdateTechnology)
	technology.Delete("/:id", s.AuthRequired(), s.AdminRequired(), s.DeleteTechnology)

	// AI Q&A widget
	aiGroup := api.Group("/ai")
	aiGroup.Post("/ask", middleware.RateLimit(
		s.redis, 5, time.Minute, "ai_ask"), s.AskAI)
}

// HealthCheck reports process liveness and database reachability.
func (s *Server) HealthCheck(c *fiber.Ctx) error {
	status := "ok"
	if s.db != nil {
		if sqlDB, err := s.db.DB(); err != nil || sqlDB.PingContext(c.Context()) != nil {
			status = "degraded"
		}
	}
	return c.JSON(fiber.Map{"status": status})
}

// AuthRequired returns the authentication middleware. It trusts the token
// signature alone; no user lookup happens here, so a deleted user's token
// keeps authenticating until it expires.
func (s *Server) AuthRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		authHeader := c.Get("Authorization")
		tokenString := ""
		if authHeader != "" {
			parts := strings.Split(authHeader, " ")
			if len(parts) == 2 && parts[0] == "Bearer" {
				tokenString = parts[1]
			}
		}

		if tokenString == "" {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Missing token"))
		}

		// Parse and validate token
		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
			// Validate signing method
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, fiber.NewError(fiber.StatusUnauthorized, "Invalid signing method")
			}
			return []byte(s.config.JWTSecret), nil
		})

		if err != nil || !token.Valid {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}
		userID, err := strconv.ParseUint(sub, 10, 32)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusUnauthorized,
				models.NewUnauthorizedError("Invalid or expired token"))
		}

		// Revocation denylist: logout blacklists the token's jti until expiry
		if jti, exists := claims["jti"].(string); exists && jti != "" && s.redis != nil {
			blacklisted, redisErr := s.redis.Exists(c.Context(), "blacklist:"+jti).Result()
			if redisErr == nil && blacklisted > 0 {
				return models.RespondWithError(c, fiber.StatusUnauthorized,
					models.NewUnauthorizedError("Invalid or expired token"))
			}
		}

		c.Locals("userID", uint(userID))
		if username, usernameOk := claims["username"].(string); usernameOk {
			c.Locals("username", username)
		}
		if role, roleOk := claims["role"].(string); roleOk {
			c.Locals("role", role)
		}
		if jti, jtiOk := claims["jti"].(string); jtiOk {
			c.Locals("jti", jti)
		}
		if exp, expOk := claims["exp"].(float64); expOk {
			c.Locals("tokenExp", int64(exp))
		}

		// Sync to UserContext for logging and downstream services
		ctx := context.WithValue(c.UserContext(), middleware.UserIDKey, uint(userID))
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// AdminRequired gates moderation endpoints on the token's role claim.
// Like AuthRequired it performs no database lookup.
func (s *Server) AdminRequired() fiber.Handler {
	return func(c *fiber.Ctx) error {
		role, _ := c.Locals("role").(string)
		if role != models.RoleAdmin {
			return models.RespondWithError(c, fiber.StatusForbidden,
				models.NewForbiddenError("Admin access required"))
		}
		return c.Next()
	}
}
