package router

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	"github.com/noah-isme/hikelink-api/internal/config"
	"github.com/noah-isme/hikelink-api/internal/handler"
	"github.com/noah-isme/hikelink-api/internal/middleware"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	DB    *gorm.DB
	Redis *redis.Client

	AuthHandler           *handler.AuthHandler
	ProfileHandler        *handler.ProfileHandler
	FriendHandler         *handler.FriendHandler
	PostHandler           *handler.PostHandler
	ParticipationHandler  *handler.ParticipationHandler
	LiveUpdateHandler     *handler.LiveUpdateHandler
	NotificationHandler   *handler.NotificationHandler
	ChatHandler           *handler.ChatHandler
	TrackingHandler       *handler.TrackingHandler
	ActivityHandler       *handler.ActivityHandler
	UploadHandler         *handler.UploadHandler
	ReportHandler         *handler.ReportHandler
	AssistantHandler      *handler.AssistantHandler
	SeedHandler           *handler.SeedHandler
	AdminHandler          *handler.AdminHandler
	AdminAnalyticsHandler *handler.AdminAnalyticsHandler

	JWTMiddleware fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg, deps.DB, deps.Redis))

	// Public routes
	if deps.AuthHandler != nil {
		deps.AuthHandler.Register(api.Group("/auth", middleware.RateLimit("auth", 20, time.Minute)))
	}
	if deps.SeedHandler != nil {
		deps.SeedHandler.Register(api.Group("/seed"))
	}

	// Use provided JWT middleware, or a no-op if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	requireUser := middleware.WithAuth(func(c *fiber.Ctx) error { return c.Next() }, middleware.AuthOptions{Role: middleware.AuthRoleUser})

	protected := func(prefix string, extra ...fiber.Handler) fiber.Router {
		handlers := append([]fiber.Handler{jwtMiddleware, requireUser}, extra...)
		return api.Group(prefix, handlers...)
	}

	if deps.ProfileHandler != nil {
		deps.ProfileHandler.Register(protected("/users"))
	}
	if deps.FriendHandler != nil {
		deps.FriendHandler.Register(protected("/friends"))
	}
	if deps.PostHandler != nil {
		deps.PostHandler.Register(protected("/posts"))
	}
	if deps.ParticipationHandler != nil || deps.LiveUpdateHandler != nil {
		events := protected("/events")
		if deps.ParticipationHandler != nil {
			deps.ParticipationHandler.Register(events)
		}
		if deps.LiveUpdateHandler != nil {
			deps.LiveUpdateHandler.Register(events)
		}
	}
	if deps.NotificationHandler != nil {
		deps.NotificationHandler.Register(protected("/notifications"))
	}
	if deps.ChatHandler != nil {
		deps.ChatHandler.Register(protected("/chats"))
	}
	if deps.TrackingHandler != nil {
		deps.TrackingHandler.Register(protected("/tracking"))
	}
	if deps.ActivityHandler != nil {
		deps.ActivityHandler.Register(protected("/activities"))
	}
	if deps.UploadHandler != nil {
		deps.UploadHandler.Register(protected("/uploads", middleware.RateLimit("uploads", 10, time.Minute)))
	}
	if deps.ReportHandler != nil {
		deps.ReportHandler.Register(protected("/reports", middleware.RateLimit("reports", 5, time.Minute)))
	}
	if deps.AssistantHandler != nil {
		deps.AssistantHandler.Register(protected("/assistant", middleware.RateLimit("assistant", 6, time.Minute)))
	}

	// Admin panel
	if deps.AdminHandler != nil || deps.AdminAnalyticsHandler != nil {
		admin := protected("/admin", middleware.RequireRole(middleware.AuthRoleAdmin))
		if deps.AdminHandler != nil {
			deps.AdminHandler.Register(admin)
		}
		if deps.AdminAnalyticsHandler != nil {
			deps.AdminAnalyticsHandler.Register(admin)
		}
	}
}
