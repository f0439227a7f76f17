package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/noah-isme/hikelink-api/internal/config"
	"github.com/noah-isme/hikelink-api/internal/database"
	"github.com/noah-isme/hikelink-api/internal/handler"
	"github.com/noah-isme/hikelink-api/internal/middleware"
	"github.com/noah-isme/hikelink-api/internal/observability"
	"github.com/noah-isme/hikelink-api/internal/repository"
	"github.com/noah-isme/hikelink-api/internal/router"
	"github.com/noah-isme/hikelink-api/internal/service"
	"github.com/noah-isme/hikelink-api/pkg/ai"
	cloud "github.com/noah-isme/hikelink-api/pkg/cloudinary"
	"github.com/noah-isme/hikelink-api/pkg/mailer"
	"github.com/noah-isme/hikelink-api/pkg/staticmap"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load configuration")
	}

	db, err := database.ConnectPostgres(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to database")
	}
	if err := database.Migrate(db); err != nil {
		logger.Fatal().Err(err).Msg("failed to migrate database")
	}

	var redisClient *redis.Client
	if cfg.RedisURL != "" {
		redisClient, err = database.ConnectRedis(cfg.RedisURL)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to redis")
		}
		defer redisClient.Close()
	} else {
		logger.Warn().Msg("redis not configured, caching and password reset are disabled")
	}

	var natsConn *nats.Conn
	if cfg.NATSURL != "" {
		natsConn, err = database.ConnectNATS(cfg.NATSURL, cfg.AppName)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to connect to nats")
		}
		defer natsConn.Drain()
	}

	uploader, err := cloud.New(cloud.Config{
		CloudName: cfg.CloudinaryCloudName,
		APIKey:    cfg.CloudinaryAPIKey,
		APISecret: cfg.CloudinaryAPISecret,
		Folder:    cfg.CloudinaryUploadFolder,
	}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to create cloudinary client")
	}

	var mail service.Mailer = service.NewLogMailer(logger)
	if cfg.SMTPUser != "" {
		smtp, err := mailer.New(mailer.Config{
			Host:     cfg.SMTPHost,
			Port:     cfg.SMTPPort,
			Username: cfg.SMTPUser,
			Password: cfg.SMTPPassword,
			From:     cfg.SMTPFrom,
		}, logger)
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure smtp")
		}
		mail = smtp
	}

	// A nil interface disables the assistant; never pass a typed nil here.
	var assistant ai.Assistant
	if cfg.AssistantAPIKey != "" {
		hikeMate, err := ai.NewHikeMate(ai.HikeMateConfig{
			APIKey:      cfg.AssistantAPIKey,
			BaseURL:     cfg.AssistantBaseURL,
			Model:       cfg.AssistantModel,
			MaxAttempts: cfg.AssistantMaxAttempts,
			Logger:      logger,
		})
		if err != nil {
			logger.Fatal().Err(err).Msg("failed to configure assistant")
		}
		assistant = hikeMate
	} else {
		logger.Warn().Msg("assistant api key not set, hikemate is disabled")
	}

	var routeMapper service.RouteMapper
	if builder := staticmap.New(staticmap.Config{APIKey: cfg.StaticMapKey}); builder.Enabled() {
		routeMapper = builder
	}

	validate := validator.New(validator.WithRequiredStructEnabled())

	userRepo := repository.NewUserRepository(db)
	friendshipRepo := repository.NewFriendshipRepository(db)
	postRepo := repository.NewPostRepository(db)
	participationRepo := repository.NewParticipationRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)
	chatRepo := repository.NewChatRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	uploadRepo := repository.NewUploadRepository(db)
	reportRepo := repository.NewReportRepository(db)
	reviewRepo := repository.NewReviewRepository(db)
	liveUpdateRepo := repository.NewLiveUpdateRepository(db)
	auditRepo := repository.NewAuditLogRepository(db)
	analyticsRepo := repository.NewAdminAnalyticsRepository(db)

	notificationService := service.NewNotificationService(notificationRepo, redisClient, cfg.RealtimeChannel, natsConn, logger)
	chatService := service.NewChatService(chatRepo, redisClient, cfg.RealtimeChannel, natsConn, validate, logger)
	authService := service.NewAuthService(userRepo, redisClient, mail, validate, service.AuthConfig{
		JWTSecret:    cfg.JWTSecret,
		TokenTTL:     cfg.JWTTTL,
		ResetCodeTTL: cfg.ResetCodeTTL,
	}, logger)
	activityService := service.NewActivityService(activityRepo, userRepo, logger)
	profileService := service.NewProfileService(userRepo, friendshipRepo, reviewRepo, activityService, validate, logger)
	friendService := service.NewFriendService(friendshipRepo, userRepo, notificationService, logger)
	postService := service.NewPostService(postRepo, userRepo, notificationService, validate, logger)
	participationService := service.NewParticipationService(postRepo, participationRepo, userRepo, notificationService, logger)
	liveUpdateService := service.NewLiveUpdateService(liveUpdateRepo, postRepo, participationRepo, userRepo, validate, logger)
	trackingService := service.NewTrackingService(activityRepo, activityService, routeMapper, uploader, validate, cfg.TrackerTick, logger)
	uploadService := service.NewUploadService(uploader, uploadRepo, cfg.UploadMaxSizeMB, logger)
	auditService := service.NewAuditService(auditRepo, logger)
	analyticsService := service.NewAdminAnalyticsService(analyticsRepo, redisClient, cfg.DashboardCacheTTL, logger)
	adminService := service.NewAdminService(userRepo, postRepo, auditService, analyticsService, logger)
	reportService := service.NewReportService(reportRepo, userRepo, auditService, validate, logger)
	assistantService := service.NewAssistantService(assistant, validate, logger)
	seedService := service.NewSeedService(userRepo, postRepo, validate, cfg.SeedEnabled, cfg.SeedToken, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	notificationService.Start(ctx)
	chatService.Start(ctx)

	app := fiber.New(fiber.Config{
		AppName:      cfg.AppName,
		ServerHeader: cfg.AppName,
		BodyLimit:    (cfg.UploadMaxSizeMB + 1) * 1024 * 1024,
	})

	observability.InstrumentHTTP(app, "hikelink_api")
	middleware.Register(app, middleware.Config{Logger: &logger})
	router.Register(app, cfg, router.Dependencies{
		DB:                    db,
		Redis:                 redisClient,
		AuthHandler:           handler.NewAuthHandler(authService, logger),
		ProfileHandler:        handler.NewProfileHandler(profileService, postService, uploadService, logger),
		FriendHandler:         handler.NewFriendHandler(friendService, logger),
		PostHandler:           handler.NewPostHandler(postService, logger),
		ParticipationHandler:  handler.NewParticipationHandler(participationService, logger),
		LiveUpdateHandler:     handler.NewLiveUpdateHandler(liveUpdateService, uploadService, logger),
		NotificationHandler:   handler.NewNotificationHandler(notificationService, logger, cfg.NotificationKeepAlive),
		ChatHandler:           handler.NewChatHandler(chatService, logger),
		TrackingHandler:       handler.NewTrackingHandler(trackingService, logger),
		ActivityHandler:       handler.NewActivityHandler(activityService, logger),
		UploadHandler:         handler.NewUploadHandler(uploadService, logger),
		ReportHandler:         handler.NewReportHandler(reportService, logger),
		AssistantHandler:      handler.NewAssistantHandler(assistantService, logger),
		SeedHandler:           handler.NewSeedHandler(seedService, logger),
		AdminHandler:          handler.NewAdminHandler(adminService, reportService, logger),
		AdminAnalyticsHandler: handler.NewAdminAnalyticsHandler(analyticsService, auditService, logger),
		JWTMiddleware:         middleware.JWTProtected(cfg.JWTSecret),
	})

	go func() {
		if err := app.Listen(cfg.HTTPAddress()); err != nil {
			logger.Fatal().Err(err).Msg("failed to start server")
		}
	}()

	waitForShutdown(app, logger)
	trackingService.Close()
}

func waitForShutdown(app *fiber.App, logger zerolog.Logger) {
	shutdownCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	<-shutdownCtx.Done()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(ctx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("server stopped")
}
