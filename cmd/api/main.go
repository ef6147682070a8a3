package main

import (
	"context"
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/joho/godotenv"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/sefazor/conference-backend/internal/config"
	"github.com/sefazor/conference-backend/internal/controller"
	"github.com/sefazor/conference-backend/internal/handler"
	"github.com/sefazor/conference-backend/internal/metrics"
	"github.com/sefazor/conference-backend/internal/middleware"
	"github.com/sefazor/conference-backend/internal/models"
	"github.com/sefazor/conference-backend/internal/repository"
	"github.com/sefazor/conference-backend/internal/routes"
	"github.com/sefazor/conference-backend/internal/service"
	"github.com/sefazor/conference-backend/pkg/captcha"
	"github.com/sefazor/conference-backend/pkg/database"
	"github.com/sefazor/conference-backend/pkg/email"
	"github.com/sefazor/conference-backend/pkg/facerecog"
	jwtPkg "github.com/sefazor/conference-backend/pkg/jwt"
	"github.com/sefazor/conference-backend/pkg/logger"
	"github.com/sefazor/conference-backend/pkg/mailqueue"
	"github.com/sefazor/conference-backend/pkg/qrcode"
	"github.com/sefazor/conference-backend/pkg/storage"
	"github.com/sefazor/conference-backend/pkg/utils"
)

func main() {
	// .env is optional outside development
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	zlog, err := logger.New(cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer func() { _ = zlog.Sync() }()

	metrics.Init()

	db, err := database.NewDatabase(cfg.Database, zlog)
	if err != nil {
		zlog.Fatal("Failed to connect to database", zap.Error(err))
	}
	if err := database.RunMigrations(db); err != nil {
		zlog.Fatal("Failed to migrate database", zap.Error(err))
	}
	if cfg.Seed.Enabled {
		if err := database.Seed(db, time.Now().UTC(), zlog); err != nil {
			zlog.Fatal("Failed to seed database", zap.Error(err))
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Repositories
	userRepo := repository.NewUserRepository(db)
	tokenRepo := repository.NewLoginTokenRepository(db)
	sessionRepo := repository.NewSessionRepository(db)
	feedbackRepo := repository.NewFeedbackRepository(db)
	reportRepo := repository.NewReportRepository(db)

	// Login link delivery
	queue, err := newMailQueue(ctx, cfg, zlog)
	if err != nil {
		zlog.Fatal("Failed to initialize mail queue", zap.Error(err))
	}
	mailer := email.NewMagicLinkMailer(newSender(cfg, zlog), service.LoginTokenTTL)
	dispatcher := mailqueue.NewDispatcher(queue, func(ctx context.Context, job mailqueue.Job) error {
		_, err := mailer.Send(ctx, job.To, job.Name, job.Link)
		return err
	}, mailqueue.Options{
		Workers:     cfg.MailQueue.Workers,
		MaxAttempts: cfg.MailQueue.MaxAttempts,
		Backoff:     cfg.MailQueue.Backoff,
	}, zlog)
	dispatcher.Start(ctx)

	// Face photos are optional
	var photos storage.ObjectStore
	if cfg.Storage.Enabled() {
		s3, err := storage.NewS3Storage(ctx, cfg.Storage)
		if err != nil {
			zlog.Fatal("Failed to initialize object storage", zap.Error(err))
		}
		photos = s3
	}

	// Services
	clock := service.SystemClock{}
	jwtManager := jwtPkg.NewManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.SessionTTL, clock.Now)
	faceClient := facerecog.NewClient(cfg.Face.ServiceURL, cfg.Face.OpenTimeout, cfg.Face.ReadTimeout, zlog)

	tokenService := service.NewTokenService(tokenRepo, clock, zlog)
	authService := service.NewAuthService(userRepo, tokenService, dispatcher, jwtManager, cfg.Server.AppURL, cfg.Auth.DomainRestriction, zlog)
	faceService := service.NewFaceService(userRepo, faceClient, photos, authService, zlog)
	scheduleService := service.NewScheduleService(sessionRepo, userRepo, feedbackRepo, clock, zlog)
	feedbackService := service.NewFeedbackService(feedbackRepo, sessionRepo, clock, zlog)
	userService := service.NewUserService(userRepo, reportRepo, zlog)
	reportService := service.NewReportService(reportRepo, clock, zlog)

	validator := utils.NewValidator()

	// Controllers
	turnstile := captcha.NewTurnstileVerifier(cfg.Captcha.SecretKey, cfg.Captcha.VerifyURL, cfg.Captcha.Timeout)
	if !turnstile.Enabled() {
		zlog.Info("Captcha verification disabled for login requests")
	}
	authController := controller.NewAuthController(authService, faceService, turnstile, validator)
	userController := controller.NewUserController(userService, faceService, validator)
	eventController := controller.NewEventController(scheduleService, feedbackService)
	adminController := controller.NewAdminController(reportService, scheduleService, qrcode.NewQRService(cfg.Server.AppURL), validator)

	app := fiber.New(fiber.Config{
		AppName:      "Conference API",
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		BodyLimit:    10 * 1024 * 1024,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal server error"
			var fe *fiber.Error
			if errors.As(err, &fe) {
				code = fe.Code
				msg = fe.Message
			}
			if code >= fiber.StatusInternalServerError {
				zlog.Error("Request failed",
					zap.String("method", c.Method()),
					zap.String("path", c.Path()),
					zap.Error(err),
				)
			}
			return c.Status(code).JSON(models.ErrorResponse(msg))
		},
	})

	// Global middleware
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(helmet.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins:     cfg.CORS.AllowedOrigins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization",
		AllowMethods:     "GET, POST, PUT, DELETE",
		AllowCredentials: true,
	}))
	app.Use(middleware.ErrorLogger(zlog))
	app.Use(metrics.HTTPMetricsMiddleware())
	app.Use(limiter.New(limiter.Config{
		Max:        cfg.RateLimit.Max,
		Expiration: cfg.RateLimit.Expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
	}))

	routes.Setup(app, db, routes.Handlers{
		Auth:  handler.NewAuthHandler(authController, cfg.Auth.CookieName, !cfg.IsDevelopment()),
		User:  handler.NewUserHandler(userController),
		Event: handler.NewEventHandler(eventController),
		Admin: handler.NewAdminHandler(adminController),
	}, middleware.AuthMiddleware(authController, cfg.Auth.CookieName))

	// Graceful shutdown
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-sig
		zlog.Info("Gracefully shutting down...")
		if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
			zlog.Error("Server shutdown failed", zap.Error(err))
		}
	}()

	zlog.Info("Starting conference API", zap.String("port", cfg.Server.Port), zap.String("environment", cfg.Server.Environment))
	if err := app.Listen(":" + cfg.Server.Port); err != nil {
		zlog.Error("Server stopped", zap.Error(err))
	}

	cancel()
	if err := queue.Close(); err != nil {
		zlog.Warn("Failed to close mail queue", zap.Error(err))
	}
	dispatcher.Wait()

	if sqlDB, err := db.DB(); err == nil {
		_ = sqlDB.Close()
	}
	zlog.Info("Shutdown complete")
}

func newMailQueue(ctx context.Context, cfg *config.Config, log *zap.Logger) (mailqueue.Queue, error) {
	if cfg.MailQueue.Backend != "redis" {
		return mailqueue.NewMemoryQueue(cfg.MailQueue.Buffer), nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Address,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.Database,
	})
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		return nil, err
	}

	log.Info("Using redis mail queue", zap.String("address", cfg.Redis.Address), zap.String("key", cfg.MailQueue.RedisKey))
	return mailqueue.NewRedisQueue(client, cfg.MailQueue.RedisKey), nil
}

func newSender(cfg *config.Config, log *zap.Logger) email.Sender {
	if cfg.Email.ResendAPIKey == "" {
		log.Warn("No Resend API key configured, login links are only logged")
		return email.NewLogSender(log)
	}
	return email.NewResendSender(cfg.Email.ResendAPIKey, cfg.Email.FromAddress, cfg.Email.FromName, log)
}
