package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	httptransport "github.com/spec-kit/civictrack/internal/api/http"
	"github.com/spec-kit/civictrack/internal/api/http/handlers"
	"github.com/spec-kit/civictrack/internal/auth"
	"github.com/spec-kit/civictrack/internal/config"
	"github.com/spec-kit/civictrack/internal/events"
	"github.com/spec-kit/civictrack/internal/mail"
	"github.com/spec-kit/civictrack/internal/observability"
	"github.com/spec-kit/civictrack/internal/persistence"
	"github.com/spec-kit/civictrack/internal/repository"
	"github.com/spec-kit/civictrack/internal/service"
	"github.com/spec-kit/civictrack/internal/storage"
	"github.com/spec-kit/civictrack/internal/worker"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logger)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logger.Sync() //nolint:errcheck

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pg, err := persistence.NewPostgres(ctx, cfg.Postgres, logger)
	if err != nil {
		logger.Fatal("failed to connect postgres", zap.Error(err))
	}
	defer pg.Close()

	if cfg.Postgres.RunMigrations {
		if err := persistence.RunMigrations(ctx, pg.PoolHandle(), logger); err != nil {
			logger.Fatal("failed to run migrations", zap.Error(err))
		}
	}

	redis := persistence.NewRedis(cfg.Redis, logger)
	defer redis.Close()

	pool := pg.PoolHandle()
	accountRepo := repository.NewAccountRepository(pool)
	ticketRepo := repository.NewTicketRepository(pool)

	if err := persistence.EnsureAdminAccount(ctx, accountRepo, *cfg, logger); err != nil {
		logger.Fatal("failed to seed admin account", zap.Error(err))
	}

	sessionStore := auth.NewRedisSessionStore(redis.Client)
	guard := auth.NewSessionAuth(cfg.Session.CookieName, sessionStore, accountRepo)

	dispatcher := events.NewQueueDispatcher(logger, 256)
	dispatcher.Start(ctx)
	defer dispatcher.Close()

	mailer := mail.NewSMTPMailer(cfg.Mail)
	if !mailer.Configured() {
		logger.Warn("SMTP transport not configured; notifications will fail silently")
	}
	notificationService := service.NewNotificationService(dispatcher, mailer, logger)
	worker.StartNotificationWorker(notificationService)

	var photoStore storage.PhotoStore
	if cfg.Storage.Endpoint != "" {
		store, err := storage.NewMinioPhotoStore(ctx, cfg.Storage)
		if err != nil {
			logger.Fatal("failed to init photo storage", zap.Error(err))
		}
		photoStore = store
	} else {
		logger.Warn("STORAGE_ENDPOINT not provided; photo uploads disabled")
	}

	authService := service.NewAuthService(cfg.Session, accountRepo, sessionStore)
	ticketService := service.NewTicketService(ticketRepo, dispatcher)
	adminService := service.NewAdminService(accountRepo, ticketRepo)

	metrics := observability.NewMetrics()

	app := fiber.New()
	httptransport.RegisterMiddlewares(app, logger, metrics, cfg.App.RequestTimeout())

	httptransport.RegisterRoutes(app, httptransport.RouteConfig{
		Health:  handlers.NewHealthHandler(cfg.App.Name, cfg.App.Version, pg, redis),
		Auth:    handlers.NewAuthHandler(authService, guard, cfg.Session),
		Tickets: handlers.NewTicketsHandler(ticketService, guard, photoStore),
		Admin:   handlers.NewAdminHandler(adminService),
		Guard:   guard,
	})

	go func() {
		if err := app.Listen(cfg.App.Addr()); err != nil {
			logger.Fatal("fiber listen", zap.Error(err))
		}
	}()

	waitForShutdown(logger)

	_ = app.Shutdown()
}

func waitForShutdown(logger *zap.Logger) {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	logger.Info("shutting down", zap.String("signal", sig.String()))
}
