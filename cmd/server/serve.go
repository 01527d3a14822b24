package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/clientdesk/backend/internal/config"
	"github.com/clientdesk/backend/internal/database"
	"github.com/clientdesk/backend/internal/handlers"
	"github.com/clientdesk/backend/internal/logging"
	"github.com/clientdesk/backend/internal/metrics"
	"github.com/clientdesk/backend/internal/middleware"
	"github.com/clientdesk/backend/internal/notify"
	"github.com/clientdesk/backend/internal/repository"
	"github.com/clientdesk/backend/internal/routes"
	"github.com/clientdesk/backend/internal/security"
	"github.com/clientdesk/backend/internal/services"
	"github.com/clientdesk/backend/internal/token"
	"github.com/clientdesk/backend/internal/validation"
	"github.com/getsentry/sentry-go"
	sentryfiber "github.com/getsentry/sentry-go/fiber"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve()
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func serve() error {
	cfg := config.Load()
	logging.Setup(cfg.LogLevel)

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}

	// Database
	db, err := database.Connect(cfg)
	if err != nil {
		return err
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("database close error", "error", err)
		}
	}()

	if err := database.Migrate(db); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// PostgreSQL log handler (ERROR+ async batch)
	pgLogHandler := logging.NewPGHandler(logging.NewGormLogStore(db), 5*time.Second)
	logger := logging.Setup(cfg.LogLevel, pgLogHandler)

	cleanupDone := make(chan struct{})
	logging.StartCleanup(db, cfg.LogRetention, cleanupDone)

	// Sentry error tracking
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			EnableTracing:    true,
			TracesSampleRate: 0.2,
			Environment:      cfg.AppEnv,
		}); err != nil {
			slog.Error("sentry init failed", "error", err)
		}
	}

	// Notifications
	var notifier notify.Notifier
	if cfg.AMQPURL != "" {
		publisher, err := notify.NewRabbitMQPublisher(cfg.AMQPURL)
		if err != nil {
			return fmt.Errorf("rabbitmq connect: %w", err)
		}
		defer publisher.Close()
		notifier = notify.NewQueueNotifier(publisher, cfg.NotifyQueue)
		slog.Info("welcome notifications via rabbitmq", "queue", cfg.NotifyQueue)
	} else {
		notifier = notify.NewLogNotifier(logger)
		slog.Warn("AMQP_URL not set, welcome notifications are only logged")
	}

	// Metrics
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	appMetrics := metrics.New(registry)

	// Services
	issuer := token.NewIssuer(token.Config{
		AccessSecret:  cfg.JWTAccessSecret,
		RefreshSecret: cfg.JWTRefreshSecret,
		AccessTTL:     cfg.JWTAccessExpiry,
		RefreshTTL:    cfg.JWTRefreshExpiry,
	})
	accounts := services.NewAccountService(
		repository.NewGormUserRepository(db),
		security.NewBcryptHasher(cfg.BcryptCost),
		issuer,
		notifier,
		logger,
		services.AccountServiceConfig{NotifyTimeout: cfg.NotifyTimeout},
	).WithObserver(appMetrics)

	// Handlers
	v := validation.New()
	h := routes.Handlers{
		Auth:    handlers.NewAuthHandler(accounts, v),
		Clients: handlers.NewClientHandler(accounts, v),
		Health:  handlers.NewHealthHandler(database.NewPinger(db)),
		Metrics: metrics.Handler(registry),
	}

	// Fiber app
	app := fiber.New(fiber.Config{
		BodyLimit:    1 * 1024 * 1024,
		ErrorHandler: handlers.ErrorHandler,
	})

	app.Use(sentryfiber.New(sentryfiber.Options{
		Repanic:         true,
		WaitForDelivery: false,
	}))
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(appMetrics.Middleware())
	app.Use(middleware.RequestLogger(logger, cfg.APIKeyHeader))
	app.Use(middleware.CORS(cfg))
	app.Use(middleware.SecurityHeaders())

	routes.Setup(app, cfg, issuer, h)

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	listenErr := make(chan error, 1)
	go func() {
		slog.Info("server starting", "port", cfg.Port)
		listenErr <- app.Listen(":" + cfg.Port)
	}()

	select {
	case <-quit:
	case err := <-listenErr:
		if err != nil {
			slog.Error("server failed to start", "error", err)
		}
	}
	slog.Info("shutting down server...")

	if err := app.ShutdownWithTimeout(10 * time.Second); err != nil {
		slog.Error("server shutdown error", "error", err)
	}

	// In-flight welcome messages go out before the broker and DB close.
	accounts.Wait()

	close(cleanupDone)
	pgLogHandler.Stop()
	sentry.Flush(2 * time.Second)

	slog.Info("server stopped")
	return nil
}
