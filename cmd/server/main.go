/**
 * @description
 * This is the main entry point for the Flixxit backend. It initializes and
 * wires together all the components of the application: configuration, the
 * database pool, repositories, services, the notification dispatcher, the
 * event producer, the reconciliation scheduler, and the HTTP router. Finally
 * it starts the HTTP server and waits for a shutdown signal.
 */
package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/Susan56789/flixxit-sub000/internal/api"
	"github.com/Susan56789/flixxit-sub000/internal/app"
	"github.com/Susan56789/flixxit-sub000/internal/config"
	"github.com/Susan56789/flixxit-sub000/internal/domain"
	"github.com/Susan56789/flixxit-sub000/internal/notify"
	"github.com/Susan56789/flixxit-sub000/internal/store"
	"github.com/Susan56789/flixxit-sub000/pkg/mailer"
	"github.com/Susan56789/flixxit-sub000/pkg/rabbitmq"
)

func main() {
	// Load .env during local development; ignore when absent.
	_ = godotenv.Load()

	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	pool, err := store.NewPool(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error("unable to connect to database", "error", err)
		os.Exit(1)
	}
	defer pool.Close()
	logger.Info("database connection established")

	// Event producer: fall back to a no-op publisher when the broker is not
	// configured or unreachable, so the service still comes up.
	var events rabbitmq.Publisher
	if cfg.RabbitMQURL != "" {
		producer, err := rabbitmq.NewEventProducer(cfg.RabbitMQURL)
		if err != nil {
			logger.Warn("rabbitmq unavailable, subscription events disabled", "error", err)
			events = &rabbitmq.NoopPublisher{Logger: logger}
		} else {
			events = producer
		}
	} else {
		events = &rabbitmq.NoopPublisher{Logger: logger}
	}
	defer events.Close()

	// Repositories
	users := store.NewUserRepository(pool)
	movies := store.NewMovieRepository(pool)
	reactions := store.NewReactionRepository(pool)
	watchlist := store.NewWatchlistRepository(pool)

	// Services
	plans := domain.DefaultPlanCatalog()
	if cfg.PlanCatalogJSON != "" {
		override, err := domain.ParsePlanCatalog(cfg.PlanCatalogJSON)
		if err != nil {
			logger.Error("invalid plan catalog override", "error", err)
			os.Exit(1)
		}
		plans = override
		logger.Info("plan catalog loaded from configuration", "plans", len(plans))
	}
	warningWindow := time.Duration(cfg.WarningWindowDays) * 24 * time.Hour
	authService := app.NewAuthService(users, cfg.JWTSecret, logger)
	reactionService := app.NewReactionService(reactions, logger)
	subscriptionService := app.NewSubscriptionService(users, plans, events, logger, warningWindow)

	// Notifications
	transport := mailer.New(mailer.Config{
		Host:     cfg.SMTPHost,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
		From:     cfg.SMTPFrom,
	})
	dispatcher := notify.NewDispatcher(transport, logger)

	// Reconciliation scheduler
	jobs := app.NewJobs(users, subscriptionService, dispatcher, events, logger, app.JobsConfig{
		WarningWindow:    warningWindow,
		ReminderCooldown: time.Duration(cfg.ReminderCooldownHours) * time.Hour,
		MaxRetries:       cfg.SweepMaxRetries,
		AdminEmail:       cfg.AdminEmail,
	})
	scheduler := app.NewScheduler(jobs, logger, app.SchedulerConfig{
		HealthSweepSchedule:   cfg.HealthSweepSchedule,
		DailySweepSchedule:    cfg.DailySweepSchedule,
		WeeklySummarySchedule: cfg.WeeklySummarySchedule,
	})
	scheduler.Start()

	// HTTP server
	handler := api.NewHandler(authService, reactionService, subscriptionService, movies, watchlist, logger)
	router := api.NewRouter(handler, cfg.JWTSecret)

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.ServerPort),
		Handler: router,
	}

	go func() {
		logger.Info("starting server", "port", cfg.ServerPort)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server failed to start", "error", err)
			os.Exit(1)
		}
	}()

	<-sigCh
	logger.Info("shutdown signal received, gracefully shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	// Let any in-flight cron job finish before closing the pool.
	<-scheduler.Stop().Done()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown failed", "error", err)
	}

	logger.Info("server stopped")
}
