package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/wolfman30/telecare-platform/internal/api/router"
	"github.com/wolfman30/telecare-platform/internal/app/bootstrap"
	"github.com/wolfman30/telecare-platform/internal/appointments"
	"github.com/wolfman30/telecare-platform/internal/availability"
	appconfig "github.com/wolfman30/telecare-platform/internal/config"
	"github.com/wolfman30/telecare-platform/internal/http/handlers"
	"github.com/wolfman30/telecare-platform/internal/intake"
	"github.com/wolfman30/telecare-platform/internal/notify"
	appmetrics "github.com/wolfman30/telecare-platform/internal/observability/metrics"
	"github.com/wolfman30/telecare-platform/internal/practitioners"
	"github.com/wolfman30/telecare-platform/internal/reminders"
	"github.com/wolfman30/telecare-platform/internal/session"
	"github.com/wolfman30/telecare-platform/internal/stream"
	"github.com/wolfman30/telecare-platform/internal/waitingroom"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()

	logger := logging.New(cfg.LogLevel)
	logger.Info("starting telecare-platform API server",
		"env", cfg.Env,
		"port", cfg.Port,
	)

	ctx := context.Background()

	pool, err := bootstrap.BuildPgxPool(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to postgres", "error", err)
		os.Exit(1)
	}
	if pool == nil {
		logger.Error("DATABASE_URL is required")
		os.Exit(1)
	}
	defer pool.Close()

	redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true)

	m := appmetrics.NewAppointmentMetrics(nil)

	store := appointments.NewPostgresStore(pool)

	// Redis-backed pieces degrade to nil when Redis is unreachable so
	// the lifecycle API stays up without change notifications.
	var (
		feed         *stream.Feed
		changeFeed   appointments.ChangePublisher
		schedules    availability.ScheduleSource
		profiles     notify.ProfileSource
		profileStore *practitioners.Store
	)
	if redisClient != nil {
		feed = stream.NewFeed(redisClient, logger)
		changeFeed = feed
		profileStore = practitioners.NewStore(redisClient)
		schedules = profileStore
		profiles = profileStore
	}

	svc := appointments.NewService(store, changeFeed, m, logger)
	svc.SetWindow(cfg.ConflictWindow)

	checker := availability.NewChecker(store, schedules, cfg.ConflictWindow)

	var email notify.EmailSender
	if sg := notify.NewSendGridSender(notify.SendGridConfig{
		APIKey:    cfg.SendGridAPIKey,
		FromEmail: cfg.SendGridFromEmail,
		FromName:  cfg.SendGridFromName,
	}, logger); sg != nil {
		email = sg
	} else {
		email = notify.NewStubEmailSender(logger)
	}
	notifier := notify.NewService(notify.NewStubPushSender(logger), email, profiles, m, logger)

	coordinator := waitingroom.NewCoordinator(store, changeFeed, notifier, m, logger)
	gate := session.NewGate(store, m)
	awaiter := session.NewAwaiter(gate, cfg.HandoffPollInterval, cfg.HandoffPollTimeout, logger)

	reminderStore := reminders.NewStore(pool)
	reminderScheduler := reminders.NewScheduler(reminderStore, cfg.ReminderLeadTime, logger)

	suggester := &intake.StaticSuggester{}

	apptHandler := handlers.NewAppointmentsHandler(svc, checker, suggester, notifier, reminderScheduler, logger)
	waitingHandler := handlers.NewWaitingRoomHandler(coordinator, logger)
	availHandler := handlers.NewAvailabilityHandler(checker, logger)
	sessionHandler := handlers.NewSessionHandler(gate, awaiter, logger)

	var watchHandler *handlers.WatchHandler
	if feed != nil {
		watchHandler = handlers.NewWatchHandler(store, feed, logger)
	}
	var profileHandler *practitioners.Handler
	if profileStore != nil {
		profileHandler = practitioners.NewHandler(profileStore, logger)
	}

	routerCfg := &router.Config{
		Logger:              logger,
		Appointments:        apptHandler,
		WaitingRoom:         waitingHandler,
		Availability:        availHandler,
		Session:             sessionHandler,
		Watch:               watchHandler,
		PractitionerProfile: profileHandler,
		MetricsHandler:      promhttp.Handler(),
		AuthJWTSecret:       cfg.AuthJWTSecret,
		CORSAllowedOrigins:  bootstrap.ParseCORSOrigins(cfg.CORSAllowedOrigins),
	}
	r := router.New(routerCfg)

	srv := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		logger.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	logger.Info("server stopped")
}
