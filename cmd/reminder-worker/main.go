package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/wolfman30/telecare-platform/internal/app/bootstrap"
	appconfig "github.com/wolfman30/telecare-platform/internal/config"
	"github.com/wolfman30/telecare-platform/internal/notify"
	appmetrics "github.com/wolfman30/telecare-platform/internal/observability/metrics"
	"github.com/wolfman30/telecare-platform/internal/practitioners"
	"github.com/wolfman30/telecare-platform/internal/reminders"
	"github.com/wolfman30/telecare-platform/pkg/logging"
)

func main() {
	_ = godotenv.Load()

	cfg := appconfig.Load()
	logger := logging.New(cfg.LogLevel)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DatabaseURL == "" {
		logger.Error("reminder worker requires DATABASE_URL")
		os.Exit(1)
	}

	pool, err := bootstrap.BuildPgxPool(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect postgres", "error", err)
		os.Exit(1)
	}
	defer pool.Close()

	m := appmetrics.NewAppointmentMetrics(nil)

	var profiles notify.ProfileSource
	if redisClient := bootstrap.BuildRedisClient(ctx, cfg, logger, true); redisClient != nil {
		profiles = practitioners.NewStore(redisClient)
	}

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

	store := reminders.NewStore(pool)
	worker := reminders.NewWorker(store, notifier, logger)

	go worker.Run(ctx, cfg.ReminderPollInterval)

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop
	logger.Info("reminder worker shutting down")
	cancel()
	time.Sleep(2 * time.Second)
}
