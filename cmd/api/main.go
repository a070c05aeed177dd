package main

import (
	"context"
	"os"
	"path"
	"runtime"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/jdalisay/tourism-data-api/infrastructure/database/postgres"
	"github.com/jdalisay/tourism-data-api/infrastructure/email"
	"github.com/jdalisay/tourism-data-api/infrastructure/repository"
	"github.com/jdalisay/tourism-data-api/internal/api"
	"github.com/jdalisay/tourism-data-api/internal/config"
	"github.com/jdalisay/tourism-data-api/internal/scheduler"
	"github.com/jdalisay/tourism-data-api/internal/usecases/authenticating"
	"github.com/jdalisay/tourism-data-api/internal/usecases/reporting"
	"github.com/jdalisay/tourism-data-api/internal/usecases/submitting"
)

func main() {
	configureLogger()

	cfg, err := config.NewConfig()
	if err != nil {
		logrus.Fatal(err)
	}

	logLevel, err := logrus.ParseLevel(cfg.App.LogLevel)
	if err != nil {
		logrus.Warnf("Invalid log level: %s, falling back to 'info'", cfg.App.LogLevel)
		logLevel = logrus.InfoLevel
	}
	logrus.SetLevel(logLevel)
	logrus.Infof("Log level set to: %s", logLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pgConn := pgconn(ctx, cfg.Database)
	defer pgConn.Close()

	userRepo := repository.NewUserRepository(pgConn)
	submissionRepo := repository.NewSubmissionRepository(pgConn)
	draftRepo := repository.NewDraftRepository(pgConn)
	metricsRepo := repository.NewMetricsRepository(pgConn)

	authenticator := authenticating.NewService(userRepo, cfg)
	reportingService := reporting.NewService(metricsRepo)
	submittingService := submitting.NewService(submissionRepo, draftRepo)

	sender := emailSender(cfg)

	monthlyReminderService := scheduler.NewMonthlyReminderService(userRepo, sender, cfg)
	deadlineReminderService := scheduler.NewDeadlineReminderService(submissionRepo, sender, cfg)

	if err := monthlyReminderService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Failed to start the monthly reminder scheduler")
	} else {
		logrus.Info("Monthly reminder scheduler started")
	}

	if err := deadlineReminderService.Start(ctx); err != nil {
		logrus.WithError(err).Error("Failed to start the deadline reminder scheduler")
	} else {
		logrus.Info("Deadline reminder scheduler started")
	}

	server, err := api.New(
		cfg,
		reportingService,
		submittingService,
		authenticator,
		monthlyReminderService,
		deadlineReminderService,
	)
	if err != nil {
		logrus.Fatal(err)
	}

	if err := server.Run(ctx); err != nil {
		logrus.Error(err)
	}
}

func configureLogger() {
	_, file, _, _ := runtime.Caller(0)
	dir := path.Dir(file)
	os.Chdir(dir)

	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: time.RFC3339,
	})
}

func pgconn(ctx context.Context, dbConfig config.Database) *postgres.Connection {
	conn, err := postgres.NewConnection(ctx, dbConfig)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to connect to PostgreSQL")
	}

	err = conn.Ping(ctx)
	if err != nil {
		logrus.WithError(err).Fatal("Failed to ping PostgreSQL")
	}

	logrus.Info("PostgreSQL connection established")
	return conn
}

// emailSender picks the delivery backend: sendgrid when enabled, otherwise
// the console sender used in development.
func emailSender(cfg *config.Config) email.Sender {
	if cfg.Email.Enabled {
		logrus.Info("Email delivery via SendGrid")
		return email.NewSendgridSender(cfg.Email)
	}

	logrus.Info("Email delivery disabled, logging messages to console")
	return email.NewConsoleSender()
}
