package scheduler

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-co-op/gocron"
	"github.com/sirupsen/logrus"

	"github.com/jdalisay/tourism-data-api/infrastructure/email"
	"github.com/jdalisay/tourism-data-api/infrastructure/repository"
	"github.com/jdalisay/tourism-data-api/internal/config"
	"github.com/jdalisay/tourism-data-api/internal/domain"
)

// MonthlyReminderConfig holds the schedule settings for the start-of-month
// reminder job.
type MonthlyReminderConfig struct {
	CronSchedule string
	Enabled      bool
}

// MonthlyReminderService emails every active establishment at the start of
// each month asking for the previous month's occupancy report.
type MonthlyReminderService struct {
	scheduler         *gocron.Scheduler
	config            MonthlyReminderConfig
	userRepo          repository.UserRepository
	sender            email.Sender
	runRunning        bool
	runMutex          sync.Mutex
	lastRunStartedAt  time.Time
	lastRunFinishedAt time.Time
}

func NewMonthlyReminderService(
	userRepo repository.UserRepository,
	sender email.Sender,
	appConfig *config.Config,
) *MonthlyReminderService {
	reminderConfig := MonthlyReminderConfig{
		CronSchedule: appConfig.MonthlyReminder.CronSchedule,
		Enabled:      appConfig.MonthlyReminder.Enabled,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": reminderConfig.CronSchedule,
		"enabled":       reminderConfig.Enabled,
	}).Info("Monthly reminder scheduler configured")

	return &MonthlyReminderService{
		scheduler: scheduler,
		config:    reminderConfig,
		userRepo:  userRepo,
		sender:    sender,
	}
}

// Start registers the cron job and runs the scheduler in the background until
// the context is cancelled.
func (s *MonthlyReminderService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Monthly reminder disabled by configuration")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Starting monthly reminder scheduler")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.sendReminders()
	})
	if err != nil {
		return fmt.Errorf("scheduling monthly reminder: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Stopping monthly reminder scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

// sendReminders mails every active establishment about the previous month.
// Delivery failures are logged per recipient and never stop the batch.
func (s *MonthlyReminderService) sendReminders() {
	s.runMutex.Lock()
	if s.runRunning {
		s.runMutex.Unlock()
		logrus.Info("Monthly reminder run already in progress, skipping")
		return
	}
	startTime := time.Now()
	s.runRunning = true
	s.lastRunStartedAt = startTime
	s.runMutex.Unlock()

	defer func() {
		s.runMutex.Lock()
		s.runRunning = false
		s.runMutex.Unlock()
	}()

	establishments, err := s.userRepo.ListActiveEstablishments()
	if err != nil {
		logrus.WithError(err).Error("Failed to list establishments for monthly reminder")
		return
	}

	if len(establishments) == 0 {
		logrus.Info("No active establishments found for monthly reminder")
		return
	}

	reportMonth := time.Now().AddDate(0, -1, 0)
	sent, failed := 0, 0

	for _, establishment := range establishments {
		if err := s.sender.Send(buildMonthlyReminder(establishment, reportMonth)); err != nil {
			failed++
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id": establishment.ID,
				"email":   establishment.Email,
			}).Error("Failed to send monthly reminder")
			continue
		}
		sent++
	}

	logrus.WithFields(logrus.Fields{
		"duration": time.Since(startTime).String(),
		"sent":     sent,
		"failed":   failed,
	}).Info("Monthly reminder run finished")

	s.runMutex.Lock()
	s.lastRunFinishedAt = time.Now()
	s.runMutex.Unlock()
}

func buildMonthlyReminder(u *domain.User, reportMonth time.Time) email.Message {
	period := reportMonth.Format("January 2006")
	name := u.Name
	if u.EstablishmentName != nil && *u.EstablishmentName != "" {
		name = *u.EstablishmentName
	}

	return email.Message{
		ToName:    name,
		ToAddress: u.Email,
		Subject:   fmt.Sprintf("Accommodation report for %s is now open", period),
		TextContent: fmt.Sprintf(
			"Good day %s,\n\nThe submission window for your %s accommodation occupancy report is now open. "+
				"Please log in to the portal and file your report.\n\nThank you.",
			name, period,
		),
		HTMLContent: fmt.Sprintf(
			"<p>Good day %s,</p><p>The submission window for your <strong>%s</strong> accommodation occupancy report is now open. "+
				"Please log in to the portal and file your report.</p><p>Thank you.</p>",
			name, period,
		),
	}
}

// TriggerManualRun kicks off a reminder run outside the cron schedule.
func (s *MonthlyReminderService) TriggerManualRun() {
	s.runMutex.Lock()
	if s.runRunning {
		s.runMutex.Unlock()
		logrus.Info("Monthly reminder run already in progress, ignoring manual trigger")
		return
	}
	s.runMutex.Unlock()

	logrus.Info("Starting manual monthly reminder run")
	go s.sendReminders()
}

// GetStatus reports the current state of the reminder job.
func (s *MonthlyReminderService) GetStatus() map[string]any {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	return map[string]any{
		"run_running":      s.runRunning,
		"cron":             s.config.CronSchedule,
		"enabled":          s.config.Enabled,
		"last_started_at":  s.lastRunStartedAt,
		"last_finished_at": s.lastRunFinishedAt,
	}
}
