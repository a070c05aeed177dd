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

// DeadlineReminderConfig holds the schedule settings for the pre-deadline
// follow-up job. The job runs daily but only mails within DaysBefore days of
// DeadlineDay.
type DeadlineReminderConfig struct {
	CronSchedule string
	Enabled      bool
	DeadlineDay  int
	DaysBefore   int
}

// DeadlineReminderService chases establishments that still have no submission
// for the previous month as the filing deadline approaches.
type DeadlineReminderService struct {
	scheduler         *gocron.Scheduler
	config            DeadlineReminderConfig
	submissionRepo    repository.SubmissionRepository
	sender            email.Sender
	now               func() time.Time
	runRunning        bool
	runMutex          sync.Mutex
	lastRunStartedAt  time.Time
	lastRunFinishedAt time.Time
}

func NewDeadlineReminderService(
	submissionRepo repository.SubmissionRepository,
	sender email.Sender,
	appConfig *config.Config,
) *DeadlineReminderService {
	reminderConfig := DeadlineReminderConfig{
		CronSchedule: appConfig.DeadlineReminder.CronSchedule,
		Enabled:      appConfig.DeadlineReminder.Enabled,
		DeadlineDay:  appConfig.DeadlineReminder.DeadlineDay,
		DaysBefore:   appConfig.DeadlineReminder.DaysBefore,
	}

	scheduler := gocron.NewScheduler(time.Local)

	logrus.WithFields(logrus.Fields{
		"cron_schedule": reminderConfig.CronSchedule,
		"deadline_day":  reminderConfig.DeadlineDay,
		"days_before":   reminderConfig.DaysBefore,
		"enabled":       reminderConfig.Enabled,
	}).Info("Deadline reminder scheduler configured")

	return &DeadlineReminderService{
		scheduler:      scheduler,
		config:         reminderConfig,
		submissionRepo: submissionRepo,
		sender:         sender,
		now:            time.Now,
	}
}

// Start registers the daily cron job and runs the scheduler in the background
// until the context is cancelled.
func (s *DeadlineReminderService) Start(ctx context.Context) error {
	if !s.config.Enabled {
		logrus.Info("Deadline reminder disabled by configuration")
		return nil
	}

	logrus.WithField("cron", s.config.CronSchedule).Info("Starting deadline reminder scheduler")

	_, err := s.scheduler.Cron(s.config.CronSchedule).Do(func() {
		s.sendReminders()
	})
	if err != nil {
		return fmt.Errorf("scheduling deadline reminder: %w", err)
	}

	s.scheduler.StartAsync()

	go func() {
		<-ctx.Done()
		logrus.Info("Stopping deadline reminder scheduler")
		s.scheduler.Stop()
	}()

	return nil
}

// sendReminders mails establishments that have not yet filed for the previous
// month. It is a no-op outside the reminder window. Delivery failures are
// logged per recipient and never stop the batch.
func (s *DeadlineReminderService) sendReminders() {
	s.runMutex.Lock()
	if s.runRunning {
		s.runMutex.Unlock()
		logrus.Info("Deadline reminder run already in progress, skipping")
		return
	}
	startTime := s.now()
	s.runRunning = true
	s.lastRunStartedAt = startTime
	s.runMutex.Unlock()

	defer func() {
		s.runMutex.Lock()
		s.runRunning = false
		s.runMutex.Unlock()
	}()

	today := s.now()
	if !s.inReminderWindow(today) {
		logrus.WithFields(logrus.Fields{
			"day":          today.Day(),
			"deadline_day": s.config.DeadlineDay,
			"days_before":  s.config.DaysBefore,
		}).Debug("Outside deadline reminder window, nothing to do")
		return
	}

	reportMonth := today.AddDate(0, -1, 0)
	pending, err := s.submissionRepo.PendingEstablishments(reportMonth.Year(), int(reportMonth.Month()))
	if err != nil {
		logrus.WithError(err).Error("Failed to list pending establishments for deadline reminder")
		return
	}

	if len(pending) == 0 {
		logrus.Info("Every establishment has filed, no deadline reminders to send")
		return
	}

	deadline := time.Date(today.Year(), today.Month(), s.config.DeadlineDay, 0, 0, 0, 0, today.Location())
	sent, failed := 0, 0

	for _, establishment := range pending {
		if err := s.sender.Send(buildDeadlineReminder(establishment, reportMonth, deadline)); err != nil {
			failed++
			logrus.WithError(err).WithFields(logrus.Fields{
				"user_id": establishment.ID,
				"email":   establishment.Email,
			}).Error("Failed to send deadline reminder")
			continue
		}
		sent++
	}

	logrus.WithFields(logrus.Fields{
		"duration": time.Since(startTime).String(),
		"pending":  len(pending),
		"sent":     sent,
		"failed":   failed,
	}).Info("Deadline reminder run finished")

	s.runMutex.Lock()
	s.lastRunFinishedAt = s.now()
	s.runMutex.Unlock()
}

// inReminderWindow reports whether today falls within DaysBefore days of the
// deadline day, deadline day included.
func (s *DeadlineReminderService) inReminderWindow(today time.Time) bool {
	day := today.Day()
	return day >= s.config.DeadlineDay-s.config.DaysBefore && day <= s.config.DeadlineDay
}

func buildDeadlineReminder(u *domain.User, reportMonth, deadline time.Time) email.Message {
	period := reportMonth.Format("January 2006")
	due := deadline.Format("January 2, 2006")
	name := u.Name
	if u.EstablishmentName != nil && *u.EstablishmentName != "" {
		name = *u.EstablishmentName
	}

	return email.Message{
		ToName:    name,
		ToAddress: u.Email,
		Subject:   fmt.Sprintf("Reminder: %s accommodation report due %s", period, due),
		TextContent: fmt.Sprintf(
			"Good day %s,\n\nOur records show your %s accommodation occupancy report has not been filed yet. "+
				"The deadline is %s. Please log in to the portal and submit before then.\n\nThank you.",
			name, period, due,
		),
		HTMLContent: fmt.Sprintf(
			"<p>Good day %s,</p><p>Our records show your <strong>%s</strong> accommodation occupancy report has not been filed yet. "+
				"The deadline is <strong>%s</strong>. Please log in to the portal and submit before then.</p><p>Thank you.</p>",
			name, period, due,
		),
	}
}

// TriggerManualRun kicks off a reminder run outside the cron schedule. The
// reminder window check still applies.
func (s *DeadlineReminderService) TriggerManualRun() {
	s.runMutex.Lock()
	if s.runRunning {
		s.runMutex.Unlock()
		logrus.Info("Deadline reminder run already in progress, ignoring manual trigger")
		return
	}
	s.runMutex.Unlock()

	logrus.Info("Starting manual deadline reminder run")
	go s.sendReminders()
}

// GetStatus reports the current state of the reminder job.
func (s *DeadlineReminderService) GetStatus() map[string]any {
	s.runMutex.Lock()
	defer s.runMutex.Unlock()

	return map[string]any{
		"run_running":      s.runRunning,
		"cron":             s.config.CronSchedule,
		"enabled":          s.config.Enabled,
		"deadline_day":     s.config.DeadlineDay,
		"days_before":      s.config.DaysBefore,
		"last_started_at":  s.lastRunStartedAt,
		"last_finished_at": s.lastRunFinishedAt,
	}
}
