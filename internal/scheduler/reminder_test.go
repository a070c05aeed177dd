package scheduler

import (
	"sync"
	"testing"
	"time"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/jdalisay/tourism-data-api/infrastructure/email"
	emailmocks "github.com/jdalisay/tourism-data-api/infrastructure/email/mocks"
	"github.com/jdalisay/tourism-data-api/infrastructure/repository/mocks"
	"github.com/jdalisay/tourism-data-api/internal/domain"
)

func stringPtr(s string) *string { return &s }

func establishment(id int, name, address string) *domain.User {
	return &domain.User{
		ID:                id,
		Name:              name,
		Email:             address,
		RoleID:            domain.RoleEstablishment,
		EstablishmentName: stringPtr(name),
	}
}

func TestMonthlyReminderService_sendReminders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepository(ctrl)
	mockSender := emailmocks.NewMockSender(ctrl)

	service := &MonthlyReminderService{
		config:   MonthlyReminderConfig{CronSchedule: "0 8 1 * *", Enabled: true},
		userRepo: mockUserRepo,
		sender:   mockSender,
	}

	t.Run("one failed delivery does not stop the batch", func(t *testing.T) {
		recipients := []*domain.User{
			establishment(1, "Bayview Inn", "bayview@example.com"),
			establishment(2, "Harbor Lodge", "harbor@example.com"),
			establishment(3, "Summit Hotel", "summit@example.com"),
		}

		mockUserRepo.EXPECT().ListActiveEstablishments().Return(recipients, nil)

		var delivered []string
		mockSender.EXPECT().Send(gomock.Any()).DoAndReturn(func(msg email.Message) error {
			if msg.ToAddress == "harbor@example.com" {
				return errors.New("mailbox unavailable")
			}
			delivered = append(delivered, msg.ToAddress)
			return nil
		}).Times(3)

		service.sendReminders()

		assert.Equal(t, []string{"bayview@example.com", "summit@example.com"}, delivered)
	})

	t.Run("repository failure aborts the run without sending", func(t *testing.T) {
		mockUserRepo.EXPECT().ListActiveEstablishments().Return(nil, errors.New("connection refused"))

		service.sendReminders()
	})

	t.Run("no establishments means no mail", func(t *testing.T) {
		mockUserRepo.EXPECT().ListActiveEstablishments().Return([]*domain.User{}, nil)

		service.sendReminders()
	})

	t.Run("reminder names the previous month", func(t *testing.T) {
		reportMonth := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		msg := buildMonthlyReminder(establishment(1, "Bayview Inn", "bayview@example.com"), reportMonth)

		assert.Equal(t, "bayview@example.com", msg.ToAddress)
		assert.Equal(t, "Bayview Inn", msg.ToName)
		assert.Contains(t, msg.Subject, "March 2025")
		assert.Contains(t, msg.TextContent, "March 2025")
	})
}

func TestDeadlineReminderService_sendReminders(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSubmissionRepo := mocks.NewMockSubmissionRepository(ctrl)
	mockSender := emailmocks.NewMockSender(ctrl)

	newService := func(today time.Time) *DeadlineReminderService {
		return &DeadlineReminderService{
			config: DeadlineReminderConfig{
				CronSchedule: "0 8 * * *",
				Enabled:      true,
				DeadlineDay:  10,
				DaysBefore:   3,
			},
			submissionRepo: mockSubmissionRepo,
			sender:         mockSender,
			now:            func() time.Time { return today },
		}
	}

	t.Run("outside the window nothing happens", func(t *testing.T) {
		service := newService(time.Date(2025, 4, 5, 8, 0, 0, 0, time.UTC))

		service.sendReminders()
	})

	t.Run("inside the window pending establishments are chased and failures are isolated", func(t *testing.T) {
		service := newService(time.Date(2025, 4, 8, 8, 0, 0, 0, time.UTC))

		pending := []*domain.User{
			establishment(1, "Bayview Inn", "bayview@example.com"),
			establishment(2, "Harbor Lodge", "harbor@example.com"),
		}

		mockSubmissionRepo.EXPECT().PendingEstablishments(2025, 3).Return(pending, nil)

		var delivered []string
		mockSender.EXPECT().Send(gomock.Any()).DoAndReturn(func(msg email.Message) error {
			if msg.ToAddress == "bayview@example.com" {
				return errors.New("mailbox unavailable")
			}
			delivered = append(delivered, msg.ToAddress)
			return nil
		}).Times(2)

		service.sendReminders()

		assert.Equal(t, []string{"harbor@example.com"}, delivered)
	})

	t.Run("deadline day itself is still inside the window", func(t *testing.T) {
		service := newService(time.Date(2025, 4, 10, 8, 0, 0, 0, time.UTC))

		mockSubmissionRepo.EXPECT().PendingEstablishments(2025, 3).Return([]*domain.User{}, nil)

		service.sendReminders()
	})

	t.Run("reminder names the period and the deadline", func(t *testing.T) {
		reportMonth := time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC)
		deadline := time.Date(2025, 4, 10, 0, 0, 0, 0, time.UTC)
		msg := buildDeadlineReminder(establishment(2, "Harbor Lodge", "harbor@example.com"), reportMonth, deadline)

		assert.Contains(t, msg.Subject, "March 2025")
		assert.Contains(t, msg.Subject, "April 10, 2025")
		assert.Contains(t, msg.TextContent, "has not been filed")
	})
}

func TestMonthlyReminderService_statusDuringRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockUserRepo := mocks.NewMockUserRepository(ctrl)
	mockSender := emailmocks.NewMockSender(ctrl)

	service := &MonthlyReminderService{
		config:   MonthlyReminderConfig{CronSchedule: "0 8 1 * *", Enabled: true},
		userRepo: mockUserRepo,
		sender:   mockSender,
	}

	recipients := []*domain.User{
		establishment(1, "Bayview Inn", "bayview@example.com"),
		establishment(2, "Harbor Lodge", "harbor@example.com"),
	}

	mockUserRepo.EXPECT().ListActiveEstablishments().Return(recipients, nil).AnyTimes()
	mockSender.EXPECT().Send(gomock.Any()).Return(nil).AnyTimes()

	// Status reads must stay consistent while a run is writing its
	// timestamps; the race detector backs this test up.
	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			service.sendReminders()
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			status := service.GetStatus()
			assert.Contains(t, status, "run_running")
			assert.Contains(t, status, "last_started_at")
			assert.Contains(t, status, "last_finished_at")
		}
	}()

	wg.Wait()

	assert.False(t, service.GetStatus()["run_running"].(bool))
}

func TestDeadlineReminderService_statusDuringRun(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSubmissionRepo := mocks.NewMockSubmissionRepository(ctrl)
	mockSender := emailmocks.NewMockSender(ctrl)

	service := &DeadlineReminderService{
		config: DeadlineReminderConfig{
			CronSchedule: "0 8 * * *",
			Enabled:      true,
			DeadlineDay:  10,
			DaysBefore:   3,
		},
		submissionRepo: mockSubmissionRepo,
		sender:         mockSender,
		now:            func() time.Time { return time.Date(2025, 4, 8, 8, 0, 0, 0, time.UTC) },
	}

	pending := []*domain.User{
		establishment(1, "Bayview Inn", "bayview@example.com"),
	}

	mockSubmissionRepo.EXPECT().PendingEstablishments(2025, 3).Return(pending, nil).AnyTimes()
	mockSender.EXPECT().Send(gomock.Any()).Return(nil).AnyTimes()

	var wg sync.WaitGroup
	wg.Add(2)

	go func() {
		defer wg.Done()
		for i := 0; i < 10; i++ {
			service.sendReminders()
		}
	}()

	go func() {
		defer wg.Done()
		for i := 0; i < 100; i++ {
			status := service.GetStatus()
			assert.Contains(t, status, "last_started_at")
			assert.Contains(t, status, "last_finished_at")
		}
	}()

	wg.Wait()

	assert.False(t, service.GetStatus()["run_running"].(bool))
}

func TestDeadlineReminderService_inReminderWindow(t *testing.T) {
	service := &DeadlineReminderService{
		config: DeadlineReminderConfig{DeadlineDay: 10, DaysBefore: 3},
	}

	tests := []struct {
		day  int
		want bool
	}{
		{day: 6, want: false},
		{day: 7, want: true},
		{day: 8, want: true},
		{day: 10, want: true},
		{day: 11, want: false},
	}

	for _, tt := range tests {
		today := time.Date(2025, 4, tt.day, 8, 0, 0, 0, time.UTC)
		assert.Equal(t, tt.want, service.inReminderWindow(today), "day %d", tt.day)
	}
}
