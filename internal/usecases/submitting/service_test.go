package submitting

import (
	"testing"

	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"go.uber.org/mock/gomock"

	"github.com/jdalisay/tourism-data-api/infrastructure/repository/mocks"
	"github.com/jdalisay/tourism-data-api/internal/domain"
)

func TestService_CreateSubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSubmissionRepo := mocks.NewMockSubmissionRepository(ctrl)
	mockDraftRepo := mocks.NewMockDraftRepository(ctrl)

	service := NewService(mockSubmissionRepo, mockDraftRepo)

	t.Run("files a report and discards the draft", func(t *testing.T) {
		submission := &domain.Submission{
			Year:  2025,
			Month: 3,
			DailyMetrics: []domain.DailyMetric{
				{Day: 1, CheckIns: 12, OvernightGuests: 20, RoomsOccupied: 8},
				{Day: 31, CheckIns: 5, OvernightGuests: 9, RoomsOccupied: 3},
			},
		}

		mockSubmissionRepo.EXPECT().GetByUserAndPeriod(7, 2025, 3).Return(nil, nil)
		mockSubmissionRepo.EXPECT().CreateSubmission(gomock.Any()).DoAndReturn(
			func(s *domain.Submission) (*domain.Submission, error) {
				assert.Equal(t, 7, s.UserID)
				assert.Equal(t, domain.SubmissionStatusSubmitted, s.Status)
				assert.Len(t, s.ReferenceNo, 8)
				s.ID = 42
				return s, nil
			})
		mockDraftRepo.EXPECT().DeleteDraft(7, 2025, 3).Return(nil)

		created, err := service.CreateSubmission(7, submission)

		assert.NoError(t, err)
		assert.Equal(t, 42, created.ID)
	})

	t.Run("rejects a second report for the same period", func(t *testing.T) {
		submission := &domain.Submission{Year: 2025, Month: 3}

		mockSubmissionRepo.EXPECT().GetByUserAndPeriod(7, 2025, 3).
			Return(&domain.Submission{ID: 42, UserID: 7, Year: 2025, Month: 3}, nil)

		_, err := service.CreateSubmission(7, submission)

		assert.ErrorIs(t, err, ErrDuplicateSubmission)
	})

	t.Run("rejects an out of range month", func(t *testing.T) {
		_, err := service.CreateSubmission(7, &domain.Submission{Year: 2025, Month: 13})

		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("rejects a day outside the month", func(t *testing.T) {
		submission := &domain.Submission{
			Year:  2025,
			Month: 2,
			DailyMetrics: []domain.DailyMetric{
				{Day: 30, CheckIns: 1},
			},
		}

		_, err := service.CreateSubmission(7, submission)

		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("report still created when the draft cleanup fails", func(t *testing.T) {
		submission := &domain.Submission{Year: 2025, Month: 4}

		mockSubmissionRepo.EXPECT().GetByUserAndPeriod(7, 2025, 4).Return(nil, nil)
		mockSubmissionRepo.EXPECT().CreateSubmission(gomock.Any()).DoAndReturn(
			func(s *domain.Submission) (*domain.Submission, error) {
				return s, nil
			})
		mockDraftRepo.EXPECT().DeleteDraft(7, 2025, 4).Return(errors.New("draft table locked"))

		created, err := service.CreateSubmission(7, submission)

		assert.NoError(t, err)
		assert.NotNil(t, created)
	})
}

func TestService_GetSubmission(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSubmissionRepo := mocks.NewMockSubmissionRepository(ctrl)
	mockDraftRepo := mocks.NewMockDraftRepository(ctrl)

	service := NewService(mockSubmissionRepo, mockDraftRepo)

	t.Run("returns the owner's submission with its detail rows", func(t *testing.T) {
		detail := &domain.Submission{
			ID:     42,
			UserID: 7,
			DailyMetrics: []domain.DailyMetric{
				{
					ID: 1, Day: 1, CheckIns: 3,
					Guests: []domain.Guest{
						{ID: 10, DailyMetricID: 1, Nationality: "PH", Gender: "F", Age: 34, NightsStayed: 2},
					},
				},
			},
		}

		mockSubmissionRepo.EXPECT().GetByID(42).Return(detail, nil)

		submission, err := service.GetSubmission(7, 42)

		assert.NoError(t, err)
		assert.Equal(t, 42, submission.ID)
		assert.Len(t, submission.DailyMetrics, 1)
		assert.Len(t, submission.DailyMetrics[0].Guests, 1)
	})

	t.Run("refuses another establishment's submission", func(t *testing.T) {
		mockSubmissionRepo.EXPECT().GetByID(42).
			Return(&domain.Submission{ID: 42, UserID: 8}, nil)

		_, err := service.GetSubmission(7, 42)

		assert.ErrorIs(t, err, ErrNotOwner)
	})

	t.Run("missing submission", func(t *testing.T) {
		mockSubmissionRepo.EXPECT().GetByID(99).Return(nil, nil)

		_, err := service.GetSubmission(7, 99)

		assert.ErrorIs(t, err, ErrNotFound)
	})
}

func TestService_Drafts(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockSubmissionRepo := mocks.NewMockSubmissionRepository(ctrl)
	mockDraftRepo := mocks.NewMockDraftRepository(ctrl)

	service := NewService(mockSubmissionRepo, mockDraftRepo)

	t.Run("save stamps the owner", func(t *testing.T) {
		draft := &domain.DraftSubmission{Year: 2025, Month: 5}

		mockDraftRepo.EXPECT().SaveDraft(gomock.Any()).DoAndReturn(
			func(d *domain.DraftSubmission) error {
				assert.Equal(t, 7, d.UserID)
				return nil
			})

		assert.NoError(t, service.SaveDraft(7, draft))
	})

	t.Run("save rejects an invalid period", func(t *testing.T) {
		err := service.SaveDraft(7, &domain.DraftSubmission{Year: 2025, Month: 0})

		assert.ErrorIs(t, err, ErrInvalidPeriod)
	})

	t.Run("load and delete pass through", func(t *testing.T) {
		mockDraftRepo.EXPECT().GetDraft(7, 2025, 5).
			Return(&domain.DraftSubmission{ID: 3, UserID: 7, Year: 2025, Month: 5}, nil)
		mockDraftRepo.EXPECT().DeleteDraft(7, 2025, 5).Return(nil)

		draft, err := service.GetDraft(7, 2025, 5)
		assert.NoError(t, err)
		assert.Equal(t, 3, draft.ID)

		assert.NoError(t, service.DeleteDraft(7, 2025, 5))
	})
}
