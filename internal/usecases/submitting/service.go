package submitting

import (
	"errors"
	"fmt"
	"time"

	"github.com/jdalisay/tourism-data-api/infrastructure/repository"
	"github.com/jdalisay/tourism-data-api/internal/domain"
	"github.com/jdalisay/tourism-data-api/pkg/utils"
)

var (
	ErrInvalidPeriod       = errors.New("year and month must identify a valid reporting period")
	ErrDuplicateSubmission = errors.New("a submission already exists for this period")
	ErrNotFound            = errors.New("submission not found")
	ErrNotOwner            = errors.New("submission belongs to another establishment")
)

// Submitter is the establishment-facing intake: filing monthly reports and
// round-tripping drafts.
type Submitter interface {
	CreateSubmission(userID int, submission *domain.Submission) (*domain.Submission, error)
	GetSubmission(userID, submissionID int) (*domain.Submission, error)
	ListSubmissions(userID int) ([]*domain.Submission, error)
	SaveDraft(userID int, draft *domain.DraftSubmission) error
	GetDraft(userID, year, month int) (*domain.DraftSubmission, error)
	DeleteDraft(userID, year, month int) error
}

type Service struct {
	submissionRepo repository.SubmissionRepository
	draftRepo      repository.DraftRepository
}

func NewService(submissionRepo repository.SubmissionRepository, draftRepo repository.DraftRepository) Submitter {
	return &Service{
		submissionRepo: submissionRepo,
		draftRepo:      draftRepo,
	}
}

// CreateSubmission files the report for (year, month), rejecting duplicates
// for the same period. The matching draft, if any, is discarded afterwards;
// a failure there is not the filer's problem, the report is already in.
func (s *Service) CreateSubmission(userID int, submission *domain.Submission) (*domain.Submission, error) {
	if err := validatePeriod(submission.Year, submission.Month); err != nil {
		return nil, err
	}

	for _, dm := range submission.DailyMetrics {
		if dm.Day < 1 || dm.Day > utils.DaysInMonth(submission.Year, submission.Month) {
			return nil, fmt.Errorf("day %d is outside %d-%02d: %w", dm.Day, submission.Year, submission.Month, ErrInvalidPeriod)
		}
	}

	existing, err := s.submissionRepo.GetByUserAndPeriod(userID, submission.Year, submission.Month)
	if err != nil {
		return nil, fmt.Errorf("checking for existing submission: %w", err)
	}
	if existing != nil {
		return nil, ErrDuplicateSubmission
	}

	referenceNo, err := utils.GenerateReferenceNo()
	if err != nil {
		return nil, fmt.Errorf("generating reference number: %w", err)
	}

	submission.UserID = userID
	submission.ReferenceNo = referenceNo
	submission.Status = domain.SubmissionStatusSubmitted

	created, err := s.submissionRepo.CreateSubmission(submission)
	if err != nil {
		return nil, err
	}

	_ = s.draftRepo.DeleteDraft(userID, submission.Year, submission.Month)

	return created, nil
}

func (s *Service) GetSubmission(userID, submissionID int) (*domain.Submission, error) {
	submission, err := s.submissionRepo.GetByID(submissionID)
	if err != nil {
		return nil, err
	}
	if submission == nil {
		return nil, ErrNotFound
	}
	if submission.UserID != userID {
		return nil, ErrNotOwner
	}

	return submission, nil
}

func (s *Service) ListSubmissions(userID int) ([]*domain.Submission, error) {
	return s.submissionRepo.ListByUser(userID)
}

func (s *Service) SaveDraft(userID int, draft *domain.DraftSubmission) error {
	if err := validatePeriod(draft.Year, draft.Month); err != nil {
		return err
	}

	draft.UserID = userID
	return s.draftRepo.SaveDraft(draft)
}

func (s *Service) GetDraft(userID, year, month int) (*domain.DraftSubmission, error) {
	if err := validatePeriod(year, month); err != nil {
		return nil, err
	}

	return s.draftRepo.GetDraft(userID, year, month)
}

func (s *Service) DeleteDraft(userID, year, month int) error {
	if err := validatePeriod(year, month); err != nil {
		return err
	}

	return s.draftRepo.DeleteDraft(userID, year, month)
}

func validatePeriod(year, month int) error {
	if year < 2000 || year > time.Now().Year()+1 {
		return ErrInvalidPeriod
	}
	if month < 1 || month > 12 {
		return ErrInvalidPeriod
	}
	return nil
}
