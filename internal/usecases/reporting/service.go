package reporting

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/jdalisay/tourism-data-api/infrastructure/repository"
	"github.com/jdalisay/tourism-data-api/internal/domain"
	"github.com/jdalisay/tourism-data-api/pkg/utils"
)

// Reporter serves the admin dashboard reads. Every method takes the
// authenticated claims and intersects the requested scope with the scope
// assigned to the admin, so a provincial admin can never read outside their
// own province no matter what the client sends.
type Reporter interface {
	MonthlyMetrics(claims *domain.Claims, filters domain.MetricFilters) ([]domain.MonthlyAggregateRow, error)
	MonthlyCheckins(claims *domain.Claims, filters domain.MetricFilters) ([]domain.MonthlyCheckinRow, error)
	GuestDemographics(claims *domain.Claims, filters domain.MetricFilters) ([]domain.DemographicRow, error)
	NationalityCounts(claims *domain.Claims, filters domain.MetricFilters) ([]domain.NationalityCountRow, error)
	Municipalities(claims *domain.Claims, scope domain.ScopeFilter) ([]string, error)
	AnnualReport(claims *domain.Claims, year int, scope domain.ScopeFilter) (*domain.AnnualReport, error)
}

type Service struct {
	metricsRepo repository.MetricsRepository
}

func NewService(metricsRepo repository.MetricsRepository) Reporter {
	return &Service{
		metricsRepo: metricsRepo,
	}
}

// EffectiveScope intersects the client-supplied scope with the claims scope.
// Levels assigned to the admin always win; the client only narrows further
// below the admin's own level. This runs server-side because the client is
// untrusted.
func EffectiveScope(claims *domain.Claims, requested domain.ScopeFilter) domain.ScopeFilter {
	effective := requested

	if claims == nil {
		return effective
	}

	if claims.UserRegion != "" {
		effective.Region = claims.UserRegion
	}
	if claims.UserProvince != "" {
		effective.Province = claims.UserProvince
	}
	if claims.UserMunicipality != "" {
		effective.Municipality = claims.UserMunicipality
	}

	return effective
}

func (s *Service) scoped(claims *domain.Claims, filters domain.MetricFilters) domain.MetricFilters {
	filters.Scope = EffectiveScope(claims, filters.Scope)
	return filters
}

// MonthlyMetrics returns the sparse per-month aggregate rows for the scope
// and window. Months with no submissions produce no row; the submission rate
// is filled in against the active establishment count for the same scope.
func (s *Service) MonthlyMetrics(claims *domain.Claims, filters domain.MetricFilters) ([]domain.MonthlyAggregateRow, error) {
	filters = s.scoped(claims, filters)

	rows, err := s.metricsRepo.MonthlyAggregates(filters)
	if err != nil {
		return nil, fmt.Errorf("loading monthly aggregates: %w", err)
	}

	establishments, err := s.metricsRepo.CountActiveEstablishments(filters.Scope)
	if err != nil {
		// A missing denominator should not fail the whole read; the rate
		// just stays at zero.
		logrus.WithError(err).Warn("could not count active establishments for submission rate")
		establishments = 0
	}

	for i := range rows {
		rows[i].AverageGuestNights = utils.RoundWithTwoDecimalPlace(rows[i].AverageGuestNights)
		rows[i].AverageRoomOccupancyRate = utils.RoundWithTwoDecimalPlace(rows[i].AverageRoomOccupancyRate)
		rows[i].AverageGuestsPerRoom = utils.RoundWithTwoDecimalPlace(rows[i].AverageGuestsPerRoom)

		if establishments > 0 {
			rate := float64(rows[i].TotalSubmissions) / float64(establishments) * 100
			rows[i].SubmissionRate = utils.RoundWithTwoDecimalPlace(rate)
		}
	}

	return rows, nil
}

func (s *Service) MonthlyCheckins(claims *domain.Claims, filters domain.MetricFilters) ([]domain.MonthlyCheckinRow, error) {
	filters = s.scoped(claims, filters)

	rows, err := s.metricsRepo.MonthlyCheckins(filters)
	if err != nil {
		return nil, fmt.Errorf("loading monthly checkins: %w", err)
	}

	return rows, nil
}

func (s *Service) GuestDemographics(claims *domain.Claims, filters domain.MetricFilters) ([]domain.DemographicRow, error) {
	filters = s.scoped(claims, filters)

	rows, err := s.metricsRepo.GuestDemographics(filters)
	if err != nil {
		return nil, fmt.Errorf("loading guest demographics: %w", err)
	}

	return rows, nil
}

// NationalityCounts returns one row per distinct nationality, sorted by
// count descending with input order preserved on ties.
func (s *Service) NationalityCounts(claims *domain.Claims, filters domain.MetricFilters) ([]domain.NationalityCountRow, error) {
	filters = s.scoped(claims, filters)

	rows, err := s.metricsRepo.NationalityCounts(filters)
	if err != nil {
		return nil, fmt.Errorf("loading nationality counts: %w", err)
	}

	return SortNationalityCounts(rows), nil
}

func (s *Service) Municipalities(claims *domain.Claims, scope domain.ScopeFilter) ([]string, error) {
	effective := EffectiveScope(claims, scope)

	municipalities, err := s.metricsRepo.Municipalities(effective)
	if err != nil {
		return nil, fmt.Errorf("loading municipalities: %w", err)
	}

	return municipalities, nil
}

// AnnualReport assembles the dense full-year projection: every series is
// reconciled to exactly 12 ordered entries with zero defaults for missing
// months, ready for direct rendering. Each series degrades independently:
// a failed read leaves that series empty instead of failing the siblings.
func (s *Service) AnnualReport(claims *domain.Claims, year int, scope domain.ScopeFilter) (*domain.AnnualReport, error) {
	filters := domain.MetricFilters{Year: year, Scope: EffectiveScope(claims, scope)}

	report := &domain.AnnualReport{
		Year:  year,
		Scope: filters.Scope,
	}

	metrics, err := s.MonthlyMetrics(claims, filters)
	if err != nil {
		logrus.WithError(err).Error("annual report: monthly metrics failed, rendering zeros")
		metrics = nil
	}
	report.Metrics = DensifyMonthly(metrics)

	checkins, err := s.metricsRepo.MonthlyCheckins(filters)
	if err != nil {
		logrus.WithError(err).Error("annual report: monthly checkins failed, rendering zeros")
		checkins = nil
	}
	report.Checkins = DensifyCheckins(checkins)

	demographics, err := s.metricsRepo.GuestDemographics(filters)
	if err != nil {
		logrus.WithError(err).Error("annual report: demographics failed, rendering zeros")
		demographics = nil
	}
	report.Demographics = DensifyDemographics(demographics)

	nationalities, err := s.metricsRepo.NationalityCounts(filters)
	if err != nil {
		logrus.WithError(err).Error("annual report: nationality counts failed, rendering empty list")
		nationalities = nil
	}
	report.Nationalities = SortNationalityCounts(nationalities)

	return report, nil
}
