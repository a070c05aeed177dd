package reporting

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/jdalisay/tourism-data-api/infrastructure/repository/mocks"
	"github.com/jdalisay/tourism-data-api/internal/domain"
)

func provincialClaims() *domain.Claims {
	return &domain.Claims{
		UserID:       7,
		UserRoleID:   domain.RoleProvincialAdmin,
		UserRegion:   "Region IV-A",
		UserProvince: "Laguna",
	}
}

func TestEffectiveScope(t *testing.T) {
	tests := []struct {
		name      string
		claims    *domain.Claims
		requested domain.ScopeFilter
		expected  domain.ScopeFilter
	}{
		{
			name:      "nil claims leaves requested scope alone",
			claims:    nil,
			requested: domain.ScopeFilter{Region: "Region VII"},
			expected:  domain.ScopeFilter{Region: "Region VII"},
		},
		{
			name:      "provincial admin cannot widen to another province",
			claims:    provincialClaims(),
			requested: domain.ScopeFilter{Region: "Region VII", Province: "Cebu"},
			expected:  domain.ScopeFilter{Region: "Region IV-A", Province: "Laguna"},
		},
		{
			name:      "provincial admin can still narrow below their level",
			claims:    provincialClaims(),
			requested: domain.ScopeFilter{Municipality: "Calamba"},
			expected:  domain.ScopeFilter{Region: "Region IV-A", Province: "Laguna", Municipality: "Calamba"},
		},
		{
			name:      "ALL sentinel from the client is overridden by claims",
			claims:    provincialClaims(),
			requested: domain.ScopeFilter{Region: domain.ScopeAll, Province: domain.ScopeAll},
			expected:  domain.ScopeFilter{Region: "Region IV-A", Province: "Laguna"},
		},
		{
			name:      "regional admin scope forces only the region",
			claims:    &domain.Claims{UserRoleID: domain.RoleRegionalAdmin, UserRegion: "Region IV-A"},
			requested: domain.ScopeFilter{Region: "Region VII", Province: "Cebu"},
			expected:  domain.ScopeFilter{Region: "Region IV-A", Province: "Cebu"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, EffectiveScope(tt.claims, tt.requested))
		})
	}
}

func TestServiceMonthlyMetricsClampsScopeAndFillsRate(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockMetricsRepository(ctrl)
	service := NewService(mockRepo)

	claims := provincialClaims()
	clampedScope := domain.ScopeFilter{Region: "Region IV-A", Province: "Laguna"}

	// The repository must only ever see the clamped scope.
	mockRepo.EXPECT().
		MonthlyAggregates(domain.MetricFilters{Year: 2025, Scope: clampedScope}).
		Return([]domain.MonthlyAggregateRow{
			{Month: 3, TotalCheckIns: 50, TotalSubmissions: 2, AverageGuestNights: 1.23456},
		}, nil)

	mockRepo.EXPECT().
		CountActiveEstablishments(clampedScope).
		Return(3, nil)

	rows, err := service.MonthlyMetrics(claims, domain.MetricFilters{
		Year:  2025,
		Scope: domain.ScopeFilter{Region: "Region VII", Province: "Cebu"},
	})

	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 66.67, rows[0].SubmissionRate)
	assert.Equal(t, 1.23, rows[0].AverageGuestNights)
}

func TestServiceMonthlyMetricsRateDenominatorFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockMetricsRepository(ctrl)
	service := NewService(mockRepo)

	mockRepo.EXPECT().
		MonthlyAggregates(gomock.Any()).
		Return([]domain.MonthlyAggregateRow{{Month: 1, TotalSubmissions: 5}}, nil)

	mockRepo.EXPECT().
		CountActiveEstablishments(gomock.Any()).
		Return(0, errors.New("db down"))

	rows, err := service.MonthlyMetrics(nil, domain.MetricFilters{Year: 2025})

	// The rate degrades to zero, the read itself does not fail.
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Zero(t, rows[0].SubmissionRate)
}

func TestServiceNationalityCountsSorted(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockMetricsRepository(ctrl)
	service := NewService(mockRepo)

	mockRepo.EXPECT().
		NationalityCounts(gomock.Any()).
		Return([]domain.NationalityCountRow{
			{Nationality: "US", Count: int64(5)},
			{Nationality: "PH", Count: int64(10)},
		}, nil)

	rows, err := service.NationalityCounts(nil, domain.MetricFilters{Year: 2025})

	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "PH", rows[0].Nationality)
	assert.Equal(t, "US", rows[1].Nationality)
}

func TestServiceAnnualReportDegradesPerSeries(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockMetricsRepository(ctrl)
	service := NewService(mockRepo)

	year := 2025

	// Metrics read fails outright; every sibling series still renders.
	mockRepo.EXPECT().
		MonthlyAggregates(gomock.Any()).
		Return(nil, errors.New("aggregate query failed"))

	mockRepo.EXPECT().
		MonthlyCheckins(gomock.Any()).
		Return([]domain.MonthlyCheckinRow{{Month: 6, TotalCheckIns: 120}}, nil)

	mockRepo.EXPECT().
		GuestDemographics(gomock.Any()).
		Return([]domain.DemographicRow{}, nil)

	mockRepo.EXPECT().
		NationalityCounts(gomock.Any()).
		Return([]domain.NationalityCountRow{{Nationality: "PH", Count: int64(4)}}, nil)

	report, err := service.AnnualReport(nil, year, domain.ScopeFilter{})

	require.NoError(t, err)
	require.NotNil(t, report)

	// Failed series renders as twelve zero months, not an error.
	require.Len(t, report.Metrics, 12)
	for i, row := range report.Metrics {
		assert.Equal(t, domain.MonthlyAggregateRow{Month: i + 1}, row)
	}

	require.Len(t, report.Checkins, 12)
	assert.Equal(t, int64(120), report.Checkins[5].TotalCheckIns)

	require.Len(t, report.Demographics, 12)
	require.Len(t, report.Nationalities, 1)
}

func TestServiceMunicipalitiesUsesClaimsScope(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	mockRepo := mocks.NewMockMetricsRepository(ctrl)
	service := NewService(mockRepo)

	mockRepo.EXPECT().
		Municipalities(domain.ScopeFilter{Region: "Region IV-A", Province: "Laguna"}).
		Return([]string{"Calamba", "Los Banos"}, nil)

	municipalities, err := service.Municipalities(provincialClaims(), domain.ScopeFilter{Province: "Cebu"})

	require.NoError(t, err)
	assert.Equal(t, []string{"Calamba", "Los Banos"}, municipalities)
}
