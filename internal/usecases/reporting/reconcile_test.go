package reporting

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jdalisay/tourism-data-api/internal/domain"
)

func TestDensifyMonthly(t *testing.T) {
	tests := []struct {
		name     string
		input    []domain.MonthlyAggregateRow
		validate func(t *testing.T, dense []domain.MonthlyAggregateRow)
	}{
		{
			name:  "nil input yields twelve zero records",
			input: nil,
			validate: func(t *testing.T, dense []domain.MonthlyAggregateRow) {
				require.Len(t, dense, 12)
				for i, row := range dense {
					assert.Equal(t, i+1, row.Month)
					assert.Equal(t, domain.MonthlyAggregateRow{Month: i + 1}, row)
				}
			},
		},
		{
			name:  "empty input yields twelve zero records",
			input: []domain.MonthlyAggregateRow{},
			validate: func(t *testing.T, dense []domain.MonthlyAggregateRow) {
				require.Len(t, dense, 12)
				for i, row := range dense {
					assert.Equal(t, domain.MonthlyAggregateRow{Month: i + 1}, row)
				}
			},
		},
		{
			name: "single sparse month keeps its fields, all others zeroed",
			input: []domain.MonthlyAggregateRow{
				{Month: 3, TotalCheckIns: 50},
			},
			validate: func(t *testing.T, dense []domain.MonthlyAggregateRow) {
				require.Len(t, dense, 12)
				assert.Equal(t, 3, dense[2].Month)
				assert.Equal(t, int64(50), dense[2].TotalCheckIns)
				for i, row := range dense {
					if i == 2 {
						continue
					}
					assert.Equal(t, domain.MonthlyAggregateRow{Month: i + 1}, row, "month %d should be fully zeroed", i+1)
				}
			},
		},
		{
			name: "unsorted input comes out ordered by month with fields intact",
			input: []domain.MonthlyAggregateRow{
				{Month: 11, TotalCheckIns: 7, AverageGuestNights: 1.5},
				{Month: 2, TotalCheckIns: 3, TotalRooms: 40},
				{Month: 6, TotalOvernight: 12, SubmissionRate: 66.67},
			},
			validate: func(t *testing.T, dense []domain.MonthlyAggregateRow) {
				require.Len(t, dense, 12)
				for i, row := range dense {
					assert.Equal(t, i+1, row.Month)
				}
				assert.Equal(t, int64(3), dense[1].TotalCheckIns)
				assert.Equal(t, int64(40), dense[1].TotalRooms)
				assert.Equal(t, int64(12), dense[5].TotalOvernight)
				assert.Equal(t, 66.67, dense[5].SubmissionRate)
				assert.Equal(t, 1.5, dense[10].AverageGuestNights)
			},
		},
		{
			name: "duplicate month: last one wins",
			input: []domain.MonthlyAggregateRow{
				{Month: 4, TotalCheckIns: 1},
				{Month: 4, TotalCheckIns: 9},
			},
			validate: func(t *testing.T, dense []domain.MonthlyAggregateRow) {
				require.Len(t, dense, 12)
				assert.Equal(t, int64(9), dense[3].TotalCheckIns)
			},
		},
		{
			name: "out of range months are dropped",
			input: []domain.MonthlyAggregateRow{
				{Month: 0, TotalCheckIns: 5},
				{Month: 13, TotalCheckIns: 5},
				{Month: 1, TotalCheckIns: 2},
			},
			validate: func(t *testing.T, dense []domain.MonthlyAggregateRow) {
				require.Len(t, dense, 12)
				assert.Equal(t, int64(2), dense[0].TotalCheckIns)
				for i := 1; i < 12; i++ {
					assert.Zero(t, dense[i].TotalCheckIns)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.validate(t, DensifyMonthly(tt.input))
		})
	}
}

func TestDensifyMonthlyIdempotent(t *testing.T) {
	sparse := []domain.MonthlyAggregateRow{
		{Month: 1, TotalCheckIns: 10},
		{Month: 7, TotalCheckIns: 20, AverageRoomOccupancyRate: 55.5},
	}

	dense := DensifyMonthly(sparse)
	again := DensifyMonthly(dense)

	assert.Equal(t, dense, again)
}

func TestDensifyCheckinsAndDemographics(t *testing.T) {
	checkins := DensifyCheckins([]domain.MonthlyCheckinRow{{Month: 5, TotalCheckIns: 99}})
	require.Len(t, checkins, 12)
	assert.Equal(t, int64(99), checkins[4].TotalCheckIns)
	assert.Equal(t, domain.MonthlyCheckinRow{Month: 12}, checkins[11])

	demographics := DensifyDemographics([]domain.DemographicRow{{Month: 9, TotalFemale: 4}})
	require.Len(t, demographics, 12)
	assert.Equal(t, int64(4), demographics[8].TotalFemale)
	assert.Equal(t, domain.DemographicRow{Month: 1}, demographics[0])
}

func TestSortNationalityCounts(t *testing.T) {
	tests := []struct {
		name     string
		input    []domain.NationalityCountRow
		expected []string
	}{
		{
			name: "mixed numeric, string and missing counts",
			input: []domain.NationalityCountRow{
				{Nationality: "US", Count: "5"},
				{Nationality: "PH", Count: 10},
				{Nationality: "JP"},
			},
			expected: []string{"PH", "US", "JP"},
		},
		{
			name: "ties keep input order",
			input: []domain.NationalityCountRow{
				{Nationality: "KR", Count: 3},
				{Nationality: "CN", Count: 3},
				{Nationality: "AU", Count: 8},
				{Nationality: "TW", Count: 3},
			},
			expected: []string{"AU", "KR", "CN", "TW"},
		},
		{
			name: "non-numeric counts coerce to zero without error",
			input: []domain.NationalityCountRow{
				{Nationality: "DE", Count: "not-a-number"},
				{Nationality: "FR", Count: 1},
				{Nationality: "IT", Count: nil},
			},
			expected: []string{"FR", "DE", "IT"},
		},
		{
			name:     "empty input stays empty",
			input:    []domain.NationalityCountRow{},
			expected: []string{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sorted := SortNationalityCounts(tt.input)

			require.Len(t, sorted, len(tt.expected))
			for i, nationality := range tt.expected {
				assert.Equal(t, nationality, sorted[i].Nationality)
			}
		})
	}
}

func TestSortNationalityCountsDoesNotMutateInput(t *testing.T) {
	input := []domain.NationalityCountRow{
		{Nationality: "US", Count: 1},
		{Nationality: "PH", Count: 10},
	}

	_ = SortNationalityCounts(input)

	assert.Equal(t, "US", input[0].Nationality)
	assert.Equal(t, "PH", input[1].Nationality)
}

func TestNationalityCountValue(t *testing.T) {
	assert.Equal(t, 10.0, domain.NationalityCountRow{Count: 10}.CountValue())
	assert.Equal(t, 10.0, domain.NationalityCountRow{Count: int64(10)}.CountValue())
	assert.Equal(t, 5.0, domain.NationalityCountRow{Count: "5"}.CountValue())
	assert.Equal(t, 2.5, domain.NationalityCountRow{Count: 2.5}.CountValue())
	assert.Equal(t, 0.0, domain.NationalityCountRow{Count: "abc"}.CountValue())
	assert.Equal(t, 0.0, domain.NationalityCountRow{}.CountValue())
	assert.Equal(t, 0.0, domain.NationalityCountRow{Count: []string{"x"}}.CountValue())
}
