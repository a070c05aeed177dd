package reporting

import (
	"sort"

	"github.com/jdalisay/tourism-data-api/internal/domain"
)

// densify fills a sparse month-keyed series into a complete ordered sequence
// of exactly 12 entries, one per calendar month. Rows may arrive in any
// order; months absent from the input get zero(m). Duplicate months: last
// one wins. Every monthly series the dashboards render goes through here.
func densify[T any](rows []T, monthOf func(T) int, zero func(month int) T) []T {
	byMonth := make(map[int]T, len(rows))
	for _, row := range rows {
		m := monthOf(row)
		if m < 1 || m > 12 {
			continue
		}
		byMonth[m] = row
	}

	dense := make([]T, 0, 12)
	for m := 1; m <= 12; m++ {
		if row, ok := byMonth[m]; ok {
			dense = append(dense, row)
		} else {
			dense = append(dense, zero(m))
		}
	}

	return dense
}

// DensifyMonthly returns a dense 12-entry aggregate series for rendering a
// 12-row table or 12-point time series. Missing months are synthesized with
// every numeric field zero. A nil or empty input yields 12 zero records,
// never an error.
func DensifyMonthly(rows []domain.MonthlyAggregateRow) []domain.MonthlyAggregateRow {
	return densify(rows,
		func(r domain.MonthlyAggregateRow) int { return r.Month },
		func(m int) domain.MonthlyAggregateRow { return domain.MonthlyAggregateRow{Month: m} },
	)
}

// DensifyCheckins is DensifyMonthly for the check-in series.
func DensifyCheckins(rows []domain.MonthlyCheckinRow) []domain.MonthlyCheckinRow {
	return densify(rows,
		func(r domain.MonthlyCheckinRow) int { return r.Month },
		func(m int) domain.MonthlyCheckinRow { return domain.MonthlyCheckinRow{Month: m} },
	)
}

// DensifyDemographics is DensifyMonthly for the demographic series.
func DensifyDemographics(rows []domain.DemographicRow) []domain.DemographicRow {
	return densify(rows,
		func(r domain.DemographicRow) int { return r.Month },
		func(m int) domain.DemographicRow { return domain.DemographicRow{Month: m} },
	)
}

// SortNationalityCounts orders rows by count descending. The sort is stable:
// ties keep their input order. Counts are coerced to numbers first, with 0
// as the fallback for non-numeric or missing values, so malformed rows sink
// to the bottom instead of failing the report.
func SortNationalityCounts(rows []domain.NationalityCountRow) []domain.NationalityCountRow {
	sorted := make([]domain.NationalityCountRow, len(rows))
	copy(sorted, rows)

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].CountValue() > sorted[j].CountValue()
	})

	return sorted
}
