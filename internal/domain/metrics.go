package domain

import (
	"encoding/json"
	"strconv"
)

// ScopeAll is the sentinel clients send to mean "no narrowing at this level".
const ScopeAll = "ALL"

// ScopeFilter narrows which establishments' submissions contribute to an
// aggregate. Empty or ScopeAll at a level means no narrowing there.
type ScopeFilter struct {
	Region       string `json:"region,omitempty"`
	Province     string `json:"province,omitempty"`
	Municipality string `json:"municipality,omitempty"`
}

// Narrows reports whether the given level actually constrains the query.
func Narrows(level string) bool {
	return level != "" && level != ScopeAll
}

// MetricFilters is the parameter set accepted by every metrics read.
// Month==nil means the whole year.
type MetricFilters struct {
	Year  int
	Month *int
	Scope ScopeFilter
}

// MonthlyAggregateRow is the per-month aggregate produced by the store for a
// (scope, year, month) where at least one submission exists. Months with no
// submissions are simply absent from query results.
type MonthlyAggregateRow struct {
	Month                    int     `json:"month"`
	TotalCheckIns            int64   `json:"total_check_ins"`
	TotalOvernight           int64   `json:"total_overnight"`
	TotalOccupied            int64   `json:"total_occupied"`
	AverageGuestNights       float64 `json:"average_guest_nights"`
	AverageRoomOccupancyRate float64 `json:"average_room_occupancy_rate"`
	AverageGuestsPerRoom     float64 `json:"average_guests_per_room"`
	TotalSubmissions         int64   `json:"total_submissions"`
	SubmissionRate           float64 `json:"submission_rate"`
	TotalRooms               int64   `json:"total_rooms"`
}

// MonthlyCheckinRow is the lighter per-month series used by the check-ins
// dashboard chart.
type MonthlyCheckinRow struct {
	Month          int   `json:"month"`
	TotalCheckIns  int64 `json:"total_check_ins"`
	TotalOvernight int64 `json:"total_overnight"`
	TotalOccupied  int64 `json:"total_occupied"`
}

// DemographicRow is the per-month guest demographic breakdown.
type DemographicRow struct {
	Month        int   `json:"month"`
	TotalMale    int64 `json:"total_male"`
	TotalFemale  int64 `json:"total_female"`
	TotalMinors  int64 `json:"total_minors"`
	TotalForeign int64 `json:"total_foreign"`
}

// NationalityCountRow is one row per distinct nationality observed in guest
// records. Count is loosely typed: rows that cross a JSON boundary (draft
// payloads, upstream exports) may carry it as a number, a numeric string, or
// not at all.
type NationalityCountRow struct {
	Nationality string `json:"nationality"`
	Count       any    `json:"count,omitempty"`
}

// CountValue coerces Count to a number, falling back to 0 for non-numeric or
// missing values.
func (r NationalityCountRow) CountValue() float64 {
	switch v := r.Count.(type) {
	case nil:
		return 0
	case float64:
		return v
	case float32:
		return float64(v)
	case int:
		return float64(v)
	case int64:
		return float64(v)
	case json.Number:
		f, err := v.Float64()
		if err != nil {
			return 0
		}
		return f
	case string:
		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

// AnnualReport is the dense, render-ready projection for a full year:
// exactly 12 entries per series, months 1..12, zero-filled where no
// submissions exist.
type AnnualReport struct {
	Year          int                   `json:"year"`
	Scope         ScopeFilter           `json:"scope"`
	Checkins      []MonthlyCheckinRow   `json:"checkins"`
	Metrics       []MonthlyAggregateRow `json:"metrics"`
	Demographics  []DemographicRow      `json:"demographics"`
	Nationalities []NationalityCountRow `json:"nationalities"`
}
