package domain

import (
	"encoding/json"
	"time"
)

// Submission statuses.
const (
	SubmissionStatusSubmitted = "submitted"
	SubmissionStatusReviewed  = "reviewed"
)

// Submission is one establishment's monthly occupancy report, the root
// record aggregates are computed from. Deleting a user cascades down
// through submissions, daily_metrics and guests.
type Submission struct {
	ID           int           `json:"id"`
	ReferenceNo  string        `json:"reference_no"`
	UserID       int           `json:"user_id"`
	Year         int           `json:"year"`
	Month        int           `json:"month"`
	Status       string        `json:"status"`
	DailyMetrics []DailyMetric `json:"daily_metrics,omitempty"`
	CreatedAt    time.Time     `json:"created_at"`
	UpdatedAt    time.Time     `json:"updated_at"`
}

// DailyMetric is one day of occupancy figures inside a submission.
type DailyMetric struct {
	ID              int     `json:"id"`
	SubmissionID    int     `json:"submission_id"`
	Day             int     `json:"day"`
	CheckIns        int     `json:"check_ins"`
	OvernightGuests int     `json:"overnight_guests"`
	RoomsOccupied   int     `json:"rooms_occupied"`
	Guests          []Guest `json:"guests,omitempty"`
}

// Guest is one guest record attached to a daily metric row.
type Guest struct {
	ID            int    `json:"id"`
	DailyMetricID int    `json:"daily_metric_id"`
	Nationality   string `json:"nationality"`
	Gender        string `json:"gender"`
	Age           int    `json:"age"`
	NightsStayed  int    `json:"nights_stayed"`
}

// DraftSubmission is an in-progress report saved per (user, year, month).
// The payload is opaque to the server; the web form round-trips it as-is.
type DraftSubmission struct {
	ID        int             `json:"id"`
	UserID    int             `json:"user_id"`
	Year      int             `json:"year"`
	Month     int             `json:"month"`
	Payload   json.RawMessage `json:"payload"`
	Stays     []DraftStay     `json:"stays,omitempty"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DraftStay is one stay block inside a draft, kept in its own table so the
// form can append stays without rewriting the whole draft payload.
type DraftStay struct {
	ID                int             `json:"id"`
	DraftSubmissionID int             `json:"draft_submission_id"`
	Payload           json.RawMessage `json:"payload"`
}
