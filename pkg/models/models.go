package models

import "fmt"

// BreakKind is an ordered position in a shift's break sequence.
type BreakKind string

const (
	BreakFirst  BreakKind = "first"
	BreakSecond BreakKind = "second"
	BreakThird  BreakKind = "third"
)

// ParseBreakKind validates a break kind received from a client.
func ParseBreakKind(s string) (BreakKind, error) {
	switch BreakKind(s) {
	case BreakFirst, BreakSecond, BreakThird:
		return BreakKind(s), nil
	}
	return "", fmt.Errorf("unknown break kind %q", s)
}

// BreakStatus is the lifecycle state of a booked break.
type BreakStatus string

const (
	StatusScheduled  BreakStatus = "scheduled"
	StatusInProgress BreakStatus = "in_progress"
	StatusCompleted  BreakStatus = "completed"
	StatusCancelled  BreakStatus = "cancelled"
)

// OccupyingStatuses are the statuses that count against a department's
// concurrent break ceiling.
var OccupyingStatuses = []BreakStatus{StatusScheduled, StatusInProgress}

// Department holds the capacity configuration the engine reads.
type Department struct {
	ID                  uint   `json:"id"`
	Name                string `json:"name"`
	NameAr              string `json:"name_ar,omitempty"`
	MaxConcurrentBreaks int    `json:"max_concurrent_breaks"`
	Is24Hours           bool   `json:"is_24_hours"`
}

// Shift is an employee's scheduled work window on a calendar date.
// Times are "HH:MM:SS" strings, the date is "YYYY-MM-DD".
type Shift struct {
	ID           uint   `json:"id"`
	UserID       string `json:"user_id"`
	DepartmentID uint   `json:"department_id"`
	Date         string `json:"date"`
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
}

// Break is a booked break within a shift. Start/end are carried both as
// wall-clock strings and as minute offsets so overlap queries stay exact.
type Break struct {
	ID        uint        `json:"id"`
	ShiftID   uint        `json:"shift_id"`
	UserID    string      `json:"user_id"`
	Kind      BreakKind   `json:"break_kind"`
	StartTime string      `json:"start_time"`
	EndTime   string      `json:"end_time"`
	StartMin  int         `json:"-"`
	EndMin    int         `json:"-"`
	Status    BreakStatus `json:"status"`
}

// BookingRequest is a request to book one break on a shift. EndTime may be
// empty, in which case the kind's default duration determines it.
type BookingRequest struct {
	ShiftID   uint      `json:"shift_id"`
	UserID    string    `json:"-"`
	Kind      BreakKind `json:"break_kind"`
	StartTime string    `json:"start_time"`
	EndTime   string    `json:"end_time,omitempty"`
}

// AvailabilityReport answers a capacity preview query.
type AvailabilityReport struct {
	Available bool `json:"available"`
	Current   int  `json:"current"`
	Max       int  `json:"max"`
	Remaining int  `json:"remaining"`
}

// BreakWindow is the legal start range for a requested break kind.
type BreakWindow struct {
	Kind            BreakKind `json:"break_kind"`
	EarliestStart   string    `json:"earliest_start"`
	LatestStart     string    `json:"latest_start"`
	DurationMinutes int       `json:"duration_minutes"`
}
