package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// ExceptionType is the kind of deviation from the weekly schedule
type ExceptionType string

const (
	ExceptionDayOff      ExceptionType = "day_off"
	ExceptionCustomHours ExceptionType = "custom_hours"
	ExceptionBlocked     ExceptionType = "blocked"
)

// ParseExceptionType validates a raw exception type
func ParseExceptionType(raw string) (ExceptionType, error) {
	switch t := ExceptionType(raw); t {
	case ExceptionDayOff, ExceptionCustomHours, ExceptionBlocked:
		return t, nil
	default:
		return "", fmt.Errorf("%w: unknown type %q", ErrInvalidException, raw)
	}
}

// Recurrence describes how an exception repeats.
// It is stored as-is; occurrences are expected to be materialized as separate single-date exceptions
type Recurrence struct {
	Frequency string     `json:"frequency"` // daily, weekly, monthly
	Interval  int        `json:"interval"`
	EndDate   *time.Time `json:"endDate,omitempty"`
}

// ScheduleException overrides a staff member's working hours on one date.
// There is at most one exception per (staff, date)
type ScheduleException struct {
	ID          int64
	StaffID     int64
	Date        time.Time // calendar date, time part is ignored
	Type        ExceptionType
	CustomStart *types.TimeString
	CustomEnd   *types.TimeString
	Recurrence  *Recurrence
	Reason      *string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// HasCustomRange returns true if both custom bounds are set
func (e *ScheduleException) HasCustomRange() bool {
	return e.CustomStart != nil && e.CustomEnd != nil && !e.CustomStart.IsZero() && !e.CustomEnd.IsZero()
}

// Validate checks type-specific requirements
func (e *ScheduleException) Validate() error {
	if _, err := ParseExceptionType(string(e.Type)); err != nil {
		return err
	}
	if e.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidException)
	}
	if (e.CustomStart == nil) != (e.CustomEnd == nil) {
		return fmt.Errorf("%w: customStart and customEnd must be set together", ErrInvalidException)
	}
	if e.Type == ExceptionCustomHours && !e.HasCustomRange() {
		return fmt.Errorf("%w: custom_hours requires customStart and customEnd", ErrInvalidException)
	}
	if e.HasCustomRange() {
		day := DaySchedule{Enabled: true, Start: *e.CustomStart, End: *e.CustomEnd}
		if err := day.Validate(); err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidException, err)
		}
	}
	if e.Recurrence != nil && e.Recurrence.Interval < 1 {
		return fmt.Errorf("%w: recurrence interval must be positive", ErrInvalidException)
	}
	return nil
}
