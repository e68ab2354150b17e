package domain

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"
	_ "time/tzdata" // staff timezones must resolve without system tzdata

	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// DaySchedule is the working-hours entry of a single weekday
type DaySchedule struct {
	Enabled bool             `json:"enabled"`
	Start   types.TimeString `json:"start,omitempty"`
	End     types.TimeString `json:"end,omitempty"`
}

// Validate checks that an enabled day has a non-empty start < end range
func (d DaySchedule) Validate() error {
	if !d.Enabled {
		return nil
	}
	if err := d.Start.Validate(); err != nil {
		return fmt.Errorf("%w: start: %v", ErrInvalidWorkingHours, err)
	}
	if err := d.End.Validate(); err != nil {
		return fmt.Errorf("%w: end: %v", ErrInvalidWorkingHours, err)
	}
	if !d.Start.IsBefore(d.End) {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidWorkingHours, d.Start, d.End)
	}
	return nil
}

// WorkingHours is the weekly working-hours table of a staff member
type WorkingHours struct {
	Monday    DaySchedule `json:"monday"`
	Tuesday   DaySchedule `json:"tuesday"`
	Wednesday DaySchedule `json:"wednesday"`
	Thursday  DaySchedule `json:"thursday"`
	Friday    DaySchedule `json:"friday"`
	Saturday  DaySchedule `json:"saturday"`
	Sunday    DaySchedule `json:"sunday"`
}

// ForWeekday returns the entry for the given weekday
func (w WorkingHours) ForWeekday(day time.Weekday) DaySchedule {
	switch day {
	case time.Monday:
		return w.Monday
	case time.Tuesday:
		return w.Tuesday
	case time.Wednesday:
		return w.Wednesday
	case time.Thursday:
		return w.Thursday
	case time.Friday:
		return w.Friday
	case time.Saturday:
		return w.Saturday
	case time.Sunday:
		return w.Sunday
	default:
		return DaySchedule{Enabled: false}
	}
}

// Validate checks every weekday entry
func (w WorkingHours) Validate() error {
	for day := time.Sunday; day <= time.Saturday; day++ {
		if err := w.ForWeekday(day).Validate(); err != nil {
			return fmt.Errorf("%s: %w", day, err)
		}
	}
	return nil
}

// Value stores working hours as JSONB
func (w WorkingHours) Value() (driver.Value, error) {
	return json.Marshal(w)
}

// Scan reads working hours from JSONB
func (w *WorkingHours) Scan(src interface{}) error {
	switch v := src.(type) {
	case nil:
		*w = WorkingHours{}
		return nil
	case []byte:
		return json.Unmarshal(v, w)
	case string:
		return json.Unmarshal([]byte(v), w)
	default:
		return fmt.Errorf("%w: unsupported type %T", ErrInvalidWorkingHours, src)
	}
}

// Staff represents an owner's employee who performs services
type Staff struct {
	ID           int64
	OwnerID      int64
	UserID       int64 // identity of the staff member in the upstream identity layer
	Name         string
	WorkingHours WorkingHours
	Timezone     string // IANA name, e.g. "Europe/Moscow"
	IsActive     bool
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Location resolves the staff member's timezone, defaulting to UTC when empty
func (s *Staff) Location() (*time.Location, error) {
	if s.Timezone == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(s.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, s.Timezone)
	}
	return loc, nil
}
