package domain

import "time"

// Interval is a half-open time range [Start, End)
type Interval struct {
	Start time.Time
	End   time.Time
}

// Overlaps reports whether two half-open intervals intersect.
// Intervals that only touch at a boundary do not overlap
func (i Interval) Overlaps(other Interval) bool {
	return i.Start.Before(other.End) && other.Start.Before(i.End)
}

// Contains reports whether other lies fully inside i
func (i Interval) Contains(other Interval) bool {
	return !other.Start.Before(i.Start) && !other.End.After(i.End)
}

// Duration returns the length of the interval
func (i Interval) Duration() time.Duration {
	return i.End.Sub(i.Start)
}

// DateRange converts inclusive calendar dates into start-time bounds [from, to).
// Dates are taken in UTC; a nil date leaves the bound open
func DateRange(startDate, endDate *time.Time) (from, to *time.Time, err error) {
	if startDate != nil {
		d := truncateDay(*startDate)
		from = &d
	}
	if endDate != nil {
		d := truncateDay(*endDate).AddDate(0, 0, 1)
		to = &d
	}
	if from != nil && to != nil && !from.Before(*to) {
		return nil, nil, ErrInvalidDateRange
	}
	return from, to, nil
}

func truncateDay(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
