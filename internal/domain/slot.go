package domain

import "time"

// Slot represents a candidate appointment interval of exactly one service duration
type Slot struct {
	Start     time.Time
	End       time.Time
	Available bool
}

// EffectiveWindow is the bookable range of a staff member on one date, in the staff's local time
type EffectiveWindow struct {
	Enabled bool
	Start   time.Time
	End     time.Time

	// Blocked ranges inside the window that behave like existing bookings
	Blocked []Interval
}

// Interval returns the window as a half-open interval
func (w EffectiveWindow) Interval() Interval {
	return Interval{Start: w.Start, End: w.End}
}

// Contains returns true if the interval lies within an enabled window and avoids blocked ranges
func (w EffectiveWindow) Contains(interval Interval) bool {
	if !w.Enabled || !w.Interval().Contains(interval) {
		return false
	}
	for _, blocked := range w.Blocked {
		if blocked.Overlaps(interval) {
			return false
		}
	}
	return true
}
