package domain

import "time"

// transitions is the booking state machine keyed by (current, requested)
var transitions = map[BookingStatus]map[BookingStatus]bool{
	StatusPending: {
		StatusConfirmed: true,
		StatusCancelled: true,
		StatusNoShow:    true,
	},
	StatusConfirmed: {
		StatusInProgress: true,
		StatusCancelled:  true,
		StatusNoShow:     true,
	},
	StatusInProgress: {
		StatusCompleted: true,
		StatusNoShow:    true,
	},
}

// CanTransition returns true if the state machine has the edge from -> to
func CanTransition(from, to BookingStatus) bool {
	return transitions[from][to]
}

// CanMarkNoShow returns true if the booking start time has been reached
func CanMarkNoShow(b *Booking, now time.Time) bool {
	return !now.Before(b.StartTime)
}

// CanCancel returns true if the booking is pending or confirmed
// and starts more than leadTime after now
func CanCancel(b *Booking, now time.Time, leadTime time.Duration) bool {
	return (b.Status == StatusPending || b.Status == StatusConfirmed) &&
		b.StartTime.Sub(now) > leadTime
}

// CanReschedule follows the same lead-time policy as cancellation
func CanReschedule(b *Booking, now time.Time, leadTime time.Duration) bool {
	return CanCancel(b, now, leadTime)
}
