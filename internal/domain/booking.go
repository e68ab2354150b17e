package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// BookingStatus represents the status of a booking
type BookingStatus string

const (
	StatusPending    BookingStatus = "pending"
	StatusConfirmed  BookingStatus = "confirmed"
	StatusInProgress BookingStatus = "in_progress"
	StatusCompleted  BookingStatus = "completed"
	StatusCancelled  BookingStatus = "cancelled"
	StatusNoShow     BookingStatus = "no_show"
)

// PaymentStatus represents the payment state of a booking
type PaymentStatus string

const (
	PaymentUnpaid      PaymentStatus = "unpaid"
	PaymentDepositPaid PaymentStatus = "deposit_paid"
	PaymentPaid        PaymentStatus = "paid"
	PaymentRefunded    PaymentStatus = "refunded"
)

// ParseBookingStatus validates a raw status value
func ParseBookingStatus(raw string) (BookingStatus, error) {
	s := BookingStatus(raw)
	for _, known := range AllStatuses {
		if s == known {
			return s, nil
		}
	}
	return "", ErrUnknownStatus
}

// Booking represents an appointment of a customer with a staff member
type Booking struct {
	ID         int64
	OwnerID    int64
	ServiceID  int64
	StaffID    int64
	CustomerID int64

	StartTime       time.Time
	EndTime         time.Time
	DurationMinutes int
	Status          BookingStatus

	PaymentStatus   PaymentStatus
	DepositRequired bool
	DepositAmount   decimal.Decimal
	DepositPaid     bool

	// Snapshot of the service and staff at booking time
	ServiceName  string
	ServicePrice decimal.Decimal
	StaffName    string

	CustomerName  *string
	CustomerPhone *string
	CustomerEmail *string
	Notes         *string

	CancellationReason *string
	CancelledBy        *Role
	CancelledAt        *time.Time

	ReminderSent bool

	// Version is incremented on every mutation and guards concurrent updates
	Version int

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsActive returns true if the booking occupies the staff member's time
func (b *Booking) IsActive() bool {
	return IsActiveStatus(b.Status)
}

// Interval returns the half-open time range [StartTime, EndTime) of the booking
func (b *Booking) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

// IsActiveStatus reports whether bookings in the status block the staff member's time
func IsActiveStatus(s BookingStatus) bool {
	for _, active := range ActiveStatuses {
		if s == active {
			return true
		}
	}
	return false
}

// IsTerminalStatus reports whether the status is final
func IsTerminalStatus(s BookingStatus) bool {
	for _, terminal := range TerminalStatuses {
		if s == terminal {
			return true
		}
	}
	return false
}

// BookingFilter selects bookings. Nil fields are not applied
type BookingFilter struct {
	OwnerID    *int64
	StaffID    *int64
	CustomerID *int64
	Statuses   []BookingStatus

	// StartFrom and StartTo bound the booking start time as [StartFrom, StartTo)
	StartFrom *time.Time
	StartTo   *time.Time

	// Overlapping selects bookings intersecting the interval
	Overlapping *Interval
	ExcludeID   *int64

	OrderAsc bool
}
