package events

import (
	"time"

	"github.com/google/uuid"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Type тип события жизненного цикла бронирования
type Type string

const (
	TypeBookingCreated       Type = "booking.created"
	TypeBookingCancelled     Type = "booking.cancelled"
	TypeBookingRescheduled   Type = "booking.rescheduled"
	TypeBookingStatusChanged Type = "booking.status_changed"
)

// Event событие для сервиса уведомлений
type Event struct {
	ID         string    `json:"id"`
	Type       Type      `json:"type"`
	BookingID  int64     `json:"bookingId"`
	OwnerID    int64     `json:"ownerId"`
	StaffID    int64     `json:"staffId"`
	CustomerID int64     `json:"customerId"`
	Status     string    `json:"status"`
	StartTime  time.Time `json:"startTime"`
	EndTime    time.Time `json:"endTime"`

	// Заполняется только для booking.rescheduled
	PreviousStartTime *time.Time `json:"previousStartTime,omitempty"`

	// Заполняется для booking.cancelled и booking.status_changed
	PreviousStatus     *string `json:"previousStatus,omitempty"`
	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledBy        *string `json:"cancelledBy,omitempty"`

	OccurredAt time.Time `json:"occurredAt"`
}

// NewBookingEvent создает событие по текущему состоянию бронирования
func NewBookingEvent(eventType Type, b *domain.Booking, occurredAt time.Time) Event {
	event := Event{
		ID:                 uuid.NewString(),
		Type:               eventType,
		BookingID:          b.ID,
		OwnerID:            b.OwnerID,
		StaffID:            b.StaffID,
		CustomerID:         b.CustomerID,
		Status:             string(b.Status),
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		CancellationReason: b.CancellationReason,
		OccurredAt:         occurredAt,
	}
	if b.CancelledBy != nil {
		role := string(*b.CancelledBy)
		event.CancelledBy = &role
	}
	return event
}
