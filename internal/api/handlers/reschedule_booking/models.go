package reschedule_booking

import "time"

// RescheduleBookingRequest HTTP request model
type RescheduleBookingRequest struct {
	NewStartTime time.Time `json:"newStartTime" validate:"required"` // RFC 3339
}
