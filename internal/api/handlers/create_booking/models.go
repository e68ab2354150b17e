package create_booking

import (
	"time"

	createBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/create_booking"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	ServiceID     int64     `json:"serviceId" validate:"required,gt=0"`
	StaffID       int64     `json:"staffId" validate:"required,gt=0"`
	StartTime     time.Time `json:"startTime" validate:"required"` // RFC 3339
	CustomerName  *string   `json:"customerName,omitempty" validate:"omitempty,max=200"`
	CustomerPhone *string   `json:"customerPhone,omitempty" validate:"omitempty,max=32"`
	CustomerEmail *string   `json:"customerEmail,omitempty" validate:"omitempty,email"`
	Notes         *string   `json:"notes,omitempty" validate:"omitempty,max=500"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(customerID int64) *createBooking.Request {
	return &createBooking.Request{
		CustomerID:    customerID,
		ServiceID:     r.ServiceID,
		StaffID:       r.StaffID,
		StartTime:     r.StartTime,
		CustomerName:  r.CustomerName,
		CustomerPhone: r.CustomerPhone,
		CustomerEmail: r.CustomerEmail,
		Notes:         r.Notes,
	}
}
