package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модели

// GetMyBookingsRequest запрос на получение бронирований покупателя
type GetMyBookingsRequest struct {
	Actor    domain.Actor
	Status   *string
	Upcoming bool // только будущие активные бронирования, по возрастанию времени
}

// GetOwnerBookingsRequest запрос на получение бронирований владельца
type GetOwnerBookingsRequest struct {
	Actor     domain.Actor
	OwnerID   int64 // обязателен для администратора, для остальных берется из Actor
	Status    *string
	StartDate *time.Time // включительно, UTC
	EndDate   *time.Time // включительно, UTC
}

// GetStaffBookingsRequest запрос на получение бронирований сотрудника
type GetStaffBookingsRequest struct {
	Actor     domain.Actor
	StaffID   int64
	StartDate *time.Time
	EndDate   *time.Time
}

// CancelBookingRequest запрос на отмену бронирования
type CancelBookingRequest struct {
	Actor              domain.Actor
	BookingID          int64
	CancellationReason *string
}

// UpdateStatusRequest запрос на обновление статуса бронирования
type UpdateStatusRequest struct {
	Actor     domain.Actor
	BookingID int64
	Status    string
}

// Response модели

// BookingResponse ответ с данными бронирования
type BookingResponse struct {
	ID              int64     `json:"id"`
	OwnerID         int64     `json:"ownerId"`
	ServiceID       int64     `json:"serviceId"`
	StaffID         int64     `json:"staffId"`
	CustomerID      int64     `json:"customerId"`
	StartTime       time.Time `json:"startTime"`
	EndTime         time.Time `json:"endTime"`
	DurationMinutes int       `json:"durationMinutes"`
	Status          string    `json:"status"`

	PaymentStatus   string          `json:"paymentStatus"`
	DepositRequired bool            `json:"depositRequired"`
	DepositAmount   decimal.Decimal `json:"depositAmount"`
	DepositPaid     bool            `json:"depositPaid"`

	// Снимок данных на момент записи
	ServiceName  string          `json:"serviceName"`
	ServicePrice decimal.Decimal `json:"servicePrice"`
	StaffName    string          `json:"staffName"`

	CustomerName  *string `json:"customerName,omitempty"`
	CustomerPhone *string `json:"customerPhone,omitempty"`
	CustomerEmail *string `json:"customerEmail,omitempty"`
	Notes         *string `json:"notes,omitempty"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledBy        *string `json:"cancelledBy,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// BookingListResponse ответ со списком бронирований
type BookingListResponse struct {
	Bookings []BookingResponse `json:"bookings"`
}

// Методы конвертации

// FromDomainBooking конвертирует domain модель в DTO
func FromDomainBooking(b *domain.Booking) *BookingResponse {
	if b == nil {
		return nil
	}

	resp := &BookingResponse{
		ID:                 b.ID,
		OwnerID:            b.OwnerID,
		ServiceID:          b.ServiceID,
		StaffID:            b.StaffID,
		CustomerID:         b.CustomerID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		DurationMinutes:    b.DurationMinutes,
		Status:             string(b.Status),
		PaymentStatus:      string(b.PaymentStatus),
		DepositRequired:    b.DepositRequired,
		DepositAmount:      b.DepositAmount,
		DepositPaid:        b.DepositPaid,
		ServiceName:        b.ServiceName,
		ServicePrice:       b.ServicePrice,
		StaffName:          b.StaffName,
		CustomerName:       b.CustomerName,
		CustomerPhone:      b.CustomerPhone,
		CustomerEmail:      b.CustomerEmail,
		Notes:              b.Notes,
		CancellationReason: b.CancellationReason,
		CreatedAt:          b.CreatedAt,
		UpdatedAt:          b.UpdatedAt,
	}

	if b.CancelledBy != nil {
		role := string(*b.CancelledBy)
		resp.CancelledBy = &role
	}

	// Конвертируем CancelledAt в строку ISO 8601
	if b.CancelledAt != nil {
		cancelledStr := b.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainBookingList конвертирует список domain моделей в DTO
func FromDomainBookingList(bookings []*domain.Booking) *BookingListResponse {
	resp := &BookingListResponse{
		Bookings: make([]BookingResponse, 0, len(bookings)),
	}

	for _, booking := range bookings {
		if bookingResp := FromDomainBooking(booking); bookingResp != nil {
			resp.Bookings = append(resp.Bookings, *bookingResp)
		}
	}

	return resp
}
