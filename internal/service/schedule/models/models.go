package models

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// ListExceptionsRequest запрос исключений сотрудника за период
type ListExceptionsRequest struct {
	Actor     domain.Actor
	StaffID   int64
	StartDate *time.Time
	EndDate   *time.Time
}

// UpsertExceptionRequest запрос на создание или замену исключения на дату
type UpsertExceptionRequest struct {
	Actor       domain.Actor
	StaffID     int64
	Date        time.Time
	Type        string
	CustomStart *types.TimeString
	CustomEnd   *types.TimeString
	Recurrence  *domain.Recurrence
	Reason      *string
}

// ToDomain конвертирует запрос в domain модель
func (r *UpsertExceptionRequest) ToDomain() *domain.ScheduleException {
	return &domain.ScheduleException{
		StaffID:     r.StaffID,
		Date:        r.Date,
		Type:        domain.ExceptionType(r.Type),
		CustomStart: r.CustomStart,
		CustomEnd:   r.CustomEnd,
		Recurrence:  r.Recurrence,
		Reason:      r.Reason,
	}
}

// ExceptionResponse ответ с данными исключения
type ExceptionResponse struct {
	ID          int64              `json:"id"`
	StaffID     int64              `json:"staffId"`
	Date        string             `json:"date"` // "2026-10-19"
	Type        string             `json:"type"`
	CustomStart *types.TimeString  `json:"customStart,omitempty"`
	CustomEnd   *types.TimeString  `json:"customEnd,omitempty"`
	Recurrence  *domain.Recurrence `json:"recurrence,omitempty"`
	Reason      *string            `json:"reason,omitempty"`
	CreatedAt   time.Time          `json:"createdAt"`
	UpdatedAt   time.Time          `json:"updatedAt"`
}

// ExceptionListResponse ответ со списком исключений
type ExceptionListResponse struct {
	Exceptions []ExceptionResponse `json:"exceptions"`
}

// FromDomainException конвертирует domain модель в DTO
func FromDomainException(e *domain.ScheduleException) *ExceptionResponse {
	if e == nil {
		return nil
	}
	return &ExceptionResponse{
		ID:          e.ID,
		StaffID:     e.StaffID,
		Date:        e.Date.Format(domain.DateFormat),
		Type:        string(e.Type),
		CustomStart: e.CustomStart,
		CustomEnd:   e.CustomEnd,
		Recurrence:  e.Recurrence,
		Reason:      e.Reason,
		CreatedAt:   e.CreatedAt,
		UpdatedAt:   e.UpdatedAt,
	}
}

// FromDomainExceptionList конвертирует список domain моделей в DTO
func FromDomainExceptionList(exceptions []*domain.ScheduleException) *ExceptionListResponse {
	resp := &ExceptionListResponse{Exceptions: make([]ExceptionResponse, 0, len(exceptions))}
	for _, e := range exceptions {
		if item := FromDomainException(e); item != nil {
			resp.Exceptions = append(resp.Exceptions, *item)
		}
	}
	return resp
}
