package upsert_schedule_exception

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// UpsertExceptionRequest HTTP request model
type UpsertExceptionRequest struct {
	Type        string             `json:"type" validate:"required,oneof=day_off custom_hours blocked"`
	CustomStart *types.TimeString  `json:"customStart,omitempty"` // "10:00"
	CustomEnd   *types.TimeString  `json:"customEnd,omitempty"`
	Recurrence  *domain.Recurrence `json:"recurrence,omitempty"`
	Reason      *string            `json:"reason,omitempty" validate:"omitempty,max=500"`
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *UpsertExceptionRequest) ToServiceRequest(actor domain.Actor, staffID int64, date time.Time) *models.UpsertExceptionRequest {
	return &models.UpsertExceptionRequest{
		Actor:       actor,
		StaffID:     staffID,
		Date:        date,
		Type:        r.Type,
		CustomStart: r.CustomStart,
		CustomEnd:   r.CustomEnd,
		Recurrence:  r.Recurrence,
		Reason:      r.Reason,
	}
}
