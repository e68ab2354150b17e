package models

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// GetStatsRequest запрос статистики бронирований владельца
type GetStatsRequest struct {
	Actor     domain.Actor
	OwnerID   int64      // обязателен для администратора
	StartDate *time.Time // включительно, UTC
	EndDate   *time.Time // включительно, UTC
}

// StatusStatsResponse количество и выручка по одному статусу
type StatusStatsResponse struct {
	Status  string          `json:"status"`
	Count   int             `json:"count"`
	Revenue decimal.Decimal `json:"revenue"`
}

// StatsResponse ответ со статистикой
type StatsResponse struct {
	OwnerID      int64                 `json:"ownerId"`
	ByStatus     []StatusStatsResponse `json:"byStatus"`
	TotalCount   int                   `json:"totalCount"`
	TotalRevenue decimal.Decimal       `json:"totalRevenue"`
}

// FromDomainStats конвертирует domain модель в DTO
func FromDomainStats(ownerID int64, s domain.BookingStats) *StatsResponse {
	resp := &StatsResponse{
		OwnerID:      ownerID,
		ByStatus:     make([]StatusStatsResponse, 0, len(s.ByStatus)),
		TotalCount:   s.TotalCount,
		TotalRevenue: s.TotalRevenue,
	}
	for _, st := range s.ByStatus {
		resp.ByStatus = append(resp.ByStatus, StatusStatsResponse{
			Status:  string(st.Status),
			Count:   st.Count,
			Revenue: st.Revenue,
		})
	}
	return resp
}
