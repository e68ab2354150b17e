package stats

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/stats/models"
)

// Service сервис агрегированной статистики бронирований
type Service struct {
	bookingRepo BookingRepository
	logger      Logger
}

// NewService создает новый экземпляр сервиса статистики
func NewService(bookingRepo BookingRepository, logger Logger) *Service {
	return &Service{
		bookingRepo: bookingRepo,
		logger:      logger,
	}
}

// GetStats группирует бронирования владельца по статусам за период
func (s *Service) GetStats(ctx context.Context, req *models.GetStatsRequest) (*models.StatsResponse, error) {
	ownerID := req.OwnerID
	if req.Actor.Role != domain.RoleAdmin {
		ownerID = req.Actor.OwnerID
	}

	s.logger.Info("GetStats: owner=%d, user=%d", ownerID, req.Actor.UserID)

	if ownerID <= 0 {
		s.logger.Warn("GetStats: owner is not specified for user=%d", req.Actor.UserID)
		return nil, fmt.Errorf("%w: ownerId is required", ErrInvalidInput)
	}

	if !req.Actor.CanManageOwner(ownerID) {
		s.logger.Warn("GetStats: access denied for user=%d to owner=%d", req.Actor.UserID, ownerID)
		return nil, ErrAccessDenied
	}

	from, to, err := domain.DateRange(req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("GetStats: invalid period for owner=%d: %v", ownerID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.List(ctx, domain.BookingFilter{
		OwnerID:   &ownerID,
		StartFrom: from,
		StartTo:   to,
	})
	if err != nil {
		s.logger.Error("GetStats: repository error for owner=%d: %v", ownerID, err)
		return nil, fmt.Errorf("%w: GetStats - repository error: %v", ErrInternal, err)
	}

	stats := Aggregate(bookings)

	s.logger.Info("GetStats: owner=%d, bookings=%d, revenue=%s", ownerID, stats.TotalCount, stats.TotalRevenue)
	return models.FromDomainStats(ownerID, stats), nil
}

// Aggregate считает количество и сумму цен услуг по каждому статусу.
// Отмененные бронирования и неявки не входят в общую выручку
func Aggregate(bookings []*domain.Booking) domain.BookingStats {
	byStatus := make(map[domain.BookingStatus]*domain.StatusStats, len(domain.AllStatuses))
	result := domain.BookingStats{
		ByStatus:     make([]domain.StatusStats, 0, len(domain.AllStatuses)),
		TotalRevenue: decimal.Zero,
	}
	for _, status := range domain.AllStatuses {
		byStatus[status] = &domain.StatusStats{Status: status, Revenue: decimal.Zero}
	}

	for _, b := range bookings {
		st, ok := byStatus[b.Status]
		if !ok {
			continue
		}
		st.Count++
		st.Revenue = st.Revenue.Add(b.ServicePrice)
		result.TotalCount++
		if countsAsRevenue(b.Status) {
			result.TotalRevenue = result.TotalRevenue.Add(b.ServicePrice)
		}
	}

	for _, status := range domain.AllStatuses {
		result.ByStatus = append(result.ByStatus, *byStatus[status])
	}
	return result
}

func countsAsRevenue(status domain.BookingStatus) bool {
	return status != domain.StatusCancelled && status != domain.StatusNoShow
}
