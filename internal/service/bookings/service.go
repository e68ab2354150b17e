package bookings

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

// Service сервис для работы с отдельными бронированиями
type Service struct {
	bookingRepo   BookingRepository
	directoryRepo DirectoryRepository
	cache         AvailabilityCache
	publisher     EventPublisher
	metrics       Metrics
	txManager     TransactionManager
	leadTime      time.Duration
	timeProvider  TimeProvider
	logger        Logger
}

// NewService создает новый экземпляр сервиса бронирований.
// leadTime - минимальное время до начала записи, при котором отмена разрешена
func NewService(
	bookingRepo BookingRepository,
	directoryRepo DirectoryRepository,
	cache AvailabilityCache,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	leadTime time.Duration,
	logger Logger,
) *Service {
	if leadTime <= 0 {
		leadTime = domain.DefaultCancellationLeadTime
	}
	return &Service{
		bookingRepo:   bookingRepo,
		directoryRepo: directoryRepo,
		cache:         cache,
		publisher:     publisher,
		metrics:       metrics,
		txManager:     txManager,
		leadTime:      leadTime,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (s *Service) WithTimeProvider(tp TimeProvider) *Service {
	s.timeProvider = tp
	return s
}

// GetByID получает бронирование по ID.
// Покупатель видит только свои бронирования, владелец и сотрудники - бронирования своего владельца
func (s *Service) GetByID(ctx context.Context, actor domain.Actor, id int64) (*models.BookingResponse, error) {
	s.logger.Info("GetByID: fetching booking id=%d for user=%d, role=%s", id, actor.UserID, actor.Role)

	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("GetByID: booking id=%d not found", id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("GetByID: repository error for booking id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if !actor.CanAccessBooking(booking) {
		s.logger.Warn("GetByID: access denied for user=%d to booking id=%d", actor.UserID, id)
		return nil, ErrAccessDenied
	}

	s.logger.Info("GetByID: successfully fetched booking id=%d", id)
	return models.FromDomainBooking(booking), nil
}

// GetMyBookings получает бронирования текущего пользователя как покупателя.
// Опционально фильтрует по статусу или только предстоящие
func (s *Service) GetMyBookings(ctx context.Context, req *models.GetMyBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetMyBookings: fetching bookings for user=%d, status=%v, upcoming=%t",
		req.Actor.UserID, req.Status, req.Upcoming)

	filter := domain.BookingFilter{CustomerID: &req.Actor.UserID}

	if req.Status != nil {
		status, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetMyBookings: invalid status=%s for user=%d", *req.Status, req.Actor.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Statuses = []domain.BookingStatus{status}
	}

	if req.Upcoming {
		now := s.timeProvider.Now()
		filter.StartFrom = &now
		filter.OrderAsc = true
		if filter.Statuses == nil {
			filter.Statuses = domain.ActiveStatuses
		}
	}

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetMyBookings: repository error for user=%d: %v", req.Actor.UserID, err)
		return nil, fmt.Errorf("%w: GetMyBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetMyBookings: successfully fetched %d bookings for user=%d", len(bookings), req.Actor.UserID)
	return models.FromDomainBookingList(bookings), nil
}

// GetOwnerBookings получает бронирования владельца с фильтрацией по статусу и периоду.
// Доступно владельцу, его сотрудникам и администратору
func (s *Service) GetOwnerBookings(ctx context.Context, req *models.GetOwnerBookingsRequest) (*models.BookingListResponse, error) {
	ownerID := req.OwnerID
	if req.Actor.Role != domain.RoleAdmin {
		ownerID = req.Actor.OwnerID
	}

	s.logger.Info("GetOwnerBookings: fetching bookings for owner=%d, user=%d", ownerID, req.Actor.UserID)

	if ownerID <= 0 {
		s.logger.Warn("GetOwnerBookings: owner is not specified for user=%d", req.Actor.UserID)
		return nil, fmt.Errorf("%w: ownerId is required", ErrInvalidInput)
	}

	if !req.Actor.CanManageOwner(ownerID) {
		s.logger.Warn("GetOwnerBookings: access denied for user=%d to owner=%d", req.Actor.UserID, ownerID)
		return nil, ErrAccessDenied
	}

	filter := domain.BookingFilter{OwnerID: &ownerID}

	if req.Status != nil {
		status, err := domain.ParseBookingStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetOwnerBookings: invalid status=%s for owner=%d", *req.Status, ownerID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Statuses = []domain.BookingStatus{status}
	}

	from, to, err := domain.DateRange(req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("GetOwnerBookings: invalid period for owner=%d: %v", ownerID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	filter.StartFrom, filter.StartTo = from, to

	bookings, err := s.bookingRepo.List(ctx, filter)
	if err != nil {
		s.logger.Error("GetOwnerBookings: repository error for owner=%d: %v", ownerID, err)
		return nil, fmt.Errorf("%w: GetOwnerBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetOwnerBookings: successfully fetched %d bookings for owner=%d", len(bookings), ownerID)
	return models.FromDomainBookingList(bookings), nil
}

// GetStaffBookings получает бронирования сотрудника за период по возрастанию времени
func (s *Service) GetStaffBookings(ctx context.Context, req *models.GetStaffBookingsRequest) (*models.BookingListResponse, error) {
	s.logger.Info("GetStaffBookings: fetching bookings for staff=%d, user=%d", req.StaffID, req.Actor.UserID)

	staff, err := s.directoryRepo.GetStaff(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrStaffNotFound) {
			s.logger.Warn("GetStaffBookings: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		s.logger.Error("GetStaffBookings: repository error for staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: GetStaffBookings - repository error: %v", ErrInternal, err)
	}

	if !req.Actor.CanManageOwner(staff.OwnerID) {
		s.logger.Warn("GetStaffBookings: access denied for user=%d to staff=%d", req.Actor.UserID, req.StaffID)
		return nil, ErrAccessDenied
	}

	from, to, err := domain.DateRange(req.StartDate, req.EndDate)
	if err != nil {
		s.logger.Warn("GetStaffBookings: invalid period for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	bookings, err := s.bookingRepo.List(ctx, domain.BookingFilter{
		StaffID:   &staff.ID,
		StartFrom: from,
		StartTo:   to,
		OrderAsc:  true,
	})
	if err != nil {
		s.logger.Error("GetStaffBookings: repository error for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: GetStaffBookings - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetStaffBookings: successfully fetched %d bookings for staff=%d", len(bookings), req.StaffID)
	return models.FromDomainBookingList(bookings), nil
}

// Cancel отменяет бронирование.
// Разрешено для статусов pending и confirmed не позднее чем за leadTime до начала.
// Покупатель отменяет только свои бронирования, сотрудники и владелец - бронирования своего владельца
func (s *Service) Cancel(ctx context.Context, req *models.CancelBookingRequest) (*models.BookingResponse, error) {
	s.logger.Info("Cancel: cancelling booking id=%d by user=%d, role=%s", req.BookingID, req.Actor.UserID, req.Actor.Role)

	if req.CancellationReason != nil && len([]rune(*req.CancellationReason)) > domain.MaxCancellationReasonLength {
		return nil, fmt.Errorf("%w: cancellationReason must be at most %d characters",
			ErrInvalidInput, domain.MaxCancellationReasonLength)
	}

	now := s.timeProvider.Now()
	var (
		cancelled      *domain.Booking
		previousStatus domain.BookingStatus
	)

	err := s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getForUpdate(txCtx, "Cancel", req.BookingID)
		if err != nil {
			return err
		}

		if !req.Actor.CanAccessBooking(booking) {
			s.logger.Warn("Cancel: access denied for user=%d to booking id=%d", req.Actor.UserID, booking.ID)
			return ErrAccessDenied
		}

		if !domain.CanCancel(booking, now, s.leadTime) {
			s.logger.Warn("Cancel: booking id=%d cannot be cancelled, status=%s, start=%s",
				booking.ID, booking.Status, booking.StartTime.Format(time.RFC3339))
			return ErrCannotCancel
		}

		role := req.Actor.Role
		previousStatus = booking.Status
		booking.Status = domain.StatusCancelled
		booking.CancellationReason = req.CancellationReason
		booking.CancelledBy = &role
		booking.CancelledAt = &now

		if err := s.bookingRepo.Cancel(txCtx, booking); err != nil {
			return s.mapUpdateError("Cancel", booking.ID, err)
		}

		cancelled = booking
		return nil
	})
	if err != nil {
		return nil, s.unwrapTxError("Cancel", err)
	}

	s.logger.Info("Cancel: successfully cancelled booking id=%d by role=%s", cancelled.ID, req.Actor.Role)
	s.metrics.BookingCancelled(string(req.Actor.Role))

	s.invalidate(ctx, "Cancel", cancelled)
	s.publish(ctx, "Cancel", events.NewBookingEvent(events.TypeBookingCancelled, cancelled, now), previousStatus)

	return models.FromDomainBooking(cancelled), nil
}

// UpdateStatus выполняет явный переход статуса по графу допустимых переходов.
// Доступно владельцу, сотрудникам владельца и администратору.
// Переход в cancelled выполняется по правилам отмены
func (s *Service) UpdateStatus(ctx context.Context, req *models.UpdateStatusRequest) (*models.BookingResponse, error) {
	s.logger.Info("UpdateStatus: updating booking id=%d to status=%s by user=%d",
		req.BookingID, req.Status, req.Actor.UserID)

	newStatus, err := domain.ParseBookingStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for booking id=%d", req.Status, req.BookingID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if newStatus == domain.StatusCancelled {
		return s.Cancel(ctx, &models.CancelBookingRequest{Actor: req.Actor, BookingID: req.BookingID})
	}

	if req.Actor.Role == domain.RoleCustomer {
		s.logger.Warn("UpdateStatus: customer=%d cannot change booking status", req.Actor.UserID)
		return nil, ErrAccessDenied
	}

	now := s.timeProvider.Now()
	var (
		updated        *domain.Booking
		previousStatus domain.BookingStatus
	)

	err = s.txManager.Do(ctx, func(txCtx context.Context) error {
		booking, err := s.getForUpdate(txCtx, "UpdateStatus", req.BookingID)
		if err != nil {
			return err
		}

		if !req.Actor.CanManageOwner(booking.OwnerID) {
			s.logger.Warn("UpdateStatus: access denied for user=%d to booking id=%d", req.Actor.UserID, booking.ID)
			return ErrAccessDenied
		}

		if !domain.CanTransition(booking.Status, newStatus) {
			s.logger.Warn("UpdateStatus: transition %s -> %s is not allowed for booking id=%d",
				booking.Status, newStatus, booking.ID)
			return ErrInvalidTransition
		}

		if newStatus == domain.StatusNoShow && !domain.CanMarkNoShow(booking, now) {
			s.logger.Warn("UpdateStatus: booking id=%d has not started yet, no_show is not allowed", booking.ID)
			return ErrInvalidTransition
		}

		previousStatus = booking.Status
		booking.Status = newStatus

		if err := s.bookingRepo.UpdateStatus(txCtx, booking); err != nil {
			return s.mapUpdateError("UpdateStatus", booking.ID, err)
		}

		updated = booking
		return nil
	})
	if err != nil {
		return nil, s.unwrapTxError("UpdateStatus", err)
	}

	s.logger.Info("UpdateStatus: successfully updated booking id=%d to status=%s", updated.ID, newStatus)

	// Завершенные и неявки освобождают время сотрудника
	if !updated.IsActive() {
		s.invalidate(ctx, "UpdateStatus", updated)
	}
	s.publish(ctx, "UpdateStatus", events.NewBookingEvent(events.TypeBookingStatusChanged, updated, now), previousStatus)

	return models.FromDomainBooking(updated), nil
}

// Вспомогательные методы

// getForUpdate перечитывает бронирование внутри транзакции
func (s *Service) getForUpdate(ctx context.Context, op string, id int64) (*domain.Booking, error) {
	booking, err := s.bookingRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, bookingRepo.ErrBookingNotFound) {
			s.logger.Warn("%s: booking id=%d not found", op, id)
			return nil, ErrBookingNotFound
		}
		s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return booking, nil
}

func (s *Service) mapUpdateError(op string, id int64, err error) error {
	if errors.Is(err, bookingRepo.ErrVersionConflict) {
		s.logger.Warn("%s: booking id=%d was modified concurrently", op, id)
		return ErrConcurrentModification
	}
	s.logger.Error("%s: repository error for booking id=%d: %v", op, id, err)
	return fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
}

// unwrapTxError оставляет ошибки сервиса как есть, остальные считает внутренними
func (s *Service) unwrapTxError(op string, err error) error {
	for _, known := range []error{
		ErrBookingNotFound,
		ErrAccessDenied,
		ErrCannotCancel,
		ErrInvalidTransition,
		ErrConcurrentModification,
		ErrInternal,
	} {
		if errors.Is(err, known) {
			return err
		}
	}
	s.logger.Error("%s: transaction failed: %v", op, err)
	return fmt.Errorf("%w: %s - transaction failed: %v", ErrInternal, op, err)
}

// invalidate сбрасывает кэш слотов на дату бронирования в часовом поясе сотрудника
func (s *Service) invalidate(ctx context.Context, op string, b *domain.Booking) {
	loc := time.UTC
	staff, err := s.directoryRepo.GetStaff(ctx, b.StaffID)
	if err == nil {
		if staffLoc, locErr := staff.Location(); locErr == nil {
			loc = staffLoc
		}
	} else {
		s.logger.Warn("%s: failed to get staff id=%d for cache invalidation: %v", op, b.StaffID, err)
	}

	date := b.StartTime.In(loc).Format(domain.DateFormat)
	if err := s.cache.Invalidate(ctx, b.StaffID, date); err != nil {
		s.logger.Warn("%s: failed to invalidate availability cache for staff=%d date=%s: %v", op, b.StaffID, date, err)
	}
}

func (s *Service) publish(ctx context.Context, op string, event events.Event, previous domain.BookingStatus) {
	prev := string(previous)
	event.PreviousStatus = &prev
	if err := s.publisher.Publish(ctx, event); err != nil {
		s.logger.Warn("%s: failed to publish event for booking id=%d: %v", op, event.BookingID, err)
	}
}
