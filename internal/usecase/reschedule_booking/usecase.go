package reschedule_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const metricsOperation = "reschedule"

// UseCase use case для переноса бронирования
type UseCase struct {
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

// NewUseCase создает новый экземпляр use case.
// leadTime - минимальное время до начала записи, при котором перенос разрешен
func NewUseCase(
	bookingRepo BookingRepository,
	directoryRepo DirectoryRepository,
	cache AvailabilityCache,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	leadTime time.Duration,
	logger Logger,
) *UseCase {
	if leadTime <= 0 {
		leadTime = domain.DefaultCancellationLeadTime
	}
	return &UseCase{
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
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет перенос бронирования на новое время с сохранением длительности и статуса
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("RescheduleBooking: booking=%d, user=%d, role=%s, newStart=%s",
		req.BookingID, req.Actor.UserID, req.Actor.Role, req.NewStartTime.Format(time.RFC3339))

	now := uc.timeProvider.Now()

	// 1. Валидация входных данных
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("RescheduleBooking: validation failed: %v", err)
		return nil, err
	}

	var (
		result        *domain.Booking
		previousStart time.Time
		previousDate  string
		newDate       string
	)

	// 2. Перечитываем бронирование и проверяем конфликты в одной транзакции
	err := uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		booking, err := uc.bookingRepo.GetByID(txCtx, req.BookingID)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrBookingNotFound) {
				uc.logger.Warn("RescheduleBooking: booking id=%d not found", req.BookingID)
				return ErrBookingNotFound
			}
			uc.logger.Error("RescheduleBooking: failed to get booking id=%d: %v", req.BookingID, err)
			return fmt.Errorf("%w: failed to get booking: %w", ErrInternal, err)
		}

		// 2.1. Права доступа
		if !req.Actor.CanAccessBooking(booking) {
			uc.logger.Warn("RescheduleBooking: user=%d has no access to booking id=%d", req.Actor.UserID, booking.ID)
			return ErrAccessDenied
		}

		// 2.2. Статус и срок до начала
		if !domain.CanReschedule(booking, now, uc.leadTime) {
			uc.logger.Warn("RescheduleBooking: booking id=%d with status=%s starting at %s cannot be rescheduled",
				booking.ID, booking.Status, booking.StartTime.Format(time.RFC3339))
			return ErrRescheduleNotAllowed
		}

		// 2.3. Блокируем сотрудника
		if err := uc.directoryRepo.LockStaff(txCtx, booking.StaffID); err != nil {
			uc.logger.Error("RescheduleBooking: failed to lock staff id=%d: %v", booking.StaffID, err)
			return fmt.Errorf("%w: failed to lock staff: %w", ErrInternal, err)
		}

		staff, err := uc.directoryRepo.GetStaff(txCtx, booking.StaffID)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to get staff id=%d: %v", booking.StaffID, err)
			return fmt.Errorf("%w: failed to get staff: %w", ErrInternal, err)
		}

		loc, err := staff.Location()
		if err != nil {
			uc.logger.Error("RescheduleBooking: staff id=%d has invalid timezone: %v", staff.ID, err)
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}

		interval := domain.Interval{
			Start: req.NewStartTime,
			End:   req.NewStartTime.Add(booking.EndTime.Sub(booking.StartTime)),
		}
		localDate := interval.Start.In(loc)

		// 2.4. Конфликты с другими бронированиями сотрудника
		overlapping, err := uc.bookingRepo.List(txCtx, domain.BookingFilter{
			StaffID:     &booking.StaffID,
			Statuses:    domain.ActiveStatuses,
			Overlapping: &interval,
			ExcludeID:   &booking.ID,
		})
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to get bookings for staff=%d: %v", booking.StaffID, err)
			return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}
		if conflict := scheduling.FindConflict(interval, overlapping); conflict != nil {
			uc.logger.Warn("RescheduleBooking: interval overlaps booking id=%d of staff=%d", conflict.ID, booking.StaffID)
			return ErrBookingConflict
		}

		// 2.5. Рабочее окно на новую дату
		exception, err := uc.directoryRepo.GetException(txCtx, staff.ID, localDate)
		if err != nil && !errors.Is(err, directoryRepo.ErrExceptionNotFound) {
			uc.logger.Error("RescheduleBooking: failed to get exception for staff=%d: %v", staff.ID, err)
			return fmt.Errorf("%w: failed to get exception: %w", ErrInternal, err)
		}

		window, err := scheduling.ResolveWorkingHours(staff.WorkingHours, loc, localDate, exception)
		if err != nil {
			uc.logger.Error("RescheduleBooking: failed to resolve working hours for staff=%d: %v", staff.ID, err)
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}
		if !window.Contains(interval) {
			uc.logger.Warn("RescheduleBooking: interval is outside working hours of staff=%d on %s",
				staff.ID, localDate.Format(domain.DateFormat))
			return ErrOutsideWorkingHours
		}

		// 2.6. Сохраняем новые границы с проверкой версии
		previousStart = booking.StartTime
		previousDate = booking.StartTime.In(loc).Format(domain.DateFormat)
		newDate = localDate.Format(domain.DateFormat)

		booking.StartTime = interval.Start
		booking.EndTime = interval.End

		if err := uc.bookingRepo.Reschedule(txCtx, booking); err != nil {
			if errors.Is(err, bookingRepo.ErrOverlap) {
				uc.logger.Warn("RescheduleBooking: storage rejected overlapping interval for booking id=%d", booking.ID)
				return ErrBookingConflict
			}
			if errors.Is(err, bookingRepo.ErrVersionConflict) {
				uc.logger.Warn("RescheduleBooking: booking id=%d was modified concurrently", booking.ID)
				return ErrConcurrentModification
			}
			uc.logger.Error("RescheduleBooking: failed to update booking id=%d: %v", booking.ID, err)
			return fmt.Errorf("%w: failed to update booking: %w", ErrInternal, err)
		}

		result = booking
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("RescheduleBooking: serialization failure for booking id=%d: %v", req.BookingID, err)
			err = ErrBookingConflict
		}
		if errors.Is(err, ErrBookingConflict) {
			uc.metrics.BookingConflict(metricsOperation)
			return nil, err
		}
		if isRuleViolation(err) || errors.Is(err, ErrInternal) {
			return nil, err
		}
		uc.logger.Error("RescheduleBooking: transaction failed: %v", err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	uc.logger.Info("RescheduleBooking: successfully rescheduled booking id=%d", result.ID)

	// 3. Инвалидируем кэш обеих дат и публикуем событие
	dates := []string{previousDate}
	if newDate != previousDate {
		dates = append(dates, newDate)
	}
	for _, date := range dates {
		if err := uc.cache.Invalidate(ctx, result.StaffID, date); err != nil {
			uc.logger.Warn("RescheduleBooking: failed to invalidate availability cache for staff=%d date=%s: %v",
				result.StaffID, date, err)
		}
	}

	event := events.NewBookingEvent(events.TypeBookingRescheduled, result, now)
	event.PreviousStartTime = &previousStart
	if err := uc.publisher.Publish(ctx, event); err != nil {
		uc.logger.Warn("RescheduleBooking: failed to publish event for booking id=%d: %v", result.ID, err)
	}

	return &Response{Booking: result}, nil
}

func isRuleViolation(err error) bool {
	return errors.Is(err, ErrBookingNotFound) ||
		errors.Is(err, ErrAccessDenied) ||
		errors.Is(err, ErrRescheduleNotAllowed) ||
		errors.Is(err, ErrOutsideWorkingHours) ||
		errors.Is(err, ErrConcurrentModification)
}
