package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
	"github.com/m04kA/SMC-AppointmentService/pkg/txmanager"
)

const metricsOperation = "create"

// UseCase use case для создания бронирования
type UseCase struct {
	bookingRepo   BookingRepository
	directoryRepo DirectoryRepository
	cache         AvailabilityCache
	publisher     EventPublisher
	metrics       Metrics
	txManager     TransactionManager
	profiles      CustomerProfiles
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	directoryRepo DirectoryRepository,
	cache AvailabilityCache,
	publisher EventPublisher,
	metrics Metrics,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		bookingRepo:   bookingRepo,
		directoryRepo: directoryRepo,
		cache:         cache,
		publisher:     publisher,
		metrics:       metrics,
		txManager:     txManager,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// WithCustomerProfiles включает дозаполнение контактов клиента из UserService
func (uc *UseCase) WithCustomerProfiles(profiles CustomerProfiles) *UseCase {
	uc.profiles = profiles
	return uc
}

// Execute выполняет use case создания бронирования.
// Проверка конфликтов и вставка выполняются в одной сериализуемой транзакции
// под блокировкой строки сотрудника
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: customer=%d, service=%d, staff=%d, start=%s",
		req.CustomerID, req.ServiceID, req.StaffID, req.StartTime.Format("2006-01-02T15:04:05Z07:00"))

	now := uc.timeProvider.Now()

	// 1. Валидация входных данных
	if err := validateRequest(req, now); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем услугу и сотрудника
	service, err := uc.directoryRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrServiceNotFound) {
			uc.logger.Warn("CreateBooking: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("CreateBooking: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("CreateBooking: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	staff, err := uc.directoryRepo.GetStaff(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrStaffNotFound) {
			uc.logger.Warn("CreateBooking: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("CreateBooking: failed to get staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
	}
	if !staff.IsActive {
		uc.logger.Warn("CreateBooking: staff id=%d is inactive", req.StaffID)
		return nil, ErrStaffNotFound
	}

	// 3. Сотрудник должен оказывать услугу и принадлежать тому же владельцу
	if staff.OwnerID != service.OwnerID || !service.CanBePerformedBy(staff.ID) {
		uc.logger.Warn("CreateBooking: staff id=%d cannot perform service id=%d", req.StaffID, req.ServiceID)
		return nil, ErrStaffMismatch
	}

	loc, err := staff.Location()
	if err != nil {
		uc.logger.Error("CreateBooking: staff id=%d has invalid timezone: %v", staff.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	// Контакты, не переданные в запросе, берем из профиля
	uc.fillCustomerContacts(ctx, req)

	interval := domain.Interval{Start: req.StartTime, End: req.StartTime.Add(service.Duration())}
	localDate := interval.Start.In(loc)

	var result *domain.Booking

	// 4. Проверки и вставка в сериализуемой транзакции
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 4.1. Блокируем сотрудника, чтобы параллельные записи к нему выполнялись по очереди
		if err := uc.directoryRepo.LockStaff(txCtx, staff.ID); err != nil {
			if errors.Is(err, directoryRepo.ErrStaffNotFound) {
				return ErrStaffNotFound
			}
			uc.logger.Error("CreateBooking: failed to lock staff id=%d: %v", staff.ID, err)
			return fmt.Errorf("%w: failed to lock staff: %w", ErrInternal, err)
		}

		// 4.2. Активные бронирования сотрудника, пересекающие интервал
		overlapping, err := uc.bookingRepo.List(txCtx, domain.BookingFilter{
			StaffID:     &staff.ID,
			Statuses:    domain.ActiveStatuses,
			Overlapping: &interval,
		})
		if err != nil {
			uc.logger.Error("CreateBooking: failed to get bookings for staff=%d: %v", staff.ID, err)
			return fmt.Errorf("%w: failed to get bookings: %w", ErrInternal, err)
		}
		if conflict := scheduling.FindConflict(interval, overlapping); conflict != nil {
			uc.logger.Warn("CreateBooking: interval overlaps booking id=%d of staff=%d", conflict.ID, staff.ID)
			return ErrBookingConflict
		}

		// 4.3. Интервал должен целиком лежать в рабочем окне
		exception, err := uc.directoryRepo.GetException(txCtx, staff.ID, localDate)
		if err != nil && !errors.Is(err, directoryRepo.ErrExceptionNotFound) {
			uc.logger.Error("CreateBooking: failed to get exception for staff=%d: %v", staff.ID, err)
			return fmt.Errorf("%w: failed to get exception: %w", ErrInternal, err)
		}

		window, err := scheduling.ResolveWorkingHours(staff.WorkingHours, loc, localDate, exception)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to resolve working hours for staff=%d: %v", staff.ID, err)
			return fmt.Errorf("%w: %w", ErrInternal, err)
		}
		if !window.Contains(interval) {
			uc.logger.Warn("CreateBooking: interval is outside working hours of staff=%d on %s",
				staff.ID, localDate.Format(domain.DateFormat))
			return ErrOutsideWorkingHours
		}

		// 4.4. Создаем бронирование со снимком данных услуги и сотрудника
		booking := &domain.Booking{
			OwnerID:         service.OwnerID,
			ServiceID:       service.ID,
			StaffID:         staff.ID,
			CustomerID:      req.CustomerID,
			StartTime:       interval.Start,
			EndTime:         interval.End,
			DurationMinutes: service.DurationMinutes,
			Status:          domain.StatusPending,
			PaymentStatus:   domain.PaymentUnpaid,
			DepositRequired: service.DepositRequired,
			DepositAmount:   service.ComputedDeposit(),
			ServiceName:     service.Name,
			ServicePrice:    service.Price,
			StaffName:       staff.Name,
			CustomerName:    req.CustomerName,
			CustomerPhone:   req.CustomerPhone,
			CustomerEmail:   req.CustomerEmail,
			Notes:           req.Notes,
		}

		created, err := uc.bookingRepo.Create(txCtx, booking)
		if err != nil {
			if errors.Is(err, bookingRepo.ErrOverlap) {
				uc.logger.Warn("CreateBooking: storage rejected overlapping booking for staff=%d", staff.ID)
				return ErrBookingConflict
			}
			uc.logger.Error("CreateBooking: failed to create booking: %v", err)
			return fmt.Errorf("%w: failed to create booking: %w", ErrInternal, err)
		}

		result = created
		return nil
	})

	if err != nil {
		if errors.Is(err, txmanager.ErrSerializationFailure) {
			uc.logger.Warn("CreateBooking: serialization failure for staff=%d: %v", staff.ID, err)
			err = ErrBookingConflict
		}
		if errors.Is(err, ErrBookingConflict) {
			uc.metrics.BookingConflict(metricsOperation)
			return nil, err
		}
		if isRuleViolation(err) {
			return nil, err
		}
		if !errors.Is(err, ErrInternal) {
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, fmt.Errorf("%w: %v", ErrInternal, err)
		}
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created booking id=%d", result.ID)
	uc.metrics.BookingCreated()

	// 5. Побочные эффекты после фиксации не влияют на результат
	if err := uc.cache.Invalidate(ctx, staff.ID, localDate.Format(domain.DateFormat)); err != nil {
		uc.logger.Warn("CreateBooking: failed to invalidate availability cache for staff=%d: %v", staff.ID, err)
	}
	if err := uc.publisher.Publish(ctx, events.NewBookingEvent(events.TypeBookingCreated, result, now)); err != nil {
		uc.logger.Warn("CreateBooking: failed to publish event for booking id=%d: %v", result.ID, err)
	}

	return &Response{Booking: result}, nil
}

func (uc *UseCase) fillCustomerContacts(ctx context.Context, req *Request) {
	if uc.profiles == nil {
		return
	}
	if req.CustomerName != nil && req.CustomerPhone != nil && req.CustomerEmail != nil {
		return
	}

	profile, err := uc.profiles.GetProfileWithGracefulDegradation(ctx, req.CustomerID)
	if err != nil {
		uc.logger.Warn("CreateBooking: profile of customer=%d is unavailable: %v", req.CustomerID, err)
		return
	}

	if req.CustomerName == nil {
		req.CustomerName = profile.Name
	}
	if req.CustomerPhone == nil {
		req.CustomerPhone = profile.Phone
	}
	if req.CustomerEmail == nil {
		req.CustomerEmail = profile.Email
	}
}

func isRuleViolation(err error) bool {
	return errors.Is(err, ErrStaffNotFound) ||
		errors.Is(err, ErrOutsideWorkingHours)
}
