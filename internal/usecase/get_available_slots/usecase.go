package get_available_slots

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/scheduling"
)

// UseCase use case для получения доступных слотов для бронирования
type UseCase struct {
	bookingRepo   BookingRepository
	directoryRepo DirectoryRepository
	cache         AvailabilityCache
	granularity   time.Duration
	timeProvider  TimeProvider
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	bookingRepo BookingRepository,
	directoryRepo DirectoryRepository,
	cache AvailabilityCache,
	granularity time.Duration,
	logger Logger,
) *UseCase {
	if granularity <= 0 {
		granularity = domain.DefaultSlotGranularityMinutes * time.Minute
	}
	return &UseCase{
		bookingRepo:   bookingRepo,
		directoryRepo: directoryRepo,
		cache:         cache,
		granularity:   granularity,
		timeProvider:  &RealTimeProvider{},
		logger:        logger,
	}
}

// WithTimeProvider подменяет источник текущего времени
func (uc *UseCase) WithTimeProvider(tp TimeProvider) *UseCase {
	uc.timeProvider = tp
	return uc
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: service=%d, staff=%d, date=%s",
		req.ServiceID, req.StaffID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	dateKey := req.Date.Format(domain.DateFormat)

	// 2. Получаем услугу и сотрудника
	service, err := uc.directoryRepo.GetService(ctx, req.ServiceID)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrServiceNotFound) {
			uc.logger.Warn("GetAvailableSlots: service id=%d not found", req.ServiceID)
			return nil, ErrServiceNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get service id=%d: %v", req.ServiceID, err)
		return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
	}
	if !service.IsActive {
		uc.logger.Warn("GetAvailableSlots: service id=%d is inactive", req.ServiceID)
		return nil, ErrServiceNotFound
	}

	staff, err := uc.directoryRepo.GetStaff(ctx, req.StaffID)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrStaffNotFound) {
			uc.logger.Warn("GetAvailableSlots: staff id=%d not found", req.StaffID)
			return nil, ErrStaffNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get staff id=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: failed to get staff: %v", ErrInternal, err)
	}
	if !staff.IsActive {
		uc.logger.Warn("GetAvailableSlots: staff id=%d is inactive", req.StaffID)
		return nil, ErrStaffNotFound
	}

	// 3. Сотрудник должен оказывать услугу и принадлежать тому же владельцу
	if staff.OwnerID != service.OwnerID || !service.CanBePerformedBy(staff.ID) {
		uc.logger.Warn("GetAvailableSlots: staff id=%d cannot perform service id=%d", req.StaffID, req.ServiceID)
		return nil, ErrStaffMismatch
	}

	loc, err := staff.Location()
	if err != nil {
		uc.logger.Error("GetAvailableSlots: staff id=%d has invalid timezone: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	response := &Response{
		Date:            req.Date,
		ServiceID:       service.ID,
		StaffID:         staff.ID,
		Timezone:        loc.String(),
		DurationMinutes: service.DurationMinutes,
	}

	// 4. Кэш: ошибки Redis не мешают расчету.
	// Поколение читается до загрузки бронирований
	generation, err := uc.cache.Generation(ctx, staff.ID, dateKey)
	useCache := err == nil
	if err != nil {
		uc.logger.Warn("GetAvailableSlots: cache generation failed for staff=%d date=%s: %v", staff.ID, dateKey, err)
	}

	if useCache {
		if cached, ok, err := uc.cache.Get(ctx, staff.ID, dateKey, generation, service.ID); err != nil {
			uc.logger.Warn("GetAvailableSlots: cache get failed for staff=%d date=%s: %v", staff.ID, dateKey, err)
		} else if ok {
			response.Slots = toResponseSlots(dropPast(cached, now))
			uc.logger.Info("GetAvailableSlots: cache hit staff=%d date=%s service=%d, slots=%d",
				staff.ID, dateKey, service.ID, len(response.Slots))
			return response, nil
		}
	}

	// 5. Исключение из расписания на дату
	exception, err := uc.directoryRepo.GetException(ctx, staff.ID, req.Date)
	if err != nil && !errors.Is(err, directoryRepo.ErrExceptionNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get exception for staff=%d: %v", staff.ID, err)
		return nil, fmt.Errorf("%w: failed to get exception: %v", ErrInternal, err)
	}

	// 6. Эффективное рабочее окно
	window, err := scheduling.ResolveWorkingHours(staff.WorkingHours, loc, req.Date, exception)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to resolve working hours for staff=%d: %v", staff.ID, err)
		return nil, fmt.Errorf("%w: %v", ErrInternal, err)
	}

	var all []domain.Slot
	if window.Enabled {
		// 7. Активные бронирования, пересекающие окно
		bookings, err := uc.bookingRepo.List(ctx, domain.BookingFilter{
			StaffID:     &staff.ID,
			Statuses:    domain.ActiveStatuses,
			Overlapping: &domain.Interval{Start: window.Start, End: window.End},
			OrderAsc:    true,
		})
		if err != nil {
			uc.logger.Error("GetAvailableSlots: failed to get bookings for staff=%d: %v", staff.ID, err)
			return nil, fmt.Errorf("%w: failed to get bookings: %v", ErrInternal, err)
		}

		// 8. Генерируем слоты
		all = slices.Collect(scheduling.GenerateSlots(window, service.Duration(), bookings, uc.granularity))
	} else {
		uc.logger.Info("GetAvailableSlots: staff=%d does not work on %s", staff.ID, dateKey)
		all = []domain.Slot{}
	}

	if useCache {
		if err := uc.cache.Set(ctx, staff.ID, dateKey, generation, service.ID, all); err != nil {
			uc.logger.Warn("GetAvailableSlots: cache set failed for staff=%d date=%s: %v", staff.ID, dateKey, err)
		}
	}

	response.Slots = toResponseSlots(dropPast(all, now))

	uc.logger.Info("GetAvailableSlots: generated %d slots for service=%d, staff=%d, date=%s",
		len(response.Slots), service.ID, staff.ID, dateKey)

	return response, nil
}

// dropPast убирает слоты, начало которых уже прошло
func dropPast(slots []domain.Slot, now time.Time) []domain.Slot {
	result := make([]domain.Slot, 0, len(slots))
	for _, s := range slots {
		if s.Start.After(now) {
			result = append(result, s)
		}
	}
	return result
}

func toResponseSlots(slots []domain.Slot) []Slot {
	result := make([]Slot, len(slots))
	for i, s := range slots {
		result[i] = Slot{StartTime: s.Start, EndTime: s.End}
	}
	return result
}
