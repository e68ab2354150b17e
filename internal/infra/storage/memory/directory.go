package memory

import (
	"context"
	"slices"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
)

// DirectoryRepository справочник в памяти
type DirectoryRepository struct {
	store *Store
}

// AddService добавляет услугу. Нулевой ID назначается автоматически
func (r *DirectoryRepository) AddService(service domain.Service) *domain.Service {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if service.ID == 0 {
		s.nextServiceID++
		service.ID = s.nextServiceID
	} else if service.ID > s.nextServiceID {
		s.nextServiceID = service.ID
	}
	service.StaffIDs = slices.Clone(service.StaffIDs)
	s.services[service.ID] = service
	return &service
}

// AddStaff добавляет сотрудника. Нулевой ID назначается автоматически
func (r *DirectoryRepository) AddStaff(staff domain.Staff) *domain.Staff {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if staff.ID == 0 {
		s.nextStaffID++
		staff.ID = s.nextStaffID
	} else if staff.ID > s.nextStaffID {
		s.nextStaffID = staff.ID
	}
	s.staff[staff.ID] = staff
	return &staff
}

// GetService получает услугу по ID
func (r *DirectoryRepository) GetService(_ context.Context, id int64) (*domain.Service, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	service, ok := s.services[id]
	if !ok {
		return nil, directoryRepo.ErrServiceNotFound
	}
	service.StaffIDs = slices.Clone(service.StaffIDs)
	return &service, nil
}

// GetStaff получает сотрудника по ID
func (r *DirectoryRepository) GetStaff(_ context.Context, id int64) (*domain.Staff, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	staff, ok := s.staff[id]
	if !ok {
		return nil, directoryRepo.ErrStaffNotFound
	}
	return &staff, nil
}

// LockStaff проверяет существование сотрудника.
// Взаимное исключение обеспечивает TxManager
func (r *DirectoryRepository) LockStaff(ctx context.Context, id int64) error {
	_, err := r.GetStaff(ctx, id)
	return err
}

// GetException получает исключение сотрудника на дату
func (r *DirectoryRepository) GetException(_ context.Context, staffID int64, date time.Time) (*domain.ScheduleException, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	exception, ok := s.exceptions[exceptionKey{staffID: staffID, date: date.Format(domain.DateFormat)}]
	if !ok {
		return nil, directoryRepo.ErrExceptionNotFound
	}
	return &exception, nil
}

// ListExceptions получает исключения сотрудника за период [from, to] включительно
func (r *DirectoryRepository) ListExceptions(_ context.Context, staffID int64, from, to time.Time) ([]*domain.ScheduleException, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	fromKey, toKey := "", ""
	if !from.IsZero() {
		fromKey = from.Format(domain.DateFormat)
	}
	if !to.IsZero() {
		toKey = to.Format(domain.DateFormat)
	}

	result := make([]*domain.ScheduleException, 0)
	for key, exception := range s.exceptions {
		if key.staffID != staffID {
			continue
		}
		// Даты в формате YYYY-MM-DD сравниваются лексикографически
		if fromKey != "" && key.date < fromKey {
			continue
		}
		if toKey != "" && key.date > toKey {
			continue
		}
		exception := exception
		result = append(result, &exception)
	}

	slices.SortFunc(result, func(a, b *domain.ScheduleException) int {
		return a.Date.Compare(b.Date)
	})

	return result, nil
}

// UpsertException создает или заменяет исключение сотрудника на дату
func (r *DirectoryRepository) UpsertException(ctx context.Context, exception *domain.ScheduleException) (*domain.ScheduleException, error) {
	s := r.store
	err := s.write(ctx, func() error {
		key := exceptionKey{staffID: exception.StaffID, date: exception.Date.Format(domain.DateFormat)}
		now := s.now()

		if existing, ok := s.exceptions[key]; ok {
			exception.ID = existing.ID
			exception.CreatedAt = existing.CreatedAt
		} else {
			s.nextExceptionID++
			exception.ID = s.nextExceptionID
			exception.CreatedAt = now
		}
		exception.UpdatedAt = now

		s.rememberExceptionLocked(key)
		s.exceptions[key] = *exception
		return nil
	})
	if err != nil {
		return nil, err
	}

	return exception, nil
}
