package memory

import (
	"cmp"
	"context"
	"fmt"
	"slices"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
)

// BookingRepository репозиторий бронирований в памяти.
// Возвращает те же ошибки, что и PostgreSQL-репозиторий
type BookingRepository struct {
	store *Store
}

// Create сохраняет бронирование. Пересечение с активным бронированием того же сотрудника
// отклоняется с ErrOverlap аналогично ограничению bookings_no_overlap
func (r *BookingRepository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	s := r.store
	err := s.write(ctx, func() error {
		if booking.IsActive() && s.overlapsLocked(booking.StaffID, booking.Interval(), 0) {
			return fmt.Errorf("%w: staff=%d", bookingRepo.ErrOverlap, booking.StaffID)
		}

		s.nextBookingID++
		now := s.now()
		booking.ID = s.nextBookingID
		booking.Version = 1
		booking.CreatedAt = now
		booking.UpdatedAt = now

		s.rememberBookingLocked(booking.ID)
		s.bookings[booking.ID] = *booking
		return nil
	})
	if err != nil {
		return nil, err
	}

	return booking, nil
}

// GetByID получает копию бронирования по ID
func (r *BookingRepository) GetByID(_ context.Context, id int64) (*domain.Booking, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	b, ok := s.bookings[id]
	if !ok {
		return nil, bookingRepo.ErrBookingNotFound
	}
	return &b, nil
}

// List получает копии бронирований по фильтру
func (r *BookingRepository) List(_ context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	result := make([]*domain.Booking, 0)
	for _, b := range s.bookings {
		if matches(b, filter) {
			b := b
			result = append(result, &b)
		}
	}

	slices.SortFunc(result, func(a, b *domain.Booking) int {
		c := a.StartTime.Compare(b.StartTime)
		if c == 0 {
			c = cmp.Compare(a.ID, b.ID)
		}
		if !filter.OrderAsc {
			c = -c
		}
		return c
	})

	return result, nil
}

// UpdateStatus сохраняет booking.Status при совпадении версии
func (r *BookingRepository) UpdateStatus(ctx context.Context, booking *domain.Booking) error {
	return r.update(ctx, booking, func(stored *domain.Booking) error {
		stored.Status = booking.Status
		return nil
	})
}

// Cancel сохраняет отмену бронирования
func (r *BookingRepository) Cancel(ctx context.Context, booking *domain.Booking) error {
	return r.update(ctx, booking, func(stored *domain.Booking) error {
		stored.Status = booking.Status
		stored.CancellationReason = booking.CancellationReason
		stored.CancelledBy = booking.CancelledBy
		stored.CancelledAt = booking.CancelledAt
		return nil
	})
}

// Reschedule сохраняет новые границы бронирования
func (r *BookingRepository) Reschedule(ctx context.Context, booking *domain.Booking) error {
	return r.update(ctx, booking, func(stored *domain.Booking) error {
		next := domain.Interval{Start: booking.StartTime, End: booking.EndTime}
		if stored.IsActive() && r.store.overlapsLocked(stored.StaffID, next, stored.ID) {
			return fmt.Errorf("%w: staff=%d", bookingRepo.ErrOverlap, stored.StaffID)
		}
		stored.StartTime = booking.StartTime
		stored.EndTime = booking.EndTime
		return nil
	})
}

// update применяет apply к сохраненной копии при совпадении версии и увеличивает версию
func (r *BookingRepository) update(ctx context.Context, booking *domain.Booking, apply func(stored *domain.Booking) error) error {
	s := r.store
	return s.write(ctx, func() error {
		stored, ok := s.bookings[booking.ID]
		if !ok || stored.Version != booking.Version {
			return fmt.Errorf("%w: booking id=%d version=%d", bookingRepo.ErrVersionConflict, booking.ID, booking.Version)
		}

		if err := apply(&stored); err != nil {
			return err
		}

		stored.Version++
		stored.UpdatedAt = s.now()

		s.rememberBookingLocked(stored.ID)
		s.bookings[stored.ID] = stored

		booking.Version = stored.Version
		booking.UpdatedAt = stored.UpdatedAt
		return nil
	})
}

// overlapsLocked проверяет пересечение с активными бронированиями сотрудника. Вызывается под s.mu
func (s *Store) overlapsLocked(staffID int64, interval domain.Interval, excludeID int64) bool {
	for id, b := range s.bookings {
		if id == excludeID || b.StaffID != staffID || !b.IsActive() {
			continue
		}
		if b.Interval().Overlaps(interval) {
			return true
		}
	}
	return false
}

func matches(b domain.Booking, f domain.BookingFilter) bool {
	if f.OwnerID != nil && b.OwnerID != *f.OwnerID {
		return false
	}
	if f.StaffID != nil && b.StaffID != *f.StaffID {
		return false
	}
	if f.CustomerID != nil && b.CustomerID != *f.CustomerID {
		return false
	}
	if len(f.Statuses) > 0 && !slices.Contains(f.Statuses, b.Status) {
		return false
	}
	if f.StartFrom != nil && b.StartTime.Before(*f.StartFrom) {
		return false
	}
	if f.StartTo != nil && !b.StartTime.Before(*f.StartTo) {
		return false
	}
	if f.Overlapping != nil && !b.Interval().Overlaps(*f.Overlapping) {
		return false
	}
	if f.ExcludeID != nil && b.ID == *f.ExcludeID {
		return false
	}
	return true
}
