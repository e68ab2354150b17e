package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error)
}

// DirectoryRepository интерфейс справочника услуг, сотрудников и исключений
type DirectoryRepository interface {
	GetService(ctx context.Context, id int64) (*domain.Service, error)
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
	GetException(ctx context.Context, staffID int64, date time.Time) (*domain.ScheduleException, error)
}

// AvailabilityCache интерфейс кэша рассчитанных слотов.
// Слоты читаются и пишутся под поколением, прочитанным до загрузки бронирований
type AvailabilityCache interface {
	Generation(ctx context.Context, staffID int64, date string) (int64, error)
	Get(ctx context.Context, staffID int64, date string, generation, serviceID int64) ([]domain.Slot, bool, error)
	Set(ctx context.Context, staffID int64, date string, generation, serviceID int64, slots []domain.Slot) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
