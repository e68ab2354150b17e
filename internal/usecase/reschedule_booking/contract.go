package reschedule_booking

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/integrations/events"
)

// BookingRepository интерфейс репозитория бронирований
type BookingRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Booking, error)
	List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error)
	Reschedule(ctx context.Context, booking *domain.Booking) error
}

// DirectoryRepository интерфейс справочника сотрудников и исключений
type DirectoryRepository interface {
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
	LockStaff(ctx context.Context, id int64) error
	GetException(ctx context.Context, staffID int64, date time.Time) (*domain.ScheduleException, error)
}

// AvailabilityCache интерфейс инвалидации кэша слотов
type AvailabilityCache interface {
	Invalidate(ctx context.Context, staffID int64, date string) error
}

// EventPublisher интерфейс публикации событий бронирований
type EventPublisher interface {
	Publish(ctx context.Context, event events.Event) error
}

// Metrics интерфейс бизнес-метрик
type Metrics interface {
	BookingConflict(operation string)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
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
