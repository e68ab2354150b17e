package schedule

import (
	"context"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// DirectoryRepository интерфейс справочника сотрудников и исключений
type DirectoryRepository interface {
	GetStaff(ctx context.Context, id int64) (*domain.Staff, error)
	ListExceptions(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.ScheduleException, error)
	UpsertException(ctx context.Context, exception *domain.ScheduleException) (*domain.ScheduleException, error)
}

// AvailabilityCache интерфейс инвалидации кэша слотов
type AvailabilityCache interface {
	Invalidate(ctx context.Context, staffID int64, date string) error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
