package booking

import (
	"errors"

	"github.com/lib/pq"
)

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("booking.repository: booking not found")

	// ErrOverlap возвращается, когда запись пересекается с активным бронированием того же сотрудника
	ErrOverlap = errors.New("booking.repository: booking overlaps an active booking")

	// ErrVersionConflict возвращается, когда бронирование было изменено параллельно
	ErrVersionConflict = errors.New("booking.repository: booking was modified concurrently")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("booking.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("booking.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("booking.repository: failed to scan row")
)

// sqlStateExclusionViolation нарушение EXCLUDE-ограничения bookings_no_overlap
const sqlStateExclusionViolation = "23P01"

func isExclusionViolation(err error) bool {
	var pqErr *pq.Error
	return errors.As(err, &pqErr) && string(pqErr.Code) == sqlStateExclusionViolation
}
