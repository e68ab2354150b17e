package reschedule_booking

import "errors"

var (
	// ErrBookingNotFound возвращается, когда бронирование не найдено
	ErrBookingNotFound = errors.New("reschedule_booking: booking not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав на бронирование
	ErrAccessDenied = errors.New("reschedule_booking: access denied")

	// ErrRescheduleNotAllowed возвращается при нарушении статуса или срока переноса
	ErrRescheduleNotAllowed = errors.New("reschedule_booking: reschedule not allowed")

	// ErrBookingConflict возвращается, когда новый интервал пересекается с другим бронированием
	ErrBookingConflict = errors.New("reschedule_booking: booking conflict")

	// ErrOutsideWorkingHours возвращается, когда новый интервал не помещается в рабочее окно
	ErrOutsideWorkingHours = errors.New("reschedule_booking: outside working hours")

	// ErrConcurrentModification возвращается, когда бронирование изменили параллельно
	ErrConcurrentModification = errors.New("reschedule_booking: concurrent modification")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("reschedule_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("reschedule_booking: internal error")
)
