package create_booking

import "errors"

var (
	// ErrServiceNotFound возвращается, когда услуга не найдена или неактивна
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrStaffNotFound возвращается, когда сотрудник не найден или неактивен
	ErrStaffNotFound = errors.New("create_booking: staff not found")

	// ErrStaffMismatch возвращается, когда сотрудник не оказывает указанную услугу
	ErrStaffMismatch = errors.New("create_booking: staff cannot perform the service")

	// ErrBookingConflict возвращается, когда интервал пересекается с активным бронированием
	ErrBookingConflict = errors.New("create_booking: booking conflict")

	// ErrOutsideWorkingHours возвращается, когда интервал не помещается в рабочее окно
	ErrOutsideWorkingHours = errors.New("create_booking: outside working hours")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
