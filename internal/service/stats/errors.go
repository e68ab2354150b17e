package stats

import "errors"

var (
	// ErrAccessDenied возвращается, когда у пользователя нет прав на статистику владельца
	ErrAccessDenied = errors.New("stats: access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("stats: invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("stats: internal error")
)
