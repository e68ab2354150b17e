package scheduling

import "errors"

var (
	// ErrInvalidWindow возвращается, когда границы рабочего окна не удается вычислить
	ErrInvalidWindow = errors.New("scheduling: invalid working window")

	// ErrInvalidGranularity возвращается при неположительном шаге сетки слотов
	ErrInvalidGranularity = errors.New("scheduling: granularity must be positive")
)
