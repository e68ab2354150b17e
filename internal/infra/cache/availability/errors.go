package availability

import "errors"

var (
	// ErrCache возвращается при ошибке обращения к Redis
	ErrCache = errors.New("availability.cache: redis error")

	// ErrCodec возвращается при ошибке сериализации слотов
	ErrCodec = errors.New("availability.cache: codec error")
)
