package events

import "errors"

var (
	// ErrInvalidConfig возвращается при отсутствии брокеров или топика
	ErrInvalidConfig = errors.New("events: invalid publisher config")

	// ErrMarshal возвращается при ошибке сериализации события
	ErrMarshal = errors.New("events: failed to marshal event")

	// ErrPublish возвращается при ошибке записи в Kafka
	ErrPublish = errors.New("events: failed to publish event")
)
