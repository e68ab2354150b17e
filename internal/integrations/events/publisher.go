package events

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/segmentio/kafka-go"
)

// MessageWriter интерфейс записи сообщений (*kafka.Writer)
type MessageWriter interface {
	WriteMessages(ctx context.Context, msgs ...kafka.Message) error
	Close() error
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// Publisher публикует события бронирований в Kafka.
// Ключ сообщения - ID сотрудника, поэтому события одного сотрудника упорядочены
type Publisher struct {
	writer  MessageWriter
	topic   string
	timeout time.Duration
	logger  Logger
}

// NewPublisher создает publisher поверх kafka.Writer
func NewPublisher(brokers []string, topic string, timeout time.Duration, logger Logger) (*Publisher, error) {
	if len(brokers) == 0 {
		return nil, fmt.Errorf("%w: at least one broker is required", ErrInvalidConfig)
	}
	if topic == "" {
		return nil, fmt.Errorf("%w: topic cannot be empty", ErrInvalidConfig)
	}

	writer := &kafka.Writer{
		Addr:         kafka.TCP(brokers...),
		Topic:        topic,
		Balancer:     &kafka.Hash{},
		RequiredAcks: kafka.RequireAll,
		MaxAttempts:  3,
		BatchTimeout: 10 * time.Millisecond,
		Logger:       kafka.LoggerFunc(func(string, ...interface{}) {}),
		ErrorLogger:  kafka.LoggerFunc(logger.Error),
	}

	return NewPublisherWithWriter(writer, topic, timeout, logger), nil
}

// NewPublisherWithWriter создает publisher с произвольным writer
func NewPublisherWithWriter(writer MessageWriter, topic string, timeout time.Duration, logger Logger) *Publisher {
	return &Publisher{
		writer:  writer,
		topic:   topic,
		timeout: timeout,
		logger:  logger,
	}
}

// Publish синхронно отправляет событие
func (p *Publisher) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrMarshal, err)
	}

	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	msg := kafka.Message{
		Key:   []byte(strconv.FormatInt(event.StaffID, 10)),
		Value: payload,
		Time:  event.OccurredAt,
		Headers: []kafka.Header{
			{Key: "event_type", Value: []byte(event.Type)},
			{Key: "event_id", Value: []byte(event.ID)},
		},
	}

	if err := p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("%w: type=%s booking=%d: %v", ErrPublish, event.Type, event.BookingID, err)
	}

	p.logger.Info("events: published %s id=%s booking=%d topic=%s", event.Type, event.ID, event.BookingID, p.topic)
	return nil
}

// Close закрывает writer
func (p *Publisher) Close() error {
	return p.writer.Close()
}

// Noop publisher для конфигурации без Kafka
type Noop struct{}

// Publish ничего не делает
func (Noop) Publish(context.Context, Event) error { return nil }
