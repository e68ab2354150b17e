package events

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type fakeWriter struct {
	messages []kafka.Message
	err      error
	closed   bool
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.messages = append(w.messages, msgs...)
	return nil
}

func (w *fakeWriter) Close() error {
	w.closed = true
	return nil
}

func testBooking() *domain.Booking {
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	role := domain.RoleCustomer
	reason := "заболел"
	return &domain.Booking{
		ID:                 42,
		OwnerID:            1,
		StaffID:            7,
		CustomerID:         100,
		Status:             domain.StatusCancelled,
		StartTime:          start,
		EndTime:            start.Add(time.Hour),
		CancelledBy:        &role,
		CancellationReason: &reason,
	}
}

func TestPublisher_Publish(t *testing.T) {
	writer := &fakeWriter{}
	publisher := NewPublisherWithWriter(writer, "booking-events", time.Second, logger.Nop())
	occurred := time.Date(2026, 10, 14, 12, 0, 0, 0, time.UTC)

	event := NewBookingEvent(TypeBookingCancelled, testBooking(), occurred)
	require.NoError(t, publisher.Publish(context.Background(), event))

	require.Len(t, writer.messages, 1)
	msg := writer.messages[0]
	assert.Equal(t, "7", string(msg.Key))
	assert.Equal(t, occurred, msg.Time)

	var decoded Event
	require.NoError(t, json.Unmarshal(msg.Value, &decoded))
	assert.Equal(t, TypeBookingCancelled, decoded.Type)
	assert.Equal(t, int64(42), decoded.BookingID)
	assert.NotEmpty(t, decoded.ID)
	require.NotNil(t, decoded.CancelledBy)
	assert.Equal(t, "customer", *decoded.CancelledBy)

	require.NoError(t, publisher.Close())
	assert.True(t, writer.closed)
}

func TestPublisher_PublishError(t *testing.T) {
	writer := &fakeWriter{err: errors.New("broker down")}
	publisher := NewPublisherWithWriter(writer, "booking-events", 0, logger.Nop())

	err := publisher.Publish(context.Background(), NewBookingEvent(TypeBookingCreated, testBooking(), time.Now()))
	assert.ErrorIs(t, err, ErrPublish)
}

func TestNewPublisher_InvalidConfig(t *testing.T) {
	_, err := NewPublisher(nil, "topic", time.Second, logger.Nop())
	assert.ErrorIs(t, err, ErrInvalidConfig)

	_, err = NewPublisher([]string{"localhost:9092"}, "", time.Second, logger.Nop())
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestNewBookingEvent_UniqueIDs(t *testing.T) {
	b := testBooking()
	a := NewBookingEvent(TypeBookingCreated, b, time.Now())
	c := NewBookingEvent(TypeBookingCreated, b, time.Now())
	assert.NotEqual(t, a.ID, c.ID)
}
