package stats

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/service/stats/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
)

type mockBookingRepository struct {
	ListFunc func(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error)
}

func (m *mockBookingRepository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	return m.ListFunc(ctx, filter)
}

func booking(status domain.BookingStatus, price int64) *domain.Booking {
	return &domain.Booking{OwnerID: 1, Status: status, ServicePrice: decimal.NewFromInt(price)}
}

func TestAggregate(t *testing.T) {
	stats := Aggregate([]*domain.Booking{
		booking(domain.StatusCompleted, 1000),
		booking(domain.StatusCompleted, 1500),
		booking(domain.StatusConfirmed, 700),
		booking(domain.StatusCancelled, 2000),
		booking(domain.StatusNoShow, 300),
	})

	assert.Equal(t, 5, stats.TotalCount)
	assert.True(t, decimal.NewFromInt(3200).Equal(stats.TotalRevenue), stats.TotalRevenue.String())

	require.Len(t, stats.ByStatus, len(domain.AllStatuses))
	for i, st := range stats.ByStatus {
		assert.Equal(t, domain.AllStatuses[i], st.Status)
	}

	completed := stats.ByStatus[3]
	assert.Equal(t, domain.StatusCompleted, completed.Status)
	assert.Equal(t, 2, completed.Count)
	assert.True(t, decimal.NewFromInt(2500).Equal(completed.Revenue))

	pending := stats.ByStatus[0]
	assert.Equal(t, 0, pending.Count)
	assert.True(t, pending.Revenue.IsZero())
}

func TestAggregate_Empty(t *testing.T) {
	stats := Aggregate(nil)
	assert.Zero(t, stats.TotalCount)
	assert.True(t, stats.TotalRevenue.IsZero())
	assert.Len(t, stats.ByStatus, len(domain.AllStatuses))
}

func TestGetStats(t *testing.T) {
	var captured domain.BookingFilter
	repo := &mockBookingRepository{
		ListFunc: func(_ context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
			captured = filter
			return []*domain.Booking{booking(domain.StatusCompleted, 1000)}, nil
		},
	}
	svc := NewService(repo, logger.Nop())

	start := time.Date(2026, 10, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2026, 10, 31, 0, 0, 0, 0, time.UTC)

	resp, err := svc.GetStats(context.Background(), &models.GetStatsRequest{
		Actor:     domain.Actor{UserID: 10, Role: domain.RoleOwner, OwnerID: 1},
		StartDate: &start,
		EndDate:   &end,
	})
	require.NoError(t, err)

	assert.Equal(t, int64(1), resp.OwnerID)
	assert.Equal(t, 1, resp.TotalCount)
	require.NotNil(t, captured.OwnerID)
	assert.Equal(t, int64(1), *captured.OwnerID)
	assert.Equal(t, start, *captured.StartFrom)
	assert.Equal(t, time.Date(2026, 11, 1, 0, 0, 0, 0, time.UTC), *captured.StartTo)
}

func TestGetStats_Errors(t *testing.T) {
	repo := &mockBookingRepository{
		ListFunc: func(context.Context, domain.BookingFilter) ([]*domain.Booking, error) {
			return nil, errors.New("db down")
		},
	}
	svc := NewService(repo, logger.Nop())

	_, err := svc.GetStats(context.Background(), &models.GetStatsRequest{
		Actor: domain.Actor{UserID: 1, Role: domain.RoleAdmin},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetStats(context.Background(), &models.GetStatsRequest{
		Actor: domain.Actor{UserID: 5, Role: domain.RoleCustomer},
	})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = svc.GetStats(context.Background(), &models.GetStatsRequest{
		Actor: domain.Actor{UserID: 1, Role: domain.RoleAdmin}, OwnerID: 1,
	})
	assert.ErrorIs(t, err, ErrInternal)
}
