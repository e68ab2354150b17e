package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type recordingCache struct{ invalidated []string }

func (c *recordingCache) Invalidate(_ context.Context, _ int64, date string) error {
	c.invalidated = append(c.invalidated, date)
	return nil
}

var (
	owner = domain.Actor{UserID: 100, Role: domain.RoleOwner, OwnerID: 1}
	day   = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
)

func newService(t *testing.T) (*Service, *domain.Staff, *recordingCache) {
	t.Helper()
	store := memory.NewStore()
	staff := store.Directory().AddStaff(domain.Staff{OwnerID: 1, Name: "Анна", IsActive: true})
	cache := &recordingCache{}
	return NewService(store.Directory(), cache, logger.Nop()), staff, cache
}

func TestUpsertException(t *testing.T) {
	svc, staff, cache := newService(t)

	resp, err := svc.UpsertException(context.Background(), &models.UpsertExceptionRequest{
		Actor:   owner,
		StaffID: staff.ID,
		Date:    day,
		Type:    "day_off",
		Reason:  ptr.Ptr("отпуск"),
	})
	require.NoError(t, err)
	assert.Equal(t, "2026-10-19", resp.Date)
	assert.Equal(t, "day_off", resp.Type)
	assert.Equal(t, []string{"2026-10-19"}, cache.invalidated)

	// Повторная запись на ту же дату заменяет исключение
	replaced, err := svc.UpsertException(context.Background(), &models.UpsertExceptionRequest{
		Actor:       owner,
		StaffID:     staff.ID,
		Date:        day,
		Type:        "custom_hours",
		CustomStart: ptr.Ptr(types.TimeString("12:00")),
		CustomEnd:   ptr.Ptr(types.TimeString("15:00")),
	})
	require.NoError(t, err)
	assert.Equal(t, resp.ID, replaced.ID)
	assert.Equal(t, "custom_hours", replaced.Type)

	list, err := svc.ListExceptions(context.Background(), &models.ListExceptionsRequest{Actor: owner, StaffID: staff.ID})
	require.NoError(t, err)
	assert.Len(t, list.Exceptions, 1)
}

func TestUpsertException_Validation(t *testing.T) {
	svc, staff, _ := newService(t)

	tests := []struct {
		name string
		req  *models.UpsertExceptionRequest
	}{
		{name: "unknown type", req: &models.UpsertExceptionRequest{Type: "vacation"}},
		{name: "custom hours without bounds", req: &models.UpsertExceptionRequest{Type: "custom_hours"}},
		{name: "inverted bounds", req: &models.UpsertExceptionRequest{
			Type:        "blocked",
			CustomStart: ptr.Ptr(types.TimeString("15:00")),
			CustomEnd:   ptr.Ptr(types.TimeString("12:00")),
		}},
		{name: "bad recurrence", req: &models.UpsertExceptionRequest{
			Type:       "day_off",
			Recurrence: &domain.Recurrence{Frequency: "weekly"},
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tt.req.Actor = owner
			tt.req.StaffID = staff.ID
			tt.req.Date = day
			_, err := svc.UpsertException(context.Background(), tt.req)
			assert.ErrorIs(t, err, ErrInvalidInput)
		})
	}
}

func TestUpsertException_Access(t *testing.T) {
	svc, staff, _ := newService(t)

	for _, actor := range []domain.Actor{
		{UserID: 5, Role: domain.RoleStaff, OwnerID: 1},
		{UserID: 6, Role: domain.RoleOwner, OwnerID: 2},
		{UserID: 7, Role: domain.RoleCustomer},
	} {
		_, err := svc.UpsertException(context.Background(), &models.UpsertExceptionRequest{
			Actor: actor, StaffID: staff.ID, Date: day, Type: "day_off",
		})
		assert.ErrorIs(t, err, ErrAccessDenied, actor.Role)
	}

	_, err := svc.UpsertException(context.Background(), &models.UpsertExceptionRequest{
		Actor: domain.Actor{UserID: 1, Role: domain.RoleAdmin}, StaffID: staff.ID, Date: day, Type: "day_off",
	})
	assert.NoError(t, err)
}

func TestListExceptions(t *testing.T) {
	svc, staff, _ := newService(t)
	for i := 0; i < 3; i++ {
		_, err := svc.UpsertException(context.Background(), &models.UpsertExceptionRequest{
			Actor: owner, StaffID: staff.ID, Date: day.AddDate(0, 0, i*7), Type: "day_off",
		})
		require.NoError(t, err)
	}

	from, to := day.AddDate(0, 0, 1), day.AddDate(0, 0, 14)
	resp, err := svc.ListExceptions(context.Background(), &models.ListExceptionsRequest{
		Actor:     domain.Actor{UserID: 5, Role: domain.RoleStaff, OwnerID: 1},
		StaffID:   staff.ID,
		StartDate: &from,
		EndDate:   &to,
	})
	require.NoError(t, err)
	require.Len(t, resp.Exceptions, 2)
	assert.Equal(t, "2026-10-26", resp.Exceptions[0].Date)
	assert.Equal(t, "2026-11-02", resp.Exceptions[1].Date)

	_, err = svc.ListExceptions(context.Background(), &models.ListExceptionsRequest{
		Actor: domain.Actor{UserID: 7, Role: domain.RoleCustomer}, StaffID: staff.ID,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.ListExceptions(context.Background(), &models.ListExceptionsRequest{Actor: owner, StaffID: 999})
	assert.ErrorIs(t, err, ErrStaffNotFound)

	_, err = svc.ListExceptions(context.Background(), &models.ListExceptionsRequest{
		Actor: owner, StaffID: staff.ID, StartDate: &to, EndDate: &from,
	})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
