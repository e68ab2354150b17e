package memory

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	bookingRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/booking"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/pkg/ptr"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

var base = time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)

func newBooking(staffID int64, start time.Time, status domain.BookingStatus) *domain.Booking {
	return &domain.Booking{
		OwnerID:    1,
		StaffID:    staffID,
		CustomerID: 100,
		StartTime:  start,
		EndTime:    start.Add(time.Hour),
		Status:     status,
	}
}

func TestBookingRepository_CreateRejectsOverlap(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Bookings()

	first, err := repo.Create(ctx, newBooking(1, base, domain.StatusPending))
	require.NoError(t, err)
	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, 1, first.Version)

	_, err = repo.Create(ctx, newBooking(1, base.Add(30*time.Minute), domain.StatusPending))
	assert.ErrorIs(t, err, bookingRepo.ErrOverlap)

	// Другой сотрудник и соседний интервал не конфликтуют
	_, err = repo.Create(ctx, newBooking(2, base, domain.StatusPending))
	assert.NoError(t, err)
	_, err = repo.Create(ctx, newBooking(1, base.Add(time.Hour), domain.StatusPending))
	assert.NoError(t, err)
}

func TestBookingRepository_CancelledDoesNotBlock(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Bookings()

	b, err := repo.Create(ctx, newBooking(1, base, domain.StatusPending))
	require.NoError(t, err)

	b.Status = domain.StatusCancelled
	require.NoError(t, repo.Cancel(ctx, b))

	_, err = repo.Create(ctx, newBooking(1, base, domain.StatusPending))
	assert.NoError(t, err)
}

func TestBookingRepository_VersionGuard(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Bookings()

	created, err := repo.Create(ctx, newBooking(1, base, domain.StatusPending))
	require.NoError(t, err)

	first, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	second, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)

	first.Status = domain.StatusConfirmed
	require.NoError(t, repo.UpdateStatus(ctx, first))
	assert.Equal(t, 2, first.Version)

	second.Status = domain.StatusCancelled
	err = repo.Cancel(ctx, second)
	assert.ErrorIs(t, err, bookingRepo.ErrVersionConflict)

	stored, err := repo.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusConfirmed, stored.Status)
}

func TestBookingRepository_RescheduleExcludesItself(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Bookings()

	b, err := repo.Create(ctx, newBooking(1, base, domain.StatusConfirmed))
	require.NoError(t, err)
	_, err = repo.Create(ctx, newBooking(1, base.Add(2*time.Hour), domain.StatusConfirmed))
	require.NoError(t, err)

	// Сдвиг на 30 минут пересекается только с самим собой
	b.StartTime = base.Add(30 * time.Minute)
	b.EndTime = b.StartTime.Add(time.Hour)
	require.NoError(t, repo.Reschedule(ctx, b))

	b.StartTime = base.Add(90 * time.Minute)
	b.EndTime = b.StartTime.Add(time.Hour)
	assert.ErrorIs(t, repo.Reschedule(ctx, b), bookingRepo.ErrOverlap)
}

func TestBookingRepository_List(t *testing.T) {
	ctx := context.Background()
	repo := NewStore().Bookings()

	for i := 0; i < 3; i++ {
		_, err := repo.Create(ctx, newBooking(1, base.Add(time.Duration(i)*2*time.Hour), domain.StatusPending))
		require.NoError(t, err)
	}
	_, err := repo.Create(ctx, newBooking(2, base, domain.StatusConfirmed))
	require.NoError(t, err)

	all, err := repo.List(ctx, domain.BookingFilter{StaffID: ptr.Ptr(int64(1)), OrderAsc: true})
	require.NoError(t, err)
	require.Len(t, all, 3)
	assert.True(t, all[0].StartTime.Before(all[1].StartTime))

	desc, err := repo.List(ctx, domain.BookingFilter{StaffID: ptr.Ptr(int64(1))})
	require.NoError(t, err)
	assert.True(t, desc[0].StartTime.After(desc[1].StartTime))

	overlapping, err := repo.List(ctx, domain.BookingFilter{
		Overlapping: &domain.Interval{Start: base.Add(30 * time.Minute), End: base.Add(150 * time.Minute)},
	})
	require.NoError(t, err)
	assert.Len(t, overlapping, 3)

	confirmed, err := repo.List(ctx, domain.BookingFilter{Statuses: []domain.BookingStatus{domain.StatusConfirmed}})
	require.NoError(t, err)
	require.Len(t, confirmed, 1)
	assert.Equal(t, int64(2), confirmed[0].StaffID)
}

func TestTxManager_RollbackOnError(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Bookings()
	boom := errors.New("boom")

	err := store.TxManager().DoSerializable(ctx, func(txCtx context.Context) error {
		if _, err := repo.Create(txCtx, newBooking(1, base, domain.StatusPending)); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	all, err := repo.List(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Empty(t, all)
}

func TestTxManager_RollbackRestoresOnlyTouchedKeys(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	repo := store.Bookings()
	directory := store.Directory()
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	committed, err := repo.Create(ctx, newBooking(1, base, domain.StatusPending))
	require.NoError(t, err)
	_, err = directory.UpsertException(ctx, &domain.ScheduleException{StaffID: 1, Date: day, Type: domain.ExceptionDayOff})
	require.NoError(t, err)

	boom := errors.New("boom")
	err = store.TxManager().DoSerializable(ctx, func(txCtx context.Context) error {
		b, err := repo.GetByID(txCtx, committed.ID)
		if err != nil {
			return err
		}
		b.Status = domain.StatusCancelled
		if err := repo.Cancel(txCtx, b); err != nil {
			return err
		}
		if _, err := repo.Create(txCtx, newBooking(2, base, domain.StatusPending)); err != nil {
			return err
		}
		if _, err := directory.UpsertException(txCtx, &domain.ScheduleException{
			StaffID: 1, Date: day.AddDate(0, 0, 1), Type: domain.ExceptionDayOff,
		}); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)

	restored, err := repo.GetByID(ctx, committed.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPending, restored.Status)
	assert.Equal(t, 1, restored.Version)

	all, err := repo.List(ctx, domain.BookingFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 1)

	_, err = directory.GetException(ctx, 1, day)
	assert.NoError(t, err)
	_, err = directory.GetException(ctx, 1, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, directoryRepo.ErrExceptionNotFound)
}

func TestTxManager_RollbackKeepsConcurrentWrite(t *testing.T) {
	ctx := context.Background()
	store := NewStore()
	directory := store.Directory()
	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

	done := make(chan error, 1)
	boom := errors.New("boom")

	err := store.TxManager().DoSerializable(ctx, func(txCtx context.Context) error {
		// Запись вне единицы работы, пока транзакция не завершена
		go func() {
			_, err := directory.UpsertException(ctx, &domain.ScheduleException{
				StaffID: 1, Date: day, Type: domain.ExceptionDayOff,
			})
			done <- err
		}()
		time.Sleep(20 * time.Millisecond)
		return boom
	})
	require.ErrorIs(t, err, boom)
	require.NoError(t, <-done)

	got, err := directory.GetException(ctx, 1, day)
	require.NoError(t, err)
	assert.Equal(t, domain.ExceptionDayOff, got.Type)
}

func TestTxManager_Nested(t *testing.T) {
	ctx := context.Background()
	tx := NewStore().TxManager()

	calls := 0
	err := tx.DoSerializable(ctx, func(txCtx context.Context) error {
		return tx.Do(txCtx, func(context.Context) error {
			calls++
			return nil
		})
	})
	require.NoError(t, err)
	assert.Equal(t, 1, calls)
}

func TestDirectoryRepository(t *testing.T) {
	ctx := context.Background()
	directory := NewStore().Directory()

	staff := directory.AddStaff(domain.Staff{OwnerID: 1, Name: "Анна", Timezone: "Europe/Moscow", IsActive: true})
	service := directory.AddService(domain.Service{OwnerID: 1, Name: "Стрижка", DurationMinutes: 60, StaffIDs: []int64{staff.ID}})

	gotService, err := directory.GetService(ctx, service.ID)
	require.NoError(t, err)
	assert.Equal(t, []int64{staff.ID}, gotService.StaffIDs)

	_, err = directory.GetStaff(ctx, 999)
	assert.ErrorIs(t, err, directoryRepo.ErrStaffNotFound)
	assert.ErrorIs(t, directory.LockStaff(ctx, 999), directoryRepo.ErrStaffNotFound)

	day := time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)
	first, err := directory.UpsertException(ctx, &domain.ScheduleException{StaffID: staff.ID, Date: day, Type: domain.ExceptionDayOff})
	require.NoError(t, err)

	second, err := directory.UpsertException(ctx, &domain.ScheduleException{
		StaffID:     staff.ID,
		Date:        day,
		Type:        domain.ExceptionCustomHours,
		CustomStart: ptr.Ptr(types.TimeString("10:00")),
		CustomEnd:   ptr.Ptr(types.TimeString("12:00")),
	})
	require.NoError(t, err)
	assert.Equal(t, first.ID, second.ID)

	got, err := directory.GetException(ctx, staff.ID, day)
	require.NoError(t, err)
	assert.Equal(t, domain.ExceptionCustomHours, got.Type)

	_, err = directory.GetException(ctx, staff.ID, day.AddDate(0, 0, 1))
	assert.ErrorIs(t, err, directoryRepo.ErrExceptionNotFound)

	_, err = directory.UpsertException(ctx, &domain.ScheduleException{StaffID: staff.ID, Date: day.AddDate(0, 0, 3), Type: domain.ExceptionDayOff})
	require.NoError(t, err)

	list, err := directory.ListExceptions(ctx, staff.ID, day, day.AddDate(0, 0, 1))
	require.NoError(t, err)
	assert.Len(t, list, 1)

	list, err = directory.ListExceptions(ctx, staff.ID, time.Time{}, time.Time{})
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestLoadSeed(t *testing.T) {
	content := `
[[staff]]
id = 7
owner_id = 1
name = "Анна"
timezone = "Europe/Moscow"
is_active = true

[staff.working_hours.monday]
enabled = true
start = "09:00"
end = "17:00"

[[services]]
id = 3
owner_id = 1
name = "Стрижка"
duration_minutes = 60
price = "1500.00"
deposit_percentage = "10"
staff_ids = [7]
is_active = true
`
	path := filepath.Join(t.TempDir(), "seed.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	seed, err := LoadSeed(path)
	require.NoError(t, err)

	store := NewStore()
	require.NoError(t, store.Apply(seed))

	staff, err := store.Directory().GetStaff(context.Background(), 7)
	require.NoError(t, err)
	assert.True(t, staff.WorkingHours.Monday.Enabled)
	assert.Equal(t, types.TimeString("09:00"), staff.WorkingHours.Monday.Start)

	service, err := store.Directory().GetService(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, "150", service.ComputedDeposit().String())
}

func TestApply_RejectsInvalidService(t *testing.T) {
	seed := &Seed{Services: []SeedService{{ID: 1, DurationMinutes: 1}}}
	assert.ErrorIs(t, NewStore().Apply(seed), ErrInvalidSeed)
}
