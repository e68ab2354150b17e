package get_available_slots

import (
	"context"
	"errors"
	"testing"
	"time"
	_ "time/tzdata"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/cache/availability"
	"github.com/m04kA/SMC-AppointmentService/internal/infra/storage/memory"
	"github.com/m04kA/SMC-AppointmentService/pkg/logger"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

type fixedTime struct{ now time.Time }

func (f fixedTime) Now() time.Time { return f.now }

type fakeCache struct {
	slots  map[string][]domain.Slot
	getErr error
	sets   int
}

func (c *fakeCache) Generation(context.Context, int64, string) (int64, error) { return 0, nil }

func (c *fakeCache) Get(_ context.Context, _ int64, date string, _, _ int64) ([]domain.Slot, bool, error) {
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	s, ok := c.slots[date]
	return s, ok, nil
}

func (c *fakeCache) Set(_ context.Context, _ int64, date string, _, _ int64, slots []domain.Slot) error {
	if c.slots == nil {
		c.slots = make(map[string][]domain.Slot)
	}
	c.slots[date] = slots
	c.sets++
	return nil
}

// 2026-10-19 - понедельник
var monday = time.Date(2026, 10, 19, 0, 0, 0, 0, time.UTC)

type fixture struct {
	store   *memory.Store
	staff   *domain.Staff
	service *domain.Service
	uc      *UseCase
}

func newFixture(t *testing.T, cache AvailabilityCache) *fixture {
	t.Helper()
	store := memory.NewStore()
	directory := store.Directory()

	staff := directory.AddStaff(domain.Staff{
		OwnerID:  1,
		Name:     "Анна",
		Timezone: "UTC",
		IsActive: true,
		WorkingHours: domain.WorkingHours{
			Monday: domain.DaySchedule{Enabled: true, Start: "09:00", End: "17:00"},
		},
	})
	service := directory.AddService(domain.Service{
		OwnerID:         1,
		Name:            "Стрижка",
		DurationMinutes: 60,
		Price:           decimal.NewFromInt(1500),
		StaffIDs:        []int64{staff.ID},
		IsActive:        true,
	})

	if cache == nil {
		cache = availability.Noop{}
	}
	uc := NewUseCase(store.Bookings(), directory, cache, 15*time.Minute, logger.Nop()).
		WithTimeProvider(fixedTime{now: monday.AddDate(0, 0, -5)})

	return &fixture{store: store, staff: staff, service: service, uc: uc}
}

func (f *fixture) request() *Request {
	return &Request{ServiceID: f.service.ID, StaffID: f.staff.ID, Date: monday}
}

func TestExecute_FullDay(t *testing.T) {
	f := newFixture(t, nil)

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)

	require.Len(t, resp.Slots, 29)
	assert.Equal(t, "09:00", resp.Slots[0].StartTime.Format(domain.TimeFormat))
	assert.Equal(t, "16:00", resp.Slots[28].StartTime.Format(domain.TimeFormat))
	assert.Equal(t, "17:00", resp.Slots[28].EndTime.Format(domain.TimeFormat))
	assert.Equal(t, "UTC", resp.Timezone)
	assert.Equal(t, 60, resp.DurationMinutes)
}

func TestExecute_StaffTimezoneDefinesLocalDate(t *testing.T) {
	cache := &fakeCache{}
	f := newFixture(t, cache)
	ctx := context.Background()
	directory := f.store.Directory()

	staff := directory.AddStaff(domain.Staff{
		OwnerID:  1,
		Name:     "Юки",
		Timezone: "Asia/Tokyo",
		IsActive: true,
		WorkingHours: domain.WorkingHours{
			Monday: domain.DaySchedule{Enabled: true, Start: "07:00", End: "17:00"},
		},
	})
	service := directory.AddService(domain.Service{
		OwnerID:         1,
		Name:            "Маникюр",
		DurationMinutes: 60,
		Price:           decimal.NewFromInt(2000),
		StaffIDs:        []int64{staff.ID},
		IsActive:        true,
	})

	// Выходной на воскресенье по UTC не закрывает понедельник по Токио
	_, err := directory.UpsertException(ctx, &domain.ScheduleException{
		StaffID: staff.ID, Date: monday.AddDate(0, 0, -1), Type: domain.ExceptionDayOff,
	})
	require.NoError(t, err)

	// 07:00-08:00 по Токио - это вечер воскресенья по UTC
	busyStart := time.Date(2026, 10, 18, 22, 0, 0, 0, time.UTC)
	_, err = f.store.Bookings().Create(ctx, &domain.Booking{
		OwnerID:   1,
		StaffID:   staff.ID,
		ServiceID: service.ID,
		StartTime: busyStart,
		EndTime:   busyStart.Add(time.Hour),
		Status:    domain.StatusConfirmed,
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(ctx, &Request{ServiceID: service.ID, StaffID: staff.ID, Date: monday})
	require.NoError(t, err)

	assert.Equal(t, "Asia/Tokyo", resp.Timezone)
	require.Len(t, resp.Slots, 33)
	assert.True(t, resp.Slots[0].StartTime.Equal(time.Date(2026, 10, 18, 23, 0, 0, 0, time.UTC)))
	assert.True(t, resp.Slots[32].EndTime.Equal(time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)))

	_, cached := cache.slots["2026-10-19"]
	assert.True(t, cached)
}

func TestExecute_ExistingBookingExcludesOverlappingSlots(t *testing.T) {
	f := newFixture(t, nil)
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	_, err := f.store.Bookings().Create(context.Background(), &domain.Booking{
		OwnerID:   1,
		StaffID:   f.staff.ID,
		ServiceID: f.service.ID,
		StartTime: start,
		EndTime:   start.Add(time.Hour),
		Status:    domain.StatusConfirmed,
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)

	require.Len(t, resp.Slots, 22)
	busy := domain.Interval{Start: start, End: start.Add(time.Hour)}
	for _, s := range resp.Slots {
		assert.False(t, busy.Overlaps(domain.Interval{Start: s.StartTime, End: s.EndTime}))
	}
}

func TestExecute_DayOff(t *testing.T) {
	f := newFixture(t, nil)
	_, err := f.store.Directory().UpsertException(context.Background(), &domain.ScheduleException{
		StaffID: f.staff.ID,
		Date:    monday,
		Type:    domain.ExceptionDayOff,
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)
	assert.NotNil(t, resp.Slots)
	assert.Empty(t, resp.Slots)
}

func TestExecute_CustomHours(t *testing.T) {
	f := newFixture(t, nil)
	start, end := types.TimeString("12:00"), types.TimeString("14:00")
	_, err := f.store.Directory().UpsertException(context.Background(), &domain.ScheduleException{
		StaffID:     f.staff.ID,
		Date:        monday,
		Type:        domain.ExceptionCustomHours,
		CustomStart: &start,
		CustomEnd:   &end,
	})
	require.NoError(t, err)

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)
	require.Len(t, resp.Slots, 5)
	assert.Equal(t, "12:00", resp.Slots[0].StartTime.Format(domain.TimeFormat))
	assert.Equal(t, "13:00", resp.Slots[4].StartTime.Format(domain.TimeFormat))
}

func TestExecute_PastSlotsAreHidden(t *testing.T) {
	f := newFixture(t, nil)
	f.uc.WithTimeProvider(fixedTime{now: time.Date(2026, 10, 19, 12, 0, 0, 0, time.UTC)})

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)
	require.NotEmpty(t, resp.Slots)
	assert.Equal(t, "12:15", resp.Slots[0].StartTime.Format(domain.TimeFormat))
}

func TestExecute_StaffMismatch(t *testing.T) {
	f := newFixture(t, nil)
	other := f.store.Directory().AddStaff(domain.Staff{OwnerID: 1, Name: "Олег", IsActive: true})

	_, err := f.uc.Execute(context.Background(), &Request{ServiceID: f.service.ID, StaffID: other.ID, Date: monday})
	assert.ErrorIs(t, err, ErrStaffMismatch)
}

func TestExecute_OtherOwnerStaff(t *testing.T) {
	f := newFixture(t, nil)
	foreign := f.store.Directory().AddStaff(domain.Staff{OwnerID: 2, Name: "Чужой", IsActive: true})
	f.service.StaffIDs = append(f.service.StaffIDs, foreign.ID)
	f.store.Directory().AddService(*f.service)

	_, err := f.uc.Execute(context.Background(), &Request{ServiceID: f.service.ID, StaffID: foreign.ID, Date: monday})
	assert.ErrorIs(t, err, ErrStaffMismatch)
}

func TestExecute_NotFound(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.uc.Execute(context.Background(), &Request{ServiceID: 999, StaffID: f.staff.ID, Date: monday})
	assert.ErrorIs(t, err, ErrServiceNotFound)

	_, err = f.uc.Execute(context.Background(), &Request{ServiceID: f.service.ID, StaffID: 999, Date: monday})
	assert.ErrorIs(t, err, ErrStaffNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	f := newFixture(t, nil)

	_, err := f.uc.Execute(context.Background(), &Request{ServiceID: 0, StaffID: 1, Date: monday})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = f.uc.Execute(context.Background(), &Request{ServiceID: 1, StaffID: 1})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_UsesCache(t *testing.T) {
	cache := &fakeCache{}
	f := newFixture(t, cache)

	first, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, 1, cache.sets)

	// Новое бронирование без инвалидации не видно: ответ берется из кэша
	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	_, err = f.store.Bookings().Create(context.Background(), &domain.Booking{
		StaffID: f.staff.ID, StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusPending,
	})
	require.NoError(t, err)

	second, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, len(first.Slots), len(second.Slots))
	assert.Equal(t, 1, cache.sets)
}

func TestExecute_CacheErrorFallsBackToStore(t *testing.T) {
	cache := &fakeCache{getErr: errors.New("redis down")}
	f := newFixture(t, cache)

	resp, err := f.uc.Execute(context.Background(), f.request())
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 29)
}

// listHookRepo вызывает afterList один раз сразу после чтения бронирований
type listHookRepo struct {
	BookingRepository
	afterList func()
}

func (r *listHookRepo) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	bookings, err := r.BookingRepository.List(ctx, filter)
	if hook := r.afterList; hook != nil {
		r.afterList = nil
		hook()
	}
	return bookings, err
}

func TestExecute_BookingBetweenListAndSetIsNotServedStale(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, nil)

	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	cache := availability.NewCache(client, 5*time.Minute)

	start := time.Date(2026, 10, 19, 10, 0, 0, 0, time.UTC)
	repo := &listHookRepo{BookingRepository: f.store.Bookings()}
	repo.afterList = func() {
		// Параллельная запись фиксируется и сбрасывает кэш до сохранения слотов
		_, err := f.store.Bookings().Create(ctx, &domain.Booking{
			StaffID: f.staff.ID, StartTime: start, EndTime: start.Add(time.Hour), Status: domain.StatusPending,
		})
		require.NoError(t, err)
		require.NoError(t, cache.Invalidate(ctx, f.staff.ID, monday.Format(domain.DateFormat)))
	}

	uc := NewUseCase(repo, f.store.Directory(), cache, 15*time.Minute, logger.Nop()).
		WithTimeProvider(fixedTime{now: monday.AddDate(0, 0, -5)})

	first, err := uc.Execute(ctx, f.request())
	require.NoError(t, err)
	assert.Len(t, first.Slots, 29)

	second, err := uc.Execute(ctx, f.request())
	require.NoError(t, err)
	for _, slot := range second.Slots {
		assert.False(t, slot.StartTime.Equal(start), "booked slot %s is still offered", start)
	}
	assert.Less(t, len(second.Slots), len(first.Slots))
}
