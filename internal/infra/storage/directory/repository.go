package directory

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// Repository справочник услуг, сотрудников и исключений из расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория справочника
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// GetService получает услугу вместе со списком сотрудников, которые могут её оказать
func (r *Repository) GetService(ctx context.Context, id int64) (*domain.Service, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"s.id",
		"s.owner_id",
		"s.name",
		"s.category",
		"s.duration_minutes",
		"s.price",
		"s.deposit_required",
		"s.deposit_amount",
		"s.deposit_percentage",
		"s.is_active",
		"s.created_at",
		"s.updated_at",
		"ARRAY(SELECT ss.staff_id FROM service_staff ss WHERE ss.service_id = s.id ORDER BY ss.staff_id)",
	).
		From("services s").
		Where(squirrel.Eq{"s.id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - build select query: %v", ErrBuildQuery, err)
	}

	var (
		service  domain.Service
		staffIDs pq.Int64Array
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&service.ID,
		&service.OwnerID,
		&service.Name,
		&service.Category,
		&service.DurationMinutes,
		&service.Price,
		&service.DepositRequired,
		&service.DepositAmount,
		&service.DepositPercentage,
		&service.IsActive,
		&service.CreatedAt,
		&service.UpdatedAt,
		&staffIDs,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrServiceNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetService - scan service: %w", ErrScanRow, err)
	}

	service.StaffIDs = []int64(staffIDs)
	return &service, nil
}

// GetStaff получает сотрудника по ID
func (r *Repository) GetStaff(ctx context.Context, id int64) (*domain.Staff, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(
		"id",
		"owner_id",
		"user_id",
		"name",
		"working_hours",
		"timezone",
		"is_active",
		"created_at",
		"updated_at",
	).
		From("staff").
		Where(squirrel.Eq{"id": id}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - build select query: %v", ErrBuildQuery, err)
	}

	var (
		staff  domain.Staff
		userID sql.NullInt64
	)
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&staff.ID,
		&staff.OwnerID,
		&userID,
		&staff.Name,
		&staff.WorkingHours,
		&staff.Timezone,
		&staff.IsActive,
		&staff.CreatedAt,
		&staff.UpdatedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrStaffNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetStaff - scan staff: %w", ErrScanRow, err)
	}

	staff.UserID = userID.Int64
	return &staff, nil
}

// LockStaff блокирует строку сотрудника до конца текущей транзакции.
// Сериализует запись бронирований одного сотрудника
func (r *Repository) LockStaff(ctx context.Context, id int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("id").
		From("staff").
		Where(squirrel.Eq{"id": id}).
		Suffix("FOR UPDATE").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: LockStaff - build select query: %v", ErrBuildQuery, err)
	}

	var lockedID int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&lockedID)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrStaffNotFound
	}
	if err != nil {
		return fmt.Errorf("%w: LockStaff - execute query: %w", ErrExecQuery, err)
	}

	return nil
}

var exceptionColumns = []string{
	"id",
	"staff_id",
	"exception_date",
	"exception_type",
	"custom_start",
	"custom_end",
	"recurrence",
	"reason",
	"created_at",
	"updated_at",
}

// GetException получает исключение сотрудника на календарную дату
func (r *Repository) GetException(ctx context.Context, staffID int64, date time.Time) (*domain.ScheduleException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(exceptionColumns...).
		From("schedule_exceptions").
		Where(squirrel.Eq{"staff_id": staffID, "exception_date": date.Format(domain.DateFormat)}).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetException - build select query: %v", ErrBuildQuery, err)
	}

	exception, err := scanException(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrExceptionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetException - scan exception: %w", ErrScanRow, err)
	}

	return exception, nil
}

// ListExceptions получает исключения сотрудника за период [from, to] включительно.
// Нулевые границы не применяются
func (r *Repository) ListExceptions(ctx context.Context, staffID int64, from, to time.Time) ([]*domain.ScheduleException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(exceptionColumns...).
		From("schedule_exceptions").
		Where(squirrel.Eq{"staff_id": staffID}).
		OrderBy("exception_date ASC")

	if !from.IsZero() {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"exception_date": from.Format(domain.DateFormat)})
	}
	if !to.IsZero() {
		selectBuilder = selectBuilder.Where(squirrel.LtOrEq{"exception_date": to.Format(domain.DateFormat)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: ListExceptions - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: ListExceptions - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	exceptions := make([]*domain.ScheduleException, 0)
	for rows.Next() {
		exception, err := scanException(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: ListExceptions - scan exception: %w", ErrScanRow, err)
		}
		exceptions = append(exceptions, exception)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: ListExceptions - rows error: %w", ErrScanRow, err)
	}

	return exceptions, nil
}

// UpsertException создает или заменяет исключение сотрудника на дату.
// Уникальность (staff_id, exception_date) обеспечивается индексом
func (r *Repository) UpsertException(ctx context.Context, exception *domain.ScheduleException) (*domain.ScheduleException, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	recurrence, err := marshalRecurrence(exception.Recurrence)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertException - marshal recurrence: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert("schedule_exceptions").
		Columns(
			"staff_id",
			"exception_date",
			"exception_type",
			"custom_start",
			"custom_end",
			"recurrence",
			"reason",
		).
		Values(
			exception.StaffID,
			exception.Date.Format(domain.DateFormat),
			exception.Type,
			exception.CustomStart,
			exception.CustomEnd,
			recurrence,
			exception.Reason,
		).
		Suffix(`ON CONFLICT (staff_id, exception_date) DO UPDATE SET
			exception_type = EXCLUDED.exception_type,
			custom_start = EXCLUDED.custom_start,
			custom_end = EXCLUDED.custom_end,
			recurrence = EXCLUDED.recurrence,
			reason = EXCLUDED.reason,
			updated_at = NOW()
		RETURNING id, created_at, updated_at`).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertException - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&exception.ID,
		&exception.CreatedAt,
		&exception.UpdatedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("%w: UpsertException - execute insert: %w", ErrExecQuery, err)
	}

	return exception, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanException(row rowScanner) (*domain.ScheduleException, error) {
	var (
		exception   domain.ScheduleException
		customStart types.TimeString
		customEnd   types.TimeString
		recurrence  []byte
	)
	err := row.Scan(
		&exception.ID,
		&exception.StaffID,
		&exception.Date,
		&exception.Type,
		&customStart,
		&customEnd,
		&recurrence,
		&exception.Reason,
		&exception.CreatedAt,
		&exception.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if !customStart.IsZero() {
		exception.CustomStart = &customStart
	}
	if !customEnd.IsZero() {
		exception.CustomEnd = &customEnd
	}
	if len(recurrence) > 0 {
		var rec domain.Recurrence
		if err := json.Unmarshal(recurrence, &rec); err != nil {
			return nil, fmt.Errorf("unmarshal recurrence: %v", err)
		}
		exception.Recurrence = &rec
	}

	return &exception, nil
}

func marshalRecurrence(rec *domain.Recurrence) (interface{}, error) {
	if rec == nil {
		return nil, nil
	}
	raw, err := json.Marshal(rec)
	if err != nil {
		return nil, err
	}
	return string(raw), nil
}
