package booking

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/dbmetrics"
	"github.com/m04kA/SMC-AppointmentService/pkg/psqlbuilder"
)

const tableBookings = "bookings"

var bookingColumns = []string{
	"id",
	"owner_id",
	"service_id",
	"staff_id",
	"customer_id",
	"start_time",
	"end_time",
	"duration_minutes",
	"status",
	"payment_status",
	"deposit_required",
	"deposit_amount",
	"deposit_paid",
	"service_name",
	"service_price",
	"staff_name",
	"customer_name",
	"customer_phone",
	"customer_email",
	"notes",
	"cancellation_reason",
	"cancelled_by",
	"cancelled_at",
	"reminder_sent",
	"version",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с бронированиями
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория бронирований
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новое бронирование.
// Пересечение с активным бронированием того же сотрудника отклоняется
// ограничением bookings_no_overlap и возвращается как ErrOverlap
func (r *Repository) Create(ctx context.Context, booking *domain.Booking) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert(tableBookings).
		Columns(
			"owner_id",
			"service_id",
			"staff_id",
			"customer_id",
			"start_time",
			"end_time",
			"duration_minutes",
			"status",
			"payment_status",
			"deposit_required",
			"deposit_amount",
			"deposit_paid",
			"service_name",
			"service_price",
			"staff_name",
			"customer_name",
			"customer_phone",
			"customer_email",
			"notes",
		).
		Values(
			booking.OwnerID,
			booking.ServiceID,
			booking.StaffID,
			booking.CustomerID,
			booking.StartTime,
			booking.EndTime,
			booking.DurationMinutes,
			booking.Status,
			booking.PaymentStatus,
			booking.DepositRequired,
			booking.DepositAmount,
			booking.DepositPaid,
			booking.ServiceName,
			booking.ServicePrice,
			booking.StaffName,
			booking.CustomerName,
			booking.CustomerPhone,
			booking.CustomerEmail,
			booking.Notes,
		).
		Suffix("RETURNING id, version, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&booking.ID,
		&booking.Version,
		&booking.CreatedAt,
		&booking.UpdatedAt,
	)
	if err != nil {
		if isExclusionViolation(err) {
			return nil, fmt.Errorf("%w: staff=%d", ErrOverlap, booking.StaffID)
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %w", ErrExecQuery, err)
	}

	return booking, nil
}

// GetByID получает бронирование по ID.
// Внутри транзакции строка блокируется (FOR UPDATE)
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).
		From(tableBookings).
		Where(squirrel.Eq{"id": id})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	booking, err := scanBooking(executor.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrBookingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan booking: %w", ErrScanRow, err)
	}

	return booking, nil
}

// List получает бронирования по фильтру
//
// Примеры:
//
// 1. Активные бронирования сотрудника, пересекающие интервал (проверка конфликтов):
//
//	filter := domain.BookingFilter{StaffID: &staffID, Statuses: domain.ActiveStatuses, Overlapping: &interval}
//
// 2. Будущие бронирования покупателя:
//
//	filter := domain.BookingFilter{CustomerID: &userID, StartFrom: &now, OrderAsc: true}
func (r *Repository) List(ctx context.Context, filter domain.BookingFilter) ([]*domain.Booking, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(bookingColumns...).From(tableBookings)

	if filter.OwnerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"owner_id": *filter.OwnerID})
	}
	if filter.StaffID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"staff_id": *filter.StaffID})
	}
	if filter.CustomerID != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"customer_id": *filter.CustomerID})
	}
	if len(filter.Statuses) > 0 {
		statuses := make([]string, len(filter.Statuses))
		for i, s := range filter.Statuses {
			statuses[i] = string(s)
		}
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": statuses})
	}
	if filter.StartFrom != nil {
		selectBuilder = selectBuilder.Where(squirrel.GtOrEq{"start_time": *filter.StartFrom})
	}
	if filter.StartTo != nil {
		selectBuilder = selectBuilder.Where(squirrel.Lt{"start_time": *filter.StartTo})
	}
	if filter.Overlapping != nil {
		// Полуоткрытые интервалы: start < to AND from < end
		selectBuilder = selectBuilder.
			Where(squirrel.Lt{"start_time": filter.Overlapping.End}).
			Where(squirrel.Gt{"end_time": filter.Overlapping.Start})
	}
	if filter.ExcludeID != nil {
		selectBuilder = selectBuilder.Where(squirrel.NotEq{"id": *filter.ExcludeID})
	}

	if filter.OrderAsc {
		selectBuilder = selectBuilder.OrderBy("start_time ASC", "id ASC")
	} else {
		selectBuilder = selectBuilder.OrderBy("start_time DESC", "id DESC")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: List - execute query: %w", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanBookings(rows)
}

// UpdateStatus сохраняет booking.Status при совпадении версии
func (r *Repository) UpdateStatus(ctx context.Context, booking *domain.Booking) error {
	update := psqlbuilder.Update(tableBookings).
		Set("status", booking.Status)

	return r.updateVersioned(ctx, "UpdateStatus", booking, update)
}

// Cancel сохраняет отмену: статус, причину, роль отменившего и время отмены
func (r *Repository) Cancel(ctx context.Context, booking *domain.Booking) error {
	update := psqlbuilder.Update(tableBookings).
		Set("status", booking.Status).
		Set("cancellation_reason", booking.CancellationReason).
		Set("cancelled_by", booking.CancelledBy).
		Set("cancelled_at", booking.CancelledAt)

	return r.updateVersioned(ctx, "Cancel", booking, update)
}

// Reschedule сохраняет новые границы бронирования
func (r *Repository) Reschedule(ctx context.Context, booking *domain.Booking) error {
	update := psqlbuilder.Update(tableBookings).
		Set("start_time", booking.StartTime).
		Set("end_time", booking.EndTime)

	err := r.updateVersioned(ctx, "Reschedule", booking, update)
	if err != nil && isExclusionViolation(err) {
		return fmt.Errorf("%w: staff=%d", ErrOverlap, booking.StaffID)
	}
	return err
}

// updateVersioned выполняет UPDATE ... WHERE id AND version и обновляет версию в booking.
// Если строка не найдена с ожидаемой версией, возвращает ErrVersionConflict
func (r *Repository) updateVersioned(
	ctx context.Context,
	op string,
	booking *domain.Booking,
	update squirrel.UpdateBuilder,
) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := update.
		Set("version", squirrel.Expr("version + 1")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": booking.ID, "version": booking.Version}).
		Suffix("RETURNING version, updated_at").
		ToSql()
	if err != nil {
		return fmt.Errorf("%w: %s - build update query: %v", ErrBuildQuery, op, err)
	}

	err = executor.QueryRowContext(ctx, query, args...).Scan(&booking.Version, &booking.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: booking id=%d version=%d", ErrVersionConflict, booking.ID, booking.Version)
	}
	if err != nil {
		if isExclusionViolation(err) {
			return err
		}
		return fmt.Errorf("%w: %s - execute update: %w", ErrExecQuery, op, err)
	}

	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBooking(row rowScanner) (*domain.Booking, error) {
	var b domain.Booking
	err := row.Scan(
		&b.ID,
		&b.OwnerID,
		&b.ServiceID,
		&b.StaffID,
		&b.CustomerID,
		&b.StartTime,
		&b.EndTime,
		&b.DurationMinutes,
		&b.Status,
		&b.PaymentStatus,
		&b.DepositRequired,
		&b.DepositAmount,
		&b.DepositPaid,
		&b.ServiceName,
		&b.ServicePrice,
		&b.StaffName,
		&b.CustomerName,
		&b.CustomerPhone,
		&b.CustomerEmail,
		&b.Notes,
		&b.CancellationReason,
		&b.CancelledBy,
		&b.CancelledAt,
		&b.ReminderSent,
		&b.Version,
		&b.CreatedAt,
		&b.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

func scanBookings(rows *sql.Rows) ([]*domain.Booking, error) {
	bookings := make([]*domain.Booking, 0)
	for rows.Next() {
		b, err := scanBooking(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan booking: %w", ErrScanRow, err)
		}
		bookings = append(bookings, b)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %w", ErrScanRow, err)
	}

	return bookings, nil
}
