package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	directoryRepo "github.com/m04kA/SMC-AppointmentService/internal/infra/storage/directory"
	"github.com/m04kA/SMC-AppointmentService/internal/service/schedule/models"
)

// Service сервис управления исключениями из расписания сотрудников
type Service struct {
	directoryRepo DirectoryRepository
	cache         AvailabilityCache
	logger        Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(directoryRepo DirectoryRepository, cache AvailabilityCache, logger Logger) *Service {
	return &Service{
		directoryRepo: directoryRepo,
		cache:         cache,
		logger:        logger,
	}
}

// ListExceptions получает исключения сотрудника за период [startDate, endDate].
// Доступно владельцу, сотрудникам того же владельца и администратору
func (s *Service) ListExceptions(ctx context.Context, req *models.ListExceptionsRequest) (*models.ExceptionListResponse, error) {
	s.logger.Info("ListExceptions: staff=%d, user=%d", req.StaffID, req.Actor.UserID)

	staff, err := s.getStaff(ctx, "ListExceptions", req.StaffID)
	if err != nil {
		return nil, err
	}

	if !req.Actor.CanManageOwner(staff.OwnerID) {
		s.logger.Warn("ListExceptions: access denied for user=%d to staff=%d", req.Actor.UserID, staff.ID)
		return nil, ErrAccessDenied
	}

	var from, to time.Time
	if req.StartDate != nil {
		from = *req.StartDate
	}
	if req.EndDate != nil {
		to = *req.EndDate
	}
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		s.logger.Warn("ListExceptions: invalid period for staff=%d", staff.ID)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, domain.ErrInvalidDateRange)
	}

	exceptions, err := s.directoryRepo.ListExceptions(ctx, staff.ID, from, to)
	if err != nil {
		s.logger.Error("ListExceptions: repository error for staff=%d: %v", staff.ID, err)
		return nil, fmt.Errorf("%w: ListExceptions - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListExceptions: successfully fetched %d exceptions for staff=%d", len(exceptions), staff.ID)
	return models.FromDomainExceptionList(exceptions), nil
}

// UpsertException создает или заменяет исключение сотрудника на дату.
// Доступно только владельцу и администратору
func (s *Service) UpsertException(ctx context.Context, req *models.UpsertExceptionRequest) (*models.ExceptionResponse, error) {
	s.logger.Info("UpsertException: staff=%d, date=%s, type=%s, user=%d",
		req.StaffID, req.Date.Format(domain.DateFormat), req.Type, req.Actor.UserID)

	exception := req.ToDomain()
	if err := exception.Validate(); err != nil {
		s.logger.Warn("UpsertException: validation failed for staff=%d: %v", req.StaffID, err)
		return nil, fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}

	staff, err := s.getStaff(ctx, "UpsertException", req.StaffID)
	if err != nil {
		return nil, err
	}

	if req.Actor.Role == domain.RoleStaff || !req.Actor.CanManageOwner(staff.OwnerID) {
		s.logger.Warn("UpsertException: access denied for user=%d to staff=%d", req.Actor.UserID, staff.ID)
		return nil, ErrAccessDenied
	}

	saved, err := s.directoryRepo.UpsertException(ctx, exception)
	if err != nil {
		s.logger.Error("UpsertException: repository error for staff=%d: %v", staff.ID, err)
		return nil, fmt.Errorf("%w: UpsertException - repository error: %v", ErrInternal, err)
	}

	date := saved.Date.Format(domain.DateFormat)
	if err := s.cache.Invalidate(ctx, staff.ID, date); err != nil {
		s.logger.Warn("UpsertException: failed to invalidate availability cache for staff=%d date=%s: %v", staff.ID, date, err)
	}

	s.logger.Info("UpsertException: saved exception id=%d for staff=%d on %s", saved.ID, staff.ID, date)
	return models.FromDomainException(saved), nil
}

func (s *Service) getStaff(ctx context.Context, op string, id int64) (*domain.Staff, error) {
	staff, err := s.directoryRepo.GetStaff(ctx, id)
	if err != nil {
		if errors.Is(err, directoryRepo.ErrStaffNotFound) {
			s.logger.Warn("%s: staff id=%d not found", op, id)
			return nil, ErrStaffNotFound
		}
		s.logger.Error("%s: repository error for staff id=%d: %v", op, id, err)
		return nil, fmt.Errorf("%w: %s - repository error: %v", ErrInternal, op, err)
	}
	return staff, nil
}
