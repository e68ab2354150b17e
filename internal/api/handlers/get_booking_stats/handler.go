package get_booking_stats

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/stats"
	"github.com/m04kA/SMC-AppointmentService/internal/service/stats/models"
)

const (
	msgMissingUser    = "отсутствует пользователь"
	msgInvalidOwnerID = "некорректный ownerId"
	msgInvalidDate    = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgForbidden      = "доступ запрещен"
)

type Handler struct {
	service StatsService
	logger  Logger
}

func NewHandler(service StatsService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/stats?ownerId=&startDate=&endDate=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	ownerID, err := handlers.QueryInt64(r, "ownerId")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidOwnerID)
		return
	}
	startDate, err := handlers.QueryDate(r, "startDate")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}
	endDate, err := handlers.QueryDate(r, "endDate")
	if err != nil {
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	result, err := h.service.GetStats(r.Context(), &models.GetStatsRequest{
		Actor:     actor,
		OwnerID:   ownerID,
		StartDate: startDate,
		EndDate:   endDate,
	})
	if err != nil {
		switch {
		case errors.Is(err, stats.ErrAccessDenied):
			h.logger.Warn("GET /bookings/stats - Access denied: user_id=%d, owner_id=%d", actor.UserID, ownerID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, stats.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("GET /bookings/stats - Failed to get stats: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/stats - Stats retrieved: owner_id=%d, total=%d", result.OwnerID, result.TotalCount)
	handlers.RespondJSON(w, http.StatusOK, result)
}
