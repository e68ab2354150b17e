package get_my_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
)

const (
	msgMissingUser     = "отсутствует пользователь"
	msgInvalidUpcoming = "параметр upcoming должен быть true или false"
	msgInvalidStatus   = "некорректный статус бронирования"
)

type Handler struct {
	service BookingService
	logger  Logger
}

func NewHandler(service BookingService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/bookings/my?status=&upcoming=
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	var upcoming bool
	if raw := r.URL.Query().Get("upcoming"); raw != "" {
		v, err := strconv.ParseBool(raw)
		if err != nil {
			h.logger.Warn("GET /bookings/my - Invalid upcoming=%s", raw)
			handlers.RespondBadRequest(w, msgInvalidUpcoming)
			return
		}
		upcoming = v
	}

	result, err := h.service.GetMyBookings(r.Context(), &models.GetMyBookingsRequest{
		Actor:    actor,
		Status:   handlers.QueryString(r, "status"),
		Upcoming: upcoming,
	})
	if err != nil {
		switch {
		case errors.Is(err, bookings.ErrInvalidInput):
			h.logger.Warn("GET /bookings/my - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStatus)

		default:
			h.logger.Error("GET /bookings/my - Failed to get bookings: user_id=%d, error=%v", actor.UserID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /bookings/my - Bookings retrieved: user_id=%d, count=%d", actor.UserID, len(result.Bookings))
	handlers.RespondJSON(w, http.StatusOK, result)
}
