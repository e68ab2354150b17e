package reschedule_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/SMC-AppointmentService/internal/api/handlers"
	"github.com/m04kA/SMC-AppointmentService/internal/api/middleware"
	"github.com/m04kA/SMC-AppointmentService/internal/service/bookings/models"
	rescheduleBooking "github.com/m04kA/SMC-AppointmentService/internal/usecase/reschedule_booking"
)

const (
	msgInvalidBookingID       = "некорректный ID бронирования"
	msgInvalidRequestBody     = "некорректное тело запроса"
	msgMissingUser            = "отсутствует пользователь"
	msgNotFound               = "бронирование не найдено"
	msgForbidden              = "доступ запрещен"
	msgRescheduleNotAllowed   = "бронирование нельзя перенести"
	msgBookingConflict        = "выбранное время уже занято"
	msgOutsideWorkingHours    = "выбранное время вне рабочих часов сотрудника"
	msgConcurrentModification = "бронирование было изменено, повторите запрос"
)

type Handler struct {
	useCase RescheduleBookingUseCase
	logger  Logger
}

func NewHandler(useCase RescheduleBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings/{bookingId}/reschedule
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	bookingID, err := handlers.PathInt64(r, "bookingId")
	if err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid booking ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidBookingID)
		return
	}

	actor, ok := middleware.GetActor(r.Context())
	if !ok {
		handlers.RespondUnauthorized(w, msgMissingUser)
		return
	}

	var req RescheduleBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings/{id}/reschedule - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	if err := handlers.Validate(req); err != nil {
		handlers.RespondBadRequest(w, err.Error())
		return
	}

	result, err := h.useCase.Execute(r.Context(), &rescheduleBooking.Request{
		Actor:        actor,
		BookingID:    bookingID,
		NewStartTime: req.NewStartTime,
	})
	if err != nil {
		switch {
		case errors.Is(err, rescheduleBooking.ErrBookingNotFound):
			h.logger.Warn("POST /bookings/{id}/reschedule - Booking not found: booking_id=%d", bookingID)
			handlers.RespondNotFound(w, msgNotFound)

		case errors.Is(err, rescheduleBooking.ErrAccessDenied):
			h.logger.Warn("POST /bookings/{id}/reschedule - Access denied: booking_id=%d, user_id=%d", bookingID, actor.UserID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, rescheduleBooking.ErrRescheduleNotAllowed):
			h.logger.Warn("POST /bookings/{id}/reschedule - Not allowed: booking_id=%d", bookingID)
			handlers.RespondError(w, http.StatusBadRequest, handlers.CodeRescheduleNotAllowed, msgRescheduleNotAllowed)

		case errors.Is(err, rescheduleBooking.ErrBookingConflict):
			h.logger.Warn("POST /bookings/{id}/reschedule - Booking conflict: booking_id=%d, start=%s", bookingID, req.NewStartTime)
			handlers.RespondError(w, http.StatusConflict, handlers.CodeBookingConflict, msgBookingConflict)

		case errors.Is(err, rescheduleBooking.ErrOutsideWorkingHours):
			handlers.RespondError(w, http.StatusBadRequest, handlers.CodeOutsideWorkingHours, msgOutsideWorkingHours)

		case errors.Is(err, rescheduleBooking.ErrConcurrentModification):
			handlers.RespondError(w, http.StatusConflict, handlers.CodeConcurrentModification, msgConcurrentModification)

		case errors.Is(err, rescheduleBooking.ErrInvalidInput):
			handlers.RespondBadRequest(w, err.Error())

		default:
			h.logger.Error("POST /bookings/{id}/reschedule - Failed to reschedule: booking_id=%d, error=%v", bookingID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("POST /bookings/{id}/reschedule - Booking rescheduled: booking_id=%d, start=%s",
		bookingID, result.Booking.StartTime)
	handlers.RespondJSON(w, http.StatusOK, models.FromDomainBooking(result.Booking))
}
