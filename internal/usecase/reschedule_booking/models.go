package reschedule_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на перенос бронирования
type Request struct {
	Actor        domain.Actor
	BookingID    int64
	NewStartTime time.Time
}

// Response модель ответа с перенесенным бронированием
type Response struct {
	Booking *domain.Booking
}
