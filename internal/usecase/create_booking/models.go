package create_booking

import (
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Request модель запроса на создание бронирования
type Request struct {
	CustomerID    int64     // ID покупателя из контекста запроса
	ServiceID     int64     // ID услуги
	StaffID       int64     // ID сотрудника
	StartTime     time.Time // Начало записи (абсолютное время)
	CustomerName  *string
	CustomerPhone *string
	CustomerEmail *string
	Notes         *string
}

// Response модель ответа с созданным бронированием
type Response struct {
	Booking *domain.Booking
}
