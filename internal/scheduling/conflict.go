package scheduling

import "github.com/m04kA/SMC-AppointmentService/internal/domain"

// HasConflict проверяет, пересекается ли интервал хотя бы с одним активным бронированием.
// Бронирования в статусах cancelled, completed и no_show не учитываются
func HasConflict(proposed domain.Interval, bookings []*domain.Booking) bool {
	return FindConflict(proposed, bookings) != nil
}

// FindConflict возвращает первое активное бронирование, пересекающееся с интервалом, или nil
func FindConflict(proposed domain.Interval, bookings []*domain.Booking) *domain.Booking {
	for _, b := range bookings {
		if b == nil || !b.IsActive() {
			continue
		}
		// Граничащие интервалы (конец одного = начало другого) не пересекаются
		if proposed.Overlaps(b.Interval()) {
			return b
		}
	}
	return nil
}
