package scheduling

import (
	"iter"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// GenerateSlots перечисляет слоты длительностью duration внутри окна с шагом granularity.
// Слот попадает в выдачу, только если целиком помещается в окно и не пересекается
// ни с активными бронированиями, ни с заблокированными диапазонами окна.
//
// Последовательность ленивая и может обходиться повторно. Для выключенного окна,
// неположительной длительности или длительности больше окна она пуста
func GenerateSlots(
	window domain.EffectiveWindow,
	duration time.Duration,
	bookings []*domain.Booking,
	granularity time.Duration,
) iter.Seq[domain.Slot] {
	return func(yield func(domain.Slot) bool) {
		if !window.Enabled || duration <= 0 || granularity <= 0 {
			return
		}
		if duration > window.End.Sub(window.Start) {
			return
		}

		for start := window.Start; !start.Add(duration).After(window.End); start = start.Add(granularity) {
			candidate := domain.Interval{Start: start, End: start.Add(duration)}
			if !window.Contains(candidate) || HasConflict(candidate, bookings) {
				continue
			}
			if !yield(domain.Slot{Start: candidate.Start, End: candidate.End, Available: true}) {
				return
			}
		}
	}
}
