package scheduling

import (
	"fmt"
	"time"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
	"github.com/m04kA/SMC-AppointmentService/pkg/types"
)

// ResolveWorkingHours вычисляет эффективное рабочее окно сотрудника на дату date
// в часовом поясе loc с учетом исключения из расписания (может быть nil).
//
// Приоритет:
//  1. day_off - окно выключено
//  2. custom_hours - границы исключения вместо расписания дня недели
//  3. blocked без границ - окно выключено, с границами - расписание дня недели,
//     а диапазон исключения считается занятым
//  4. расписание дня недели
func ResolveWorkingHours(
	hours domain.WorkingHours,
	loc *time.Location,
	date time.Time,
	exception *domain.ScheduleException,
) (domain.EffectiveWindow, error) {
	if loc == nil {
		loc = time.UTC
	}

	// Берем календарную дату как есть, без пересчета часового пояса
	y, m, d := date.Date()
	day := time.Date(y, m, d, 0, 0, 0, 0, loc)

	if exception != nil {
		switch exception.Type {
		case domain.ExceptionDayOff:
			return domain.EffectiveWindow{Enabled: false}, nil

		case domain.ExceptionCustomHours:
			if !exception.HasCustomRange() {
				return domain.EffectiveWindow{}, fmt.Errorf("%w: custom_hours without bounds", ErrInvalidWindow)
			}
			return buildWindow(day, loc, *exception.CustomStart, *exception.CustomEnd)

		case domain.ExceptionBlocked:
			if !exception.HasCustomRange() {
				return domain.EffectiveWindow{Enabled: false}, nil
			}
			window, err := weekdayWindow(hours, day, loc)
			if err != nil || !window.Enabled {
				return window, err
			}
			blocked, err := toInterval(day, loc, *exception.CustomStart, *exception.CustomEnd)
			if err != nil {
				return domain.EffectiveWindow{}, err
			}
			window.Blocked = append(window.Blocked, blocked)
			return window, nil
		}
	}

	return weekdayWindow(hours, day, loc)
}

func weekdayWindow(hours domain.WorkingHours, day time.Time, loc *time.Location) (domain.EffectiveWindow, error) {
	schedule := hours.ForWeekday(day.Weekday())
	if !schedule.Enabled {
		return domain.EffectiveWindow{Enabled: false}, nil
	}
	return buildWindow(day, loc, schedule.Start, schedule.End)
}

func buildWindow(day time.Time, loc *time.Location, start, end types.TimeString) (domain.EffectiveWindow, error) {
	interval, err := toInterval(day, loc, start, end)
	if err != nil {
		return domain.EffectiveWindow{}, err
	}
	return domain.EffectiveWindow{
		Enabled: true,
		Start:   interval.Start,
		End:     interval.End,
	}, nil
}

func toInterval(day time.Time, loc *time.Location, start, end types.TimeString) (domain.Interval, error) {
	startAt, err := start.On(day, loc)
	if err != nil {
		return domain.Interval{}, fmt.Errorf("%w: start: %v", ErrInvalidWindow, err)
	}
	endAt, err := end.On(day, loc)
	if err != nil {
		return domain.Interval{}, fmt.Errorf("%w: end: %v", ErrInvalidWindow, err)
	}
	if !startAt.Before(endAt) {
		return domain.Interval{}, fmt.Errorf("%w: start %s is not before end %s", ErrInvalidWindow, start, end)
	}
	return domain.Interval{Start: startAt, End: endAt}, nil
}
