package get_available_slots

import "time"

// Request модель запроса на получение доступных слотов
type Request struct {
	ServiceID int64     // ID услуги
	StaffID   int64     // ID сотрудника
	Date      time.Time // Календарная дата в часовом поясе сотрудника (время игнорируется)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date            time.Time // Дата, на которую запрашивались слоты
	ServiceID       int64     // ID услуги
	StaffID         int64     // ID сотрудника
	Timezone        string    // Часовой пояс сотрудника
	DurationMinutes int       // Длительность услуги
	Slots           []Slot    // Доступные слоты по возрастанию времени начала
}

// Slot модель временного слота
type Slot struct {
	StartTime time.Time
	EndTime   time.Time
}
