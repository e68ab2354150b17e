package memory

import (
	"fmt"

	"github.com/BurntSushi/toml"
	"github.com/shopspring/decimal"

	"github.com/m04kA/SMC-AppointmentService/internal/domain"
)

// Seed справочные данные для запуска с database.driver = "memory"
type Seed struct {
	Services []SeedService `toml:"services"`
	Staff    []SeedStaff   `toml:"staff"`
}

// SeedService описание услуги в файле начальных данных
type SeedService struct {
	ID                int64           `toml:"id"`
	OwnerID           int64           `toml:"owner_id"`
	Name              string          `toml:"name"`
	Category          string          `toml:"category"`
	DurationMinutes   int             `toml:"duration_minutes"`
	Price             decimal.Decimal `toml:"price"`
	DepositRequired   bool            `toml:"deposit_required"`
	DepositAmount     decimal.Decimal `toml:"deposit_amount"`
	DepositPercentage decimal.Decimal `toml:"deposit_percentage"`
	StaffIDs          []int64         `toml:"staff_ids"`
	IsActive          bool            `toml:"is_active"`
}

// SeedStaff описание сотрудника в файле начальных данных
type SeedStaff struct {
	ID           int64               `toml:"id"`
	OwnerID      int64               `toml:"owner_id"`
	UserID       int64               `toml:"user_id"`
	Name         string              `toml:"name"`
	Timezone     string              `toml:"timezone"`
	IsActive     bool                `toml:"is_active"`
	WorkingHours domain.WorkingHours `toml:"working_hours"`
}

// LoadSeed читает файл начальных данных в формате TOML
func LoadSeed(path string) (*Seed, error) {
	var seed Seed
	if _, err := toml.DecodeFile(path, &seed); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSeed, err)
	}
	return &seed, nil
}

// Apply валидирует и загружает начальные данные в хранилище
func (s *Store) Apply(seed *Seed) error {
	directory := s.Directory()

	for _, st := range seed.Staff {
		staff := domain.Staff{
			ID:           st.ID,
			OwnerID:      st.OwnerID,
			UserID:       st.UserID,
			Name:         st.Name,
			WorkingHours: st.WorkingHours,
			Timezone:     st.Timezone,
			IsActive:     st.IsActive,
		}
		if err := staff.WorkingHours.Validate(); err != nil {
			return fmt.Errorf("%w: staff id=%d: %v", ErrInvalidSeed, st.ID, err)
		}
		if _, err := staff.Location(); err != nil {
			return fmt.Errorf("%w: staff id=%d: %v", ErrInvalidSeed, st.ID, err)
		}
		directory.AddStaff(staff)
	}

	for _, sv := range seed.Services {
		service := domain.Service{
			ID:                sv.ID,
			OwnerID:           sv.OwnerID,
			Name:              sv.Name,
			Category:          sv.Category,
			DurationMinutes:   sv.DurationMinutes,
			Price:             sv.Price,
			DepositRequired:   sv.DepositRequired,
			DepositAmount:     sv.DepositAmount,
			DepositPercentage: sv.DepositPercentage,
			StaffIDs:          sv.StaffIDs,
			IsActive:          sv.IsActive,
		}
		if err := service.Validate(); err != nil {
			return fmt.Errorf("%w: service id=%d: %v", ErrInvalidSeed, sv.ID, err)
		}
		directory.AddService(service)
	}

	return nil
}
