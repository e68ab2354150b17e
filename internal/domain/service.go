package domain

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

var hundred = decimal.NewFromInt(100)

// Service represents a bookable service offered by an owner
type Service struct {
	ID                int64
	OwnerID           int64
	Name              string
	Category          string
	DurationMinutes   int
	Price             decimal.Decimal
	DepositRequired   bool
	DepositAmount     decimal.Decimal // flat amount, takes precedence when > 0
	DepositPercentage decimal.Decimal // percent of price
	StaffIDs          []int64         // staff members eligible to perform the service
	IsActive          bool
	CreatedAt         time.Time
	UpdatedAt         time.Time
}

// ComputedDeposit returns the flat deposit amount if set, otherwise price * percentage / 100
func (s *Service) ComputedDeposit() decimal.Decimal {
	if s.DepositAmount.GreaterThan(decimal.Zero) {
		return s.DepositAmount
	}
	return s.Price.Mul(s.DepositPercentage).Div(hundred)
}

// Duration returns the service duration
func (s *Service) Duration() time.Duration {
	return time.Duration(s.DurationMinutes) * time.Minute
}

// CanBePerformedBy returns true if the staff member is eligible for the service
func (s *Service) CanBePerformedBy(staffID int64) bool {
	for _, id := range s.StaffIDs {
		if id == staffID {
			return true
		}
	}
	return false
}

// Validate checks service invariants
func (s *Service) Validate() error {
	if s.DurationMinutes < MinServiceDurationMinutes || s.DurationMinutes > MaxServiceDurationMinutes {
		return fmt.Errorf("%w: duration must be between %d and %d minutes",
			ErrInvalidService, MinServiceDurationMinutes, MaxServiceDurationMinutes)
	}
	if s.Price.IsNegative() {
		return fmt.Errorf("%w: price must not be negative", ErrInvalidService)
	}
	if s.DepositAmount.IsNegative() {
		return fmt.Errorf("%w: deposit amount must not be negative", ErrInvalidService)
	}
	if s.DepositPercentage.IsNegative() || s.DepositPercentage.GreaterThan(hundred) {
		return fmt.Errorf("%w: deposit percentage must be between 0 and 100", ErrInvalidService)
	}
	return nil
}
