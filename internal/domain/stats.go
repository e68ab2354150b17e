package domain

import "github.com/shopspring/decimal"

// StatusStats is the count and summed service price of bookings in one status
type StatusStats struct {
	Status  BookingStatus
	Count   int
	Revenue decimal.Decimal
}

// BookingStats summarizes an owner's bookings
type BookingStats struct {
	ByStatus     []StatusStats
	TotalCount   int
	TotalRevenue decimal.Decimal
}
