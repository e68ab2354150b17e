package domain

import "errors"

var (
	ErrUnknownStatus       = errors.New("domain: unknown booking status")
	ErrUnknownRole         = errors.New("domain: unknown role")
	ErrInvalidService      = errors.New("domain: invalid service")
	ErrInvalidWorkingHours = errors.New("domain: invalid working hours")
	ErrInvalidTimezone     = errors.New("domain: invalid timezone")
	ErrInvalidException    = errors.New("domain: invalid schedule exception")
	ErrInvalidDateRange    = errors.New("domain: end date is before start date")
)
