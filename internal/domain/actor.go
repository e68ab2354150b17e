package domain

// Role of the caller as supplied by the upstream identity layer
type Role string

const (
	RoleCustomer Role = "customer"
	RoleOwner    Role = "owner"
	RoleStaff    Role = "staff"
	RoleAdmin    Role = "admin"
)

// ParseRole validates a raw role value
func ParseRole(raw string) (Role, error) {
	switch r := Role(raw); r {
	case RoleCustomer, RoleOwner, RoleStaff, RoleAdmin:
		return r, nil
	default:
		return "", ErrUnknownRole
	}
}

// Actor is the authenticated caller of an operation
type Actor struct {
	UserID  int64
	Role    Role
	OwnerID int64 // business scope of owners and staff, 0 for customers
}

// IsBusinessSide returns true for owners and staff
func (a Actor) IsBusinessSide() bool {
	return a.Role == RoleOwner || a.Role == RoleStaff
}

// CanManageOwner returns true if the actor may act on resources of the owner
func (a Actor) CanManageOwner(ownerID int64) bool {
	if a.Role == RoleAdmin {
		return true
	}
	return a.IsBusinessSide() && a.OwnerID == ownerID
}

// CanAccessBooking returns true if the actor may view or cancel the booking
func (a Actor) CanAccessBooking(b *Booking) bool {
	if a.Role == RoleCustomer {
		return b.CustomerID == a.UserID
	}
	return a.CanManageOwner(b.OwnerID)
}
