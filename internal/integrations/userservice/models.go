package userservice

// Profile контактные данные клиента из UserService
type Profile struct {
	ID    int64   `json:"id"`
	Name  *string `json:"name,omitempty"`
	Phone *string `json:"phone,omitempty"`
	Email *string `json:"email,omitempty"`
}
