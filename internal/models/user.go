package models

// Role is the access level assigned to a user account.
type Role string

const (
	RoleBuyer Role = "BUYER"
	RoleOwner Role = "OWNER"
	RoleAdmin Role = "ADMIN"
)

// IsValid reports whether the role is one of the known access levels.
func (r Role) IsValid() bool {
	switch r {
	case RoleBuyer, RoleOwner, RoleAdmin:
		return true
	default:
		return false
	}
}

type User struct {
	ID          int64  `json:"id"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	Email       string `json:"email"`
	PhoneNumber string `json:"phoneNumber,omitempty"`
	Role        Role   `json:"role"`
}

// AdminStats is the platform overview returned by the admin stats endpoint.
type AdminStats struct {
	TotalUsers      int `json:"totalUsers"`
	TotalProperties int `json:"totalProperties"`
	TotalEnquiries  int `json:"totalEnquiries"`
	OwnerCount      int `json:"ownerCount"`
	BuyerCount      int `json:"buyerCount"`
}
