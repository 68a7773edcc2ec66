package domain

const (
	RoleCustomer        = "Customer"
	RoleServiceProvider = "ServiceProvider"
)

// User is a marketplace participant: either a customer or a service
// provider. The backend keeps two separate directories; the client merges
// them into this one shape.
type User struct {
	UserID       int64  `json:"userId"`
	UserName     string `json:"userName"`
	FirstName    string `json:"firstName"`
	LastName     string `json:"lastName"`
	Role         string `json:"role"`
	BusinessName string `json:"businessName,omitempty"`
	ProfileImage string `json:"profileImage,omitempty"`
}

// DisplayName prefers the business name for providers and falls back to
// the personal name, then the login name.
func (u User) DisplayName() string {
	if u.Role == RoleServiceProvider && u.BusinessName != "" {
		return u.BusinessName
	}
	if u.FirstName != "" || u.LastName != "" {
		name := u.FirstName
		if u.LastName != "" {
			if name != "" {
				name += " "
			}
			name += u.LastName
		}
		return name
	}
	return u.UserName
}
