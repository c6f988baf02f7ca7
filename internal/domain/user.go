package domain

import "time"

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// IsValid checks if the role is one of the known roles.
func (r Role) IsValid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

// HasPermission reports whether the role grants at least the permissions
// of minRole.
func (r Role) HasPermission(minRole Role) bool {
	return roleLevel(r) >= roleLevel(minRole)
}

func roleLevel(r Role) int {
	switch r {
	case RoleAdmin:
		return 2
	case RoleUser:
		return 1
	}
	return 0
}

type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	FullName  string    `json:"full_name"`
	Password  string    `json:"-"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsAdmin returns true for administrator accounts.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}

// RefreshToken is a persisted server-side refresh token.
type RefreshToken struct {
	ID        string
	UserID    int64
	TokenHash string
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired returns true once the token passed its expiry.
func (t *RefreshToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
