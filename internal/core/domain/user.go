package domain

import "time"

// Permissions carried by roles. Documents and hierarchy management share one
// permission; user administration is separate.
const (
	PermManageContent = "content.manage"
	PermManageUsers   = "users.manage"
)

type Role struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Permissions []string `json:"permissions"`
}

func (r *Role) Has(permission string) bool {
	if r == nil {
		return false
	}
	for _, p := range r.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}

type User struct {
	ID           string     `json:"id"`
	Username     string     `json:"username"`
	DisplayName  string     `json:"display_name"`
	PasswordHash string     `json:"-"`
	RoleID       string     `json:"role_id"`
	Active       bool       `json:"active"`
	LastLoginAt  *time.Time `json:"last_login_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
}

// Identity is the authenticated caller attached to request context.
type Identity struct {
	UserID      string
	Username    string
	RoleName    string
	Permissions []string
}

func (id Identity) Has(permission string) bool {
	for _, p := range id.Permissions {
		if p == permission {
			return true
		}
	}
	return false
}
