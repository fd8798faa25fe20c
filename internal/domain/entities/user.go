package entities

import (
	"time"
)

// Role values stored in the users.roles array.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents an account. APIToken is an opaque bearer token issued at
// login and looked up by the auth middleware on each request.
type User struct {
	ID           int64     `json:"id" db:"id"`
	Email        string    `json:"email" db:"email"`
	PasswordHash string    `json:"-" db:"password_hash"`
	Roles        []string  `json:"roles" db:"roles"`
	APIToken     string    `json:"-" db:"api_token"`
	CreatedAt    time.Time `json:"created_at" db:"created_at"`
}

// IsAdmin reports whether the user carries the admin role.
func (u *User) IsAdmin() bool {
	for _, r := range u.Roles {
		if r == RoleAdmin {
			return true
		}
	}
	return false
}
