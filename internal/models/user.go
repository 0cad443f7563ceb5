package models

import (
	"time"

	"github.com/google/uuid"
)

// Closed role set. Unknown values are rejected, never coerced.
const (
	RoleUser       = "user"
	RoleMaintainer = "maintainer"
	RoleAdmin      = "admin"
)

func ValidRole(role string) bool {
	switch role {
	case RoleUser, RoleMaintainer, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	// Nil for accounts created through OAuth that never set a local password.
	PasswordHash *string `json:"-"`
	Name         *string `json:"name,omitempty"`
	PhotoURL     *string `json:"photo_url,omitempty"`
	Role         string  `json:"role"`
	// SHA-256 hex of the active refresh token; nil when no session.
	RefreshTokenHash *string   `json:"-"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}
