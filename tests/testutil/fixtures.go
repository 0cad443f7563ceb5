package testutil

import (
	"context"
	"fmt"
	"testing"

	"github.com/dimitrije/accounts-api/internal/database"
	"github.com/dimitrije/accounts-api/internal/models"
)

// Fixtures provides factory methods for creating test data
type Fixtures struct {
	db      *database.DB
	counter int
}

// NewFixtures creates a new fixtures factory
func NewFixtures(db *database.DB) *Fixtures {
	return &Fixtures{db: db}
}

// CreateUser creates a test user with default values
func (f *Fixtures) CreateUser(t *testing.T, opts ...UserOption) *models.User {
	t.Helper()
	f.counter++

	user := &models.User{
		Email: fmt.Sprintf("user%d@example.com", f.counter),
		Role:  models.RoleUser,
	}

	for _, opt := range opts {
		opt(user)
	}

	ctx := context.Background()
	err := f.db.Pool.QueryRow(ctx, `
		INSERT INTO users (email, password_hash, name, photo_url, role, refresh_token_hash)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id, email, password_hash, name, photo_url, role, refresh_token_hash, created_at, updated_at
	`, user.Email, user.PasswordHash, user.Name, user.PhotoURL, user.Role, user.RefreshTokenHash).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.Name, &user.PhotoURL,
		&user.Role, &user.RefreshTokenHash, &user.CreatedAt, &user.UpdatedAt,
	)
	if err != nil {
		t.Fatalf("failed to create user: %v", err)
	}

	return user
}

// UserOption configures a test user
type UserOption func(*models.User)

// WithEmail sets the user's email
func WithEmail(email string) UserOption {
	return func(u *models.User) {
		u.Email = email
	}
}

// WithRole sets the user's role
func WithRole(role string) UserOption {
	return func(u *models.User) {
		u.Role = role
	}
}

// WithPasswordHash sets the user's password hash
func WithPasswordHash(hash string) UserOption {
	return func(u *models.User) {
		u.PasswordHash = &hash
	}
}

// WithRefreshTokenHash sets the user's stored refresh token hash
func WithRefreshTokenHash(hash string) UserOption {
	return func(u *models.User) {
		u.RefreshTokenHash = &hash
	}
}
