package handlers

import (
	"context"

	"github.com/google/uuid"

	"github.com/dimitrije/accounts-api/internal/models"
	"github.com/dimitrije/accounts-api/internal/services"
)

// AuthServiceInterface defines the methods used by handlers from AuthService
type AuthServiceInterface interface {
	Register(ctx context.Context, email, password, role string) (*models.User, error)
	Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error)
	Logout(ctx context.Context, userID uuid.UUID) error
	Refresh(ctx context.Context, userID uuid.UUID, refreshToken string) (*services.TokenPair, error)
	GoogleLogin(ctx context.Context, code string) (*models.User, string, error)
	AuthorizationURL() string
}

// JWTServiceInterface defines the methods used by handlers from JWTService
type JWTServiceInterface interface {
	ValidateRefreshToken(tokenString string) (*services.Claims, error)
}
