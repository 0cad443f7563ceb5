package testutil

import (
	"context"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/dimitrije/accounts-api/internal/models"
	"github.com/dimitrije/accounts-api/internal/oauth"
	"github.com/dimitrije/accounts-api/internal/services"
)

// MockAuthService mocks the AuthService
type MockAuthService struct {
	mock.Mock
}

func (m *MockAuthService) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	args := m.Called(ctx, email, password, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.User), args.Error(1)
}

func (m *MockAuthService) Login(ctx context.Context, email, password string) (*models.User, *services.TokenPair, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, nil, args.Error(2)
	}
	return args.Get(0).(*models.User), args.Get(1).(*services.TokenPair), args.Error(2)
}

func (m *MockAuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	args := m.Called(ctx, userID)
	return args.Error(0)
}

func (m *MockAuthService) Refresh(ctx context.Context, userID uuid.UUID, refreshToken string) (*services.TokenPair, error) {
	args := m.Called(ctx, userID, refreshToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.TokenPair), args.Error(1)
}

func (m *MockAuthService) GoogleLogin(ctx context.Context, code string) (*models.User, string, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, "", args.Error(2)
	}
	return args.Get(0).(*models.User), args.String(1), args.Error(2)
}

func (m *MockAuthService) AuthorizationURL() string {
	args := m.Called()
	return args.String(0)
}

// MockJWTService mocks the JWTService
type MockJWTService struct {
	mock.Mock
}

func (m *MockJWTService) ValidateRefreshToken(tokenString string) (*services.Claims, error) {
	args := m.Called(tokenString)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*services.Claims), args.Error(1)
}

// MockProvider mocks an oauth.Provider
type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) AuthURL() string {
	args := m.Called()
	return args.String(0)
}

func (m *MockProvider) ExchangeCode(ctx context.Context, code string) (*oauth.Identity, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*oauth.Identity), args.Error(1)
}

func (m *MockProvider) Name() string {
	args := m.Called()
	return args.String(0)
}
