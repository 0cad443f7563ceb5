package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/dimitrije/accounts-api/internal/models"
	"github.com/dimitrije/accounts-api/internal/oauth"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrAccessDenied       = errors.New("access denied")
	ErrInvalidRole        = errors.New("invalid role")
	ErrOAuthExchange      = errors.New("oauth code exchange failed")
	ErrMissingEmail       = errors.New("identity provider returned no email")
)

// UserStore is the persistence collaborator of the AuthService.
type UserStore interface {
	Create(ctx context.Context, email string, passwordHash *string, name, photoURL *string, role string) (*models.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.User, error)
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	SetRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string) error
	ClearRefreshToken(ctx context.Context, userID uuid.UUID) error
	RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldHash, newHash string) error
}

// TokenIssuer is the signing collaborator of the AuthService.
type TokenIssuer interface {
	GenerateTokenPair(userID uuid.UUID, email, role string) (*TokenPair, error)
	GenerateSessionToken(userID uuid.UUID, email, role string) (string, error)
}

// AuthService implements the credential flows. All collaborators are
// injected, so every flow is testable without a database or real clock.
type AuthService struct {
	users    UserStore
	tokens   TokenIssuer
	hasher   PasswordHasher
	provider oauth.Provider
}

func NewAuthService(users UserStore, tokens TokenIssuer, hasher PasswordHasher, provider oauth.Provider) *AuthService {
	return &AuthService{
		users:    users,
		tokens:   tokens,
		hasher:   hasher,
		provider: provider,
	}
}

// Register creates a local-credential account. It issues no tokens; the
// client logs in afterwards.
func (s *AuthService) Register(ctx context.Context, email, password, role string) (*models.User, error) {
	if role == "" {
		role = models.RoleUser
	}
	if !models.ValidRole(role) {
		return nil, ErrInvalidRole
	}

	passwordHash, err := s.hasher.Hash(password)
	if err != nil {
		return nil, err
	}

	user, err := s.users.Create(ctx, strings.ToLower(email), &passwordHash, nil, nil, role)
	if err != nil {
		return nil, err
	}

	return user, nil
}

// burnHash is a bcrypt digest of an unguessable value. Login verifies
// against it when the account does not exist, so the unknown-email and
// wrong-password paths take comparable time.
const burnHash = "$2a$10$N9qo8uLOickgx2ZMRZoMyeIjZAgcfl7p92ldGxad68LJZdL17lhWy"

func (s *AuthService) Login(ctx context.Context, email, password string) (*models.User, *TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.hasher.Verify(password, burnHash)
			return nil, nil, ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if user.PasswordHash == nil || !s.hasher.Verify(password, *user.PasswordHash) {
		return nil, nil, ErrInvalidCredentials
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, nil, err
	}

	if err := s.users.SetRefreshToken(ctx, user.ID, HashToken(pair.RefreshToken)); err != nil {
		return nil, nil, err
	}

	return user, pair, nil
}

func (s *AuthService) Logout(ctx context.Context, userID uuid.UUID) error {
	return s.users.ClearRefreshToken(ctx, userID)
}

// Refresh exchanges a still-valid refresh token for a new pair and
// invalidates the presented token. A token that does not match the
// stored session is refused, whether it was already rotated, the
// session was cleared, or it was never issued to this account.
func (s *AuthService) Refresh(ctx context.Context, userID uuid.UUID, refreshToken string) (*TokenPair, error) {
	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			return nil, ErrAccessDenied
		}
		return nil, err
	}

	oldHash := HashToken(refreshToken)
	if user.RefreshTokenHash == nil || *user.RefreshTokenHash != oldHash {
		return nil, ErrAccessDenied
	}

	pair, err := s.tokens.GenerateTokenPair(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, err
	}

	if err := s.users.RotateRefreshToken(ctx, user.ID, oldHash, HashToken(pair.RefreshToken)); err != nil {
		if errors.Is(err, ErrTokenMismatch) {
			return nil, ErrAccessDenied
		}
		return nil, err
	}

	return pair, nil
}

// GoogleLogin completes the OAuth callback. First sight of an email
// creates the account; the flow ends with a single session token rather
// than an access/refresh pair.
func (s *AuthService) GoogleLogin(ctx context.Context, code string) (*models.User, string, error) {
	identity, err := s.provider.ExchangeCode(ctx, code)
	if err != nil {
		return nil, "", fmt.Errorf("%w: %v", ErrOAuthExchange, err)
	}

	if identity.Email == "" {
		return nil, "", ErrMissingEmail
	}

	email := strings.ToLower(identity.Email)

	user, err := s.users.GetByEmail(ctx, email)
	if errors.Is(err, ErrUserNotFound) {
		var name, picture *string
		if identity.Name != "" {
			name = &identity.Name
		}
		if identity.Picture != "" {
			picture = &identity.Picture
		}
		user, err = s.users.Create(ctx, email, nil, name, picture, models.RoleUser)
		if errors.Is(err, ErrUserExists) {
			// A concurrent first login for the same email created the row.
			user, err = s.users.GetByEmail(ctx, email)
		}
	}
	if err != nil {
		return nil, "", err
	}

	token, err := s.tokens.GenerateSessionToken(user.ID, user.Email, user.Role)
	if err != nil {
		return nil, "", err
	}

	return user, token, nil
}

func (s *AuthService) AuthorizationURL() string {
	return s.provider.AuthURL()
}
