package services

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"
)

// JWTService signs and verifies access and refresh tokens. The two token
// kinds use distinct secrets, so possession of one can never forge the other.
type JWTService struct {
	accessSecret  []byte
	refreshSecret []byte
	accessExpiry  time.Duration
	refreshExpiry time.Duration
	sessionExpiry time.Duration
}

type Claims struct {
	UserID uuid.UUID `json:"user_id"`
	Email  string    `json:"email"`
	Role   string    `json:"role"`
	jwt.RegisteredClaims
}

type TokenPair struct {
	AccessToken  string
	RefreshToken string
	ExpiresIn    int64
}

func NewJWTService(accessSecret, refreshSecret string, accessExpiry, refreshExpiry, sessionExpiry time.Duration) *JWTService {
	return &JWTService{
		accessSecret:  []byte(accessSecret),
		refreshSecret: []byte(refreshSecret),
		accessExpiry:  accessExpiry,
		refreshExpiry: refreshExpiry,
		sessionExpiry: sessionExpiry,
	}
}

func (s *JWTService) newClaims(userID uuid.UUID, email, role string, expiry time.Duration, now time.Time) Claims {
	return Claims{
		UserID: userID,
		Email:  email,
		Role:   role,
		RegisteredClaims: jwt.RegisteredClaims{
			ExpiresAt: jwt.NewNumericDate(now.Add(expiry)),
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			Issuer:    "accounts-api",
			Subject:   userID.String(),
		},
	}
}

// GenerateTokenPair signs the access and refresh tokens concurrently and
// joins before returning; the two signatures have no ordering dependency.
func (s *JWTService) GenerateTokenPair(userID uuid.UUID, email, role string) (*TokenPair, error) {
	now := time.Now()

	accessClaims := s.newClaims(userID, email, role, s.accessExpiry, now)

	refreshClaims := s.newClaims(userID, email, role, s.refreshExpiry, now)
	refreshClaims.ID = uuid.New().String()

	var accessTokenString, refreshTokenString string
	var g errgroup.Group

	g.Go(func() error {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, accessClaims)
		signed, err := token.SignedString(s.accessSecret)
		if err != nil {
			return fmt.Errorf("failed to sign access token: %w", err)
		}
		accessTokenString = signed
		return nil
	})

	g.Go(func() error {
		token := jwt.NewWithClaims(jwt.SigningMethodHS256, refreshClaims)
		signed, err := token.SignedString(s.refreshSecret)
		if err != nil {
			return fmt.Errorf("failed to sign refresh token: %w", err)
		}
		refreshTokenString = signed
		return nil
	})

	if err := g.Wait(); err != nil {
		return nil, err
	}

	return &TokenPair{
		AccessToken:  accessTokenString,
		RefreshToken: refreshTokenString,
		ExpiresIn:    int64(s.accessExpiry.Seconds()),
	}, nil
}

// GenerateSessionToken issues the single long-lived token used by the
// Google login path. It is signed with the access secret and consumed
// through the same validation as an access token.
func (s *JWTService) GenerateSessionToken(userID uuid.UUID, email, role string) (string, error) {
	claims := s.newClaims(userID, email, role, s.sessionExpiry, time.Now())

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString(s.accessSecret)
	if err != nil {
		return "", fmt.Errorf("failed to sign session token: %w", err)
	}
	return signed, nil
}

func (s *JWTService) ValidateAccessToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.accessSecret)
}

func (s *JWTService) ValidateRefreshToken(tokenString string) (*Claims, error) {
	return s.validate(tokenString, s.refreshSecret)
}

func (s *JWTService) validate(tokenString string, secret []byte) (*Claims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &Claims{}, func(token *jwt.Token) (any, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return secret, nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to parse token: %w", err)
	}

	claims, ok := token.Claims.(*Claims)
	if !ok || !token.Valid {
		return nil, fmt.Errorf("invalid token")
	}

	return claims, nil
}

func (s *JWTService) RefreshExpiry() time.Duration {
	return s.refreshExpiry
}

// HashToken is the only form of a refresh token that is ever persisted.
// SHA-256 keeps the stored value deterministic, which the store's
// compare-and-rotate update depends on.
func HashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}
