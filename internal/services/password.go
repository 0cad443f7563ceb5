package services

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHasher is the credential-hashing collaborator of the AuthService.
type PasswordHasher interface {
	Hash(plaintext string) (string, error)
	Verify(plaintext, digest string) bool
}

type BcryptHasher struct {
	cost int
}

func NewBcryptHasher() *BcryptHasher {
	return &BcryptHasher{cost: bcrypt.DefaultCost}
}

func (h *BcryptHasher) Hash(plaintext string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plaintext), h.cost)
	if err != nil {
		return "", fmt.Errorf("failed to hash password: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plaintext matches digest. A malformed digest is
// a mismatch, not an error.
func (h *BcryptHasher) Verify(plaintext, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plaintext)) == nil
}
