package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/dimitrije/accounts-api/internal/database"
	"github.com/dimitrije/accounts-api/internal/models"
)

var (
	ErrUserExists   = errors.New("user already exists")
	ErrUserNotFound = errors.New("user not found")
	// ErrTokenMismatch means the stored refresh token hash changed between
	// read and rotate, or the session was cleared.
	ErrTokenMismatch = errors.New("refresh token mismatch")
)

type UserService struct {
	db *database.DB
}

func NewUserService(db *database.DB) *UserService {
	return &UserService{db: db}
}

const userColumns = `id, email, password_hash, name, photo_url, role, refresh_token_hash, created_at, updated_at`

func scanUser(row pgx.Row) (*models.User, error) {
	var user models.User
	err := row.Scan(
		&user.ID,
		&user.Email,
		&user.PasswordHash,
		&user.Name,
		&user.PhotoURL,
		&user.Role,
		&user.RefreshTokenHash,
		&user.CreatedAt,
		&user.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (s *UserService) Create(ctx context.Context, email string, passwordHash *string, name, photoURL *string, role string) (*models.User, error) {
	query := `
		INSERT INTO users (email, password_hash, name, photo_url, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + userColumns

	user, err := scanUser(s.db.Pool.QueryRow(ctx, query, email, passwordHash, name, photoURL, role))
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(s.db.Pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE LOWER(email) = LOWER($1)`

	user, err := scanUser(s.db.Pool.QueryRow(ctx, query, email))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	return user, nil
}

func (s *UserService) SetRefreshToken(ctx context.Context, userID uuid.UUID, tokenHash string) error {
	query := `UPDATE users SET refresh_token_hash = $2, updated_at = NOW() WHERE id = $1`

	tag, err := s.db.Pool.Exec(ctx, query, userID, tokenHash)
	if err != nil {
		return fmt.Errorf("failed to set refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}

// ClearRefreshToken is idempotent; clearing an absent session is not an error.
func (s *UserService) ClearRefreshToken(ctx context.Context, userID uuid.UUID) error {
	query := `UPDATE users SET refresh_token_hash = NULL, updated_at = NOW() WHERE id = $1`

	if _, err := s.db.Pool.Exec(ctx, query, userID); err != nil {
		return fmt.Errorf("failed to clear refresh token: %w", err)
	}

	return nil
}

// RotateRefreshToken swaps the stored hash in a single conditional update.
// The WHERE clause makes the compare and the write atomic, so two
// concurrent refreshes with the same token cannot both succeed.
func (s *UserService) RotateRefreshToken(ctx context.Context, userID uuid.UUID, oldHash, newHash string) error {
	query := `
		UPDATE users SET refresh_token_hash = $3, updated_at = NOW()
		WHERE id = $1 AND refresh_token_hash = $2`

	tag, err := s.db.Pool.Exec(ctx, query, userID, oldHash, newHash)
	if err != nil {
		return fmt.Errorf("failed to rotate refresh token: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrTokenMismatch
	}

	return nil
}

func (s *UserService) SetRole(ctx context.Context, email, role string) error {
	query := `UPDATE users SET role = $2, updated_at = NOW() WHERE LOWER(email) = LOWER($1)`

	tag, err := s.db.Pool.Exec(ctx, query, email, role)
	if err != nil {
		return fmt.Errorf("failed to set role: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}

	return nil
}
