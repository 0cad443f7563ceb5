package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dimitrije/accounts-api/internal/database"
	"github.com/dimitrije/accounts-api/internal/models"
)

func setupUserService(t *testing.T) (*UserService, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(func() { mock.Close() })

	db := &database.DB{Pool: mock}
	return NewUserService(db), mock
}

func userRows(user *models.User) *pgxmock.Rows {
	return pgxmock.NewRows([]string{
		"id", "email", "password_hash", "name", "photo_url", "role", "refresh_token_hash", "created_at", "updated_at",
	}).AddRow(
		user.ID, user.Email, user.PasswordHash, user.Name, user.PhotoURL,
		user.Role, user.RefreshTokenHash, user.CreatedAt, user.UpdatedAt,
	)
}

func testUser() *models.User {
	hash := "$2a$10$abcdefghijklmnopqrstuv"
	now := time.Now()
	return &models.User{
		ID:           uuid.New(),
		Email:        "test@example.com",
		PasswordHash: &hash,
		Role:         models.RoleUser,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

func TestUserService_Create(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	user := testUser()

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs(user.Email, user.PasswordHash, (*string)(nil), (*string)(nil), models.RoleUser).
		WillReturnRows(userRows(user))

	created, err := svc.Create(ctx, user.Email, user.PasswordHash, nil, nil, models.RoleUser)

	require.NoError(t, err)
	assert.Equal(t, user.ID, created.ID)
	assert.Equal(t, user.Email, created.Email)
	assert.Equal(t, models.RoleUser, created.Role)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_Create_DuplicateEmail(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	hash := "some-hash"

	mock.ExpectQuery(`INSERT INTO users`).
		WithArgs("dup@example.com", &hash, (*string)(nil), (*string)(nil), models.RoleUser).
		WillReturnError(&pgconn.PgError{Code: "23505"})

	_, err := svc.Create(ctx, "dup@example.com", &hash, nil, nil, models.RoleUser)

	assert.ErrorIs(t, err, ErrUserExists)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	user := testUser()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(user.ID).
		WillReturnRows(userRows(user))

	found, err := svc.GetByID(ctx, user.ID)

	require.NoError(t, err)
	assert.Equal(t, user.ID, found.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByID_NotFound(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	id := uuid.New()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE id`).
		WithArgs(id).
		WillReturnError(pgx.ErrNoRows)

	_, err := svc.GetByID(ctx, id)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_GetByEmail_CaseInsensitive(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	user := testUser()

	mock.ExpectQuery(`SELECT .+ FROM users WHERE LOWER\(email\) = LOWER`).
		WithArgs("TEST@Example.COM").
		WillReturnRows(userRows(user))

	found, err := svc.GetByEmail(ctx, "TEST@Example.COM")

	require.NoError(t, err)
	assert.Equal(t, user.Email, found.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SetRefreshToken(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET refresh_token_hash`).
		WithArgs(userID, "token-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.SetRefreshToken(ctx, userID, "token-hash")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SetRefreshToken_UnknownUser(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET refresh_token_hash`).
		WithArgs(userID, "token-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.SetRefreshToken(ctx, userID, "token-hash")

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_ClearRefreshToken_Idempotent(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	// Clearing an already-empty session still succeeds.
	mock.ExpectExec(`UPDATE users SET refresh_token_hash = NULL`).
		WithArgs(userID).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.ClearRefreshToken(ctx, userID)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_RotateRefreshToken(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	mock.ExpectExec(`UPDATE users SET refresh_token_hash .+ WHERE id = \$1 AND refresh_token_hash = \$2`).
		WithArgs(userID, "old-hash", "new-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.RotateRefreshToken(ctx, userID, "old-hash", "new-hash")

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_RotateRefreshToken_Mismatch(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()
	userID := uuid.New()

	// Stored hash no longer matches, nothing updated.
	mock.ExpectExec(`UPDATE users SET refresh_token_hash .+ WHERE id = \$1 AND refresh_token_hash = \$2`).
		WithArgs(userID, "stale-hash", "new-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.RotateRefreshToken(ctx, userID, "stale-hash", "new-hash")

	assert.ErrorIs(t, err, ErrTokenMismatch)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SetRole(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET role`).
		WithArgs("test@example.com", models.RoleAdmin).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	err := svc.SetRole(ctx, "test@example.com", models.RoleAdmin)

	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUserService_SetRole_UnknownUser(t *testing.T) {
	svc, mock := setupUserService(t)
	ctx := context.Background()

	mock.ExpectExec(`UPDATE users SET role`).
		WithArgs("missing@example.com", models.RoleAdmin).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	err := svc.SetRole(ctx, "missing@example.com", models.RoleAdmin)

	assert.ErrorIs(t, err, ErrUserNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}
