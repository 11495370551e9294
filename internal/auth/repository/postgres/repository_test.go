package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/AnthoniusHendriyanto/ecommerce-auth/internal/auth/domain"
	"github.com/pashagolub/pgxmock/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var userRows = []string{
	"id", "email", "password_hash", "first_name", "last_name", "phone",
	"role", "active", "email_verified", "verification_token", "reset_token",
	"reset_token_expires_at", "last_login_at", "created_at", "updated_at",
}

func userRow(mock pgxmock.PgxPoolIface, id, email string) *pgxmock.Rows {
	now := time.Now()
	return mock.NewRows(userRows).AddRow(
		id, email, "hashed-password", "Jane", "Doe", "",
		"customer", true, false, "", "",
		(*time.Time)(nil), (*time.Time)(nil), now, now,
	)
}

func newMockRepo(t *testing.T) (pgxmock.PgxPoolIface, *PostgresRepository) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return mock, NewPostgresRepository(mock)
}

func TestGetByEmail(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("LOWER\\(email\\) = LOWER\\(\\$1\\)").
		WithArgs("jane@example.com").
		WillReturnRows(userRow(mock, "user-123", "jane@example.com"))

	user, err := repo.GetByEmail(context.Background(), "jane@example.com")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user-123", user.ID)
	assert.Equal(t, "jane@example.com", user.Email)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByEmail_NotFound(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("LOWER\\(email\\) = LOWER\\(\\$1\\)").
		WithArgs("nobody@example.com").
		WillReturnRows(mock.NewRows(userRows))

	user, err := repo.GetByEmail(context.Background(), "nobody@example.com")

	// Absence is not an error.
	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByID(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("WHERE id = \\$1").
		WithArgs("user-123").
		WillReturnRows(userRow(mock, "user-123", "jane@example.com"))

	user, err := repo.GetByID(context.Background(), "user-123")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.Equal(t, "user-123", user.ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate(t *testing.T) {
	mock, repo := newMockRepo(t)

	now := time.Now()
	user := &domain.User{
		ID:                "user-123",
		Email:             "jane@example.com",
		PasswordHash:      "hashed-password",
		FirstName:         "Jane",
		LastName:          "Doe",
		Role:              "customer",
		Active:            true,
		VerificationToken: "verify-token",
		CreatedAt:         now,
		UpdatedAt:         now,
	}

	mock.ExpectExec("INSERT INTO users").
		WithArgs(user.ID, user.Email, user.PasswordHash, user.FirstName, user.LastName, "",
			user.Role, user.Active, user.EmailVerified, user.VerificationToken, now, now).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, repo.Create(context.Background(), user))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestCreate_DuplicateEmail(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec("INSERT INTO users").
		WithArgs(pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(),
			pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg(), pgxmock.AnyArg()).
		WillReturnError(errors.New(`duplicate key value violates unique constraint "users_email_lower_idx"`))

	err := repo.Create(context.Background(), &domain.User{ID: "user-123", Email: "jane@example.com"})

	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdatePassword(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET password_hash = \\$2").
		WithArgs("user-123", "new-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdatePassword(context.Background(), "user-123", "new-hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateLastLogin(t *testing.T) {
	mock, repo := newMockRepo(t)

	at := time.Now()
	mock.ExpectExec("UPDATE users SET last_login_at = \\$2").
		WithArgs("user-123", at).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.UpdateLastLogin(context.Background(), "user-123", at))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetResetToken(t *testing.T) {
	mock, repo := newMockRepo(t)

	expiresAt := time.Now().Add(time.Hour)
	mock.ExpectExec("UPDATE users SET reset_token = \\$2, reset_token_expires_at = \\$3").
		WithArgs("user-123", "reset-token", expiresAt).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetResetToken(context.Background(), "user-123", "reset-token", expiresAt))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByResetToken(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("WHERE reset_token = \\$1 AND reset_token_expires_at > now\\(\\)").
		WithArgs("reset-token").
		WillReturnRows(userRow(mock, "user-123", "jane@example.com"))

	user, err := repo.GetByResetToken(context.Background(), "reset-token")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByResetToken_ExpiredOrUnknown(t *testing.T) {
	mock, repo := newMockRepo(t)

	// Expired tokens are filtered by the query itself, so they read as absent.
	mock.ExpectQuery("WHERE reset_token = \\$1 AND reset_token_expires_at > now\\(\\)").
		WithArgs("stale-token").
		WillReturnRows(mock.NewRows(userRows))

	user, err := repo.GetByResetToken(context.Background(), "stale-token")

	require.NoError(t, err)
	assert.Nil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestResetPassword(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET password_hash = \\$2, reset_token = NULL").
		WithArgs("user-123", "new-hash").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.ResetPassword(context.Background(), "user-123", "new-hash"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetVerificationToken(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET verification_token = \\$2").
		WithArgs("user-123", "verify-token").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.SetVerificationToken(context.Background(), "user-123", "verify-token"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByVerificationToken(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("WHERE verification_token = \\$1").
		WithArgs("verify-token").
		WillReturnRows(userRow(mock, "user-123", "jane@example.com"))

	user, err := repo.GetByVerificationToken(context.Background(), "verify-token")

	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestMarkEmailVerified(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectExec("UPDATE users SET email_verified = TRUE, verification_token = NULL").
		WithArgs("user-123").
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	require.NoError(t, repo.MarkEmailVerified(context.Background(), "user-123"))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList(t *testing.T) {
	mock, repo := newMockRepo(t)

	now := time.Now()
	rows := mock.NewRows(userRows).
		AddRow("user-1", "a@example.com", "hash", "Ann", "One", "",
			"customer", true, false, "", "", (*time.Time)(nil), (*time.Time)(nil), now, now).
		AddRow("user-2", "b@example.com", "hash", "Ben", "Two", "",
			"seller", true, true, "", "", (*time.Time)(nil), (*time.Time)(nil), now, now)

	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(50, 0).
		WillReturnRows(rows)

	users, err := repo.List(context.Background(), 50, 0)

	require.NoError(t, err)
	require.Len(t, users, 2)
	assert.Equal(t, "user-1", users[0].ID)
	assert.Equal(t, "user-2", users[1].ID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestList_QueryError(t *testing.T) {
	mock, repo := newMockRepo(t)

	mock.ExpectQuery("ORDER BY created_at DESC").
		WithArgs(50, 0).
		WillReturnError(errors.New("connection refused"))

	users, err := repo.List(context.Background(), 50, 0)

	assert.Error(t, err)
	assert.Nil(t, users)
	assert.NoError(t, mock.ExpectationsWereMet())
}
