package postgres

import (
	"context"
	"testing"
	"time"

	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession() *domain.PaymentSession {
	now := time.Now().UTC().Truncate(time.Microsecond)
	return &domain.PaymentSession{
		ID:        uuid.New(),
		WalletID:  uuid.New(),
		SessionID: uuid.New(),
		Amount:    4999,
		TokenHash: "$argon2id$v=19$m=65536,t=1,p=4$c2FsdA$aGFzaA",
		Status:    domain.SessionStatusPending,
		ExpiresAt: now.Add(10 * time.Minute),
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func sessionColumns() []string {
	return []string{
		"id", "wallet_id", "session_id", "amount", "token_hash",
		"status", "expires_at", "created_at", "updated_at",
	}
}

func sessionRow(s *domain.PaymentSession) *pgxmock.Rows {
	return pgxmock.NewRows(sessionColumns()).AddRow(
		s.ID, s.WalletID, s.SessionID, s.Amount, s.TokenHash,
		s.Status, s.ExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
}

func TestPaymentSessionRepo_Create(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentSessionRepo(mock)
	s := newTestSession()

	mock.ExpectExec("INSERT INTO payment_sessions").
		WithArgs(s.ID, s.WalletID, s.SessionID, s.Amount, s.TokenHash,
			s.Status, s.ExpiresAt, s.CreatedAt, s.UpdatedAt).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	err = repo.Create(context.Background(), s)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSessionRepo_Create_UniqueViolation(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentSessionRepo(mock)
	s := newTestSession()

	mock.ExpectExec("INSERT INTO payment_sessions").
		WithArgs(s.ID, s.WalletID, s.SessionID, s.Amount, s.TokenHash,
			s.Status, s.ExpiresAt, s.CreatedAt, s.UpdatedAt).
		WillReturnError(&pgconn.PgError{Code: "23505", ConstraintName: "payment_sessions_session_id_key"})

	err = repo.Create(context.Background(), s)
	assert.ErrorIs(t, err, ports.ErrUniqueViolation)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSessionRepo_Delete(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentSessionRepo(mock)
	id := uuid.New()

	mock.ExpectExec("DELETE FROM payment_sessions WHERE id").
		WithArgs(id).
		WillReturnResult(pgxmock.NewResult("DELETE", 1))

	err = repo.Delete(context.Background(), id)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSessionRepo_LockPendingBySessionID(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentSessionRepo(mock)
	s := newTestSession()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM payment_sessions WHERE session_id .+ AND status .+ FOR UPDATE").
		WithArgs(s.SessionID, domain.SessionStatusPending).
		WillReturnRows(sessionRow(s))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.LockPendingBySessionID(context.Background(), tx, s.SessionID)
	require.NoError(t, err)
	require.NotNil(t, result)
	assert.Equal(t, s.ID, result.ID)
	assert.Equal(t, domain.SessionStatusPending, result.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSessionRepo_LockPendingBySessionID_NoPendingRow(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentSessionRepo(mock)
	sessionID := uuid.New()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT .+ FROM payment_sessions WHERE session_id .+ AND status .+ FOR UPDATE").
		WithArgs(sessionID, domain.SessionStatusPending).
		WillReturnRows(pgxmock.NewRows(sessionColumns()))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	result, err := repo.LockPendingBySessionID(context.Background(), tx, sessionID)
	require.NoError(t, err)
	assert.Nil(t, result)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSessionRepo_UpdateStatus(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentSessionRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_sessions SET status").
		WithArgs(domain.SessionStatusConfirmed, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 1))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, id, domain.SessionStatusConfirmed)
	assert.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSessionRepo_UpdateStatus_NotFound(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentSessionRepo(mock)
	id := uuid.New()

	mock.ExpectBegin()
	mock.ExpectExec("UPDATE payment_sessions SET status").
		WithArgs(domain.SessionStatusExpired, id).
		WillReturnResult(pgxmock.NewResult("UPDATE", 0))

	tx, err := mock.Begin(context.Background())
	require.NoError(t, err)

	err = repo.UpdateStatus(context.Background(), tx, id, domain.SessionStatusExpired)
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPaymentSessionRepo_MarkExpiredBefore(t *testing.T) {
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	defer mock.Close()

	repo := NewPaymentSessionRepo(mock)
	cutoff := time.Now().UTC()

	mock.ExpectExec("UPDATE payment_sessions SET status").
		WithArgs(domain.SessionStatusExpired, domain.SessionStatusPending, cutoff).
		WillReturnResult(pgxmock.NewResult("UPDATE", 3))

	swept, err := repo.MarkExpiredBefore(context.Background(), cutoff)
	require.NoError(t, err)
	assert.Equal(t, int64(3), swept)
	assert.NoError(t, mock.ExpectationsWereMet())
}
