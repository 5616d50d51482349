package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"virtual-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentSessionRepo implements ports.PaymentSessionRepository.
type PaymentSessionRepo struct {
	pool Pool
}

// NewPaymentSessionRepo creates a new PaymentSessionRepo.
func NewPaymentSessionRepo(pool Pool) *PaymentSessionRepo {
	return &PaymentSessionRepo{pool: pool}
}

// Create inserts a new PENDING payment session.
func (r *PaymentSessionRepo) Create(ctx context.Context, s *domain.PaymentSession) error {
	query := `INSERT INTO payment_sessions (id, wallet_id, session_id, amount, token_hash, status, expires_at, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)`

	_, err := r.pool.Exec(ctx, query,
		s.ID, s.WalletID, s.SessionID, s.Amount, s.TokenHash,
		s.Status, s.ExpiresAt, s.CreatedAt, s.UpdatedAt,
	)
	if err != nil {
		return wrapUniqueViolation("insert payment session", err)
	}
	return nil
}

// Delete removes a session whose token delivery failed. The session must
// never become confirmable, so the row goes away entirely.
func (r *PaymentSessionRepo) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM payment_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete payment session: %w", err)
	}
	return nil
}

// LockPendingBySessionID lock-reads a session by its external identifier,
// filtered to PENDING status, with an exclusive row lock. The lock+filter
// is atomic: of two concurrent confirmers only one can observe the row as
// PENDING; the other blocks on the lock and then sees no matching row.
// This MUST be called within a transaction.
func (r *PaymentSessionRepo) LockPendingBySessionID(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) (*domain.PaymentSession, error) {
	query := `SELECT id, wallet_id, session_id, amount, token_hash, status, expires_at, created_at, updated_at
		FROM payment_sessions WHERE session_id = $1 AND status = $2 FOR UPDATE`

	s := &domain.PaymentSession{}
	err := tx.QueryRow(ctx, query, sessionID, domain.SessionStatusPending).Scan(
		&s.ID, &s.WalletID, &s.SessionID, &s.Amount, &s.TokenHash,
		&s.Status, &s.ExpiresAt, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("lock pending session: %w", err)
	}
	return s, nil
}

// UpdateStatus transitions a session within a transaction.
func (r *PaymentSessionRepo) UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentSessionStatus) error {
	query := `UPDATE payment_sessions SET status = $1, updated_at = NOW() WHERE id = $2`

	tag, err := tx.Exec(ctx, query, status, id)
	if err != nil {
		return fmt.Errorf("update session status: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("payment session not found: %s", id)
	}
	return nil
}

// MarkExpiredBefore flips stale PENDING sessions to EXPIRED in one
// statement. Returns the number of sessions swept.
func (r *PaymentSessionRepo) MarkExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	query := `UPDATE payment_sessions SET status = $1, updated_at = NOW()
		WHERE status = $2 AND expires_at < $3`

	tag, err := r.pool.Exec(ctx, query, domain.SessionStatusExpired, domain.SessionStatusPending, cutoff)
	if err != nil {
		return 0, fmt.Errorf("mark expired sessions: %w", err)
	}
	return tag.RowsAffected(), nil
}
