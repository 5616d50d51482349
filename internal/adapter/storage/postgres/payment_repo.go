package postgres

import (
	"context"
	"errors"
	"fmt"

	"virtual-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// PaymentRepo implements ports.PaymentRepository.
type PaymentRepo struct {
	pool Pool
}

// NewPaymentRepo creates a new PaymentRepo.
func NewPaymentRepo(pool Pool) *PaymentRepo {
	return &PaymentRepo{pool: pool}
}

// CreateTx inserts a settled payment within the confirmation transaction.
// The unique constraint on session_id is the last line of defense against
// double settlement; violations surface as ports.ErrUniqueViolation.
func (r *PaymentRepo) CreateTx(ctx context.Context, tx pgx.Tx, p *domain.Payment) error {
	query := `INSERT INTO payments (id, wallet_id, session_id, amount, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	_, err := tx.Exec(ctx, query, p.ID, p.WalletID, p.SessionID, p.Amount, p.CreatedAt)
	if err != nil {
		return wrapUniqueViolation("insert payment", err)
	}
	return nil
}

// GetBySessionID fetches the payment settled for a session, if any.
func (r *PaymentRepo) GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*domain.Payment, error) {
	query := `SELECT id, wallet_id, session_id, amount, created_at
		FROM payments WHERE session_id = $1`

	p := &domain.Payment{}
	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&p.ID, &p.WalletID, &p.SessionID, &p.Amount, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get payment by session id: %w", err)
	}
	return p, nil
}
