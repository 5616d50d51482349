package postgres

import (
	"context"
	"encoding/json"
	"fmt"

	"virtual-wallet/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// TopUpRepo implements ports.TopUpRepository.
type TopUpRepo struct {
	pool Pool
}

// NewTopUpRepo creates a new TopUpRepo.
func NewTopUpRepo(pool Pool) *TopUpRepo {
	return &TopUpRepo{pool: pool}
}

// CreateTx inserts an immutable top-up audit record within a transaction.
// Metadata is stored as JSONB.
func (r *TopUpRepo) CreateTx(ctx context.Context, tx pgx.Tx, t *domain.TopUp) error {
	metadata, err := json.Marshal(t.Metadata)
	if err != nil {
		return fmt.Errorf("marshal top-up metadata: %w", err)
	}

	query := `INSERT INTO top_ups (id, wallet_id, amount, metadata, created_at)
		VALUES ($1, $2, $3, $4, $5)`

	if _, err := tx.Exec(ctx, query, t.ID, t.WalletID, t.Amount, metadata, t.CreatedAt); err != nil {
		return fmt.Errorf("insert top-up: %w", err)
	}
	return nil
}
