package domain

import (
	"time"

	"github.com/google/uuid"
)

// Payment is the immutable record of a settled debit. At most one payment
// exists per session, enforced by a unique constraint on SessionID.
type Payment struct {
	ID        uuid.UUID `json:"id"`
	WalletID  uuid.UUID `json:"wallet_id"`
	SessionID uuid.UUID `json:"session_id"`
	Amount    int64     `json:"amount"` // minor units
	CreatedAt time.Time `json:"created_at"`
}
