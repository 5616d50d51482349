package domain

import (
	"time"

	"github.com/google/uuid"
)

// TopUp is an immutable audit record of a single balance credit.
type TopUp struct {
	ID        uuid.UUID         `json:"id"`
	WalletID  uuid.UUID         `json:"wallet_id"`
	Amount    int64             `json:"amount"` // minor units, always positive
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}
