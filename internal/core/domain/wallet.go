package domain

import (
	"time"

	"github.com/google/uuid"
)

// Wallet holds a customer's balance in integer minor units (cents).
// Exactly one wallet exists per customer; the balance never goes negative
// and is only mutated under a row lock inside a store transaction.
type Wallet struct {
	ID         uuid.UUID `json:"id"`
	CustomerID uuid.UUID `json:"customer_id"`
	Balance    int64     `json:"balance"` // minor units
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
