package domain

import (
	"time"

	"github.com/google/uuid"
)

// PaymentSessionStatus is the lifecycle state of a payment session.
type PaymentSessionStatus string

const (
	SessionStatusPending   PaymentSessionStatus = "PENDING"
	SessionStatusConfirmed PaymentSessionStatus = "CONFIRMED"
	SessionStatusCancelled PaymentSessionStatus = "CANCELLED"
	SessionStatusExpired   PaymentSessionStatus = "EXPIRED"
)

// PaymentSession is a time-boxed authorization to debit a fixed amount
// from a wallet, gated by a one-time token. The token itself is never
// stored; only its salted hash is.
type PaymentSession struct {
	ID        uuid.UUID            `json:"id"`
	WalletID  uuid.UUID            `json:"wallet_id"`
	SessionID uuid.UUID            `json:"session_id"` // externally visible identifier
	Amount    int64                `json:"amount"`     // minor units, fixed at creation
	TokenHash string               `json:"-"`
	Status    PaymentSessionStatus `json:"status"`
	ExpiresAt time.Time            `json:"expires_at"`
	CreatedAt time.Time            `json:"created_at"`
	UpdatedAt time.Time            `json:"updated_at"`
}

// IsTerminal returns true once the session left the PENDING state.
// Terminal sessions never transition again.
func (s *PaymentSession) IsTerminal() bool {
	return s.Status != SessionStatusPending
}

// IsExpired reports whether the session's token lifetime has passed.
// Expiry is observational: the stored status is not mutated here.
func (s *PaymentSession) IsExpired(now time.Time) bool {
	return s.ExpiresAt.Before(now)
}
