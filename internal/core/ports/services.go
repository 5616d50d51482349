package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// TokenHasher produces and verifies salted, irreversible hashes of
// one-time tokens. Verify must not leak timing information.
type TokenHasher interface {
	Hash(token string) (string, error)
	Verify(token string, hash string) (bool, error)
}

// TokenNotifier delivers the one-time token to the customer. It is called
// synchronously during payment initiation; on failure the session is
// cancelled, since the token never reached its owner.
type TokenNotifier interface {
	SendPaymentToken(ctx context.Context, email, fullName, token string, expiresAt time.Time) error
}

// --- Service Ports (Business Logic) ---

// CustomerService defines customer registration.
type CustomerService interface {
	Register(ctx context.Context, req RegisterCustomerRequest) (*RegisterCustomerResponse, error)
}

// RegisterCustomerRequest holds validated registration input.
type RegisterCustomerRequest struct {
	Document string
	FullName string
	Email    string
	Phone    string
}

// RegisterCustomerResponse is the registration result.
type RegisterCustomerResponse struct {
	CustomerID uuid.UUID
}

// WalletService defines balance credit and query operations.
type WalletService interface {
	// TopUp atomically credits the wallet and records an audit entry.
	// Amount is a decimal string; it is converted to minor units inside.
	TopUp(ctx context.Context, req TopUpRequest) (*BalanceResult, error)
	GetBalance(ctx context.Context, document, phone string) (*BalanceResult, error)
}

// TopUpRequest holds validated top-up input.
type TopUpRequest struct {
	Document string
	Phone    string
	Amount   string // decimal string, e.g. "100.50"
}

// BalanceResult carries a wallet balance in both exact and display forms.
type BalanceResult struct {
	BalanceMinor int64
	Balance      float64
}

// PaymentService defines the payment session lifecycle.
type PaymentService interface {
	InitPayment(ctx context.Context, req InitPaymentRequest) (*InitPaymentResponse, error)
	ConfirmPayment(ctx context.Context, req ConfirmPaymentRequest) (*BalanceResult, error)
}

// InitPaymentRequest holds validated payment initiation input.
type InitPaymentRequest struct {
	Document string
	Phone    string
	Amount   string // decimal string
}

// InitPaymentResponse identifies the created session. The cleartext token
// is deliberately absent: it travels only through the notifier.
type InitPaymentResponse struct {
	SessionID uuid.UUID
	ExpiresAt time.Time
}

// ConfirmPaymentRequest holds validated confirmation input.
type ConfirmPaymentRequest struct {
	SessionID uuid.UUID
	Token     string // 6-digit one-time token
}
