package ports

import (
	"context"
	"errors"
	"time"

	"virtual-wallet/internal/core/domain"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// ErrUniqueViolation is the store's uniqueness-violation signal. Adapters
// wrap it so services can distinguish duplicate-key conflicts from other
// storage failures.
var ErrUniqueViolation = errors.New("unique constraint violation")

// CustomerRepository defines persistence operations for customers.
// Methods accepting pgx.Tx run inside an enclosing transaction.
type CustomerRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, customer *domain.Customer) error
	GetByDocument(ctx context.Context, document string) (*domain.Customer, error)
	GetByEmail(ctx context.Context, email string) (*domain.Customer, error)
	GetByPhone(ctx context.Context, phone string) (*domain.Customer, error)
	GetByDocumentAndPhone(ctx context.Context, document, phone string) (*domain.Customer, error)
}

// WalletRepository defines persistence operations for wallets.
// GetByIDForUpdate acquires an exclusive row lock for the lifetime of tx
// and MUST precede any read-modify-write of the balance.
type WalletRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, wallet *domain.Wallet) error
	GetByCustomerID(ctx context.Context, customerID uuid.UUID) (*domain.Wallet, error)
	GetByIDForUpdate(ctx context.Context, tx pgx.Tx, id uuid.UUID) (*domain.Wallet, error)
	UpdateBalance(ctx context.Context, tx pgx.Tx, walletID uuid.UUID, balance int64) error
}

// TopUpRepository persists immutable top-up audit records.
type TopUpRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, topUp *domain.TopUp) error
}

// PaymentSessionRepository defines persistence for payment sessions.
type PaymentSessionRepository interface {
	Create(ctx context.Context, session *domain.PaymentSession) error
	// Delete removes a session whose token was never delivered so it can
	// never be confirmed.
	Delete(ctx context.Context, id uuid.UUID) error
	// LockPendingBySessionID lock-reads the session filtered to PENDING
	// status. Returns nil when no such row exists — covering absent,
	// already-settled, and concurrently-raced sessions alike.
	LockPendingBySessionID(ctx context.Context, tx pgx.Tx, sessionID uuid.UUID) (*domain.PaymentSession, error)
	UpdateStatus(ctx context.Context, tx pgx.Tx, id uuid.UUID, status domain.PaymentSessionStatus) error
	// MarkExpiredBefore flips stale PENDING sessions to EXPIRED. Hygiene
	// only; confirmation correctness never depends on it.
	MarkExpiredBefore(ctx context.Context, cutoff time.Time) (int64, error)
}

// PaymentRepository persists settled payments.
type PaymentRepository interface {
	CreateTx(ctx context.Context, tx pgx.Tx, payment *domain.Payment) error
	GetBySessionID(ctx context.Context, sessionID uuid.UUID) (*domain.Payment, error)
}

// DBTransactor provides database transaction management.
type DBTransactor interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}
