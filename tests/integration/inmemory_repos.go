package integration

import (
	"context"
	"errors"
	"sync"
	"time"

	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

// store is a shared in-memory database. A single mutex plays the role of
// the row locks: a transaction holds it from Begin until Commit or
// Rollback, so transactional sections serialize exactly like FOR UPDATE
// serializes concurrent confirmers.
type store struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*domain.Customer
	wallets   map[uuid.UUID]*domain.Wallet
	topUps    []*domain.TopUp
	sessions  map[uuid.UUID]*domain.PaymentSession // keyed by internal ID
	payments  map[uuid.UUID]*domain.Payment        // keyed by session ID
}

func newStore() *store {
	return &store{
		customers: make(map[uuid.UUID]*domain.Customer),
		wallets:   make(map[uuid.UUID]*domain.Wallet),
		sessions:  make(map[uuid.UUID]*domain.PaymentSession),
		payments:  make(map[uuid.UUID]*domain.Payment),
	}
}

// memTx implements pgx.Tx over the shared store lock.
type memTx struct {
	pgx.Tx
	s    *store
	once sync.Once
}

func (t *memTx) release() {
	t.once.Do(t.s.mu.Unlock)
}

func (t *memTx) Commit(_ context.Context) error   { t.release(); return nil }
func (t *memTx) Rollback(_ context.Context) error { t.release(); return nil }

// memTransactor implements ports.DBTransactor.
type memTransactor struct{ s *store }

func (tr *memTransactor) Begin(_ context.Context) (pgx.Tx, error) {
	tr.s.mu.Lock()
	return &memTx{s: tr.s}, nil
}

// --- Customer repository ---

type memCustomerRepo struct{ s *store }

func (r *memCustomerRepo) CreateTx(_ context.Context, _ pgx.Tx, c *domain.Customer) error {
	for _, existing := range r.s.customers {
		if existing.Document == c.Document || existing.Email == c.Email || existing.Phone == c.Phone {
			return ports.ErrUniqueViolation
		}
	}
	clone := *c
	r.s.customers[c.ID] = &clone
	return nil
}

func (r *memCustomerRepo) findBy(match func(*domain.Customer) bool) (*domain.Customer, error) {
	for _, c := range r.s.customers {
		if match(c) {
			clone := *c
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memCustomerRepo) GetByDocument(_ context.Context, document string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.findBy(func(c *domain.Customer) bool { return c.Document == document })
}

func (r *memCustomerRepo) GetByEmail(_ context.Context, email string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.findBy(func(c *domain.Customer) bool { return c.Email == email })
}

func (r *memCustomerRepo) GetByPhone(_ context.Context, phone string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.findBy(func(c *domain.Customer) bool { return c.Phone == phone })
}

func (r *memCustomerRepo) GetByDocumentAndPhone(_ context.Context, document, phone string) (*domain.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.findBy(func(c *domain.Customer) bool { return c.Document == document && c.Phone == phone })
}

// --- Wallet repository ---

type memWalletRepo struct{ s *store }

func (r *memWalletRepo) CreateTx(_ context.Context, _ pgx.Tx, w *domain.Wallet) error {
	clone := *w
	r.s.wallets[w.ID] = &clone
	return nil
}

func (r *memWalletRepo) GetByCustomerID(_ context.Context, customerID uuid.UUID) (*domain.Wallet, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, w := range r.s.wallets {
		if w.CustomerID == customerID {
			clone := *w
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memWalletRepo) GetByIDForUpdate(_ context.Context, _ pgx.Tx, id uuid.UUID) (*domain.Wallet, error) {
	// Caller holds the store lock through its transaction.
	w, ok := r.s.wallets[id]
	if !ok {
		return nil, nil
	}
	clone := *w
	return &clone, nil
}

func (r *memWalletRepo) UpdateBalance(_ context.Context, _ pgx.Tx, walletID uuid.UUID, balance int64) error {
	w, ok := r.s.wallets[walletID]
	if !ok {
		return errRowNotFound
	}
	w.Balance = balance
	w.UpdatedAt = time.Now().UTC()
	return nil
}

// --- TopUp repository ---

type memTopUpRepo struct{ s *store }

func (r *memTopUpRepo) CreateTx(_ context.Context, _ pgx.Tx, t *domain.TopUp) error {
	clone := *t
	r.s.topUps = append(r.s.topUps, &clone)
	return nil
}

// --- Payment session repository ---

type memSessionRepo struct{ s *store }

func (r *memSessionRepo) Create(_ context.Context, session *domain.PaymentSession) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, existing := range r.s.sessions {
		if existing.SessionID == session.SessionID {
			return ports.ErrUniqueViolation
		}
	}
	clone := *session
	r.s.sessions[session.ID] = &clone
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id uuid.UUID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	delete(r.s.sessions, id)
	return nil
}

func (r *memSessionRepo) LockPendingBySessionID(_ context.Context, _ pgx.Tx, sessionID uuid.UUID) (*domain.PaymentSession, error) {
	for _, s := range r.s.sessions {
		if s.SessionID == sessionID && s.Status == domain.SessionStatusPending {
			clone := *s
			return &clone, nil
		}
	}
	return nil, nil
}

func (r *memSessionRepo) UpdateStatus(_ context.Context, _ pgx.Tx, id uuid.UUID, status domain.PaymentSessionStatus) error {
	s, ok := r.s.sessions[id]
	if !ok {
		return errRowNotFound
	}
	s.Status = status
	s.UpdatedAt = time.Now().UTC()
	return nil
}

func (r *memSessionRepo) MarkExpiredBefore(_ context.Context, cutoff time.Time) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var swept int64
	for _, s := range r.s.sessions {
		if s.Status == domain.SessionStatusPending && s.ExpiresAt.Before(cutoff) {
			s.Status = domain.SessionStatusExpired
			swept++
		}
	}
	return swept, nil
}

// --- Payment repository ---

type memPaymentRepo struct{ s *store }

func (r *memPaymentRepo) CreateTx(_ context.Context, _ pgx.Tx, p *domain.Payment) error {
	if _, exists := r.s.payments[p.SessionID]; exists {
		return ports.ErrUniqueViolation
	}
	clone := *p
	r.s.payments[p.SessionID] = &clone
	return nil
}

func (r *memPaymentRepo) GetBySessionID(_ context.Context, sessionID uuid.UUID) (*domain.Payment, error) {
	p, ok := r.s.payments[sessionID]
	if !ok {
		return nil, nil
	}
	clone := *p
	return &clone, nil
}

// --- Token capture notifier ---

var (
	errTokenDelivery = errors.New("token delivery failed")
	errRowNotFound   = errors.New("row not found")
)

// captureNotifier records the last token per recipient instead of
// sending mail.
type captureNotifier struct {
	mu     sync.Mutex
	tokens map[string]string // email -> token
	fail   bool
}

func newCaptureNotifier() *captureNotifier {
	return &captureNotifier{tokens: make(map[string]string)}
}

func (n *captureNotifier) SendPaymentToken(_ context.Context, email, _, token string, _ time.Time) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.fail {
		return errTokenDelivery
	}
	n.tokens[email] = token
	return nil
}

func (n *captureNotifier) tokenFor(email string) string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.tokens[email]
}
