package integration

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"testing"
	"time"

	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/internal/service"
	"virtual-wallet/pkg/apperror"
	"virtual-wallet/pkg/logger"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// serviceStack wires the real services over the in-memory store, skipping
// the HTTP layer so concurrency tests hit the transactional core directly.
type serviceStack struct {
	store       *store
	notifier    *captureNotifier
	sessionRepo *memSessionRepo
	customerSvc ports.CustomerService
	walletSvc   ports.WalletService
	paymentSvc  ports.PaymentService
}

func newServiceStack(t *testing.T) *serviceStack {
	t.Helper()

	st := newStore()
	customerRepo := &memCustomerRepo{s: st}
	walletRepo := &memWalletRepo{s: st}
	topUpRepo := &memTopUpRepo{s: st}
	sessionRepo := &memSessionRepo{s: st}
	paymentRepo := &memPaymentRepo{s: st}
	transactor := &memTransactor{s: st}

	notifier := newCaptureNotifier()
	hasher := service.NewArgon2TokenHasher()
	log := logger.NewWithWriter("error", io.Discard)

	return &serviceStack{
		store:       st,
		notifier:    notifier,
		sessionRepo: sessionRepo,
		customerSvc: service.NewCustomerService(customerRepo, walletRepo, transactor, log),
		walletSvc:   service.NewWalletService(customerRepo, walletRepo, topUpRepo, transactor, log),
		paymentSvc: service.NewPaymentService(
			customerRepo, walletRepo, sessionRepo, paymentRepo,
			transactor, hasher, notifier, 10*time.Minute, log,
		),
	}
}

// seedFundedCustomer registers a customer and credits the wallet.
func (s *serviceStack) seedFundedCustomer(t *testing.T, amount string) {
	t.Helper()
	ctx := context.Background()

	_, err := s.customerSvc.Register(ctx, ports.RegisterCustomerRequest{
		Document: testDocument,
		FullName: "Ana Souza",
		Email:    testEmail,
		Phone:    testPhone,
	})
	require.NoError(t, err)

	_, err = s.walletSvc.TopUp(ctx, ports.TopUpRequest{
		Document: testDocument,
		Phone:    testPhone,
		Amount:   amount,
	})
	require.NoError(t, err)
}

func errCode(err error) string {
	var appErr *apperror.AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return ""
}

// TestConcurrentConfirm_SingleWinner races many confirmations of the same
// session. The lock-read filtered to PENDING guarantees exactly one debit:
// every loser finds no pending row once the winner commits.
func TestConcurrentConfirm_SingleWinner(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	stack.seedFundedCustomer(t, "100.50")

	initResp, err := stack.paymentSvc.InitPayment(ctx, ports.InitPaymentRequest{
		Document: testDocument,
		Phone:    testPhone,
		Amount:   "49.99",
	})
	require.NoError(t, err)
	token := stack.notifier.tokenFor(testEmail)
	require.Len(t, token, 6)

	const racers = 8
	results := make([]error, racers)
	var wg sync.WaitGroup
	start := make(chan struct{})

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			<-start
			_, err := stack.paymentSvc.ConfirmPayment(ctx, ports.ConfirmPaymentRequest{
				SessionID: initResp.SessionID,
				Token:     token,
			})
			results[i] = err
		}(i)
	}
	close(start)
	wg.Wait()

	var wins, notFound int
	for _, err := range results {
		switch {
		case err == nil:
			wins++
		case errCode(err) == "WAL_002":
			notFound++
		default:
			t.Errorf("unexpected confirm error: %v", err)
		}
	}
	assert.Equal(t, 1, wins, "exactly one confirmation must succeed")
	assert.Equal(t, racers-1, notFound)

	// Debited exactly once: 100.50 - 49.99 = 50.51.
	balance, err := stack.walletSvc.GetBalance(ctx, testDocument, testPhone)
	require.NoError(t, err)
	assert.Equal(t, int64(5051), balance.BalanceMinor)

	stack.store.mu.Lock()
	assert.Len(t, stack.store.payments, 1)
	stack.store.mu.Unlock()
}

// TestConcurrentTopUp_NoLostUpdates credits the same wallet from many
// goroutines. Row-locked read-modify-write must not lose any credit.
func TestConcurrentTopUp_NoLostUpdates(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	stack.seedFundedCustomer(t, "1.00")

	const workers = 10
	var wg sync.WaitGroup
	errs := make([]error, workers)

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := stack.walletSvc.TopUp(ctx, ports.TopUpRequest{
				Document: testDocument,
				Phone:    testPhone,
				Amount:   "2.50",
			})
			errs[i] = err
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		require.NoError(t, err, "top-up %d", i)
	}

	// 1.00 + 10 * 2.50 = 26.00.
	balance, err := stack.walletSvc.GetBalance(ctx, testDocument, testPhone)
	require.NoError(t, err)
	assert.Equal(t, int64(2600), balance.BalanceMinor)
}

// TestExpiredSession_ConfirmRejectedAndSweeperFlagsIt exercises lazy
// expiry: a stale PENDING session rejects confirmation without mutating
// the row, and the background sweep later flips it to EXPIRED.
func TestExpiredSession_ConfirmRejectedAndSweeperFlagsIt(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	stack.seedFundedCustomer(t, "100.00")

	initResp, err := stack.paymentSvc.InitPayment(ctx, ports.InitPaymentRequest{
		Document: testDocument,
		Phone:    testPhone,
		Amount:   "10.00",
	})
	require.NoError(t, err)
	token := stack.notifier.tokenFor(testEmail)

	// Age the session past its deadline.
	stack.store.mu.Lock()
	var internalID uuid.UUID
	for id, sess := range stack.store.sessions {
		if sess.SessionID == initResp.SessionID {
			sess.ExpiresAt = time.Now().UTC().Add(-time.Minute)
			internalID = id
		}
	}
	stack.store.mu.Unlock()
	require.NotEqual(t, uuid.Nil, internalID)

	_, err = stack.paymentSvc.ConfirmPayment(ctx, ports.ConfirmPaymentRequest{
		SessionID: initResp.SessionID,
		Token:     token,
	})
	require.Error(t, err)
	assert.Equal(t, "TOK_002", errCode(err))

	// Expiry is reported lazily; the row itself stays PENDING.
	stack.store.mu.Lock()
	assert.Equal(t, domain.SessionStatusPending, stack.store.sessions[internalID].Status)
	stack.store.mu.Unlock()

	swept, err := stack.sessionRepo.MarkExpiredBefore(ctx, time.Now().UTC())
	require.NoError(t, err)
	assert.Equal(t, int64(1), swept)

	stack.store.mu.Lock()
	assert.Equal(t, domain.SessionStatusExpired, stack.store.sessions[internalID].Status)
	stack.store.mu.Unlock()

	// No funds moved.
	balance, err := stack.walletSvc.GetBalance(ctx, testDocument, testPhone)
	require.NoError(t, err)
	assert.Equal(t, int64(10000), balance.BalanceMinor)
}

// TestConcurrentRegister_OneCustomerPerDocument races registrations with
// the same document. The uniqueness backstop admits exactly one.
func TestConcurrentRegister_OneCustomerPerDocument(t *testing.T) {
	stack := newServiceStack(t)
	ctx := context.Background()

	const racers = 6
	var wg sync.WaitGroup
	results := make([]error, racers)

	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, err := stack.customerSvc.Register(ctx, ports.RegisterCustomerRequest{
				Document: testDocument,
				FullName: "Ana Souza",
				Email:    fmt.Sprintf("ana%d@example.com", i),
				Phone:    fmt.Sprintf("55119999%05d", i),
			})
			results[i] = err
		}(i)
	}
	wg.Wait()

	var created, rejected int
	for _, err := range results {
		switch {
		case err == nil:
			created++
		case errCode(err) == "DUP_001":
			rejected++
		default:
			t.Errorf("unexpected register error: %v", err)
		}
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, racers-1, rejected)

	stack.store.mu.Lock()
	assert.Len(t, stack.store.customers, 1)
	assert.Len(t, stack.store.wallets, 1)
	stack.store.mu.Unlock()
}
