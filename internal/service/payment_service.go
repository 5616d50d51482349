package service

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"math/big"
	"time"

	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// tokenDigits is the length of the one-time confirmation token.
const tokenDigits = 6

// PaymentServiceImpl implements ports.PaymentService.
type PaymentServiceImpl struct {
	customerRepo ports.CustomerRepository
	walletRepo   ports.WalletRepository
	sessionRepo  ports.PaymentSessionRepository
	paymentRepo  ports.PaymentRepository
	transactor   ports.DBTransactor
	hasher       ports.TokenHasher
	notifier     ports.TokenNotifier
	tokenTTL     time.Duration
	log          zerolog.Logger
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	customerRepo ports.CustomerRepository,
	walletRepo ports.WalletRepository,
	sessionRepo ports.PaymentSessionRepository,
	paymentRepo ports.PaymentRepository,
	transactor ports.DBTransactor,
	hasher ports.TokenHasher,
	notifier ports.TokenNotifier,
	tokenTTL time.Duration,
	log zerolog.Logger,
) *PaymentServiceImpl {
	if tokenTTL <= 0 {
		tokenTTL = 10 * time.Minute
	}
	return &PaymentServiceImpl{
		customerRepo: customerRepo,
		walletRepo:   walletRepo,
		sessionRepo:  sessionRepo,
		paymentRepo:  paymentRepo,
		transactor:   transactor,
		hasher:       hasher,
		notifier:     notifier,
		tokenTTL:     tokenTTL,
		log:          log,
	}
}

// InitPayment creates a PENDING payment session and mails its one-time
// token to the customer. The cleartext token never leaves this method
// except through the notifier.
func (s *PaymentServiceImpl) InitPayment(ctx context.Context, req ports.InitPaymentRequest) (*ports.InitPaymentResponse, error) {
	customer, err := s.customerRepo.GetByDocumentAndPhone(ctx, req.Document, req.Phone)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get customer: %w", err))
	}
	if customer == nil {
		return nil, apperror.ErrNotFound("Customer")
	}

	wallet, err := s.walletRepo.GetByCustomerID(ctx, customer.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("get wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.InternalError(fmt.Errorf("customer %s has no wallet", customer.ID))
	}

	amount, err := parsePositiveAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	// Advisory check: the authoritative one runs again under lock at
	// confirmation time.
	if wallet.Balance < amount {
		return nil, apperror.ErrInsufficientFunds()
	}

	token, err := generateToken()
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("generate token: %w", err))
	}
	tokenHash, err := s.hasher.Hash(token)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("hash token: %w", err))
	}

	now := time.Now().UTC()
	session := &domain.PaymentSession{
		ID:        uuid.New(),
		WalletID:  wallet.ID,
		SessionID: uuid.New(),
		Amount:    amount,
		TokenHash: tokenHash,
		Status:    domain.SessionStatusPending,
		ExpiresAt: now.Add(s.tokenTTL),
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.sessionRepo.Create(ctx, session); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create session: %w", err))
	}

	if err := s.notifier.SendPaymentToken(ctx, customer.Email, customer.FullName, token, session.ExpiresAt); err != nil {
		// The customer never received the token, so the session must not
		// stay confirmable.
		if delErr := s.sessionRepo.Delete(ctx, session.ID); delErr != nil {
			s.log.Error().Err(delErr).
				Str("session_id", session.SessionID.String()).
				Msg("failed to delete session after notification failure")
		}
		return nil, apperror.ErrNotificationFailure(err)
	}

	s.log.Info().
		Str("session_id", session.SessionID.String()).
		Str("wallet_id", wallet.ID.String()).
		Int64("amount", amount).
		Time("expires_at", session.ExpiresAt).
		Msg("payment session created")

	return &ports.InitPaymentResponse{
		SessionID: session.SessionID,
		ExpiresAt: session.ExpiresAt,
	}, nil
}

// ConfirmPayment settles a pending session: it locks the session row
// filtered to PENDING, validates expiry and token, locks the wallet,
// debits it and records the payment, all in one transaction.
func (s *PaymentServiceImpl) ConfirmPayment(ctx context.Context, req ports.ConfirmPaymentRequest) (*ports.BalanceResult, error) {
	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Lock & filter: a concurrent confirmer that already settled this
	// session leaves no PENDING row behind, so the loser lands here.
	session, err := s.sessionRepo.LockPendingBySessionID(ctx, dbTx, req.SessionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock session: %w", err))
	}
	if session == nil {
		return nil, apperror.ErrNotFound("Payment session")
	}
	if session.IsTerminal() {
		return nil, apperror.ErrAlreadyProcessed()
	}

	// Expiry is lazy: the row stays PENDING, only confirmation is refused.
	if session.IsExpired(time.Now().UTC()) {
		return nil, apperror.ErrTokenExpired()
	}

	valid, err := s.hasher.Verify(req.Token, session.TokenHash)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("verify token: %w", err))
	}
	if !valid {
		return nil, apperror.ErrTokenInvalid()
	}

	wallet, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, session.WalletID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if wallet == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet %s not found for session %s", session.WalletID, session.SessionID))
	}

	if wallet.Balance < session.Amount {
		return nil, apperror.ErrInsufficientFunds()
	}

	existing, err := s.paymentRepo.GetBySessionID(ctx, session.SessionID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("check existing payment: %w", err))
	}
	if existing != nil {
		return nil, apperror.Duplicate("Payment already confirmed.")
	}

	newBalance := wallet.Balance - session.Amount

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, wallet.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}
	if err := s.sessionRepo.UpdateStatus(ctx, dbTx, session.ID, domain.SessionStatusConfirmed); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update session status: %w", err))
	}

	payment := &domain.Payment{
		ID:        uuid.New(),
		WalletID:  wallet.ID,
		SessionID: session.SessionID,
		Amount:    session.Amount,
		CreatedAt: time.Now().UTC(),
	}
	if err := s.paymentRepo.CreateTx(ctx, dbTx, payment); err != nil {
		if errors.Is(err, ports.ErrUniqueViolation) {
			return nil, apperror.Duplicate("Payment already confirmed.")
		}
		return nil, apperror.InternalError(fmt.Errorf("create payment: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("session_id", session.SessionID.String()).
		Str("wallet_id", wallet.ID.String()).
		Int64("amount", session.Amount).
		Int64("balance", newBalance).
		Msg("payment confirmed")

	return balanceResult(newBalance), nil
}

// generateToken returns a uniformly random six digit token, zero padded.
// "042187" and "42187" are different tokens.
func generateToken() (string, error) {
	n, err := rand.Int(rand.Reader, big.NewInt(1_000_000))
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%0*d", tokenDigits, n.Int64()), nil
}
