package service

import (
	"context"
	"fmt"
	"math/big"
	"time"

	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/pkg/apperror"
	"virtual-wallet/pkg/money"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// WalletServiceImpl implements ports.WalletService.
type WalletServiceImpl struct {
	customerRepo ports.CustomerRepository
	walletRepo   ports.WalletRepository
	topUpRepo    ports.TopUpRepository
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewWalletService creates a new wallet service.
func NewWalletService(
	customerRepo ports.CustomerRepository,
	walletRepo ports.WalletRepository,
	topUpRepo ports.TopUpRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *WalletServiceImpl {
	return &WalletServiceImpl{
		customerRepo: customerRepo,
		walletRepo:   walletRepo,
		topUpRepo:    topUpRepo,
		transactor:   transactor,
		log:          log,
	}
}

// TopUp credits the wallet under a row lock and records an audit entry
// in the same transaction.
func (s *WalletServiceImpl) TopUp(ctx context.Context, req ports.TopUpRequest) (*ports.BalanceResult, error) {
	wallet, err := s.resolveWallet(ctx, req.Document, req.Phone)
	if err != nil {
		return nil, err
	}

	amount, err := parsePositiveAmount(req.Amount)
	if err != nil {
		return nil, err
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	// Re-read under lock: the unlocked read above is only a lookup.
	locked, err := s.walletRepo.GetByIDForUpdate(ctx, dbTx, wallet.ID)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("lock wallet: %w", err))
	}
	if locked == nil {
		return nil, apperror.InternalError(fmt.Errorf("wallet %s vanished under lock", wallet.ID))
	}

	newBalance := locked.Balance + amount

	if err := s.walletRepo.UpdateBalance(ctx, dbTx, locked.ID, newBalance); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("update balance: %w", err))
	}

	topUp := &domain.TopUp{
		ID:       uuid.New(),
		WalletID: locked.ID,
		Amount:   amount,
		Metadata: map[string]string{
			"source":   "internal-service",
			"document": req.Document,
			"phone":    req.Phone,
		},
		CreatedAt: time.Now().UTC(),
	}
	if err := s.topUpRepo.CreateTx(ctx, dbTx, topUp); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create top-up record: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("wallet_id", locked.ID.String()).
		Int64("amount", amount).
		Int64("balance", newBalance).
		Msg("wallet topped up")

	return balanceResult(newBalance), nil
}

// GetBalance returns the wallet balance for the identified customer.
func (s *WalletServiceImpl) GetBalance(ctx context.Context, document, phone string) (*ports.BalanceResult, error) {
	wallet, err := s.resolveWallet(ctx, document, phone)
	if err != nil {
		return nil, err
	}
	return balanceResult(wallet.Balance), nil
}

// resolveWallet resolves the customer by its identifying pair and then
// the customer's wallet.
func (s *WalletServiceImpl) resolveWallet(ctx context.Context, document, phone string) (*domain.Wallet, error) {
	customer, err := s.customerRepo.GetByDocumentAndPhone(ctx, document, phone)
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
		// Registration creates the wallet with the customer; a customer
		// without one is a data-integrity violation, not a client error.
		return nil, apperror.InternalError(fmt.Errorf("customer %s has no wallet", customer.ID))
	}
	return wallet, nil
}

// parsePositiveAmount converts a decimal amount string into minor units,
// rejecting zero and negative values.
func parsePositiveAmount(value string) (int64, error) {
	minor, err := money.ToMinorUnits(value)
	if err != nil {
		return 0, apperror.Validation("Invalid amount format.")
	}
	if minor.Sign() <= 0 {
		return 0, apperror.Validation("Amount must be greater than zero.")
	}
	amount, err := money.Int64MinorUnits(minor)
	if err != nil {
		return 0, apperror.Validation("Amount out of range.")
	}
	return amount, nil
}

func balanceResult(balanceMinor int64) *ports.BalanceResult {
	return &ports.BalanceResult{
		BalanceMinor: balanceMinor,
		Balance:      money.ToDisplay(big.NewInt(balanceMinor)),
	}
}
