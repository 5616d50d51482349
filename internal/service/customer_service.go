package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"virtual-wallet/internal/core/domain"
	"virtual-wallet/internal/core/ports"
	"virtual-wallet/pkg/apperror"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// CustomerServiceImpl implements ports.CustomerService.
type CustomerServiceImpl struct {
	customerRepo ports.CustomerRepository
	walletRepo   ports.WalletRepository
	transactor   ports.DBTransactor
	log          zerolog.Logger
}

// NewCustomerService creates a new customer service.
func NewCustomerService(
	customerRepo ports.CustomerRepository,
	walletRepo ports.WalletRepository,
	transactor ports.DBTransactor,
	log zerolog.Logger,
) *CustomerServiceImpl {
	return &CustomerServiceImpl{
		customerRepo: customerRepo,
		walletRepo:   walletRepo,
		transactor:   transactor,
		log:          log,
	}
}

// Register creates a customer together with an empty wallet, atomically.
// A customer without a wallet must never exist.
func (s *CustomerServiceImpl) Register(ctx context.Context, req ports.RegisterCustomerRequest) (*ports.RegisterCustomerResponse, error) {
	if err := s.ensureUniqueness(ctx, req.Document, req.Email, req.Phone); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	customer := &domain.Customer{
		ID:        uuid.New(),
		Document:  req.Document,
		FullName:  req.FullName,
		Email:     req.Email,
		Phone:     req.Phone,
		CreatedAt: now,
		UpdatedAt: now,
	}
	wallet := &domain.Wallet{
		ID:         uuid.New(),
		CustomerID: customer.ID,
		Balance:    0,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	dbTx, err := s.transactor.Begin(ctx)
	if err != nil {
		return nil, apperror.InternalError(fmt.Errorf("begin tx: %w", err))
	}
	defer dbTx.Rollback(ctx) //nolint:errcheck

	if err := s.customerRepo.CreateTx(ctx, dbTx, customer); err != nil {
		// Pre-checks race against concurrent registrations; the unique
		// constraints are authoritative.
		if errors.Is(err, ports.ErrUniqueViolation) {
			return nil, apperror.Duplicate("Customer already registered.")
		}
		return nil, apperror.InternalError(fmt.Errorf("create customer: %w", err))
	}

	if err := s.walletRepo.CreateTx(ctx, dbTx, wallet); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("create wallet: %w", err))
	}

	if err := dbTx.Commit(ctx); err != nil {
		return nil, apperror.InternalError(fmt.Errorf("commit tx: %w", err))
	}

	s.log.Info().
		Str("customer_id", customer.ID.String()).
		Str("wallet_id", wallet.ID.String()).
		Msg("customer registered")

	return &ports.RegisterCustomerResponse{CustomerID: customer.ID}, nil
}

// ensureUniqueness checks each identity field separately so the caller
// learns which one collided.
func (s *CustomerServiceImpl) ensureUniqueness(ctx context.Context, document, email, phone string) error {
	existing, err := s.customerRepo.GetByDocument(ctx, document)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("check document: %w", err))
	}
	if existing != nil {
		return apperror.Duplicate("Document already registered.")
	}

	existing, err = s.customerRepo.GetByEmail(ctx, email)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("check email: %w", err))
	}
	if existing != nil {
		return apperror.Duplicate("Email already registered.")
	}

	existing, err = s.customerRepo.GetByPhone(ctx, phone)
	if err != nil {
		return apperror.InternalError(fmt.Errorf("check phone: %w", err))
	}
	if existing != nil {
		return apperror.Duplicate("Phone already registered.")
	}

	return nil
}
