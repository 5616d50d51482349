package postgres

import (
	"context"
	"errors"
	"fmt"

	"virtual-wallet/internal/core/domain"

	"github.com/jackc/pgx/v5"
)

// CustomerRepo implements ports.CustomerRepository.
type CustomerRepo struct {
	pool Pool
}

// NewCustomerRepo creates a new CustomerRepo.
func NewCustomerRepo(pool Pool) *CustomerRepo {
	return &CustomerRepo{pool: pool}
}

const customerColumns = `id, document, full_name, email, phone, created_at, updated_at`

// CreateTx inserts a new customer within a transaction. Unique-constraint
// conflicts surface as ports.ErrUniqueViolation.
func (r *CustomerRepo) CreateTx(ctx context.Context, tx pgx.Tx, c *domain.Customer) error {
	query := `INSERT INTO customers (id, document, full_name, email, phone, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := tx.Exec(ctx, query,
		c.ID, c.Document, c.FullName, c.Email, c.Phone, c.CreatedAt, c.UpdatedAt,
	)
	if err != nil {
		return wrapUniqueViolation("insert customer", err)
	}
	return nil
}

// GetByDocument fetches a customer by document number.
func (r *CustomerRepo) GetByDocument(ctx context.Context, document string) (*domain.Customer, error) {
	return r.getBy(ctx, `document = $1`, document)
}

// GetByEmail fetches a customer by email.
func (r *CustomerRepo) GetByEmail(ctx context.Context, email string) (*domain.Customer, error) {
	return r.getBy(ctx, `email = $1`, email)
}

// GetByPhone fetches a customer by phone number.
func (r *CustomerRepo) GetByPhone(ctx context.Context, phone string) (*domain.Customer, error) {
	return r.getBy(ctx, `phone = $1`, phone)
}

// GetByDocumentAndPhone fetches a customer by the identifying pair used
// on every wallet operation.
func (r *CustomerRepo) GetByDocumentAndPhone(ctx context.Context, document, phone string) (*domain.Customer, error) {
	return r.getBy(ctx, `document = $1 AND phone = $2`, document, phone)
}

func (r *CustomerRepo) getBy(ctx context.Context, where string, args ...any) (*domain.Customer, error) {
	query := fmt.Sprintf(`SELECT %s FROM customers WHERE %s`, customerColumns, where)

	c := &domain.Customer{}
	err := r.pool.QueryRow(ctx, query, args...).Scan(
		&c.ID, &c.Document, &c.FullName, &c.Email, &c.Phone, &c.CreatedAt, &c.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("get customer: %w", err)
	}
	return c, nil
}
