package postgres

import (
	"errors"
	"fmt"

	"virtual-wallet/internal/core/ports"

	"github.com/jackc/pgx/v5/pgconn"
)

// uniqueViolationCode is the PostgreSQL error code for unique_violation.
const uniqueViolationCode = "23505"

// wrapUniqueViolation translates PostgreSQL unique-constraint errors into
// the ports.ErrUniqueViolation sentinel so services can react to
// commit-time duplicates. Other errors pass through with context.
func wrapUniqueViolation(op string, err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == uniqueViolationCode {
		return fmt.Errorf("%s: %s: %w", op, pgErr.ConstraintName, ports.ErrUniqueViolation)
	}
	return fmt.Errorf("%s: %w", op, err)
}
