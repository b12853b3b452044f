package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5/pgconn"
)

// Constraint violations the storage engine reports synchronously on writes.
// Callers distinguish them with errors.Is.
var (
	ErrUniqueViolation     = errors.New("unique violation")
	ErrCheckViolation      = errors.New("check violation")
	ErrForeignKeyViolation = errors.New("foreign key violation")
	ErrNotNullViolation    = errors.New("not null violation")
)

// PostgreSQL SQLSTATE codes, class 23 (integrity constraint violation).
const (
	sqlstateForeignKeyViolation = "23503"
	sqlstateNotNullViolation    = "23502"
	sqlstateUniqueViolation     = "23505"
	sqlstateCheckViolation      = "23514"
)

// translateError maps driver-level integrity errors to the package sentinels,
// keeping the violated constraint name in the message. Non-constraint errors
// pass through unchanged.
func translateError(err error) error {
	if err == nil {
		return nil
	}
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return err
	}
	switch pgErr.Code {
	case sqlstateUniqueViolation:
		return fmt.Errorf("%w: %s", ErrUniqueViolation, pgErr.ConstraintName)
	case sqlstateCheckViolation:
		return fmt.Errorf("%w: %s", ErrCheckViolation, pgErr.ConstraintName)
	case sqlstateForeignKeyViolation:
		return fmt.Errorf("%w: %s", ErrForeignKeyViolation, pgErr.ConstraintName)
	case sqlstateNotNullViolation:
		return fmt.Errorf("%w: column %s", ErrNotNullViolation, pgErr.ColumnName)
	default:
		return err
	}
}
