package dbx

import (
	"database/sql"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/letterdesk/internal/common"
	"github.com/jackc/pgx/v5/pgconn"
)

// PostgreSQL SQLSTATE codes the repositories care about.
const (
	CodeUniqueViolation           = "23505"
	CodeForeignKeyViolation       = "23503"
	CodeInvalidTextRepresentation = "22P02"
)

// Classify maps a driver error to repository sentinels:
// sql.ErrNoRows and malformed keys (a non-UUID id) -> common.ErrorNotFound,
// unique/foreign-key violations -> common.ErrConflict. Everything else is
// wrapped as "db error".
func Classify(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, sql.ErrNoRows) {
		return common.ErrorNotFound
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case CodeUniqueViolation, CodeForeignKeyViolation:
			return fmt.Errorf("%w: %s", common.ErrConflict, pgErr.ConstraintName)
		case CodeInvalidTextRepresentation:
			return common.ErrorNotFound
		}
	}
	return fmt.Errorf("db error: %w", err)
}
