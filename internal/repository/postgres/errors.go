package postgres

import (
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// Postgres error classification. Repositories translate these into the domain
// error taxonomy (ConflictError, ErrNotFound) so nothing above this layer
// inspects SQLSTATE codes.

// IsPgDuplicateError reports a unique constraint violation (SQLSTATE 23505)
func IsPgDuplicateError(err error) bool {
	return pgErrCode(err) == "23505"
}

// IsPgForeignKeyError reports a foreign key violation (SQLSTATE 23503)
func IsPgForeignKeyError(err error) bool {
	return pgErrCode(err) == "23503"
}

// IsPgNoRowsError reports that a query returned no rows
func IsPgNoRowsError(err error) bool {
	return errors.Is(err, pgx.ErrNoRows)
}

func pgErrCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}
