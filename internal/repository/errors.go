package repository

import (
	"errors"

	"github.com/jackc/pgx/v5/pgconn"
)

// ErrNotFound reports an absent document. Callers treat absence as an
// invalid id, not a fault.
var ErrNotFound = errors.New("not found")

// notFoundOnFKViolation maps a foreign-key violation to ErrNotFound: an
// insert against a missing parent means the caller presented an invalid
// project id, the same condition the RowsAffected checks report on updates.
func notFoundOnFKViolation(err error) error {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) && pgErr.Code == "23503" {
		return ErrNotFound
	}
	return err
}
