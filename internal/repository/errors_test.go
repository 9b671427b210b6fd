package repository

import (
	"errors"
	"fmt"
	"testing"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
)

func TestNotFoundOnFKViolation(t *testing.T) {
	fkErr := &pgconn.PgError{Code: "23503", ConstraintName: "updates_project_id_fkey"}
	assert.ErrorIs(t, notFoundOnFKViolation(fkErr), ErrNotFound)

	wrapped := fmt.Errorf("insert update: %w", fkErr)
	assert.ErrorIs(t, notFoundOnFKViolation(wrapped), ErrNotFound)
}

func TestNotFoundOnFKViolationPassesThroughOtherErrors(t *testing.T) {
	dup := &pgconn.PgError{Code: "23505"}
	assert.Equal(t, error(dup), notFoundOnFKViolation(dup))

	plain := errors.New("connection refused")
	assert.Equal(t, plain, notFoundOnFKViolation(plain))

	assert.NoError(t, notFoundOnFKViolation(nil))
}
