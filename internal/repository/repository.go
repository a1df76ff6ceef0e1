package repository

import (
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
)

// Sentinel errors surfaced to services; the underlying driver error stays in the chain message.
var (
	ErrDuplicate         = errors.New("duplicate key")
	ErrForeignKey        = errors.New("foreign key violation")
	ErrInvalidTransition = errors.New("invalid status transition")
)

const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
)

// executor returns exec when a transaction is supplied, falling back to the pool.
func executor(db *sqlx.DB, exec sqlx.ExtContext) sqlx.ExtContext {
	if exec != nil {
		return exec
	}
	return db
}

// classify maps constraint violations reported by lib/pq onto sentinel errors.
func classify(err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		return fmt.Errorf("%w (%s): %v", ErrDuplicate, pqErr.Constraint, err)
	case pqForeignKeyViolation:
		return fmt.Errorf("%w (%s): %v", ErrForeignKey, pqErr.Constraint, err)
	}
	return err
}
