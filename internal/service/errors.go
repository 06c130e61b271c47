package service

import (
	"database/sql"
	"errors"
	"fmt"
)

// Domain error kinds. Handlers map these to client-visible failures;
// anything else is treated as an infrastructure problem and kept opaque.
var (
	// ErrNotFound marks a referenced order, timer, workstation or staff
	// member that does not exist.
	ErrNotFound = errors.New("not found")

	// ErrVersionConflict marks an optimistic-concurrency failure: the entity
	// changed since it was read. Callers should re-read and retry.
	ErrVersionConflict = errors.New("version conflict")
)

// InvalidTransitionError marks an operation attempted from a state that
// forbids it. The message is deterministic so clients can act on it.
type InvalidTransitionError struct {
	Entity string
	ID     string
	From   string
	Op     string
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("%s %s: cannot %s from status %s", e.Entity, e.ID, e.Op, e.From)
}

// IsInvalidTransition reports whether err is an invalid-transition failure.
func IsInvalidTransition(err error) bool {
	var ite *InvalidTransitionError
	return errors.As(err, &ite)
}

// notFoundOr converts a no-rows lookup failure into ErrNotFound, keeping the
// original error for anything else.
func notFoundOr(err error, entity string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%s: %w", entity, ErrNotFound)
	}
	return err
}

// isNoRows reports whether err is a no-rows lookup failure.
func isNoRows(err error) bool {
	return errors.Is(err, sql.ErrNoRows)
}
