package itinerary

import (
	"errors"
	"fmt"
)

// Sentinel errors shared across the engine. Stores translate driver-level
// conditions (pgx.ErrNoRows, unique violations) into these at the domain
// boundary so callers compare with errors.Is.
var (
	ErrNotFound  = errors.New("not found")
	ErrForbidden = errors.New("forbidden")
	ErrConflict  = errors.New("conflict")
)

// ValidationError reports a genuinely missing or invalid required field.
// Recoverable shape issues (unknown item type, absent coordinates) never
// produce one; those become Notices instead.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// Validation constructs a ValidationError.
func Validation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// IsValidation reports whether err is (or wraps) a ValidationError.
func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// TransactionError wraps a store failure that occurred inside an atomic
// write. By the time one propagates, the transaction has been rolled back.
type TransactionError struct {
	Op  string
	Err error
}

func (e *TransactionError) Error() string {
	return fmt.Sprintf("transaction failed during %s: %v", e.Op, e.Err)
}

func (e *TransactionError) Unwrap() error { return e.Err }

// Transactional wraps err as a TransactionError unless it already is one.
func Transactional(op string, err error) error {
	var te *TransactionError
	if errors.As(err, &te) {
		return err
	}
	return &TransactionError{Op: op, Err: err}
}
