package ledger

import (
	"errors"
	"fmt"

	"invoice-ledger-backend/internal/repository"
	"invoice-ledger-backend/internal/services/authorization"
)

// Error kinds. Every error returned by Service matches exactly one of these
// with errors.Is.
var (
	ErrValidation   = errors.New("ledger: validation failed")
	ErrNotFound     = errors.New("ledger: invoice not found")
	ErrForbidden    = errors.New("ledger: forbidden")
	ErrInvalidState = errors.New("ledger: operation not allowed in current state")
	ErrOverpayment  = errors.New("ledger: overpayment not allowed")
	ErrConflict     = errors.New("ledger: concurrent modification, retry")
	ErrStorage      = errors.New("ledger: storage failure")
)

// Error carries the kind of failure plus the operation and, for validation
// failures, the offending field.
type Error struct {
	Kind  error
	Op    string
	Field string
	Err   error
}

func (e *Error) Error() string {
	msg := e.Kind.Error()
	if e.Field != "" {
		msg = fmt.Sprintf("%s (%s)", msg, e.Field)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, msg, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, msg)
}

// Unwrap exposes both the kind and the cause to errors.Is / errors.As.
func (e *Error) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}
	return []error{e.Kind, e.Err}
}

func validationError(op, field, message string) error {
	return &Error{Kind: ErrValidation, Op: op, Field: field, Err: errors.New(message)}
}

var kinds = []error{
	ErrValidation,
	ErrNotFound,
	ErrForbidden,
	ErrInvalidState,
	ErrOverpayment,
	ErrConflict,
	ErrStorage,
}

// KindOf returns the kind sentinel for err. Errors that did not come from
// the ledger are treated as storage failures.
func KindOf(err error) error {
	if err == nil {
		return nil
	}
	for _, kind := range kinds {
		if errors.Is(err, kind) {
			return kind
		}
	}
	return ErrStorage
}

// IsRetryable reports whether the caller should retry with fresh state.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrConflict)
}

// classify wraps collaborator errors into the ledger taxonomy. Errors that
// already carry a kind pass through untouched.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}
	var ledgerErr *Error
	if errors.As(err, &ledgerErr) {
		return err
	}

	kind := ErrStorage
	switch {
	case errors.Is(err, authorization.ErrNotFound), errors.Is(err, repository.ErrNotFound):
		kind = ErrNotFound
	case errors.Is(err, authorization.ErrForbidden):
		kind = ErrForbidden
	case errors.Is(err, authorization.ErrArchived):
		kind = ErrInvalidState
	case errors.Is(err, repository.ErrConflict), errors.Is(err, errLockWait):
		kind = ErrConflict
	}
	return &Error{Kind: kind, Op: op, Err: err}
}
