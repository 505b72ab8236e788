/*
errors.go - Error taxonomy for the leave engine

PURPOSE:
  All error kinds in one place. Callers match kinds with errors.Is and
  read the user-facing message with errors.As(*Error).

ERROR KINDS:
  ErrValidation       missing or malformed input          (HTTP 400)
  ErrUnauthenticated  bad credentials or token            (HTTP 401)
  ErrForbidden        role lacks the capability           (HTTP 403)
  ErrNotFound         missing row, or approve/reject of a
                      request outside the actor's scope   (HTTP 404)
  ErrConflict         duplicate email, insufficient days  (HTTP 400)
  ErrInvalidState     store out of line with invariants   (HTTP 500)

SEE ALSO:
  - api/errors.go: HTTP mapping
  - store/sqlstore/errors.go: constraint translation
*/
package leave

import (
	"errors"
	"fmt"
)

// =============================================================================
// SENTINEL ERRORS - Use with errors.Is()
// =============================================================================

var (
	ErrValidation      = errors.New("validation failed")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrConflict        = errors.New("conflict")

	// ErrInsufficientBalance is also a conflict.
	ErrInsufficientBalance = errors.New("insufficient balance")

	// ErrInvalidState is returned when persisted data breaks an invariant,
	// e.g. an approval finds no balance row to debit.
	ErrInvalidState = errors.New("invalid state")

	// ErrInvalidRange is returned by WorkingDays when end precedes start.
	ErrInvalidRange = errors.New("invalid range: end before start")
)

// =============================================================================
// STRUCTURED ERRORS - Carry a user-facing message
// =============================================================================

// Error pairs an error kind with a message safe to show to clients.
// Cause holds the underlying failure, if any, for non-production output.
type Error struct {
	Kind    error
	Message string
	Cause   error
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() []error {
	if e.Cause != nil {
		return []error{e.Kind, e.Cause}
	}
	return []error{e.Kind}
}

// Detail returns the underlying cause text, or "" when there is none.
func (e *Error) Detail() string {
	if e.Cause == nil {
		return ""
	}
	return e.Cause.Error()
}

func validation(msg string) error {
	return &Error{Kind: ErrValidation, Message: msg}
}

func notFound(msg string) error {
	return &Error{Kind: ErrNotFound, Message: msg}
}

func forbidden(msg string) error {
	return &Error{Kind: ErrForbidden, Message: msg}
}

func conflict(msg string) error {
	return &Error{Kind: ErrConflict, Message: msg}
}

func unauthenticated(msg string) error {
	return &Error{Kind: ErrUnauthenticated, Message: msg}
}

// NewError builds an Error of the given kind. Used by store implementations
// to translate driver failures.
func NewError(kind error, msg string, cause error) *Error {
	return &Error{Kind: kind, Message: msg, Cause: cause}
}

// InsufficientBalanceError reports a request larger than the remaining days.
type InsufficientBalanceError struct {
	Remaining int
	Requested int
}

func (e *InsufficientBalanceError) Error() string {
	return fmt.Sprintf("Insufficient leave balance. You have %d days remaining", e.Remaining)
}

func (e *InsufficientBalanceError) Unwrap() []error {
	return []error{ErrInsufficientBalance, ErrConflict}
}
