package radix

import (
	"errors"
	"fmt"

	"github.com/recordrx/radix/ledger"
	"github.com/recordrx/radix/sequence"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("radix: not found")
	ErrAlreadyExists = errors.New("radix: already exists")
	ErrInvalidInput  = errors.New("radix: invalid input")

	// Customer errors
	ErrCustomerNotFound  = errors.New("radix: customer not found")
	ErrCustomerInactive  = errors.New("radix: customer is not active")
	ErrCustomerSuspended = errors.New("radix: customer is suspended")

	// Bill errors
	ErrBillNotFound = errors.New("radix: bill not found")
	ErrNoLineItems  = errors.New("radix: bill has no line items")

	// Payment errors
	ErrPaymentNotFound = errors.New("radix: payment not found")
	ErrNoPaymentMethod = errors.New("radix: payment method is required")
	ErrZeroAmount      = errors.New("radix: payment amount must be positive")

	// Sequence errors
	ErrSequenceExhausted = sequence.ErrExhausted
	ErrSequenceConflict  = errors.New("radix: identifier conflict persisted after retries")

	// Ledger errors
	ErrLedgerOutOfSync = ledger.ErrOutOfSync

	// Store errors
	ErrStoreNotReady     = errors.New("radix: store not ready")
	ErrStoreClosed       = errors.New("radix: store is closed")
	ErrTransactionFailed = errors.New("radix: transaction failed")
	ErrMigrationFailed   = errors.New("radix: migration failed")
)

// ValidationError represents a validation failure with details.
// No mutation has been performed when a ValidationError is returned.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("radix: validation failed for %s: %s", e.Field, e.Message)
}

// InvariantViolationError is the ledger's invariant failure, re-exported
// so callers can type-assert without importing the ledger package.
type InvariantViolationError = ledger.InvariantError

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrCustomerNotFound) ||
		errors.Is(err, ErrBillNotFound) ||
		errors.Is(err, ErrPaymentNotFound)
}

// IsConflict returns true if the error indicates an identifier or
// concurrent-update conflict. Callers may retry the whole operation.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrSequenceConflict)
}

// IsValidation returns true if the error is a validation failure.
func IsValidation(err error) bool {
	var ve ValidationError
	return errors.As(err, &ve) || errors.Is(err, ErrInvalidInput)
}

// IsRetryable returns true if the error is temporary and the operation can be retried.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrStoreNotReady) ||
		errors.Is(err, ErrTransactionFailed) ||
		errors.Is(err, ErrSequenceConflict)
}
