package paylater

import (
	"errors"
	"fmt"
)

// Sentinel errors for common failure scenarios.
var (
	// General errors
	ErrNotFound      = errors.New("paylater: not found")
	ErrAlreadyExists = errors.New("paylater: already exists")
	ErrInvalidInput  = errors.New("paylater: invalid input")
	ErrDisabled      = errors.New("paylater: feature disabled")

	// Account errors
	ErrAccountNotFound = errors.New("paylater: account not found")
	ErrAccountFrozen   = errors.New("paylater: account is frozen")
	ErrAccountLocked   = errors.New("paylater: account is locked")
	ErrAccountInactive = errors.New("paylater: account is not active")
	ErrVersionConflict = errors.New("paylater: account version conflict")

	// Invoice errors
	ErrInvoiceNotFound   = errors.New("paylater: invoice not found")
	ErrInvoiceExists     = errors.New("paylater: invoice already exists")
	ErrInvoiceTerminal   = errors.New("paylater: invoice already settled or defaulted")
	ErrActiveInvoice     = errors.New("paylater: account has an active invoice")
	ErrBelowMinOrder     = errors.New("paylater: order below minimum amount")
	ErrInsufficientLimit = errors.New("paylater: insufficient available limit")

	// Ledger errors
	ErrEntryNotFound = errors.New("paylater: ledger entry not found")
	ErrGrantNotFound = errors.New("paylater: limit grant not found")
	ErrGrantReversed = errors.New("paylater: limit grant already reversed")

	// Concurrency errors
	ErrLockTimeout = errors.New("paylater: account lock timeout")

	// Schedule errors
	ErrScheduleNotFound = errors.New("paylater: schedule not found")
	ErrUnknownJob       = errors.New("paylater: unknown job name")

	// Report errors
	ErrReportNotFound = errors.New("paylater: report not found")

	// Store errors
	ErrStoreNotReady   = errors.New("paylater: store not ready")
	ErrStoreClosed     = errors.New("paylater: store is closed")
	ErrMigrationFailed = errors.New("paylater: migration failed")
)

// ValidationError represents a validation failure with details.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("paylater: validation failed for %s: %s", e.Field, e.Message)
}

// IsNotFound returns true if the error is a not found error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) ||
		errors.Is(err, ErrAccountNotFound) ||
		errors.Is(err, ErrInvoiceNotFound) ||
		errors.Is(err, ErrEntryNotFound) ||
		errors.Is(err, ErrGrantNotFound) ||
		errors.Is(err, ErrScheduleNotFound) ||
		errors.Is(err, ErrReportNotFound)
}

// IsConflict returns true if the error means the operation collided with
// existing state and should not be blindly retried.
func IsConflict(err error) bool {
	return errors.Is(err, ErrAlreadyExists) ||
		errors.Is(err, ErrInvoiceExists) ||
		errors.Is(err, ErrActiveInvoice) ||
		errors.Is(err, ErrGrantReversed) ||
		errors.Is(err, ErrVersionConflict)
}

// IsTerminal returns true if the error means the target reached a final
// state that no further mutation can leave.
func IsTerminal(err error) bool {
	return errors.Is(err, ErrInvoiceTerminal)
}

// IsRetryable returns true if the error is temporary and the operation can
// be retried as-is.
func IsRetryable(err error) bool {
	return errors.Is(err, ErrLockTimeout) ||
		errors.Is(err, ErrVersionConflict) ||
		errors.Is(err, ErrStoreNotReady)
}
