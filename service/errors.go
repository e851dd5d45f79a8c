package service

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// Error kinds. Callers match them with errors.Is; the wrapped detail is for logs.
var (
	ErrNotFound            = errors.New("not found")
	ErrForbidden           = errors.New("forbidden")
	ErrInsufficientFunds   = errors.New("insufficient funds")
	ErrInvalidAmount       = errors.New("invalid amount")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrStorageConflict     = errors.New("storage conflict")

	ErrBetNotPending  = errors.New("bet is no longer pending")
	ErrInvalidOutcome = errors.New("invalid outcome")
	ErrNoOpenLegs     = errors.New("every selection has already finished")
)

// storageError marks a failed begin/write/commit as a storage conflict
func storageError(action string, err error) error {
	return fmt.Errorf("%w: failed to %s: %w", ErrStorageConflict, action, err)
}

// wrapStorage passes domain errors through and marks everything else as a storage conflict
func wrapStorage(action string, err error) error {
	if IsUserFacing(err) || errors.Is(err, ErrStorageConflict) {
		return err
	}
	return storageError(action, err)
}

// IsUserFacing reports whether err is a validation failure whose message can be shown to the user
func IsUserFacing(err error) bool {
	for _, kind := range []error{ErrNotFound, ErrForbidden, ErrInsufficientFunds, ErrInvalidAmount, ErrBetNotPending, ErrInvalidOutcome, ErrNoOpenLegs} {
		if errors.Is(err, kind) {
			return true
		}
	}
	return false
}

// ParseAmount parses a form-supplied money value, rejecting non-numeric input
// and anything with more than two decimal places
func ParseAmount(raw string) (decimal.Decimal, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return decimal.Zero, fmt.Errorf("%w: amount is required", ErrInvalidAmount)
	}
	amount, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q is not a number", ErrInvalidAmount, raw)
	}
	if amount.Exponent() < -2 && !amount.Equal(amount.Round(2)) {
		return decimal.Zero, fmt.Errorf("%w: %q has more than two decimal places", ErrInvalidAmount, raw)
	}
	return amount, nil
}
