package domain

import "github.com/pkg/errors"

// Validation failures are recovered locally and surfaced to the caller as
// user-visible messages; they never mutate the ledger.
var (
	ErrNothingSelected     = errors.New("both tokens must be selected")
	ErrInvalidAmount       = errors.New("amount must be a positive number")
	ErrInsufficientBalance = errors.New("insufficient balance")
	ErrUnknownToken        = errors.New("unknown token")

	// ErrBusy rejects a second execute request while one is in flight.
	ErrBusy = errors.New("swap already in progress")
)

// IsValidation reports whether err belongs to the validation taxonomy.
func IsValidation(err error) bool {
	return errors.Is(err, ErrNothingSelected) ||
		errors.Is(err, ErrInvalidAmount) ||
		errors.Is(err, ErrInsufficientBalance) ||
		errors.Is(err, ErrUnknownToken)
}
