package services

import (
	"errors"
	"fmt"

	"github.com/linesmerrill/relief-api/databases"
)

// Errors returned by the service layer. Callers match them with errors.Is.
var (
	ErrUnauthorized         = errors.New("unauthorized")
	ErrAuthExpired          = errors.New("session expired, please log in again")
	ErrForbidden            = errors.New("forbidden")
	ErrNotFound             = errors.New("not found")
	ErrValidation           = errors.New("invalid request")
	ErrInvalidState         = errors.New("invalid state")
	ErrNotPending           = fmt.Errorf("%w: emergency is no longer accepting volunteers", ErrInvalidState)
	ErrMissingPayoutDetails = fmt.Errorf("%w: payout details have not been saved", ErrInvalidState)
	ErrAlreadyAssigned      = errors.New("already volunteered for this emergency")
	ErrInsufficientBalance  = errors.New("insufficient balance, at least 1000 coins are required")
	ErrVersionConflict      = databases.ErrVersionConflict
)

func validationError(format string, args ...interface{}) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}
