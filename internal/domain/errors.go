package domain

import "errors"

var (
	// Lookup errors
	ErrEventNotFound   = errors.New("event not found")
	ErrMappingNotFound = errors.New("no mapping configuration in effect")
	ErrAccountNotFound = errors.New("account not found")

	// Posting errors
	ErrUnsupportedEventType = errors.New("unsupported event type")
	ErrBalanceInvariant     = errors.New("ledger lines do not balance")
	ErrCurrencyMismatch     = errors.New("ledger lines mix currencies")

	// Configuration errors
	ErrMappingVersionExists = errors.New("mapping version already exists")
)

// IsNotFound reports whether err is one of the lookup errors.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrEventNotFound) ||
		errors.Is(err, ErrMappingNotFound) ||
		errors.Is(err, ErrAccountNotFound)
}
