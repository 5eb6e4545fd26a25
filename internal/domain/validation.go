package domain

import (
	"errors"
	"fmt"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Validation errors
var (
	ErrMissingTenant      = errors.New("tenant is required")
	ErrInvalidEvent       = errors.New("invalid event")
	ErrInvalidPostingDate = errors.New("invalid posting date")
	ErrInvalidAmount      = errors.New("amount must be positive")
	ErrAmountTooLarge     = errors.New("amount exceeds maximum allowed")
	ErrAmountPrecision    = errors.New("amount has more decimal places than its currency allows")
	ErrInvalidCurrency    = errors.New("invalid currency code")
	ErrInvalidMapping     = errors.New("invalid mapping configuration")
	ErrAccountCycle       = errors.New("account hierarchy contains a cycle")
)

// MaxPostingAmount is the largest gross amount accepted for a single event.
const MaxPostingAmount = "1000000000000" // 1 trillion

var maxPostingAmount = decimal.RequireFromString(MaxPostingAmount)

// ValidateCurrency checks that code is a known ISO 4217 currency.
// Codes are case sensitive: "gbp" is rejected.
func ValidateCurrency(code string) error {
	if code == "" || code != strings.ToUpper(strings.TrimSpace(code)) || money.GetCurrency(code) == nil {
		return fmt.Errorf("%w: %q is not a valid ISO 4217 currency code", ErrInvalidCurrency, code)
	}
	return nil
}

// ValidateAmount validates a gross posting amount.
func ValidateAmount(amount decimal.Decimal) error {
	if !amount.IsPositive() {
		return fmt.Errorf("%w: got %s", ErrInvalidAmount, amount)
	}

	if amount.GreaterThan(maxPostingAmount) {
		return fmt.Errorf("%w: maximum amount is %s", ErrAmountTooLarge, MaxPostingAmount)
	}

	return nil
}

// ValidateAmountPrecision checks that amount fits the minor units of its
// currency. Trailing zeros are allowed: 150.0000 GBP is valid, 150.005 GBP is not.
func ValidateAmountPrecision(amount decimal.Decimal, code string) error {
	fraction := CurrencyFraction(code)
	if !amount.Truncate(fraction).Equal(amount) {
		return fmt.Errorf("%w: %s has more than %d decimal places for %s", ErrAmountPrecision, amount, fraction, code)
	}
	return nil
}

// CurrencyFraction returns the number of minor-unit digits of a currency,
// falling back to 2 for unknown codes.
func CurrencyFraction(code string) int32 {
	if c := money.GetCurrency(code); c != nil {
		return int32(c.Fraction)
	}
	return 2
}

// FormatAmount renders amount with the minor-unit digits of its currency.
// An amount finer than the currency allows is rendered exactly, never rounded.
func FormatAmount(amount decimal.Decimal, code string) string {
	fraction := CurrencyFraction(code)
	if !amount.Truncate(fraction).Equal(amount) {
		return amount.String()
	}
	return amount.StringFixed(fraction)
}
