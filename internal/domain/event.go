package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// EventType classifies a business event for posting.
type EventType string

const (
	EventTypeExpense EventType = "EXPENSE"
	EventTypeIncome  EventType = "INCOME"
)

// Valid reports whether t is a type the posting engine accepts.
func (t EventType) Valid() bool {
	return t == EventTypeExpense || t == EventTypeIncome
}

// SourceTypeDailyBookEntry identifies daily book entries awaiting posting.
const SourceTypeDailyBookEntry = "DAILY_BOOK_ENTRY"

// BusinessEvent is the read-only view of an event awaiting posting.
type BusinessEvent struct {
	ID           string
	TenantID     string
	SourceType   string
	Type         EventType
	ProjectRef   string
	GrossAmount  decimal.Decimal
	CurrencyCode string
}

// Validate checks the fields the posting engine relies on.
func (e *BusinessEvent) Validate() error {
	if e.ID == "" {
		return fmt.Errorf("%w: missing event id", ErrInvalidEvent)
	}

	if err := ValidateAmount(e.GrossAmount); err != nil {
		return err
	}

	if err := ValidateCurrency(e.CurrencyCode); err != nil {
		return err
	}

	return ValidateAmountPrecision(e.GrossAmount, e.CurrencyCode)
}
