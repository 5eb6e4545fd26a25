package domain

import (
	"fmt"
	"strings"
	"time"

	"golang.org/x/text/unicode/norm"
)

// RuleFamilyDailyBook is the rule family used for daily book entries.
const RuleFamilyDailyBook = SourceTypeDailyBookEntry

// MappingConfiguration is one effective-dated version of the accounts that
// absorb each entry type for a tenant. Rows are append-only.
type MappingConfiguration struct {
	CreatedAt              time.Time
	EffectiveFrom          Date
	EffectiveTo            *Date // nil means no upper bound
	ID                     string
	TenantID               string
	RuleFamily             string
	Version                string
	ExpenseDebitAccountID  string
	ExpenseCreditAccountID string
	IncomeDebitAccountID   string
	IncomeCreditAccountID  string
}

// Covers reports whether the configuration is in effect on day.
// Both bounds are inclusive.
func (m *MappingConfiguration) Covers(day Date) bool {
	if day.Before(m.EffectiveFrom) {
		return false
	}
	return m.EffectiveTo == nil || !day.After(*m.EffectiveTo)
}

// Overlaps reports whether both configurations are in effect on at least one common day.
func (m *MappingConfiguration) Overlaps(o *MappingConfiguration) bool {
	if m.EffectiveTo != nil && m.EffectiveTo.Before(o.EffectiveFrom) {
		return false
	}
	if o.EffectiveTo != nil && o.EffectiveTo.Before(m.EffectiveFrom) {
		return false
	}
	return true
}

// AccountIDs returns the referenced account ids in a fixed order:
// expense debit, expense credit, income debit, income credit.
func (m *MappingConfiguration) AccountIDs() []string {
	return []string{
		m.ExpenseDebitAccountID,
		m.ExpenseCreditAccountID,
		m.IncomeDebitAccountID,
		m.IncomeCreditAccountID,
	}
}

// Validate checks a configuration before it is stored.
func (m *MappingConfiguration) Validate() error {
	if strings.TrimSpace(m.TenantID) == "" {
		return fmt.Errorf("%w: tenant is required", ErrInvalidMapping)
	}

	if strings.TrimSpace(m.Version) == "" {
		return fmt.Errorf("%w: version is required", ErrInvalidMapping)
	}

	// Versions are unique by bytes; a decomposed label would look like a duplicate.
	if !norm.NFC.IsNormalString(m.Version) {
		return fmt.Errorf("%w: version %q is not NFC normalized", ErrInvalidMapping, m.Version)
	}

	if m.EffectiveFrom.IsZero() {
		return fmt.Errorf("%w: effective_from is required", ErrInvalidMapping)
	}

	if m.EffectiveTo != nil && m.EffectiveTo.Before(m.EffectiveFrom) {
		return fmt.Errorf("%w: effective_to %s is before effective_from %s",
			ErrInvalidMapping, m.EffectiveTo, m.EffectiveFrom)
	}

	for _, id := range m.AccountIDs() {
		if id == "" {
			return fmt.Errorf("%w: all four accounts are required", ErrInvalidMapping)
		}
	}

	return nil
}
