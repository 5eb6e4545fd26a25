package domain

import (
	"github.com/shopspring/decimal"
)

// CostType tags an allocation row with its cost bucket.
type CostType string

const (
	CostTypeDailyBookExpense CostType = "DAILY_BOOK_EXPENSE"
	CostTypeDailyBookIncome  CostType = "DAILY_BOOK_INCOME"
)

// AllocationRow attributes an amount to a project and cost bucket.
type AllocationRow struct {
	ProjectRef   string
	CostType     CostType
	Amount       decimal.Decimal
	CurrencyCode string
}

// LedgerLine is one side of a planned posting. Exactly one of Debit and
// Credit is non-zero.
type LedgerLine struct {
	AccountID    string
	AccountCode  string
	Debit        decimal.Decimal
	Credit       decimal.Decimal
	CurrencyCode string
}

// SnapshotMapping is the mapping part of a RuleSnapshot. Accounts appear by code.
type SnapshotMapping struct {
	Version                  string
	EffectiveFrom            Date
	EffectiveTo              *Date
	ExpenseDebitAccountCode  string
	ExpenseCreditAccountCode string
	IncomeDebitAccountCode   string
	IncomeCreditAccountCode  string
}

// RuleSnapshot freezes a resolution decision. Canonical holds the exact
// bytes that were hashed.
type RuleSnapshot struct {
	SourceType  string
	SourceID    string
	PostingDate Date
	Mapping     SnapshotMapping
	Canonical   []byte
}

// MarshalJSON emits the canonical bytes so the key order matches the hash input.
func (s RuleSnapshot) MarshalJSON() ([]byte, error) {
	if len(s.Canonical) == 0 {
		return []byte("null"), nil
	}
	out := make([]byte, len(s.Canonical))
	copy(out, s.Canonical)
	return out, nil
}

// RuleResolutionResult is what posting an event would produce. It is built
// once per resolution and never modified afterwards.
type RuleResolutionResult struct {
	RuleVersion    string
	RuleHash       string
	RuleSnapshot   RuleSnapshot
	AllocationRows []AllocationRow
	LedgerEntries  []LedgerLine
}

// Totals returns the debit and credit sums of the ledger entries.
func (r *RuleResolutionResult) Totals() (debit, credit decimal.Decimal) {
	return SumLines(r.LedgerEntries)
}

// SumLines sums the debit and credit sides of lines.
func SumLines(lines []LedgerLine) (debit, credit decimal.Decimal) {
	debit, credit = decimal.Zero, decimal.Zero
	for _, l := range lines {
		debit = debit.Add(l.Debit)
		credit = credit.Add(l.Credit)
	}
	return debit, credit
}
