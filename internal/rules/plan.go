package rules

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/iho/postingrules/internal/domain"
)

// Family describes an event family: the source type written into snapshots
// and the cost buckets its expense and income events allocate to.
type Family struct {
	SourceType      string
	ExpenseCostType domain.CostType
	IncomeCostType  domain.CostType
}

// DailyBook is the family of daily book entries.
var DailyBook = Family{
	SourceType:      domain.SourceTypeDailyBookEntry,
	ExpenseCostType: domain.CostTypeDailyBookExpense,
	IncomeCostType:  domain.CostTypeDailyBookIncome,
}

// CheckEvent rejects events this family cannot post.
func (f Family) CheckEvent(event *domain.BusinessEvent) error {
	if !event.Type.Valid() {
		return fmt.Errorf("%w: %q", domain.ErrUnsupportedEventType, event.Type)
	}
	if event.SourceType != "" && event.SourceType != f.SourceType {
		return fmt.Errorf("%w: source type %q in family %q",
			domain.ErrUnsupportedEventType, event.SourceType, f.SourceType)
	}
	return nil
}

// PlanGenerator derives allocation rows and ledger lines for one event.
type PlanGenerator struct {
	Family Family
}

// Generate returns one allocation row and a balanced debit/credit pair.
func (g PlanGenerator) Generate(
	event *domain.BusinessEvent,
	mapping *domain.MappingConfiguration,
	accounts AccountCodes,
) ([]domain.AllocationRow, []domain.LedgerLine, error) {
	if err := g.Family.CheckEvent(event); err != nil {
		return nil, nil, err
	}

	var (
		debitID, creditID string
		costType          domain.CostType
	)

	switch event.Type {
	case domain.EventTypeExpense:
		debitID, creditID = mapping.ExpenseDebitAccountID, mapping.ExpenseCreditAccountID
		costType = g.Family.ExpenseCostType
	case domain.EventTypeIncome:
		debitID, creditID = mapping.IncomeDebitAccountID, mapping.IncomeCreditAccountID
		costType = g.Family.IncomeCostType
	}

	debitCode, err := accounts.Code(debitID)
	if err != nil {
		return nil, nil, err
	}
	creditCode, err := accounts.Code(creditID)
	if err != nil {
		return nil, nil, err
	}

	rows := []domain.AllocationRow{{
		ProjectRef:   event.ProjectRef,
		CostType:     costType,
		Amount:       event.GrossAmount,
		CurrencyCode: event.CurrencyCode,
	}}

	lines := []domain.LedgerLine{
		{
			AccountID:    debitID,
			AccountCode:  debitCode,
			Debit:        event.GrossAmount,
			Credit:       decimal.Zero,
			CurrencyCode: event.CurrencyCode,
		},
		{
			AccountID:    creditID,
			AccountCode:  creditCode,
			Debit:        decimal.Zero,
			Credit:       event.GrossAmount,
			CurrencyCode: event.CurrencyCode,
		},
	}

	if err := CheckBalance(lines, event.CurrencyCode); err != nil {
		return nil, nil, err
	}

	return rows, lines, nil
}

// CheckBalance verifies the double-entry post-condition: every line has
// exactly one positive side, all lines share currency, and debits equal credits.
func CheckBalance(lines []domain.LedgerLine, currency string) error {
	if len(lines) == 0 {
		return fmt.Errorf("%w: no lines", domain.ErrBalanceInvariant)
	}

	for i, l := range lines {
		if l.CurrencyCode != currency {
			return fmt.Errorf("%w: %w: line %d is %s, want %s",
				domain.ErrBalanceInvariant, domain.ErrCurrencyMismatch, i, l.CurrencyCode, currency)
		}
		if l.Debit.IsNegative() || l.Credit.IsNegative() || l.Debit.IsZero() == l.Credit.IsZero() {
			return fmt.Errorf("%w: line %d has debit %s and credit %s", domain.ErrBalanceInvariant, i, l.Debit, l.Credit)
		}
	}

	debit, credit := domain.SumLines(lines)
	if !debit.Equal(credit) {
		return fmt.Errorf("%w: debit %s != credit %s", domain.ErrBalanceInvariant, debit, credit)
	}

	return nil
}
