package rules_test

import (
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/rules"
)

func TestPlanGenerator_Generate(t *testing.T) {
	gen := rules.PlanGenerator{Family: rules.DailyBook}
	m := mapping("m1", "v1", "2024-01-01", nil)

	tests := []struct {
		name         string
		eventType    domain.EventType
		wantDebit    string
		wantCredit   string
		wantCostType domain.CostType
	}{
		{"expense", domain.EventTypeExpense, "EXP_CLEAR", "CASH", domain.CostTypeDailyBookExpense},
		{"income", domain.EventTypeIncome, "BANK", "REVENUE", domain.CostTypeDailyBookIncome},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			event := expenseEvent()
			event.Type = tt.eventType

			rows, lines, err := gen.Generate(event, m, accountCodes())
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}

			if len(rows) != 1 {
				t.Fatalf("expected 1 allocation row, got %d", len(rows))
			}
			row := rows[0]
			if row.ProjectRef != "P1" || row.CostType != tt.wantCostType || row.CurrencyCode != "GBP" {
				t.Fatalf("unexpected allocation row: %+v", row)
			}
			if !row.Amount.Equal(decimal.RequireFromString("150")) {
				t.Fatalf("expected amount 150, got %s", row.Amount)
			}

			if len(lines) != 2 {
				t.Fatalf("expected 2 ledger lines, got %d", len(lines))
			}
			if lines[0].AccountCode != tt.wantDebit || !lines[0].Credit.IsZero() || !lines[0].Debit.Equal(event.GrossAmount) {
				t.Fatalf("unexpected debit line: %+v", lines[0])
			}
			if lines[1].AccountCode != tt.wantCredit || !lines[1].Debit.IsZero() || !lines[1].Credit.Equal(event.GrossAmount) {
				t.Fatalf("unexpected credit line: %+v", lines[1])
			}

			debit, credit := domain.SumLines(lines)
			if !debit.Equal(credit) {
				t.Fatalf("lines do not balance: debit %s credit %s", debit, credit)
			}
		})
	}
}

func TestPlanGenerator_UnsupportedEventType(t *testing.T) {
	gen := rules.PlanGenerator{Family: rules.DailyBook}
	event := expenseEvent()
	event.Type = "TRANSFER"

	rows, lines, err := gen.Generate(event, mapping("m1", "v1", "2024-01-01", nil), accountCodes())
	if !errors.Is(err, domain.ErrUnsupportedEventType) {
		t.Fatalf("expected ErrUnsupportedEventType, got %v", err)
	}
	if rows != nil || lines != nil {
		t.Fatalf("expected no partial result, got rows=%v lines=%v", rows, lines)
	}
}

func TestPlanGenerator_ForeignSourceType(t *testing.T) {
	gen := rules.PlanGenerator{Family: rules.DailyBook}
	event := expenseEvent()
	event.SourceType = "INVOICE"

	_, _, err := gen.Generate(event, mapping("m1", "v1", "2024-01-01", nil), accountCodes())
	if !errors.Is(err, domain.ErrUnsupportedEventType) {
		t.Fatalf("expected ErrUnsupportedEventType, got %v", err)
	}
}

func TestPlanGenerator_CustomFamily(t *testing.T) {
	gen := rules.PlanGenerator{Family: rules.Family{
		SourceType:      "PETTY_CASH_ENTRY",
		ExpenseCostType: "PETTY_CASH_EXPENSE",
		IncomeCostType:  "PETTY_CASH_INCOME",
	}}
	event := expenseEvent()
	event.SourceType = "PETTY_CASH_ENTRY"

	rows, _, err := gen.Generate(event, mapping("m1", "v1", "2024-01-01", nil), accountCodes())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rows[0].CostType != "PETTY_CASH_EXPENSE" {
		t.Fatalf("expected family cost type, got %s", rows[0].CostType)
	}
}

func TestCheckBalance(t *testing.T) {
	hundred := decimal.NewFromInt(100)

	tests := []struct {
		name  string
		lines []domain.LedgerLine
		want  error
	}{
		{
			name: "balanced",
			lines: []domain.LedgerLine{
				{AccountCode: "A", Debit: hundred, Credit: decimal.Zero, CurrencyCode: "EUR"},
				{AccountCode: "B", Debit: decimal.Zero, Credit: hundred, CurrencyCode: "EUR"},
			},
		},
		{
			name: "unbalanced",
			lines: []domain.LedgerLine{
				{AccountCode: "A", Debit: hundred, Credit: decimal.Zero, CurrencyCode: "EUR"},
				{AccountCode: "B", Debit: decimal.Zero, Credit: decimal.NewFromInt(99), CurrencyCode: "EUR"},
			},
			want: domain.ErrBalanceInvariant,
		},
		{
			name: "both sides set",
			lines: []domain.LedgerLine{
				{AccountCode: "A", Debit: hundred, Credit: hundred, CurrencyCode: "EUR"},
			},
			want: domain.ErrBalanceInvariant,
		},
		{
			name: "empty line",
			lines: []domain.LedgerLine{
				{AccountCode: "A", Debit: decimal.Zero, Credit: decimal.Zero, CurrencyCode: "EUR"},
			},
			want: domain.ErrBalanceInvariant,
		},
		{
			name: "mixed currencies",
			lines: []domain.LedgerLine{
				{AccountCode: "A", Debit: hundred, Credit: decimal.Zero, CurrencyCode: "EUR"},
				{AccountCode: "B", Debit: decimal.Zero, Credit: hundred, CurrencyCode: "USD"},
			},
			want: domain.ErrCurrencyMismatch,
		},
		{
			name: "no lines",
			want: domain.ErrBalanceInvariant,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := rules.CheckBalance(tt.lines, "EUR")
			if tt.want == nil {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestCheckBalance_ExactDecimalSums(t *testing.T) {
	// 0.1 + 0.2 must equal 0.3 exactly.
	lines := []domain.LedgerLine{
		{Debit: decimal.RequireFromString("0.1"), Credit: decimal.Zero, CurrencyCode: "EUR"},
		{Debit: decimal.RequireFromString("0.2"), Credit: decimal.Zero, CurrencyCode: "EUR"},
		{Debit: decimal.Zero, Credit: decimal.RequireFromString("0.3"), CurrencyCode: "EUR"},
	}

	if err := rules.CheckBalance(lines, "EUR"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
