package rules_test

import (
	"github.com/shopspring/decimal"

	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/rules"
)

func date(s string) domain.Date { return domain.MustParseDate(s) }

func datePtr(s string) *domain.Date {
	d := date(s)
	return &d
}

func mapping(id, version, from string, to *domain.Date) *domain.MappingConfiguration {
	return &domain.MappingConfiguration{
		ID:                     id,
		TenantID:               "T1",
		RuleFamily:             domain.RuleFamilyDailyBook,
		Version:                version,
		EffectiveFrom:          date(from),
		EffectiveTo:            to,
		ExpenseDebitAccountID:  "acc-exp-clear",
		ExpenseCreditAccountID: "acc-cash",
		IncomeDebitAccountID:   "acc-bank",
		IncomeCreditAccountID:  "acc-revenue",
	}
}

func accountCodes() rules.AccountCodes {
	return rules.AccountCodes{
		"acc-exp-clear": "EXP_CLEAR",
		"acc-cash":      "CASH",
		"acc-bank":      "BANK",
		"acc-revenue":   "REVENUE",
	}
}

func expenseEvent() *domain.BusinessEvent {
	return &domain.BusinessEvent{
		ID:           "E1",
		TenantID:     "T1",
		SourceType:   domain.SourceTypeDailyBookEntry,
		Type:         domain.EventTypeExpense,
		ProjectRef:   "P1",
		GrossAmount:  decimal.RequireFromString("150.00"),
		CurrencyCode: "GBP",
	}
}
