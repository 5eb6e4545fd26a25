package usecase_test

import (
	"github.com/shopspring/decimal"

	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/usecase/mocks"
)

const scenarioHash = "e8b2b9c80156907bf07e172203d438f405b1b877c409d1c01fe733a72b01c89c"

func datePtr(s string) *domain.Date {
	d := domain.MustParseDate(s)
	return &d
}

func strPtr(s string) *string { return &s }

func testAccounts() []*domain.Account {
	return []*domain.Account{
		{ID: "acc-exp-clear", TenantID: "T1", Code: "EXP_CLEAR", Name: "Expense clearing"},
		{ID: "acc-cash", TenantID: "T1", Code: "CASH", Name: "Cash"},
		{ID: "acc-bank", TenantID: "T1", Code: "BANK", Name: "Bank"},
		{ID: "acc-revenue", TenantID: "T1", Code: "REVENUE", Name: "Revenue"},
	}
}

func testMapping(id, version, from string, to *domain.Date) *domain.MappingConfiguration {
	return &domain.MappingConfiguration{
		ID:                     id,
		TenantID:               "T1",
		RuleFamily:             domain.RuleFamilyDailyBook,
		Version:                version,
		EffectiveFrom:          domain.MustParseDate(from),
		EffectiveTo:            to,
		ExpenseDebitAccountID:  "acc-exp-clear",
		ExpenseCreditAccountID: "acc-cash",
		IncomeDebitAccountID:   "acc-bank",
		IncomeCreditAccountID:  "acc-revenue",
	}
}

func testEvent() *domain.BusinessEvent {
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

type fakes struct {
	events   *mocks.FakeEventRepository
	mappings *mocks.FakeMappingRepository
	accounts *mocks.FakeAccountDirectory
}

func newFakes() fakes {
	return fakes{
		events:   mocks.NewFakeEventRepository(testEvent()),
		mappings: mocks.NewFakeMappingRepository(testMapping("m1", "v1", "2024-01-01", nil)),
		accounts: mocks.NewFakeAccountDirectory(testAccounts()...),
	}
}
