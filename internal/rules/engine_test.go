package rules_test

import (
	"encoding/json"
	"errors"
	"sync"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/rules"
)

func scenarioInput() rules.Input {
	return rules.Input{
		TenantID:    "T1",
		PostingDate: date("2024-07-01"),
		Event:       expenseEvent(),
		Candidates:  []*domain.MappingConfiguration{mapping("m1", "v1", "2024-01-01", nil)},
		Accounts:    accountCodes(),
	}
}

func TestEngine_Scenario(t *testing.T) {
	engine := rules.NewEngine(rules.DailyBook)

	result, err := engine.Resolve(scenarioInput())
	require.NoError(t, err)

	assert.Equal(t, "v1", result.RuleVersion)
	assert.Equal(t, "e8b2b9c80156907bf07e172203d438f405b1b877c409d1c01fe733a72b01c89c", result.RuleHash)

	require.Len(t, result.AllocationRows, 1)
	row := result.AllocationRows[0]
	assert.Equal(t, "P1", row.ProjectRef)
	assert.Equal(t, domain.CostTypeDailyBookExpense, row.CostType)
	assert.True(t, row.Amount.Equal(decimal.RequireFromString("150.00")))
	assert.Equal(t, "GBP", row.CurrencyCode)

	require.Len(t, result.LedgerEntries, 2)
	assert.Equal(t, "EXP_CLEAR", result.LedgerEntries[0].AccountCode)
	assert.True(t, result.LedgerEntries[0].Debit.Equal(decimal.RequireFromString("150.00")))
	assert.True(t, result.LedgerEntries[0].Credit.IsZero())
	assert.Equal(t, "CASH", result.LedgerEntries[1].AccountCode)
	assert.True(t, result.LedgerEntries[1].Debit.IsZero())
	assert.True(t, result.LedgerEntries[1].Credit.Equal(decimal.RequireFromString("150.00")))

	debit, credit := result.Totals()
	assert.True(t, debit.Equal(credit))
}

func TestEngine_Deterministic(t *testing.T) {
	engine := rules.NewEngine(rules.DailyBook)

	first, err := engine.Resolve(scenarioInput())
	require.NoError(t, err)
	firstJSON, err := json.Marshal(first)
	require.NoError(t, err)

	var wg sync.WaitGroup
	results := make([][]byte, 16)
	for i := range results {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			r, err := engine.Resolve(scenarioInput())
			if err != nil {
				return
			}
			results[i], _ = json.Marshal(r)
		}(i)
	}
	wg.Wait()

	for i, got := range results {
		assert.Equal(t, string(firstJSON), string(got), "resolution %d differs", i)
	}
}

func TestEngine_UnsupportedTypeFailsBeforeMappingLookup(t *testing.T) {
	engine := rules.NewEngine(rules.DailyBook)
	in := scenarioInput()
	in.Event.Type = "REFUND"
	in.Candidates = nil

	result, err := engine.Resolve(in)
	if !errors.Is(err, domain.ErrUnsupportedEventType) {
		t.Fatalf("expected ErrUnsupportedEventType, got %v", err)
	}
	if result != nil {
		t.Fatalf("expected no result, got %+v", result)
	}
}

func TestEngine_MissingMapping(t *testing.T) {
	engine := rules.NewEngine(rules.DailyBook)
	in := scenarioInput()
	in.PostingDate = date("2023-06-30")

	_, err := engine.Resolve(in)
	if !errors.Is(err, domain.ErrMappingNotFound) {
		t.Fatalf("expected ErrMappingNotFound, got %v", err)
	}
}

func TestEngine_MissingAccount(t *testing.T) {
	engine := rules.NewEngine(rules.DailyBook)
	in := scenarioInput()
	delete(in.Accounts, "acc-cash")

	_, err := engine.Resolve(in)
	if !errors.Is(err, domain.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestEngine_RejectsMalformedAmount(t *testing.T) {
	engine := rules.NewEngine(rules.DailyBook)

	tests := []struct {
		name    string
		amount  string
		wantErr error
	}{
		{"zero", "0", domain.ErrInvalidAmount},
		{"negative", "-150.00", domain.ErrInvalidAmount},
		{"finer than currency", "150.005", domain.ErrAmountPrecision},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := scenarioInput()
			in.Event.GrossAmount = decimal.RequireFromString(tt.amount)

			result, err := engine.Resolve(in)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("expected %v, got %v", tt.wantErr, err)
			}
			if errors.Is(err, domain.ErrBalanceInvariant) {
				t.Fatalf("malformed amount reported as a balance violation: %v", err)
			}
			if result != nil {
				t.Fatalf("expected no result, got %+v", result)
			}

			mapping := in.Candidates[0]
			_, err = engine.Build(in.Event, in.PostingDate, mapping, in.Accounts)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("Build: expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestEngine_DistinctSourceIDsHashDifferently(t *testing.T) {
	engine := rules.NewEngine(rules.DailyBook)

	composed := scenarioInput()
	composed.Event.ID = "caf\u00e9"
	decomposed := scenarioInput()
	decomposed.Event.ID = "cafe\u0301"

	first, err := engine.Resolve(composed)
	require.NoError(t, err)
	second, err := engine.Resolve(decomposed)
	require.NoError(t, err)

	assert.NotEqual(t, first.RuleHash, second.RuleHash)
	assert.Contains(t, string(second.RuleSnapshot.Canonical), "\"source_id\":\"cafe\u0301\"")
}
