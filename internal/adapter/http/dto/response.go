package dto

import (
	"encoding/json"
	"time"

	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/usecase"
)

// AllocationRowResponse represents an allocation row in API responses.
type AllocationRowResponse struct {
	ProjectRef   string `json:"project_ref"`
	CostType     string `json:"cost_type"`
	Amount       string `json:"amount"`
	CurrencyCode string `json:"currency_code"`
}

// LedgerLineResponse represents a ledger line in API responses.
type LedgerLineResponse struct {
	AccountID    string `json:"account_id"`
	AccountCode  string `json:"account_code"`
	Debit        string `json:"debit"`
	Credit       string `json:"credit"`
	CurrencyCode string `json:"currency_code"`
}

// TotalsResponse holds the debit and credit sums of a resolution.
type TotalsResponse struct {
	Debit  string `json:"debit"`
	Credit string `json:"credit"`
}

// ResolutionResponse represents a rule resolution result in API responses.
// RuleSnapshot carries the exact canonical bytes that RuleHash was computed over.
type ResolutionResponse struct {
	RuleVersion    string                  `json:"rule_version"`
	RuleHash       string                  `json:"rule_hash"`
	RuleSnapshot   json.RawMessage         `json:"rule_snapshot"`
	AllocationRows []AllocationRowResponse `json:"allocation_rows"`
	LedgerEntries  []LedgerLineResponse    `json:"ledger_entries"`
	Totals         TotalsResponse          `json:"totals"`
}

// ResolutionFromDomain converts a domain result to response.
// Amounts are rendered with the minor-unit digits of their currency.
func ResolutionFromDomain(r *domain.RuleResolutionResult) *ResolutionResponse {
	resp := &ResolutionResponse{
		RuleVersion:    r.RuleVersion,
		RuleHash:       r.RuleHash,
		RuleSnapshot:   json.RawMessage(r.RuleSnapshot.Canonical),
		AllocationRows: make([]AllocationRowResponse, len(r.AllocationRows)),
		LedgerEntries:  make([]LedgerLineResponse, len(r.LedgerEntries)),
	}

	for i, row := range r.AllocationRows {
		resp.AllocationRows[i] = AllocationRowResponse{
			ProjectRef:   row.ProjectRef,
			CostType:     string(row.CostType),
			Amount:       domain.FormatAmount(row.Amount, row.CurrencyCode),
			CurrencyCode: row.CurrencyCode,
		}
	}

	currency := ""
	for i, line := range r.LedgerEntries {
		currency = line.CurrencyCode
		resp.LedgerEntries[i] = LedgerLineResponse{
			AccountID:    line.AccountID,
			AccountCode:  line.AccountCode,
			Debit:        domain.FormatAmount(line.Debit, line.CurrencyCode),
			Credit:       domain.FormatAmount(line.Credit, line.CurrencyCode),
			CurrencyCode: line.CurrencyCode,
		}
	}

	debit, credit := r.Totals()
	resp.Totals = TotalsResponse{
		Debit:  domain.FormatAmount(debit, currency),
		Credit: domain.FormatAmount(credit, currency),
	}

	return resp
}

// MappingResponse represents a mapping configuration in API responses.
type MappingResponse struct {
	ID                     string    `json:"id"`
	TenantID               string    `json:"tenant_id"`
	RuleFamily             string    `json:"rule_family"`
	Version                string    `json:"version"`
	EffectiveFrom          string    `json:"effective_from"`
	EffectiveTo            *string   `json:"effective_to"`
	ExpenseDebitAccountID  string    `json:"expense_debit_account_id"`
	ExpenseCreditAccountID string    `json:"expense_credit_account_id"`
	IncomeDebitAccountID   string    `json:"income_debit_account_id"`
	IncomeCreditAccountID  string    `json:"income_credit_account_id"`
	CreatedAt              time.Time `json:"created_at"`
}

// MappingFromDomain converts a domain mapping to response.
func MappingFromDomain(m *domain.MappingConfiguration) *MappingResponse {
	resp := &MappingResponse{
		ID:                     m.ID,
		TenantID:               m.TenantID,
		RuleFamily:             m.RuleFamily,
		Version:                m.Version,
		EffectiveFrom:          m.EffectiveFrom.String(),
		ExpenseDebitAccountID:  m.ExpenseDebitAccountID,
		ExpenseCreditAccountID: m.ExpenseCreditAccountID,
		IncomeDebitAccountID:   m.IncomeDebitAccountID,
		IncomeCreditAccountID:  m.IncomeCreditAccountID,
		CreatedAt:              m.CreatedAt,
	}

	if m.EffectiveTo != nil {
		to := m.EffectiveTo.String()
		resp.EffectiveTo = &to
	}

	return resp
}

// MappingsFromDomain converts domain mappings to responses.
func MappingsFromDomain(mappings []*domain.MappingConfiguration) []*MappingResponse {
	result := make([]*MappingResponse, len(mappings))
	for i, m := range mappings {
		result[i] = MappingFromDomain(m)
	}
	return result
}

// OverlapResponse names two mapping versions whose ranges overlap.
type OverlapResponse struct {
	FirstID       string `json:"first_id"`
	FirstVersion  string `json:"first_version"`
	SecondID      string `json:"second_id"`
	SecondVersion string `json:"second_version"`
}

// ValidationResponse represents a tenant validation report.
type ValidationResponse struct {
	Valid        bool              `json:"valid"`
	Overlaps     []OverlapResponse `json:"overlaps"`
	AccountCycle []string          `json:"account_cycle,omitempty"`
}

// ValidationFromReport converts a validation report to response.
func ValidationFromReport(r *usecase.ValidationReport) *ValidationResponse {
	resp := &ValidationResponse{
		Valid:        r.Valid(),
		Overlaps:     make([]OverlapResponse, len(r.Overlaps)),
		AccountCycle: r.AccountCycle,
	}

	for i, o := range r.Overlaps {
		resp.Overlaps[i] = OverlapResponse{
			FirstID:       o.First.ID,
			FirstVersion:  o.First.Version,
			SecondID:      o.Second.ID,
			SecondVersion: o.Second.Version,
		}
	}

	return resp
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
