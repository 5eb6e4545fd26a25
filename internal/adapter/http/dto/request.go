package dto

import (
	"github.com/shopspring/decimal"

	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/usecase"
)

// ResolveRequest asks for the posting of a stored event.
type ResolveRequest struct {
	EventID     string `json:"event_id"`
	PostingDate string `json:"posting_date"`
}

// ToUseCaseInput converts to use case input.
func (r *ResolveRequest) ToUseCaseInput(tenantID string) usecase.ResolveInput {
	return usecase.ResolveInput{
		TenantID:    tenantID,
		EventID:     r.EventID,
		PostingDate: r.PostingDate,
	}
}

// PreviewEvent is an event supplied inline for a preview.
type PreviewEvent struct {
	ID           string          `json:"id"`
	SourceType   string          `json:"source_type,omitempty"`
	EntryType    string          `json:"entry_type"`
	ProjectRef   string          `json:"project_ref"`
	GrossAmount  decimal.Decimal `json:"gross_amount"`
	CurrencyCode string          `json:"currency_code"`
}

// PreviewRequest asks for the posting of an event that is not stored.
type PreviewRequest struct {
	PostingDate string       `json:"posting_date"`
	Event       PreviewEvent `json:"event"`
}

// ToUseCaseInput converts to use case input.
func (r *PreviewRequest) ToUseCaseInput(tenantID string) usecase.PreviewInput {
	return usecase.PreviewInput{
		TenantID:    tenantID,
		PostingDate: r.PostingDate,
		Event: domain.BusinessEvent{
			ID:           r.Event.ID,
			TenantID:     tenantID,
			SourceType:   r.Event.SourceType,
			Type:         domain.EventType(r.Event.EntryType),
			ProjectRef:   r.Event.ProjectRef,
			GrossAmount:  r.Event.GrossAmount,
			CurrencyCode: r.Event.CurrencyCode,
		},
	}
}

// CreateMappingRequest represents a request to create a mapping version.
type CreateMappingRequest struct {
	RuleFamily             string  `json:"rule_family,omitempty"`
	Version                string  `json:"version"`
	EffectiveFrom          string  `json:"effective_from"`
	EffectiveTo            *string `json:"effective_to"`
	ExpenseDebitAccountID  string  `json:"expense_debit_account_id"`
	ExpenseCreditAccountID string  `json:"expense_credit_account_id"`
	IncomeDebitAccountID   string  `json:"income_debit_account_id"`
	IncomeCreditAccountID  string  `json:"income_credit_account_id"`
}

// ToUseCaseInput converts to use case input.
func (r *CreateMappingRequest) ToUseCaseInput(tenantID string) usecase.CreateMappingInput {
	return usecase.CreateMappingInput{
		TenantID:               tenantID,
		RuleFamily:             r.RuleFamily,
		Version:                r.Version,
		EffectiveFrom:          r.EffectiveFrom,
		EffectiveTo:            r.EffectiveTo,
		ExpenseDebitAccountID:  r.ExpenseDebitAccountID,
		ExpenseCreditAccountID: r.ExpenseCreditAccountID,
		IncomeDebitAccountID:   r.IncomeDebitAccountID,
		IncomeCreditAccountID:  r.IncomeCreditAccountID,
	}
}
