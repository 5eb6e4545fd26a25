package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/shopspring/decimal"

	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/usecase"
)

type resolutionServiceStub struct {
	resolveFn func(ctx context.Context, input usecase.ResolveInput) (*domain.RuleResolutionResult, error)
	previewFn func(ctx context.Context, input usecase.PreviewInput) (*domain.RuleResolutionResult, error)
}

func (s *resolutionServiceStub) Resolve(ctx context.Context, input usecase.ResolveInput) (*domain.RuleResolutionResult, error) {
	return s.resolveFn(ctx, input)
}

func (s *resolutionServiceStub) Preview(ctx context.Context, input usecase.PreviewInput) (*domain.RuleResolutionResult, error) {
	return s.previewFn(ctx, input)
}

type mappingServiceStub struct {
	createFn   func(ctx context.Context, input usecase.CreateMappingInput) (*domain.MappingConfiguration, error)
	listFn     func(ctx context.Context, tenantID, ruleFamily string) ([]*domain.MappingConfiguration, error)
	validateFn func(ctx context.Context, tenantID, ruleFamily string) (*usecase.ValidationReport, error)
}

func (s *mappingServiceStub) CreateMapping(ctx context.Context, input usecase.CreateMappingInput) (*domain.MappingConfiguration, error) {
	return s.createFn(ctx, input)
}

func (s *mappingServiceStub) ListMappings(ctx context.Context, tenantID, ruleFamily string) ([]*domain.MappingConfiguration, error) {
	return s.listFn(ctx, tenantID, ruleFamily)
}

func (s *mappingServiceStub) ValidateTenant(ctx context.Context, tenantID, ruleFamily string) (*usecase.ValidationReport, error) {
	return s.validateFn(ctx, tenantID, ruleFamily)
}

type countingRecorder struct{ created int }

func (c *countingRecorder) MappingCreated() { c.created++ }

// tenantRequest builds a request routed as if chi matched {tenantID}.
func tenantRequest(method, target, tenantID, body string) *http.Request {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, target, nil)
	} else {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	}

	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("tenantID", tenantID)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, rctx))
}

func sampleResult() *domain.RuleResolutionResult {
	amount := decimal.RequireFromString("150")
	return &domain.RuleResolutionResult{
		RuleVersion:  "v1",
		RuleHash:     "hash",
		RuleSnapshot: domain.RuleSnapshot{Canonical: []byte(`{"source_type":"DAILY_BOOK_ENTRY"}`)},
		AllocationRows: []domain.AllocationRow{
			{ProjectRef: "P1", CostType: domain.CostTypeDailyBookExpense, Amount: amount, CurrencyCode: "GBP"},
		},
		LedgerEntries: []domain.LedgerLine{
			{AccountID: "acc-exp", AccountCode: "EXP_CLEAR", Debit: amount, CurrencyCode: "GBP"},
			{AccountID: "acc-cash", AccountCode: "CASH", Credit: amount, CurrencyCode: "GBP"},
		},
	}
}

func sampleMapping() *domain.MappingConfiguration {
	return &domain.MappingConfiguration{
		ID:                     "m1",
		TenantID:               "T1",
		RuleFamily:             domain.RuleFamilyDailyBook,
		Version:                "v1",
		EffectiveFrom:          domain.MustParseDate("2024-01-01"),
		ExpenseDebitAccountID:  "acc-exp",
		ExpenseCreditAccountID: "acc-cash",
		IncomeDebitAccountID:   "acc-cash",
		IncomeCreditAccountID:  "acc-inc",
	}
}
