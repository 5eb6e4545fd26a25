package usecase

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/postingrules/internal/domain"
)

// MappingUseCase handles mapping configuration business logic.
type MappingUseCase struct {
	mappings MappingRepository
	accounts AccountDirectory
	idGen    IDGenerator
	logger   zerolog.Logger
}

// NewMappingUseCase creates a new MappingUseCase.
func NewMappingUseCase(mappings MappingRepository, accounts AccountDirectory, idGen IDGenerator, logger zerolog.Logger) *MappingUseCase {
	return &MappingUseCase{
		mappings: mappings,
		accounts: accounts,
		idGen:    idGen,
		logger:   logger.With().Str("component", "mapping").Logger(),
	}
}

// CreateMappingInput represents input for creating a mapping configuration.
type CreateMappingInput struct {
	EffectiveTo            *string
	TenantID               string
	RuleFamily             string
	Version                string
	EffectiveFrom          string
	ExpenseDebitAccountID  string
	ExpenseCreditAccountID string
	IncomeDebitAccountID   string
	IncomeCreditAccountID  string
}

// CreateMapping stores a new mapping version. Existing versions are never
// modified; a range that overlaps an earlier version is accepted and logged.
func (uc *MappingUseCase) CreateMapping(ctx context.Context, input CreateMappingInput) (*domain.MappingConfiguration, error) {
	if input.TenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	from, err := domain.ParseDate(input.EffectiveFrom)
	if err != nil {
		return nil, fmt.Errorf("%w: effective_from: %v", domain.ErrInvalidMapping, err)
	}

	var to *domain.Date
	if input.EffectiveTo != nil {
		parsed, err := domain.ParseDate(*input.EffectiveTo)
		if err != nil {
			return nil, fmt.Errorf("%w: effective_to: %v", domain.ErrInvalidMapping, err)
		}
		to = &parsed
	}

	family := input.RuleFamily
	if family == "" {
		family = domain.RuleFamilyDailyBook
	}

	mapping := &domain.MappingConfiguration{
		ID:                     uc.idGen.Generate(),
		TenantID:               input.TenantID,
		RuleFamily:             family,
		Version:                input.Version,
		EffectiveFrom:          from,
		EffectiveTo:            to,
		ExpenseDebitAccountID:  input.ExpenseDebitAccountID,
		ExpenseCreditAccountID: input.ExpenseCreditAccountID,
		IncomeDebitAccountID:   input.IncomeDebitAccountID,
		IncomeCreditAccountID:  input.IncomeCreditAccountID,
		CreatedAt:              time.Now().UTC(),
	}

	if err := mapping.Validate(); err != nil {
		return nil, err
	}

	if err := uc.checkAccounts(ctx, mapping); err != nil {
		return nil, err
	}

	existing, err := uc.mappings.ListByTenant(ctx, mapping.TenantID, mapping.RuleFamily)
	if err != nil {
		return nil, err
	}

	for _, e := range existing {
		if e.Version == mapping.Version {
			return nil, fmt.Errorf("%w: %s", domain.ErrMappingVersionExists, mapping.Version)
		}
		if e.Overlaps(mapping) {
			uc.logger.Warn().
				Str("tenant_id", mapping.TenantID).
				Str("version", mapping.Version).
				Str("overlaps_version", e.Version).
				Msg("mapping range overlaps an existing version")
		}
	}

	if err := uc.mappings.Create(ctx, mapping); err != nil {
		return nil, err
	}

	uc.logger.Info().
		Str("tenant_id", mapping.TenantID).
		Str("mapping_id", mapping.ID).
		Str("version", mapping.Version).
		Str("effective_from", mapping.EffectiveFrom.String()).
		Msg("mapping created")

	return mapping, nil
}

func (uc *MappingUseCase) checkAccounts(ctx context.Context, mapping *domain.MappingConfiguration) error {
	ids := uniqueIDs(mapping.AccountIDs())

	accounts, err := uc.accounts.GetByIDs(ctx, mapping.TenantID, ids)
	if err != nil {
		return err
	}

	found := make(map[string]struct{}, len(accounts))
	for _, a := range tenantAccounts(mapping.TenantID, accounts) {
		found[a.ID] = struct{}{}
	}

	for _, id := range ids {
		if _, ok := found[id]; !ok {
			return fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
		}
	}

	return nil
}

// ListMappings lists a tenant's mapping versions ordered by effective_from, then id.
func (uc *MappingUseCase) ListMappings(ctx context.Context, tenantID, ruleFamily string) ([]*domain.MappingConfiguration, error) {
	if tenantID == "" {
		return nil, domain.ErrMissingTenant
	}
	if ruleFamily == "" {
		ruleFamily = domain.RuleFamilyDailyBook
	}

	mappings, err := uc.mappings.ListByTenant(ctx, tenantID, ruleFamily)
	if err != nil {
		return nil, err
	}

	sorted := make([]*domain.MappingConfiguration, len(mappings))
	copy(sorted, mappings)
	sortMappings(sorted)

	return sorted, nil
}

// MappingOverlap names two versions whose effective ranges share at least one day.
type MappingOverlap struct {
	First  *domain.MappingConfiguration
	Second *domain.MappingConfiguration
}

// ValidationReport is the result of ValidateTenant.
type ValidationReport struct {
	Overlaps []MappingOverlap
	// AccountCycle is the account id path of a parent cycle, or nil.
	AccountCycle []string
}

// Valid reports whether the tenant has neither overlapping mappings nor an account cycle.
func (r *ValidationReport) Valid() bool {
	return len(r.Overlaps) == 0 && len(r.AccountCycle) == 0
}

// ValidateTenant reports overlapping mapping ranges and account hierarchy cycles.
func (uc *MappingUseCase) ValidateTenant(ctx context.Context, tenantID, ruleFamily string) (*ValidationReport, error) {
	mappings, err := uc.ListMappings(ctx, tenantID, ruleFamily)
	if err != nil {
		return nil, err
	}

	accounts, err := uc.accounts.ListByTenant(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	report := &ValidationReport{}
	for i := range mappings {
		for j := i + 1; j < len(mappings); j++ {
			if mappings[i].Overlaps(mappings[j]) {
				report.Overlaps = append(report.Overlaps, MappingOverlap{First: mappings[i], Second: mappings[j]})
			}
		}
	}

	report.AccountCycle = domain.FindCycle(domain.AccountGraph(tenantAccounts(tenantID, accounts)))

	if !report.Valid() {
		uc.logger.Warn().
			Str("tenant_id", tenantID).
			Int("overlaps", len(report.Overlaps)).
			Strs("account_cycle", report.AccountCycle).
			Msg("tenant configuration has problems")
	}

	return report, nil
}

func sortMappings(mappings []*domain.MappingConfiguration) {
	sort.SliceStable(mappings, func(i, j int) bool {
		if c := mappings[i].EffectiveFrom.Compare(mappings[j].EffectiveFrom); c != 0 {
			return c < 0
		}
		return mappings[i].ID < mappings[j].ID
	})
}
