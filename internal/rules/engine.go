package rules

import (
	"github.com/iho/postingrules/internal/domain"
)

// Engine composes the resolver, the snapshot builder and the plan generator
// for one event family. It holds no state between calls and is safe for
// concurrent use.
type Engine struct {
	family Family
	plan   PlanGenerator
}

// NewEngine creates an Engine for family.
func NewEngine(family Family) *Engine {
	return &Engine{family: family, plan: PlanGenerator{Family: family}}
}

// Family returns the event family the engine posts.
func (e *Engine) Family() Family { return e.family }

// Input is everything a resolution needs, fully materialized.
type Input struct {
	TenantID    string
	PostingDate domain.Date
	Event       *domain.BusinessEvent
	Candidates  []*domain.MappingConfiguration
	Accounts    AccountCodes
}

// Resolve runs the whole resolution over in-memory inputs.
func (e *Engine) Resolve(in Input) (*domain.RuleResolutionResult, error) {
	if err := e.checkEvent(in.Event); err != nil {
		return nil, err
	}

	mapping, err := Resolve(in.TenantID, in.PostingDate, in.Candidates)
	if err != nil {
		return nil, err
	}

	return e.Build(in.Event, in.PostingDate, mapping, in.Accounts)
}

// Build assembles the result once the mapping is known.
func (e *Engine) Build(
	event *domain.BusinessEvent,
	postingDate domain.Date,
	mapping *domain.MappingConfiguration,
	accounts AccountCodes,
) (*domain.RuleResolutionResult, error) {
	if err := e.checkEvent(event); err != nil {
		return nil, err
	}

	snapshot, hash, err := BuildSnapshot(e.family.SourceType, event, postingDate, mapping, accounts)
	if err != nil {
		return nil, err
	}

	rows, lines, err := e.plan.Generate(event, mapping, accounts)
	if err != nil {
		return nil, err
	}

	return &domain.RuleResolutionResult{
		RuleVersion:    mapping.Version,
		RuleHash:       hash,
		RuleSnapshot:   snapshot,
		AllocationRows: rows,
		LedgerEntries:  lines,
	}, nil
}

// checkEvent rejects unsupported types first, then malformed events, so a
// bad amount is never reported as an unbalanced plan.
func (e *Engine) checkEvent(event *domain.BusinessEvent) error {
	if err := e.family.CheckEvent(event); err != nil {
		return err
	}
	return event.Validate()
}
