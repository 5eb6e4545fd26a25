package usecase

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/rules"
)

// ResolutionConfig holds the collaborators of a ResolutionUseCase.
type ResolutionConfig struct {
	Engine         *rules.Engine
	Events         EventRepository
	Mappings       MappingRepository
	Accounts       AccountDirectory
	Retrier        Retrier
	Observer       Observer
	TracerProvider trace.TracerProvider
	Logger         *zerolog.Logger
}

// ResolutionUseCase loads the inputs of a resolution and runs the rule engine.
type ResolutionUseCase struct {
	engine   *rules.Engine
	events   EventRepository
	mappings MappingRepository
	accounts AccountDirectory
	retrier  Retrier
	observer Observer
	tracer   trace.Tracer
	logger   zerolog.Logger
}

// NewResolutionUseCase creates a new ResolutionUseCase.
// Engine defaults to the daily book family; Retrier, Observer and Logger default to no-ops.
func NewResolutionUseCase(cfg ResolutionConfig) *ResolutionUseCase {
	if cfg.Engine == nil {
		cfg.Engine = rules.NewEngine(rules.DailyBook)
	}
	if cfg.Retrier == nil {
		cfg.Retrier = noRetry{}
	}
	if cfg.Observer == nil {
		cfg.Observer = nopObserver{}
	}
	if cfg.TracerProvider == nil {
		cfg.TracerProvider = otel.GetTracerProvider()
	}

	logger := zerolog.Nop()
	if cfg.Logger != nil {
		logger = *cfg.Logger
	}

	return &ResolutionUseCase{
		engine:   cfg.Engine,
		events:   cfg.Events,
		mappings: cfg.Mappings,
		accounts: cfg.Accounts,
		retrier:  cfg.Retrier,
		observer: cfg.Observer,
		tracer:   cfg.TracerProvider.Tracer(tracerName),
		logger:   logger.With().Str("component", "resolution").Logger(),
	}
}

// ResolveInput represents input for resolving a stored business event.
type ResolveInput struct {
	TenantID    string
	EventID     string
	PostingDate string
}

// Resolve produces the allocation rows, ledger lines and rule snapshot of a stored event.
func (uc *ResolutionUseCase) Resolve(ctx context.Context, input ResolveInput) (result *domain.RuleResolutionResult, err error) {
	ctx, span := uc.tracer.Start(ctx, "ResolutionUseCase.Resolve", trace.WithAttributes(
		attribute.String("tenant.id", input.TenantID),
		attribute.String("event.id", input.EventID),
		attribute.String("posting.date", input.PostingDate),
	))
	start := time.Now()
	defer func() { uc.finish(span, start, input.TenantID, input.EventID, result, err) }()

	if input.TenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	postingDate, err := domain.ParseDate(input.PostingDate)
	if err != nil {
		return nil, err
	}

	var event *domain.BusinessEvent
	err = uc.retrier.Retry(ctx, func() error {
		var lookupErr error
		event, lookupErr = uc.events.GetByID(ctx, input.TenantID, input.EventID)
		return lookupErr
	})
	if err != nil {
		return nil, err
	}

	// A repository that ignores the tenant must not leak another tenant's event.
	if event.TenantID != input.TenantID {
		return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, input.EventID)
	}

	return uc.resolve(ctx, input.TenantID, postingDate, event)
}

// PreviewInput represents input for resolving an event that is not stored.
type PreviewInput struct {
	TenantID    string
	PostingDate string
	Event       domain.BusinessEvent
}

// Preview resolves an ad-hoc event against the tenant's stored mappings
// without reading the event table.
func (uc *ResolutionUseCase) Preview(ctx context.Context, input PreviewInput) (result *domain.RuleResolutionResult, err error) {
	ctx, span := uc.tracer.Start(ctx, "ResolutionUseCase.Preview", trace.WithAttributes(
		attribute.String("tenant.id", input.TenantID),
		attribute.String("event.id", input.Event.ID),
		attribute.String("posting.date", input.PostingDate),
	))
	start := time.Now()
	defer func() { uc.finish(span, start, input.TenantID, input.Event.ID, result, err) }()

	if input.TenantID == "" {
		return nil, domain.ErrMissingTenant
	}

	postingDate, err := domain.ParseDate(input.PostingDate)
	if err != nil {
		return nil, err
	}

	event := input.Event
	event.TenantID = input.TenantID
	if event.SourceType == "" {
		event.SourceType = uc.engine.Family().SourceType
	}

	return uc.resolve(ctx, input.TenantID, postingDate, &event)
}

func (uc *ResolutionUseCase) resolve(
	ctx context.Context,
	tenantID string,
	postingDate domain.Date,
	event *domain.BusinessEvent,
) (*domain.RuleResolutionResult, error) {
	family := uc.engine.Family()

	// Unsupported types fail before any mapping is looked up.
	if err := family.CheckEvent(event); err != nil {
		return nil, err
	}
	if err := event.Validate(); err != nil {
		return nil, err
	}

	var candidates []*domain.MappingConfiguration
	err := uc.retrier.Retry(ctx, func() error {
		var lookupErr error
		candidates, lookupErr = uc.mappings.ListByTenant(ctx, tenantID, family.SourceType)
		return lookupErr
	})
	if err != nil {
		return nil, err
	}

	mapping, err := rules.Resolve(tenantID, postingDate, candidates)
	if err != nil {
		return nil, err
	}

	var accounts []*domain.Account
	err = uc.retrier.Retry(ctx, func() error {
		var lookupErr error
		accounts, lookupErr = uc.accounts.GetByIDs(ctx, tenantID, uniqueIDs(mapping.AccountIDs()))
		return lookupErr
	})
	if err != nil {
		return nil, err
	}

	return uc.engine.Build(event, postingDate, mapping, rules.CodesFromAccounts(tenantAccounts(tenantID, accounts)))
}

func (uc *ResolutionUseCase) finish(
	span trace.Span,
	start time.Time,
	tenantID, eventID string,
	result *domain.RuleResolutionResult,
	err error,
) {
	defer span.End()

	outcome := outcomeOf(err)
	elapsed := time.Since(start)
	uc.observer.ObserveResolution(outcome, elapsed)
	span.SetAttributes(attribute.String("resolution.outcome", outcome))

	if err == nil {
		span.SetAttributes(
			attribute.String("rule.version", result.RuleVersion),
			attribute.String("rule.hash", result.RuleHash),
		)
		logEvent := uc.logger.Info()
		if sc := span.SpanContext(); sc.HasTraceID() {
			logEvent = logEvent.Str("trace_id", sc.TraceID().String())
		}
		logEvent.
			Str("tenant_id", tenantID).
			Str("event_id", eventID).
			Str("rule_version", result.RuleVersion).
			Str("rule_hash", result.RuleHash).
			Dur("duration", elapsed).
			Msg("event resolved")
		return
	}

	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())

	logEvent := uc.logger.Warn()
	if outcome == OutcomeInvariant || outcome == OutcomeError {
		logEvent = uc.logger.Error()
	}
	if sc := span.SpanContext(); sc.HasTraceID() {
		logEvent = logEvent.Str("trace_id", sc.TraceID().String())
	}
	logEvent.
		Err(err).
		Str("tenant_id", tenantID).
		Str("event_id", eventID).
		Str("outcome", outcome).
		Dur("duration", elapsed).
		Msg("resolution failed")
}

func outcomeOf(err error) string {
	switch {
	case err == nil:
		return OutcomeResolved
	case errors.Is(err, domain.ErrBalanceInvariant):
		return OutcomeInvariant
	case domain.IsNotFound(err):
		return OutcomeNotFound
	case errors.Is(err, domain.ErrUnsupportedEventType):
		return OutcomeUnsupported
	case errors.Is(err, domain.ErrMissingTenant),
		errors.Is(err, domain.ErrInvalidEvent),
		errors.Is(err, domain.ErrInvalidPostingDate),
		errors.Is(err, domain.ErrInvalidAmount),
		errors.Is(err, domain.ErrAmountTooLarge),
		errors.Is(err, domain.ErrAmountPrecision),
		errors.Is(err, domain.ErrInvalidCurrency):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

func uniqueIDs(ids []string) []string {
	seen := make(map[string]struct{}, len(ids))
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}

func tenantAccounts(tenantID string, accounts []*domain.Account) []*domain.Account {
	out := make([]*domain.Account, 0, len(accounts))
	for _, a := range accounts {
		if a != nil && a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out
}

type noRetry struct{}

func (noRetry) Retry(_ context.Context, operation func() error) error { return operation() }

type nopObserver struct{}

func (nopObserver) ObserveResolution(string, time.Duration) {}
