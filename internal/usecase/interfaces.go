package usecase

import (
	"context"
	"time"

	"github.com/iho/postingrules/internal/domain"
)

// EventRepository defines read access to business events.
type EventRepository interface {
	GetByID(ctx context.Context, tenantID, id string) (*domain.BusinessEvent, error)
}

// MappingRepository defines data access for mapping configurations.
type MappingRepository interface {
	ListByTenant(ctx context.Context, tenantID, ruleFamily string) ([]*domain.MappingConfiguration, error)
	Create(ctx context.Context, mapping *domain.MappingConfiguration) error
}

// AccountDirectory defines read access to a tenant's chart of accounts.
type AccountDirectory interface {
	GetByIDs(ctx context.Context, tenantID string, ids []string) ([]*domain.Account, error)
	ListByTenant(ctx context.Context, tenantID string) ([]*domain.Account, error)
}

// IDGenerator generates unique IDs.
type IDGenerator interface {
	Generate() string
}

// Retrier retries an operation that may fail transiently.
type Retrier interface {
	Retry(ctx context.Context, operation func() error) error
}

// Observer records the outcome of each resolution.
type Observer interface {
	ObserveResolution(outcome string, duration time.Duration)
}
