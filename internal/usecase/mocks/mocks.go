package mocks

import (
	"context"
	"fmt"
	"sync"

	"github.com/iho/postingrules/internal/domain"
)

// FakeEventRepository is an in-memory EventRepository.
type FakeEventRepository struct {
	mu     sync.RWMutex
	events map[string]*domain.BusinessEvent

	GetByIDFunc func(ctx context.Context, tenantID, id string) (*domain.BusinessEvent, error)
}

func NewFakeEventRepository(events ...*domain.BusinessEvent) *FakeEventRepository {
	f := &FakeEventRepository{events: make(map[string]*domain.BusinessEvent)}
	for _, e := range events {
		f.events[e.TenantID+"/"+e.ID] = e
	}
	return f
}

func (f *FakeEventRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.BusinessEvent, error) {
	if f.GetByIDFunc != nil {
		return f.GetByIDFunc(ctx, tenantID, id)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	if e, ok := f.events[tenantID+"/"+id]; ok {
		return e, nil
	}
	return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, id)
}

// FakeMappingRepository is an in-memory MappingRepository.
type FakeMappingRepository struct {
	mu       sync.RWMutex
	mappings []*domain.MappingConfiguration

	ListByTenantFunc func(ctx context.Context, tenantID, ruleFamily string) ([]*domain.MappingConfiguration, error)
	CreateFunc       func(ctx context.Context, mapping *domain.MappingConfiguration) error
}

func NewFakeMappingRepository(mappings ...*domain.MappingConfiguration) *FakeMappingRepository {
	return &FakeMappingRepository{mappings: append([]*domain.MappingConfiguration(nil), mappings...)}
}

func (f *FakeMappingRepository) ListByTenant(ctx context.Context, tenantID, ruleFamily string) ([]*domain.MappingConfiguration, error) {
	if f.ListByTenantFunc != nil {
		return f.ListByTenantFunc(ctx, tenantID, ruleFamily)
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*domain.MappingConfiguration
	for _, m := range f.mappings {
		if m.TenantID == tenantID && m.RuleFamily == ruleFamily {
			out = append(out, m)
		}
	}
	return out, nil
}

func (f *FakeMappingRepository) Create(ctx context.Context, mapping *domain.MappingConfiguration) error {
	if f.CreateFunc != nil {
		return f.CreateFunc(ctx, mapping)
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.mappings = append(f.mappings, mapping)
	return nil
}

// Len returns the number of stored mappings.
func (f *FakeMappingRepository) Len() int {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return len(f.mappings)
}

// FakeAccountDirectory is an in-memory AccountDirectory.
type FakeAccountDirectory struct {
	mu       sync.RWMutex
	accounts []*domain.Account

	GetByIDsFunc func(ctx context.Context, tenantID string, ids []string) ([]*domain.Account, error)
}

func NewFakeAccountDirectory(accounts ...*domain.Account) *FakeAccountDirectory {
	return &FakeAccountDirectory{accounts: append([]*domain.Account(nil), accounts...)}
}

func (f *FakeAccountDirectory) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]*domain.Account, error) {
	if f.GetByIDsFunc != nil {
		return f.GetByIDsFunc(ctx, tenantID, ids)
	}
	want := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		want[id] = struct{}{}
	}
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*domain.Account
	for _, a := range f.accounts {
		if _, ok := want[a.ID]; ok && a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (f *FakeAccountDirectory) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Account, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()
	var out []*domain.Account
	for _, a := range f.accounts {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

// SequenceIDGenerator returns "id-1", "id-2", ...
type SequenceIDGenerator struct {
	mu   sync.Mutex
	next int
}

func (g *SequenceIDGenerator) Generate() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.next++
	return fmt.Sprintf("id-%d", g.next)
}
