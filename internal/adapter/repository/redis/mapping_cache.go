package redis

import (
	"context"
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"github.com/rs/zerolog"

	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/usecase"
)

// CacheObserver counts cache lookups.
type CacheObserver interface {
	CacheHit(name string)
	CacheMiss(name string)
}

const mappingCacheName = "mappings"

// MappingCache is a read-through cache in front of a MappingRepository.
// Candidate lists are cached per tenant and rule family under a generation
// counter that Create bumps after the row is committed. A reader that loaded
// the list before the bump fills the old generation, which is never read
// again, so a new version is visible to the next lookup.
// Redis failures degrade to the underlying repository.
type MappingCache struct {
	next     usecase.MappingRepository
	cache    *Cache
	ttl      time.Duration
	logger   zerolog.Logger
	observer CacheObserver
}

// NewMappingCache creates a new MappingCache.
func NewMappingCache(next usecase.MappingRepository, cache *Cache, ttl time.Duration, logger zerolog.Logger) *MappingCache {
	return &MappingCache{
		next:     next,
		cache:    cache,
		ttl:      ttl,
		logger:   logger.With().Str("component", "mapping_cache").Logger(),
		observer: nopCacheObserver{},
	}
}

// WithObserver sets the observer notified of hits and misses.
func (c *MappingCache) WithObserver(observer CacheObserver) *MappingCache {
	c.observer = observer
	return c
}

// ListByTenant returns cached candidates, loading them on a miss.
func (c *MappingCache) ListByTenant(ctx context.Context, tenantID, ruleFamily string) ([]*domain.MappingConfiguration, error) {
	gen, err := c.cache.Counter(ctx, generationKey(tenantID, ruleFamily))
	if err != nil {
		c.logger.Warn().Err(err).Str("tenant_id", tenantID).Msg("mapping cache unavailable")
		c.observer.CacheMiss(mappingCacheName)
		return c.next.ListByTenant(ctx, tenantID, ruleFamily)
	}

	key := mappingKey(tenantID, ruleFamily, gen)

	data, err := c.cache.Get(ctx, key)
	switch {
	case err == nil:
		mappings, decodeErr := decodeMappings(data)
		if decodeErr == nil {
			c.observer.CacheHit(mappingCacheName)
			return mappings, nil
		}
		c.logger.Warn().Err(decodeErr).Str("key", key).Msg("discarding unreadable cache entry")
	case !errors.Is(err, ErrCacheMiss):
		c.logger.Warn().Err(err).Str("key", key).Msg("mapping cache unavailable")
	}

	c.observer.CacheMiss(mappingCacheName)

	mappings, err := c.next.ListByTenant(ctx, tenantID, ruleFamily)
	if err != nil {
		return nil, err
	}

	if data, err := encodeMappings(mappings); err == nil {
		if err := c.cache.Set(ctx, key, data, c.ttl); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("failed to fill mapping cache")
		}
	}

	return mappings, nil
}

// Create stores the mapping and moves the tenant to a new cache generation.
func (c *MappingCache) Create(ctx context.Context, mapping *domain.MappingConfiguration) error {
	if err := c.next.Create(ctx, mapping); err != nil {
		return err
	}

	genKey := generationKey(mapping.TenantID, mapping.RuleFamily)
	gen, err := c.cache.Incr(ctx, genKey)
	if err != nil {
		// The previous generation stays readable until its TTL expires.
		c.logger.Error().Err(err).Str("key", genKey).Msg("failed to invalidate mapping cache")
		return nil
	}

	stale := mappingKey(mapping.TenantID, mapping.RuleFamily, gen-1)
	if err := c.cache.Delete(ctx, stale); err != nil {
		c.logger.Warn().Err(err).Str("key", stale).Msg("failed to drop stale mapping cache entry")
	}

	return nil
}

func generationKey(tenantID, ruleFamily string) string {
	return "mapping-generations:" + tenantID + ":" + ruleFamily
}

func mappingKey(tenantID, ruleFamily string, gen int64) string {
	return "mappings:" + tenantID + ":" + ruleFamily + ":" + strconv.FormatInt(gen, 10)
}

type mappingRecord struct {
	CreatedAt              time.Time    `json:"created_at"`
	EffectiveFrom          domain.Date  `json:"effective_from"`
	EffectiveTo            *domain.Date `json:"effective_to"`
	ID                     string       `json:"id"`
	TenantID               string       `json:"tenant_id"`
	RuleFamily             string       `json:"rule_family"`
	Version                string       `json:"version"`
	ExpenseDebitAccountID  string       `json:"expense_debit_account_id"`
	ExpenseCreditAccountID string       `json:"expense_credit_account_id"`
	IncomeDebitAccountID   string       `json:"income_debit_account_id"`
	IncomeCreditAccountID  string       `json:"income_credit_account_id"`
}

func encodeMappings(mappings []*domain.MappingConfiguration) ([]byte, error) {
	records := make([]mappingRecord, 0, len(mappings))
	for _, m := range mappings {
		records = append(records, mappingRecord{
			CreatedAt:              m.CreatedAt,
			EffectiveFrom:          m.EffectiveFrom,
			EffectiveTo:            m.EffectiveTo,
			ID:                     m.ID,
			TenantID:               m.TenantID,
			RuleFamily:             m.RuleFamily,
			Version:                m.Version,
			ExpenseDebitAccountID:  m.ExpenseDebitAccountID,
			ExpenseCreditAccountID: m.ExpenseCreditAccountID,
			IncomeDebitAccountID:   m.IncomeDebitAccountID,
			IncomeCreditAccountID:  m.IncomeCreditAccountID,
		})
	}
	return json.Marshal(records)
}

func decodeMappings(data []byte) ([]*domain.MappingConfiguration, error) {
	var records []mappingRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, err
	}

	mappings := make([]*domain.MappingConfiguration, 0, len(records))
	for _, r := range records {
		mappings = append(mappings, &domain.MappingConfiguration{
			CreatedAt:              r.CreatedAt,
			EffectiveFrom:          r.EffectiveFrom,
			EffectiveTo:            r.EffectiveTo,
			ID:                     r.ID,
			TenantID:               r.TenantID,
			RuleFamily:             r.RuleFamily,
			Version:                r.Version,
			ExpenseDebitAccountID:  r.ExpenseDebitAccountID,
			ExpenseCreditAccountID: r.ExpenseCreditAccountID,
			IncomeDebitAccountID:   r.IncomeDebitAccountID,
			IncomeCreditAccountID:  r.IncomeCreditAccountID,
		})
	}
	return mappings, nil
}

type nopCacheObserver struct{}

func (nopCacheObserver) CacheHit(string)  {}
func (nopCacheObserver) CacheMiss(string) {}
