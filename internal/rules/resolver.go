package rules

import (
	"fmt"

	"github.com/iho/postingrules/internal/domain"
)

// Resolve selects the mapping configuration in effect for tenantID on postingDate.
//
// A candidate matches when effective_from <= postingDate and effective_to is
// unset or >= postingDate. Among matches the greatest effective_from wins;
// equal starts fall back to the greatest ID. Candidates of other tenants are
// ignored.
func Resolve(tenantID string, postingDate domain.Date, candidates []*domain.MappingConfiguration) (*domain.MappingConfiguration, error) {
	var best *domain.MappingConfiguration

	for _, c := range candidates {
		if c == nil || c.TenantID != tenantID || !c.Covers(postingDate) {
			continue
		}

		if best == nil || supersedes(c, best) {
			best = c
		}
	}

	if best == nil {
		return nil, fmt.Errorf("%w: tenant %s on %s", domain.ErrMappingNotFound, tenantID, postingDate)
	}

	return best, nil
}

func supersedes(c, best *domain.MappingConfiguration) bool {
	switch cmp := c.EffectiveFrom.Compare(best.EffectiveFrom); {
	case cmp != 0:
		return cmp > 0
	case c.ID != best.ID:
		return c.ID > best.ID
	default:
		return c.Version > best.Version
	}
}
