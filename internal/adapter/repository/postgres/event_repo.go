package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/postingrules/internal/domain"
)

const getEventSQL = `
SELECT id, tenant_id, source_type, event_type, project_ref, gross_amount, currency_code
FROM business_events
WHERE tenant_id = $1 AND id = $2`

// EventRepository implements usecase.EventRepository.
type EventRepository struct {
	db querier
}

// NewEventRepository creates a new EventRepository.
func NewEventRepository(pool *pgxpool.Pool) *EventRepository {
	return newEventRepository(pool)
}

func newEventRepository(db querier) *EventRepository {
	return &EventRepository{db: db}
}

// GetByID retrieves one of the tenant's events.
func (r *EventRepository) GetByID(ctx context.Context, tenantID, id string) (*domain.BusinessEvent, error) {
	var (
		event     domain.BusinessEvent
		eventType string
		amount    pgtype.Numeric
	)

	err := r.db.QueryRow(ctx, getEventSQL, tenantID, id).Scan(
		&event.ID,
		&event.TenantID,
		&event.SourceType,
		&eventType,
		&event.ProjectRef,
		&amount,
		&event.CurrencyCode,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s", domain.ErrEventNotFound, id)
		}
		return nil, err
	}

	event.Type = domain.EventType(eventType)
	event.GrossAmount = numericToDecimal(amount)

	return &event, nil
}
