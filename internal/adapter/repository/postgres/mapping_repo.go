package postgres

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/postingrules/internal/domain"
)

const listMappingsSQL = `
SELECT id, tenant_id, rule_family, version, effective_from, effective_to,
       expense_debit_account_id, expense_credit_account_id,
       income_debit_account_id, income_credit_account_id, created_at
FROM mapping_configurations
WHERE tenant_id = $1 AND rule_family = $2
ORDER BY effective_from, id`

const createMappingSQL = `
INSERT INTO mapping_configurations (
    id, tenant_id, rule_family, version, effective_from, effective_to,
    expense_debit_account_id, expense_credit_account_id,
    income_debit_account_id, income_credit_account_id, created_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

// MappingRepository implements usecase.MappingRepository.
// Rows are only ever inserted.
type MappingRepository struct {
	db querier
}

// NewMappingRepository creates a new MappingRepository.
func NewMappingRepository(pool *pgxpool.Pool) *MappingRepository {
	return newMappingRepository(pool)
}

func newMappingRepository(db querier) *MappingRepository {
	return &MappingRepository{db: db}
}

// ListByTenant returns every mapping version of a tenant and rule family.
func (r *MappingRepository) ListByTenant(ctx context.Context, tenantID, ruleFamily string) ([]*domain.MappingConfiguration, error) {
	rows, err := r.db.Query(ctx, listMappingsSQL, tenantID, ruleFamily)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var mappings []*domain.MappingConfiguration
	for rows.Next() {
		var (
			m        domain.MappingConfiguration
			from, to pgtype.Date
		)

		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.RuleFamily,
			&m.Version,
			&from,
			&to,
			&m.ExpenseDebitAccountID,
			&m.ExpenseCreditAccountID,
			&m.IncomeDebitAccountID,
			&m.IncomeCreditAccountID,
			&m.CreatedAt,
		); err != nil {
			return nil, err
		}

		m.EffectiveFrom = domain.DateOf(from.Time)
		m.EffectiveTo = pgDateToDatePtr(to)
		mappings = append(mappings, &m)
	}

	return mappings, rows.Err()
}

// Create inserts a new mapping version.
func (r *MappingRepository) Create(ctx context.Context, m *domain.MappingConfiguration) error {
	_, err := r.db.Exec(ctx, createMappingSQL,
		m.ID,
		m.TenantID,
		m.RuleFamily,
		m.Version,
		dateToPgDate(m.EffectiveFrom),
		datePtrToPgDate(m.EffectiveTo),
		m.ExpenseDebitAccountID,
		m.ExpenseCreditAccountID,
		m.IncomeDebitAccountID,
		m.IncomeCreditAccountID,
		timeToPgTimestamptz(m.CreatedAt),
	)

	switch pgErrorCode(err) {
	case "":
		return err
	case pgErrUniqueViolation:
		return fmt.Errorf("%w: %s", domain.ErrMappingVersionExists, m.Version)
	case pgErrForeignKeyViolation:
		return fmt.Errorf("%w: %v", domain.ErrAccountNotFound, err)
	default:
		return err
	}
}
