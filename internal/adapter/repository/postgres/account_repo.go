package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/iho/postingrules/internal/domain"
)

const accountColumns = `id, tenant_id, code, name, parent_id, created_at`

const getAccountsByIDsSQL = `
SELECT ` + accountColumns + `
FROM accounts
WHERE tenant_id = $1 AND id = ANY($2)
ORDER BY code`

const listAccountsSQL = `
SELECT ` + accountColumns + `
FROM accounts
WHERE tenant_id = $1
ORDER BY code`

// AccountRepository implements usecase.AccountDirectory.
type AccountRepository struct {
	db querier
}

// NewAccountRepository creates a new AccountRepository.
func NewAccountRepository(pool *pgxpool.Pool) *AccountRepository {
	return newAccountRepository(pool)
}

func newAccountRepository(db querier) *AccountRepository {
	return &AccountRepository{db: db}
}

// GetByIDs returns the tenant's accounts among ids. Unknown ids are skipped;
// callers decide whether a missing account is an error.
func (r *AccountRepository) GetByIDs(ctx context.Context, tenantID string, ids []string) ([]*domain.Account, error) {
	if len(ids) == 0 {
		return nil, nil
	}

	rows, err := r.db.Query(ctx, getAccountsByIDsSQL, tenantID, ids)
	if err != nil {
		return nil, err
	}

	return scanAccounts(rows)
}

// ListByTenant returns the tenant's whole chart of accounts.
func (r *AccountRepository) ListByTenant(ctx context.Context, tenantID string) ([]*domain.Account, error) {
	rows, err := r.db.Query(ctx, listAccountsSQL, tenantID)
	if err != nil {
		return nil, err
	}

	return scanAccounts(rows)
}

func scanAccounts(rows pgx.Rows) ([]*domain.Account, error) {
	defer rows.Close()

	var accounts []*domain.Account
	for rows.Next() {
		var (
			a        domain.Account
			parentID pgtype.Text
		)

		if err := rows.Scan(&a.ID, &a.TenantID, &a.Code, &a.Name, &parentID, &a.CreatedAt); err != nil {
			return nil, err
		}

		a.ParentID = textToStringPtr(parentID)
		accounts = append(accounts, &a)
	}

	return accounts, rows.Err()
}
