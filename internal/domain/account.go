package domain

import "time"

// Account is a tenant's ledger account. Code is the stable, audit-facing
// identifier; ID may be regenerated when an environment is rebuilt.
type Account struct {
	CreatedAt time.Time
	ParentID  *string
	ID        string
	TenantID  string
	Code      string
	Name      string
}

// AccountGraph returns the child -> parent relation of accounts as an adjacency map.
func AccountGraph(accounts []*Account) map[string][]string {
	graph := make(map[string][]string, len(accounts))
	for _, a := range accounts {
		if a.ParentID == nil {
			graph[a.ID] = nil
			continue
		}
		graph[a.ID] = append(graph[a.ID], *a.ParentID)
	}
	return graph
}
