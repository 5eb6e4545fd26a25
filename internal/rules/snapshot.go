package rules

import (
	"fmt"

	"github.com/iho/postingrules/internal/domain"
)

// AccountCodes maps account ids to their stable codes.
type AccountCodes map[string]string

// Code returns the code of account id.
func (c AccountCodes) Code(id string) (string, error) {
	code, ok := c[id]
	if !ok || code == "" {
		return "", fmt.Errorf("%w: %s", domain.ErrAccountNotFound, id)
	}
	return code, nil
}

// CodesFromAccounts indexes accounts by id.
func CodesFromAccounts(accounts []*domain.Account) AccountCodes {
	codes := make(AccountCodes, len(accounts))
	for _, a := range accounts {
		codes[a.ID] = a.Code
	}
	return codes
}

// BuildSnapshot freezes the resolution decision and returns it with its hash.
func BuildSnapshot(
	sourceType string,
	event *domain.BusinessEvent,
	postingDate domain.Date,
	mapping *domain.MappingConfiguration,
	accounts AccountCodes,
) (domain.RuleSnapshot, string, error) {
	codes := make([]string, 0, 4)
	for _, id := range mapping.AccountIDs() {
		code, err := accounts.Code(id)
		if err != nil {
			return domain.RuleSnapshot{}, "", err
		}
		codes = append(codes, code)
	}

	snap := domain.RuleSnapshot{
		SourceType:  sourceType,
		SourceID:    event.ID,
		PostingDate: postingDate,
		Mapping: domain.SnapshotMapping{
			Version:                  mapping.Version,
			EffectiveFrom:            mapping.EffectiveFrom,
			EffectiveTo:              mapping.EffectiveTo,
			ExpenseDebitAccountCode:  codes[0],
			ExpenseCreditAccountCode: codes[1],
			IncomeDebitAccountCode:   codes[2],
			IncomeCreditAccountCode:  codes[3],
		},
	}

	canonical, err := MarshalCanonical(snapshotObject(snap))
	if err != nil {
		return domain.RuleSnapshot{}, "", fmt.Errorf("encode snapshot: %w", err)
	}
	snap.Canonical = canonical

	return snap, Hash(canonical), nil
}

func snapshotObject(s domain.RuleSnapshot) Object {
	var effectiveTo any
	if s.Mapping.EffectiveTo != nil {
		effectiveTo = s.Mapping.EffectiveTo.String()
	}

	return Object{
		{"source_type", s.SourceType},
		{"source_id", s.SourceID},
		{"posting_date", s.PostingDate.String()},
		{"mapping", Object{
			{"version", s.Mapping.Version},
			{"effective_from", s.Mapping.EffectiveFrom.String()},
			{"effective_to", effectiveTo},
			{"expense_debit_account_code", s.Mapping.ExpenseDebitAccountCode},
			{"expense_credit_account_code", s.Mapping.ExpenseCreditAccountCode},
			{"income_debit_account_code", s.Mapping.IncomeDebitAccountCode},
			{"income_credit_account_code", s.Mapping.IncomeCreditAccountCode},
		}},
	}
}
