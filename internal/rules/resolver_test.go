package rules_test

import (
	"errors"
	"testing"

	"github.com/iho/postingrules/internal/domain"
	"github.com/iho/postingrules/internal/rules"
)

func TestResolve_BoundaryDates(t *testing.T) {
	candidates := []*domain.MappingConfiguration{
		mapping("m1", "v1", "2024-01-01", datePtr("2024-12-31")),
	}

	tests := []struct {
		postingDate string
		wantMatch   bool
	}{
		{"2023-12-31", false},
		{"2024-01-01", true},
		{"2024-07-01", true},
		{"2024-12-31", true},
		{"2025-01-01", false},
	}

	for _, tt := range tests {
		t.Run(tt.postingDate, func(t *testing.T) {
			got, err := rules.Resolve("T1", date(tt.postingDate), candidates)

			if !tt.wantMatch {
				if !errors.Is(err, domain.ErrMappingNotFound) {
					t.Fatalf("expected ErrMappingNotFound, got %v", err)
				}
				if got != nil {
					t.Fatalf("expected no mapping, got %+v", got)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got.Version != "v1" {
				t.Fatalf("expected v1, got %s", got.Version)
			}
		})
	}
}

func TestResolve_OpenEndedMapping(t *testing.T) {
	candidates := []*domain.MappingConfiguration{
		mapping("m1", "v1", "2024-01-01", nil),
	}

	for _, d := range []string{"2024-01-01", "2030-06-15", "9999-12-31"} {
		got, err := rules.Resolve("T1", date(d), candidates)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", d, err)
		}
		if got.ID != "m1" {
			t.Fatalf("%s: expected m1, got %s", d, got.ID)
		}
	}

	if _, err := rules.Resolve("T1", date("2023-12-31"), candidates); !errors.Is(err, domain.ErrMappingNotFound) {
		t.Fatalf("expected ErrMappingNotFound before effective_from, got %v", err)
	}
}

func TestResolve_OverlapTieBreak(t *testing.T) {
	older := mapping("m1", "v1", "2024-01-01", nil)
	newer := mapping("m2", "v2", "2024-06-01", nil)

	// Candidate order must not influence the outcome.
	orders := [][]*domain.MappingConfiguration{
		{older, newer},
		{newer, older},
	}

	for _, candidates := range orders {
		got, err := rules.Resolve("T1", date("2024-07-01"), candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !got.EffectiveFrom.Equal(date("2024-06-01")) {
			t.Fatalf("expected mapping starting 2024-06-01, got %s", got.EffectiveFrom)
		}
	}

	got, err := rules.Resolve("T1", date("2024-03-01"), orders[0])
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got.ID != "m1" {
		t.Fatalf("expected only the older mapping to cover 2024-03-01, got %s", got.ID)
	}
}

func TestResolve_SameStartPicksGreatestID(t *testing.T) {
	a := mapping("01HZZZ0000000000000000000A", "v3", "2024-06-01", nil)
	b := mapping("01HZZZ0000000000000000000B", "v4", "2024-06-01", nil)

	for _, candidates := range [][]*domain.MappingConfiguration{{a, b}, {b, a}} {
		got, err := rules.Resolve("T1", date("2024-07-01"), candidates)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got.Version != "v4" {
			t.Fatalf("expected v4, got %s", got.Version)
		}
	}
}

func TestResolve_IgnoresOtherTenants(t *testing.T) {
	foreign := mapping("m9", "v9", "2024-01-01", nil)
	foreign.TenantID = "T2"

	_, err := rules.Resolve("T1", date("2024-07-01"), []*domain.MappingConfiguration{foreign, nil})
	if !errors.Is(err, domain.ErrMappingNotFound) {
		t.Fatalf("expected ErrMappingNotFound, got %v", err)
	}
}

func TestResolve_NoCandidates(t *testing.T) {
	_, err := rules.Resolve("T1", date("2024-07-01"), nil)
	if !errors.Is(err, domain.ErrMappingNotFound) {
		t.Fatalf("expected ErrMappingNotFound, got %v", err)
	}
}
