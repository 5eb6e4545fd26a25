package domain

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestParseDate(t *testing.T) {
	t.Parallel()

	d, err := ParseDate("2024-07-01")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Year() != 2024 || d.Month() != time.July || d.Day() != 1 {
		t.Fatalf("unexpected date %v", d)
	}
	if d.String() != "2024-07-01" {
		t.Fatalf("expected round trip, got %s", d)
	}

	for _, bad := range []string{"", "2024-7-1", "2024-07-01T00:00:00Z", "01/07/2024", "2024-02-30"} {
		if _, err := ParseDate(bad); !errors.Is(err, ErrInvalidPostingDate) {
			t.Errorf("expected ErrInvalidPostingDate for %q, got %v", bad, err)
		}
	}
}

func TestDateCompare(t *testing.T) {
	t.Parallel()

	a := MustParseDate("2024-01-01")
	b := MustParseDate("2024-12-31")

	if !a.Before(b) || a.After(b) || a.Equal(b) {
		t.Fatalf("expected %s before %s", a, b)
	}
	if a.Compare(a) != 0 || b.Compare(a) != 1 || a.Compare(b) != -1 {
		t.Fatalf("unexpected compare results")
	}
	if !MustParseDate("2023-12-31").Before(a) {
		t.Fatalf("expected year boundary to compare correctly")
	}
}

func TestDateOfIgnoresTimeOfDay(t *testing.T) {
	t.Parallel()

	late := time.Date(2024, time.July, 1, 23, 59, 59, 0, time.FixedZone("UTC+14", 14*3600))
	if got := DateOf(late); got != MustParseDate("2024-07-01") {
		t.Fatalf("expected 2024-07-01, got %s", got)
	}
}

func TestDateJSON(t *testing.T) {
	t.Parallel()

	type wrapper struct {
		On Date `json:"on"`
	}

	out, err := json.Marshal(wrapper{On: MustParseDate("2024-06-01")})
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	if string(out) != `{"on":"2024-06-01"}` {
		t.Fatalf("unexpected JSON %s", out)
	}

	var w wrapper
	if err := json.Unmarshal([]byte(`{"on":"2025-01-01"}`), &w); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if w.On != MustParseDate("2025-01-01") {
		t.Fatalf("unexpected date %s", w.On)
	}

	if err := json.Unmarshal([]byte(`{"on":"tomorrow"}`), &w); !errors.Is(err, ErrInvalidPostingDate) {
		t.Fatalf("expected ErrInvalidPostingDate, got %v", err)
	}
}
