package request

import (
	"errors"
	"slices"
	"strings"
	"testing"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/mode"
	"github.com/kailas-cloud/grantdex/internal/domain/search/sortkey"
)

func TestNew_Defaults(t *testing.T) {
	r, err := New("Grön Energi!", "", filter.Set{}, "", 0, 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Raw() != "Grön Energi!" {
		t.Errorf("Raw() = %q", r.Raw())
	}
	if r.Normalized() != "gron energi" {
		t.Errorf("Normalized() = %q", r.Normalized())
	}
	if !slices.Equal(r.Tokens(), []string{"gron", "energi"}) {
		t.Errorf("Tokens() = %v", r.Tokens())
	}
	if r.Mode() != mode.Local {
		t.Errorf("Mode() = %q, want local (default)", r.Mode())
	}
	if r.SortKey() != sortkey.Default {
		t.Errorf("SortKey() = %q", r.SortKey())
	}
	if r.Page() != DefaultPage || r.Limit() != DefaultLimit {
		t.Errorf("Page/Limit = %d/%d", r.Page(), r.Limit())
	}
	if !r.HasQuery() {
		t.Error("HasQuery() = false")
	}
}

func TestNew_LimitClamped(t *testing.T) {
	r, err := New("x", mode.Remote, filter.Set{}, sortkey.AmountDesc, 3, 1000)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.Limit() != MaxLimit {
		t.Errorf("Limit() = %d, want %d", r.Limit(), MaxLimit)
	}
	if r.Page() != 3 {
		t.Errorf("Page() = %d", r.Page())
	}
	if p2 := r.WithPage(2); p2.Page() != 2 || r.Page() != 3 {
		t.Errorf("WithPage: got %d, original %d", p2.Page(), r.Page())
	}
}

func TestNew_WhitespaceQuery(t *testing.T) {
	r, err := New("   ", mode.Local, filter.Set{}, "", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r.HasQuery() {
		t.Error("whitespace-only query must not count as a query")
	}
}

func TestNew_ShortWordsAreNotRanked(t *testing.T) {
	r, err := New("AI", mode.Local, filter.Set{}, "", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.HasQuery() {
		t.Error("AI is a query")
	}
	if r.Ranked() {
		t.Errorf("tokens = %v, short words must not be ranked", r.Tokens())
	}

	r, err = New("AI för industrin", mode.Local, filter.Set{}, "", 1, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !r.Ranked() {
		t.Error("query with a long word must be ranked")
	}
}

func TestNew_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		query string
		mode  mode.Mode
		key   sortkey.Key
	}{
		{"query too long", strings.Repeat("a", MaxQueryLength+1), "", ""},
		{"bad mode", "q", "hybrid", ""},
		{"bad sort key", "q", "", "title-asc"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.query, tt.mode, filter.Set{}, tt.key, 1, 10)
			if !errors.Is(err, domain.ErrInvalidRequest) {
				t.Errorf("expected ErrInvalidRequest, got %v", err)
			}
		})
	}
}
