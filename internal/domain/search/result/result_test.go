package result

import (
	"errors"
	"math"
	"slices"
	"testing"
)

func TestNewMatch_Clamps(t *testing.T) {
	tests := []struct {
		in, want float64
	}{
		{0.7, 0.7},
		{-1, 0},
		{1.5, 1},
		{math.NaN(), 0},
	}
	for _, tt := range tests {
		if got := NewMatch("g", tt.in, nil).Score(); got != tt.want {
			t.Errorf("NewMatch(%v).Score() = %v, want %v", tt.in, got, tt.want)
		}
	}

	m := NewMatch("g-1", 0.4, []string{"sector"})
	if m.GrantID() != "g-1" || len(m.Reasons()) != 1 {
		t.Errorf("unexpected match: %+v", m)
	}
}

func TestNeutral(t *testing.T) {
	r := Neutral([]string{"c", "a", "b"}, "unavailable")
	if !r.Degraded {
		t.Error("neutral ranking must be degraded")
	}
	if !slices.Equal(r.IDs(), []string{"c", "a", "b"}) {
		t.Errorf("IDs() = %v, want input order", r.IDs())
	}
	for id, s := range r.Scores() {
		if s != NeutralScore {
			t.Errorf("score[%s] = %v, want %v", id, s, NeutralScore)
		}
	}
}

func TestOutcome(t *testing.T) {
	ok := Ok([]string{"x"})
	if ok.Degraded() {
		t.Error("Ok outcome must not be degraded")
	}

	cause := errors.New("timeout")
	fb := Fallback([]string(nil), cause)
	if !fb.Degraded() || !errors.Is(fb.Err, cause) {
		t.Errorf("Fallback outcome = %+v", fb)
	}
}
