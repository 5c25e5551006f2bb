package mode

import "testing"

func TestIsValid(t *testing.T) {
	valid := []Mode{Local, Remote, AI}
	for _, m := range valid {
		if !m.IsValid() {
			t.Errorf("%q.IsValid() = false, want true", m)
		}
	}

	invalid := []Mode{"", "hybrid", "semantic", "LOCAL"}
	for _, m := range invalid {
		if m.IsValid() {
			t.Errorf("%q.IsValid() = true, want false", m)
		}
	}
}

func TestConstants(t *testing.T) {
	if Local != "local" {
		t.Errorf("Local = %q", Local)
	}
	if Remote != "remote" {
		t.Errorf("Remote = %q", Remote)
	}
	if AI != "ai" {
		t.Errorf("AI = %q", AI)
	}
}
