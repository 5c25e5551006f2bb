package grantdex

import (
	"context"
	"testing"
	"time"
)

func TestTally_RollsOverWindows(t *testing.T) {
	now := time.Date(2025, 3, 31, 23, 0, 0, 0, time.UTC)
	tl := newTally("openai")
	tl.now = func() time.Time { return now }

	tl.add(2, 300)
	tl.add(0, 999) // no completion ran

	if tl.DailyRequests() != 2 || tl.DailyUsed() != 300 {
		t.Fatalf("day = %d req / %d tokens, want 2 / 300", tl.DailyRequests(), tl.DailyUsed())
	}

	now = now.Add(2 * time.Hour) // April 1st
	tl.add(1, 50)

	if tl.DailyRequests() != 1 || tl.DailyUsed() != 50 {
		t.Errorf("new day = %d req / %d tokens, want 1 / 50", tl.DailyRequests(), tl.DailyUsed())
	}
	if tl.MonthlyRequests() != 1 || tl.MonthlyUsed() != 50 {
		t.Errorf("new month = %d req / %d tokens, want 1 / 50", tl.MonthlyRequests(), tl.MonthlyUsed())
	}
	if tl.MonthlyLimit() != 0 || tl.RemainingDaily() != 0 {
		t.Error("tally must report no limits")
	}
}

func TestClient_UsageCountsAICalls(t *testing.T) {
	sector := &mockSectorUC{tokens: 120}
	sector.match.Sectors = []string{"Energi"}
	sector.match.Source = "ai"
	c := testClient(t, nil, nil, sector, nil)

	for range 2 {
		if _, err := c.MatchSectors(context.Background(), "solceller"); err != nil {
			t.Fatalf("MatchSectors: %v", err)
		}
	}

	for _, p := range []UsagePeriod{PeriodDay, PeriodMonth} {
		u := c.Usage(context.Background(), p)
		if u.Period != p {
			t.Errorf("period = %s, want %s", u.Period, p)
		}
		if u.Requests != 2 || u.Tokens != 240 {
			t.Errorf("%s usage = %d req / %d tokens, want 2 / 240", p, u.Requests, u.Tokens)
		}
	}

	if u := c.Usage(context.Background(), "week"); u.Period != PeriodDay {
		t.Errorf("unknown period reported as %s, want day", u.Period)
	}
}
