package grant

import "testing"

func TestRecord_ToGrant_DerivesDisplayAndAmount(t *testing.T) {
	g, err := Record{
		ID:           "r-1",
		Title:        "Kustnära innovation",
		Organization: "Havs- och vattenmyndigheten",
		MinFunding:   100_000,
		MaxFunding:   500_000,
		ClosingDate:  "2025-09-30",
	}.ToGrant()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if g.FundingDisplay() != "100 000 SEK - 500 000 SEK" {
		t.Errorf("FundingDisplay() = %q", g.FundingDisplay())
	}
	if v, ok := g.Amount(); !ok || v != 500_000 {
		t.Errorf("Amount() = %v, %v; want 500000, true", v, ok)
	}
	if g.Deadline().String() != "2025-09-30" {
		t.Errorf("Deadline() = %s", g.Deadline())
	}
}

func TestRecord_ToGrant_ExplicitAmount(t *testing.T) {
	amount := 42_000.0
	g, err := Record{ID: "r-2", FundingAmount: "5 MSEK", AmountEUR: &amount}.ToGrant()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if v, _ := g.Amount(); v != 42_000 {
		t.Errorf("Amount() = %v, want 42000", v)
	}
	if g.FundingDisplay() != "5 MSEK" {
		t.Errorf("FundingDisplay() = %q", g.FundingDisplay())
	}
}

func TestRecord_ToGrant_MissingID(t *testing.T) {
	if _, err := (Record{Title: "x"}).ToGrant(); err == nil {
		t.Fatal("expected error for record without id")
	}
}

func TestRecordOf_RoundTrip(t *testing.T) {
	orig, err := New(Params{
		ID:             "g-1",
		Title:          "Digital Innovation Grant",
		Organization:   "Vinnova",
		FundingAmount:  "2,5 MSEK",
		Deadline:       "2025-03-15",
		Tags:           []string{"digital"},
		Sectors:        []string{"Digitalisering & IT"},
		ApplicantTypes: []string{"SME"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	back, err := RecordOf(orig).ToGrant()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if back.ID() != "g-1" || back.Deadline().String() != orig.Deadline().String() || back.Tags()[0] != "digital" {
		t.Errorf("round trip lost fields: %+v", RecordOf(back))
	}
	if v, _ := back.Amount(); v != 2_500_000 {
		t.Errorf("Amount() = %v", v)
	}
	if RecordOf(back).EligibleApplicants[0] != "SME" {
		t.Error("applicant types lost")
	}
}
