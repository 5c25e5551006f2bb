package grants

import (
	"context"
	"testing"

	"go.uber.org/zap"
)

func newSQLiteSource(t *testing.T) *SQLSource {
	t.Helper()
	conn, err := OpenSQL(DriverSQLite, ":memory:")
	if err != nil {
		t.Fatalf("OpenSQL: %v", err)
	}
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	src := NewSQLSource(conn, zap.NewNop())
	if err := src.EnsureSchema(context.Background()); err != nil {
		t.Fatalf("EnsureSchema: %v", err)
	}
	return src
}

func TestSQLSource_Load(t *testing.T) {
	src := newSQLiteSource(t)
	ctx := context.Background()

	_, err := src.db.ExecContext(ctx, `INSERT INTO grants
		(id, title, organisation, description, funding_amount, funding_amount_eur,
		 application_closing_date, keywords, industry_sectors, eligible_organisations, cofinancing_required)
		VALUES
		('g-2', 'Marin teknik', 'Formas', '<p>Hav och <i>kust</i></p>', '1 MSEK', NULL,
		 '2025-11-01', '["hav","marin"]', 'Hav & marin sektor', 'Universitet, Företag', 1),
		('g-1', 'Digital omställning', 'Vinnova', NULL, NULL, 750000,
		 NULL, NULL, NULL, NULL, 0)`)
	if err != nil {
		t.Fatalf("insert: %v", err)
	}

	got, err := src.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("got %d grants, want 2", len(got))
	}

	first, second := got[0], got[1]
	if first.ID() != "g-1" {
		t.Errorf("rows must be ordered by id, first = %s", first.ID())
	}
	if v, ok := first.Amount(); !ok || v != 750_000 {
		t.Errorf("Amount() = %v, %v", v, ok)
	}
	if first.Deadline().Specified() {
		t.Error("NULL closing date must be unspecified")
	}

	if second.Description() != "Hav och kust" {
		t.Errorf("Description() = %q", second.Description())
	}
	if len(second.Tags()) != 2 || second.Tags()[1] != "marin" {
		t.Errorf("Tags() = %v", second.Tags())
	}
	if len(second.ApplicantTypes()) != 2 || second.ApplicantTypes()[1] != "Företag" {
		t.Errorf("ApplicantTypes() = %v", second.ApplicantTypes())
	}
	if !second.CofinancingRequired() {
		t.Error("expected cofinancing required")
	}
	if v, _ := second.Amount(); v != 1_000_000 {
		t.Errorf("Amount() = %v, want parsed display amount", v)
	}
}

func TestOpenSQL_UnsupportedDriver(t *testing.T) {
	if _, err := OpenSQL("mysql", "dsn"); err == nil {
		t.Fatal("expected error for unsupported driver")
	}
}

func TestParseList(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{"", 0},
		{`["a","b"]`, 2},
		{"a, b ,c", 3},
		{"[broken", 1},
	}
	for _, tt := range tests {
		if got := parseList(tt.in); len(got) != tt.want {
			t.Errorf("parseList(%q) = %v, want %d items", tt.in, got, tt.want)
		}
	}
}
