package grants

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"

	_ "github.com/lib/pq"           // postgres driver
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain/grant"
)

// Supported database/sql drivers.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite3"
)

// Schema creates the grants table. Column types are valid for both drivers.
const Schema = `CREATE TABLE IF NOT EXISTS grants (
	id TEXT PRIMARY KEY,
	title TEXT,
	organisation TEXT,
	description TEXT,
	subtitle TEXT,
	eligibility TEXT,
	funding_amount TEXT,
	funding_amount_eur DOUBLE PRECISION,
	min_funding_per_project DOUBLE PRECISION,
	max_funding_per_project DOUBLE PRECISION,
	total_funding_per_call DOUBLE PRECISION,
	currency TEXT,
	application_closing_date TEXT,
	application_opening_date TEXT,
	keywords TEXT,
	industry_sectors TEXT,
	eligible_organisations TEXT,
	geographic_scope TEXT,
	cofinancing_required BOOLEAN,
	cofinancing_level_min DOUBLE PRECISION,
	original_url TEXT
)`

const selectGrants = `SELECT id, title, organisation, description, subtitle, eligibility,
	funding_amount, funding_amount_eur, min_funding_per_project, max_funding_per_project,
	total_funding_per_call, currency, application_closing_date, application_opening_date,
	keywords, industry_sectors, eligible_organisations, geographic_scope,
	cofinancing_required, cofinancing_level_min, original_url
FROM grants ORDER BY id`

// OpenSQL opens a database handle for a supported driver.
func OpenSQL(driver, dsn string) (*sql.DB, error) {
	switch driver {
	case DriverPostgres, DriverSQLite:
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}
	conn, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", driver, err)
	}
	return conn, nil
}

// SQLSource loads grants from a relational "grants" table.
// List columns hold JSON arrays or comma-separated values.
type SQLSource struct {
	db     *sql.DB
	logger *zap.Logger
}

// NewSQLSource creates a SQL-backed grant source.
func NewSQLSource(conn *sql.DB, logger *zap.Logger) *SQLSource {
	return &SQLSource{db: conn, logger: logger}
}

// EnsureSchema creates the grants table if missing.
func (s *SQLSource) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, Schema); err != nil {
		return fmt.Errorf("create grants table: %w", err)
	}
	return nil
}

// Ping checks database connectivity.
func (s *SQLSource) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Load reads every row of the grants table.
func (s *SQLSource) Load(ctx context.Context) ([]grant.Grant, error) {
	rows, err := s.db.QueryContext(ctx, selectGrants)
	if err != nil {
		return nil, fmt.Errorf("query grants: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []grant.Record
	for rows.Next() {
		var r grant.Record
		var title, org, desc, subtitle, elig, display, curr sql.NullString
		var closing, opening, keywords, sectors, orgs, scope, url sql.NullString
		var amount, minF, maxF, total, cofinLevel sql.NullFloat64
		var cofin sql.NullBool
		if err := rows.Scan(&r.ID, &title, &org, &desc, &subtitle, &elig,
			&display, &amount, &minF, &maxF, &total, &curr, &closing, &opening,
			&keywords, &sectors, &orgs, &scope, &cofin, &cofinLevel, &url); err != nil {
			return nil, fmt.Errorf("scan grant row: %w", err)
		}

		r.Title, r.Organization, r.Description = title.String, org.String, desc.String
		r.Subtitle, r.Eligibility, r.FundingAmount = subtitle.String, elig.String, display.String
		r.Currency, r.ClosingDate, r.OpeningDate, r.URL = curr.String, closing.String, opening.String, url.String
		if amount.Valid {
			v := amount.Float64
			r.AmountEUR = &v
		}
		r.MinFunding, r.MaxFunding, r.TotalFunding = minF.Float64, maxF.Float64, total.Float64
		r.Keywords = parseList(keywords.String)
		r.IndustrySectors = parseList(sectors.String)
		r.EligibleApplicants = parseList(orgs.String)
		r.GeographicScope = parseList(scope.String)
		r.CofinancingRequired, r.CofinancingLevel = cofin.Bool, cofinLevel.Float64

		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate grant rows: %w", err)
	}

	return fromRecords(records, "sql", s.logger), nil
}

// Close closes the database handle.
func (s *SQLSource) Close() error {
	return s.db.Close()
}

// parseList decodes a JSON array column, falling back to comma-separated text.
func parseList(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	if strings.HasPrefix(s, "[") {
		var out []string
		if err := json.Unmarshal([]byte(s), &out); err == nil {
			return out
		}
	}
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
