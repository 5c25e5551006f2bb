package chi

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/grant"
	"github.com/kailas-cloud/grantdex/internal/metrics"
	"github.com/kailas-cloud/grantdex/internal/repository/querycache"
	"github.com/kailas-cloud/grantdex/internal/transport/remote"
	healthuc "github.com/kailas-cloud/grantdex/internal/usecase/health"
	matchinguc "github.com/kailas-cloud/grantdex/internal/usecase/matching"
	searchuc "github.com/kailas-cloud/grantdex/internal/usecase/search"
	sectoruc "github.com/kailas-cloud/grantdex/internal/usecase/sector"
	usageuc "github.com/kailas-cloud/grantdex/internal/usecase/usage"
)

func TestMain(m *testing.M) {
	metrics.RegisterSearchMetrics()
	metrics.RegisterAIMetrics()
	os.Exit(m.Run())
}

// --- Mocks ---

type fakeCorpus struct {
	grants []grant.Grant
}

func (c *fakeCorpus) All() []grant.Grant { return c.grants }

func (c *fakeCorpus) Len() int { return len(c.grants) }

func (c *fakeCorpus) Get(id string) (grant.Grant, error) {
	for _, g := range c.grants {
		if g.ID() == id {
			return g, nil
		}
	}
	return grant.Grant{}, domain.ErrNotFound
}

func (c *fakeCorpus) Lookup(ids []string) []grant.Grant {
	idx := grant.Index(c.grants)
	out := make([]grant.Grant, 0, len(ids))
	for _, id := range ids {
		if i, ok := idx[id]; ok {
			out = append(out, c.grants[i])
		}
	}
	return out
}

// stubModel answers the grant matching and brief prompts with canned JSON.
func stubModel(_ context.Context, p domain.Prompt) (domain.Completion, error) {
	if p.System == domain.BriefStageConfig().System {
		return domain.Completion{
			Content: `{"high_match":[{"grant_id":"sol","name":"Solceller","score":0.85}],
				"medium_match":[{"grant_id":"vatten","name":"Vatten","score":0.5}],
				"low_match":[]}`,
			TotalTokens: 300,
		}, nil
	}
	return domain.Completion{
		Content: "```json\n" + `{"rankedGrants":[{"grantId":"sol","relevanceScore":90,
			"matchingReasons":["Solar energy"]}],"explanation":"One strong match"}` + "\n```",
		TotalTokens: 120,
	}, nil
}

// --- Fixtures ---

var testNow = time.Date(2025, 1, 10, 12, 0, 0, 0, time.UTC)

func mustGrant(t *testing.T, p grant.Params) grant.Grant {
	t.Helper()
	g, err := grant.New(p)
	if err != nil {
		t.Fatalf("grant.New(%s): %v", p.ID, err)
	}
	return g
}

func amount(v float64) *float64 { return &v }

func testGrants(t *testing.T) []grant.Grant {
	return []grant.Grant{
		mustGrant(t, grant.Params{
			ID: "sol", Title: "Solceller för lantbruk", Organization: "Energimyndigheten",
			Description: "Stöd till solceller och batterilager", Amount: amount(2_000_000), FundingAmount: "2 MSEK",
			Currency: "SEK", Deadline: "2025-02-01", Tags: []string{"solenergi"},
			Sectors: []string{"Energi, klimat & hållbar utveckling"},
		}),
		mustGrant(t, grant.Params{
			ID: "vatten", Title: "Hållbar vattenförvaltning", Organization: "Formas",
			Description: "Forskning om vattenkvalitet", Amount: amount(500_000),
			Currency: "SEK", Deadline: "2025-06-01", Tags: []string{"vatten"},
		}),
		mustGrant(t, grant.Params{
			ID: "digital", Title: "Digital omställning", Organization: "Vinnova",
			Description: "Digitalisering av små företag", Amount: amount(1_000_000),
			Currency: "SEK", Deadline: "2024-12-01",
		}),
		mustGrant(t, grant.Params{
			ID: "energilager", Title: "Energilager i industrin", Organization: "Energimyndigheten",
			Description: "Lagring av förnybar el", Amount: amount(5_000_000),
			Currency: "SEK", Tags: []string{"energi"},
		}),
	}
}

func newTestRouter(t *testing.T, grants []grant.Grant) http.Handler {
	t.Helper()

	logger := zap.NewNop()
	corpus := &fakeCorpus{grants: grants}
	now := func() time.Time { return testNow }

	sectors := sectoruc.New(nil, logger)
	matcher := matchinguc.New(domain.NewUsageRecordingCompleter(domain.CompleterFunc(stubModel)), logger)
	search := searchuc.New(searchuc.Config{
		Corpus:     corpus,
		Cache:      querycache.NewMemory(querycache.DefaultTTL, now),
		Classifier: sectors,
		Matcher:    matcher,
		Now:        now,
		Logger:     logger,
	})
	sessions := searchuc.NewSessions(search, 50*time.Millisecond, time.Hour)
	t.Cleanup(sessions.Close)

	srv := NewServer(Services{
		Corpus:   corpus,
		Search:   search,
		Sessions: sessions,
		Sectors:  sectors,
		Matcher:  matcher,
		Usage:    usageuc.New(nil),
		Health:   healthuc.New(nil, nil, corpus),
	}, logger).WithPagination(2, 50)

	r := chi.NewRouter()
	srv.Mount(r)
	return r
}

func do(t *testing.T, h http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if s, ok := body.(string); ok {
			buf.WriteString(s)
		} else if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func decode[T any](t *testing.T, rr *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.NewDecoder(rr.Body).Decode(&v); err != nil {
		t.Fatalf("decode response: %v (body %q)", err, rr.Body.String())
	}
	return v
}

func expectError(t *testing.T, rr *httptest.ResponseRecorder, status int, code ErrorCode) ErrorResponse {
	t.Helper()
	if rr.Code != status {
		t.Fatalf("status: got %d, want %d (body %s)", rr.Code, status, rr.Body.String())
	}
	resp := decode[ErrorResponse](t, rr)
	if resp.Code != code {
		t.Errorf("code: got %s, want %s", resp.Code, code)
	}
	return resp
}

func ids(items []GrantResult) []string {
	out := make([]string, len(items))
	for i, g := range items {
		out[i] = g.ID
	}
	return out
}

// --- Tests ---

func TestSearch_Local(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "POST", "/api/v1/search", SearchRequest{Query: "solceller", SortBy: "relevance"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[SearchResponse](t, rr)

	if len(resp.Grants) == 0 || resp.Grants[0].ID != "sol" {
		t.Fatalf("grants = %v, want sol first", ids(resp.Grants))
	}
	if resp.Grants[0].RelevanceScore == nil || *resp.Grants[0].RelevanceScore <= 0 {
		t.Error("expected relevance score on ranked result")
	}
	if resp.Mode != "local" || resp.State != "succeeded" || resp.Degraded {
		t.Errorf("mode=%s state=%s degraded=%v", resp.Mode, resp.State, resp.Degraded)
	}
	if resp.Pagination.Limit != 2 {
		t.Errorf("default limit = %d, want 2", resp.Pagination.Limit)
	}

	// Same query again is served from the cache.
	rr = do(t, h, "POST", "/api/v1/search", SearchRequest{Query: "solceller", SortBy: "relevance"})
	if !decode[SearchResponse](t, rr).CacheHit {
		t.Error("expected cache hit on repeated query")
	}
}

func TestSearch_FiltersAndPaging(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "POST", "/api/v1/search", SearchRequest{
		Filters: &remote.Filters{Organizations: []string{"Energimyndigheten"}},
		SortBy:  "amount-desc",
		Limit:   1,
		Page:    2,
	})
	resp := decode[SearchResponse](t, rr)

	if got := ids(resp.Grants); len(got) != 1 || got[0] != "sol" {
		t.Errorf("page 2 = %v, want [sol]", got)
	}
	if resp.Pagination.Total != 2 || resp.Pagination.TotalPages != 2 || resp.Pagination.HasMore {
		t.Errorf("pagination = %+v", resp.Pagination)
	}
}

func TestSearch_Validation(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	tests := []struct {
		name string
		body any
		code ErrorCode
	}{
		{"malformed body", `{"query":`, ErrorCodeBadRequest},
		{"unknown mode", SearchRequest{Query: "x", Mode: "semantic"}, ErrorCodeValidationFailed},
		{"unknown sort", SearchRequest{Query: "x", SortBy: "random"}, ErrorCodeValidationFailed},
		{"limit too large", SearchRequest{Query: "x", Limit: 500}, ErrorCodeValidationFailed},
		{"min above max", SearchRequest{Filters: &remote.Filters{
			FundingRange: &remote.FundingRange{Min: amount(10), Max: amount(1)},
		}}, ErrorCodeValidationFailed},
		{"unknown preset", SearchRequest{Filters: &remote.Filters{
			Deadline: &remote.DeadlineFilter{Type: remote.DeadlinePreset, Preset: "someday"},
		}}, ErrorCodeValidationFailed},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expectError(t, do(t, h, "POST", "/api/v1/search", tt.body), http.StatusBadRequest, tt.code)
		})
	}
}

func TestSearch_RemoteEmptyQuery(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "POST", "/api/v1/search", SearchRequest{Query: "   ", Mode: "remote"})
	resp := expectError(t, rr, http.StatusBadRequest, ErrorCodeNoSearchPerformed)
	if resp.Message != "no search performed" {
		t.Errorf("message = %q", resp.Message)
	}
}

func TestSearch_RemoteUnconfiguredFallsBack(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "POST", "/api/v1/search", SearchRequest{Query: "vatten", Mode: "remote"})
	resp := decode[SearchResponse](t, rr)
	if !resp.Degraded || resp.State != "degraded" {
		t.Errorf("expected degraded fallback, got state %s", resp.State)
	}
	if got := ids(resp.Grants); len(got) == 0 || got[0] != "vatten" {
		t.Errorf("grants = %v", got)
	}
}

func TestSearch_AI(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "POST", "/api/v1/search", SearchRequest{Query: "solenergi för gårdar", Mode: "ai"})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	if got := rr.Header().Get("X-AI-Tokens"); got != "120" {
		t.Errorf("X-AI-Tokens = %q, want 120", got)
	}
	resp := decode[SearchResponse](t, rr)

	if got := ids(resp.Grants); len(got) != 1 || got[0] != "sol" {
		t.Fatalf("grants = %v, want [sol]", got)
	}
	if s := resp.Grants[0].RelevanceScore; s == nil || *s != 0.9 {
		t.Errorf("score = %v, want 0.9", s)
	}
	if len(resp.Sectors) == 0 || resp.Explanation != "One strong match" || resp.Degraded {
		t.Errorf("sectors=%v explanation=%q degraded=%v", resp.Sectors, resp.Explanation, resp.Degraded)
	}
}

func TestSearch_EmptyCorpus(t *testing.T) {
	h := newTestRouter(t, nil)

	rr := do(t, h, "POST", "/api/v1/search", SearchRequest{Query: "energi"})
	expectError(t, rr, http.StatusServiceUnavailable, ErrorCodeEmptyCorpus)
}

func TestFilteredSearch(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "POST", "/api/v1/grants/search", remote.SearchRequest{
		Sorting:    remote.Sorting{SortBy: "deadline-asc"},
		Pagination: remote.PageRequest{Page: 1, Limit: 10},
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[remote.SearchResponse](t, rr)

	// The expired grant is hidden; unspecified deadlines are kept.
	var got []string
	for _, c := range resp.Grants {
		got = append(got, c.ID)
	}
	want := []string{"sol", "vatten", "energilager"}
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("grants = %v, want %v", got, want)
	}
	if resp.Pagination.Total != 3 {
		t.Errorf("total = %d, want 3", resp.Pagination.Total)
	}
	if resp.Grants[0].FundingAmount != "2 MSEK" {
		t.Errorf("funding display = %q", resp.Grants[0].FundingAmount)
	}
}

func TestSuggestions(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "GET", "/api/v1/grants/suggestions?q=ener&limit=3", nil)
	resp := decode[SuggestionsResponse](t, rr)
	if len(resp.Suggestions) == 0 || len(resp.Suggestions) > 3 {
		t.Fatalf("suggestions = %v", resp.Suggestions)
	}
	for _, s := range resp.Suggestions {
		if !strings.HasPrefix(s, "ener") {
			t.Errorf("suggestion %q does not complete the prefix", s)
		}
	}

	rr = do(t, h, "GET", "/api/v1/grants/suggestions?q=", nil)
	if got := decode[SuggestionsResponse](t, rr).Suggestions; len(got) != 0 {
		t.Errorf("empty prefix suggestions = %v", got)
	}

	expectError(t, do(t, h, "GET", "/api/v1/grants/suggestions?q=a&limit=abc", nil),
		http.StatusBadRequest, ErrorCodeBadRequest)
	expectError(t, do(t, h, "GET", "/api/v1/grants/suggestions?q=a&limit=99", nil),
		http.StatusBadRequest, ErrorCodeValidationFailed)
}

func TestGetGrant(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "GET", "/api/v1/grants/vatten", nil)
	card := decode[remote.Card](t, rr)
	if card.ID != "vatten" || card.Organization != "Formas" || card.Deadline != "2025-06-01" {
		t.Errorf("card = %+v", card)
	}

	expectError(t, do(t, h, "GET", "/api/v1/grants/missing", nil), http.StatusNotFound, ErrorCodeNotFound)
}

func TestOrganizations(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	resp := decode[OrganizationsResponse](t, do(t, h, "GET", "/api/v1/grants/organizations", nil))
	if len(resp.Organizations) != 3 {
		t.Errorf("organizations = %v, want 3 distinct", resp.Organizations)
	}
}

func TestMatchSectors_Keywords(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "POST", "/api/v1/sectors/match", QueryRequest{Query: "Havsbaserad energi"})
	resp := decode[SectorMatchResponse](t, rr)
	if resp.Source != sectoruc.SourceKeywords || len(resp.RelevantSectors) != 2 {
		t.Errorf("resp = %+v", resp)
	}
	if !strings.Contains(resp.Explanation, "keyword matching") {
		t.Errorf("explanation = %q", resp.Explanation)
	}

	expectError(t, do(t, h, "POST", "/api/v1/sectors/match", QueryRequest{Query: " "}),
		http.StatusBadRequest, ErrorCodeValidationFailed)
}

func TestMatchGrants(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "POST", "/api/v1/grants/match", GrantMatchRequest{
		Query:   "solceller",
		Sectors: []string{"Energi, klimat & hållbar utveckling"},
	})
	if rr.Header().Get("X-AI-Tokens") != "120" {
		t.Errorf("X-AI-Tokens = %q", rr.Header().Get("X-AI-Tokens"))
	}
	resp := decode[GrantMatchResponse](t, rr)
	if len(resp.RankedGrants) != 1 {
		t.Fatalf("ranked = %+v", resp.RankedGrants)
	}
	got := resp.RankedGrants[0]
	if got.GrantID != "sol" || got.RelevanceScore != 0.9 || len(got.MatchingReasons) != 1 {
		t.Errorf("ranked[0] = %+v", got)
	}
	if resp.Degraded {
		t.Error("unexpected degraded")
	}
}

func TestMatchGrants_EmptyCorpus(t *testing.T) {
	h := newTestRouter(t, nil)

	rr := do(t, h, "POST", "/api/v1/grants/match", GrantMatchRequest{Query: "solceller"})
	expectError(t, rr, http.StatusServiceUnavailable, ErrorCodeEmptyCorpus)
}

func TestMatchBrief(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "POST", "/api/v1/grants/match-brief", BriefMatchRequest{
		Description: "Vi bygger solcellsparker på jordbruksmark",
	})
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d: %s", rr.Code, rr.Body.String())
	}
	resp := decode[BriefMatchResponse](t, rr)

	if len(resp.HighMatch) != 1 || resp.HighMatch[0].GrantID != "sol" {
		t.Errorf("high = %+v", resp.HighMatch)
	}
	if resp.HighMatch[0].Name != "Solceller för lantbruk" {
		t.Errorf("name = %q, want corpus title", resp.HighMatch[0].Name)
	}
	if len(resp.MediumMatch) != 1 || resp.MediumMatch[0].GrantID != "vatten" {
		t.Errorf("medium = %+v", resp.MediumMatch)
	}
	// Grants the model left out land in the low bucket with score 0.
	if len(resp.LowMatch) != 2 || resp.LowMatch[0].Score != 0 {
		t.Errorf("low = %+v", resp.LowMatch)
	}

	expectError(t, do(t, h, "POST", "/api/v1/grants/match-brief", BriefMatchRequest{}),
		http.StatusBadRequest, ErrorCodeValidationFailed)
}

func TestSessions_Lifecycle(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	rr := do(t, h, "POST", "/api/v1/sessions", CreateSessionRequest{Compact: true, Limit: 1})
	if rr.Code != http.StatusCreated {
		t.Fatalf("create: %d %s", rr.Code, rr.Body.String())
	}
	created := decode[SessionResponse](t, rr)
	if created.ID == "" || created.State != "idle" {
		t.Fatalf("created = %+v", created)
	}
	base := "/api/v1/sessions/" + created.ID

	rr = do(t, h, "POST", base+"/input", SessionInputRequest{Query: "energi", Flush: true})
	snap := decode[SessionResponse](t, rr)
	if snap.Effective != "energi" || snap.Pending || len(snap.Grants) != 1 || !snap.HasMore {
		t.Fatalf("after flush = %+v", snap)
	}

	rr = do(t, h, "POST", base+"/more", nil)
	snap = decode[SessionResponse](t, rr)
	if len(snap.Grants) != 2 {
		t.Errorf("after load more: %d grants, want 2 accumulated", len(snap.Grants))
	}

	rr = do(t, h, "GET", base, nil)
	if got := decode[SessionResponse](t, rr); got.Epoch != snap.Epoch {
		t.Errorf("epoch = %d, want %d", got.Epoch, snap.Epoch)
	}

	if rr = do(t, h, "DELETE", base, nil); rr.Code != http.StatusNoContent {
		t.Errorf("delete: %d", rr.Code)
	}
	expectError(t, do(t, h, "GET", base, nil), http.StatusNotFound, ErrorCodeSessionNotFound)
}

func TestSessions_DebouncedInput(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	created := decode[SessionResponse](t, do(t, h, "POST", "/api/v1/sessions", CreateSessionRequest{}))
	base := "/api/v1/sessions/" + created.ID

	rr := do(t, h, "POST", base+"/input", SessionInputRequest{Query: "vatten"})
	if rr.Code != http.StatusAccepted {
		t.Fatalf("input: %d", rr.Code)
	}
	if snap := decode[SessionResponse](t, rr); !snap.Pending {
		t.Error("expected pending input before the debounce delay")
	}

	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		snap := decode[SessionResponse](t, do(t, h, "GET", base, nil))
		if snap.State == "succeeded" && len(snap.Grants) > 0 {
			if snap.Grants[0].ID != "vatten" {
				t.Errorf("grants = %v", ids(snap.Grants))
			}
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("debounced search never completed")
}

func TestSessions_RemoteEmptyQuery(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	created := decode[SessionResponse](t, do(t, h, "POST", "/api/v1/sessions", CreateSessionRequest{Mode: "remote"}))
	rr := do(t, h, "POST", "/api/v1/sessions/"+created.ID+"/input", SessionInputRequest{Query: "  ", Flush: true})

	snap := decode[SessionResponse](t, rr)
	if snap.Error == nil || *snap.Error != "no search performed" {
		t.Errorf("error = %v", snap.Error)
	}
	if len(snap.Grants) != 0 {
		t.Errorf("grants = %v, want none", ids(snap.Grants))
	}
}

func TestSessions_InvalidOptions(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	expectError(t, do(t, h, "POST", "/api/v1/sessions", CreateSessionRequest{Mode: "fuzzy"}),
		http.StatusBadRequest, ErrorCodeValidationFailed)
	expectError(t, do(t, h, "POST", "/api/v1/sessions/nope/input", SessionInputRequest{Query: "x"}),
		http.StatusNotFound, ErrorCodeSessionNotFound)
}

func TestUsage(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	resp := decode[UsageResponse](t, do(t, h, "GET", "/usage", nil))
	if resp.Period != "month" || resp.Budget.IsExhausted {
		t.Errorf("resp = %+v", resp)
	}
	if resp.PeriodStartAt == "" || resp.PeriodEndAt == "" {
		t.Error("expected period bounds")
	}

	resp = decode[UsageResponse](t, do(t, h, "GET", "/usage?period=day", nil))
	if resp.Period != "day" {
		t.Errorf("period = %s", resp.Period)
	}

	expectError(t, do(t, h, "GET", "/usage?period=total", nil), http.StatusBadRequest, ErrorCodeValidationFailed)
}

func TestHealth(t *testing.T) {
	rr := do(t, newTestRouter(t, testGrants(t)), "GET", "/health", nil)
	if rr.Code != http.StatusOK {
		t.Fatalf("status %d", rr.Code)
	}
	resp := decode[HealthResponse](t, rr)
	if resp.Status != "ok" || resp.Grants != 4 || resp.Checks["corpus"] != "ok" {
		t.Errorf("resp = %+v", resp)
	}

	rr = do(t, newTestRouter(t, nil), "GET", "/health", nil)
	if rr.Code != http.StatusServiceUnavailable {
		t.Errorf("empty corpus: status %d, want 503", rr.Code)
	}
}

func TestUnknownRoute(t *testing.T) {
	h := newTestRouter(t, testGrants(t))

	expectError(t, do(t, h, "GET", "/api/v1/nothing", nil), http.StatusNotFound, ErrorCodeNotFound)
	expectError(t, do(t, h, "GET", "/api/v1/search", nil), http.StatusMethodNotAllowed, ErrorCodeBadRequest)
}

func TestSafeDomainMessage(t *testing.T) {
	tests := []struct {
		err  error
		want string
	}{
		{domain.ErrSessionNotFound, "session not found"},
		{domain.NewStatusError("filtered-grants-search", 502), "transport error"},
		{context.DeadlineExceeded, "internal error"},
	}
	for _, tt := range tests {
		if got := safeDomainMessage(tt.err); got != tt.want {
			t.Errorf("safeDomainMessage(%v) = %q, want %q", tt.err, got, tt.want)
		}
	}
}
