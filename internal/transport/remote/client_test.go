package remote

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"go.uber.org/zap"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/search/filter"
	"github.com/kailas-cloud/grantdex/internal/domain/search/mode"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
	"github.com/kailas-cloud/grantdex/internal/domain/search/sortkey"
)

func testRequest(t *testing.T, raw string, page int) request.Request {
	t.Helper()
	yes := true
	set, err := filter.New(filter.Params{
		Organizations:       []string{"Vinnova"},
		DeadlinePreset:      "3months",
		CofinancingRequired: &yes,
	})
	if err != nil {
		t.Fatalf("filter.New: %v", err)
	}
	req, err := request.New(raw, mode.Remote, set, sortkey.DeadlineAsc, page, 15)
	if err != nil {
		t.Fatalf("request.New: %v", err)
	}
	return req
}

func newTestClient(url string) *Client {
	return NewClient(Config{URL: url, APIKey: "anon-key", Logger: zap.NewNop()})
}

func TestClient_Search(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("Authorization") != "Bearer anon-key" {
			t.Errorf("auth header = %q", r.Header.Get("Authorization"))
		}
		var req SearchRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			t.Fatalf("decode: %v", err)
		}
		if req.SearchTerm != "energi" || req.Pagination.Page != 2 || req.Pagination.Limit != 15 {
			t.Errorf("unexpected request: %+v", req)
		}
		if req.Sorting.SortBy != "deadline-asc" || req.Sorting.SearchTerm != "energi" {
			t.Errorf("sorting = %+v", req.Sorting)
		}
		if req.Filters.Deadline == nil || req.Filters.Deadline.Type != DeadlinePreset || req.Filters.Deadline.Preset != "3months" {
			t.Errorf("deadline filter = %+v", req.Filters.Deadline)
		}
		if req.Filters.CofinancingRequired == nil || !*req.Filters.CofinancingRequired {
			t.Error("cofinancing filter lost")
		}

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"grants": [
				{"id":"g-1","title":"Energilyftet","organization":"Energimyndigheten",
				 "aboutGrant":"Stöd","fundingAmount":"2 MSEK","deadline":"2025-05-01",
				 "tags":["energi"],"industry_sectors":[],"eligible_organisations":[],
				 "geographic_scope":[],"cofinancing_required":true}
			],
			"pagination": {"page":2,"limit":15,"total":16,"totalPages":2,"hasMore":false}
		}`))
	}))
	defer server.Close()

	res, err := newTestClient(server.URL).Search(context.Background(), testRequest(t, "energi", 2))
	if err != nil {
		t.Fatalf("Search: %v", err)
	}
	if len(res.Grants) != 1 || res.Grants[0].ID() != "g-1" {
		t.Fatalf("grants = %v", res.Grants)
	}
	if v, ok := res.Grants[0].Amount(); !ok || v != 2_000_000 {
		t.Errorf("Amount() = %v, %v", v, ok)
	}
	if res.Page.Page != 2 || res.Page.Total != 16 || res.Page.TotalPages != 2 || res.Page.HasMore {
		t.Errorf("page = %+v", res.Page)
	}
}

func TestClient_Failures(t *testing.T) {
	tests := []struct {
		name    string
		status  int
		body    string
		wantErr error
	}{
		{"server error", http.StatusInternalServerError, `{"error":"Internal server error"}`, domain.ErrTransport},
		{"not found", http.StatusNotFound, ``, domain.ErrTransport},
		{"empty body", http.StatusOK, ``, domain.ErrTransport},
		{"not json", http.StatusOK, `<html>`, domain.ErrSchema},
		{"missing grants", http.StatusOK, `{"pagination":{"page":1,"limit":15,"total":0,"totalPages":0,"hasMore":false}}`, domain.ErrSchema},
		{"missing pagination", http.StatusOK, `{"grants":[]}`, domain.ErrSchema},
		{"partial pagination", http.StatusOK, `{"grants":[],"pagination":{"page":1}}`, domain.ErrSchema},
		{"grant without id", http.StatusOK, `{"grants":[{"title":"x"}],"pagination":{"page":1,"limit":15,"total":1,"totalPages":1,"hasMore":false}}`, domain.ErrSchema},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer server.Close()

			_, err := newTestClient(server.URL).Search(context.Background(), testRequest(t, "x", 1))
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("error = %v, want %v", err, tt.wantErr)
			}
			if !IsRecoverable(err) {
				t.Error("expected recoverable error")
			}
		})
	}
}

func TestClient_StatusErrorCarriesCode(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	_, err := newTestClient(server.URL).Search(context.Background(), testRequest(t, "x", 1))
	var se *domain.StatusError
	if !errors.As(err, &se) || se.Status != http.StatusBadGateway {
		t.Fatalf("expected StatusError 502, got %v", err)
	}
}

func TestClient_Unreachable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := server.URL
	server.Close()

	_, err := newTestClient(url).Search(context.Background(), testRequest(t, "x", 1))
	if !errors.Is(err, domain.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}
