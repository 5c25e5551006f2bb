package chi

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/kailas-cloud/grantdex/internal/domain"
	"github.com/kailas-cloud/grantdex/internal/domain/search/request"
	searchuc "github.com/kailas-cloud/grantdex/internal/usecase/search"
)

// CreateSession handles POST /api/v1/sessions.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	var body CreateSessionRequest
	if !decodeBody(w, r, &body) {
		return
	}

	// A throwaway request validates mode, sort key, filters and limit together.
	probe, err := s.buildRequest("", body.Mode, body.Filters, body.SortBy, request.DefaultPage, body.Limit)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	sess := s.sessions.Create(searchuc.SessionOptions{
		Mode:    probe.Mode(),
		Filters: probe.Filters(),
		Sort:    probe.SortKey(),
		Limit:   probe.Limit(),
		Compact: body.Compact,
	})
	writeJSON(w, http.StatusCreated, sessionResponse(sess.Snapshot()))
}

// GetSession handles GET /api/v1/sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, sessionResponse(sess.Snapshot()))
}

// DeleteSession handles DELETE /api/v1/sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.sessions.Delete(chi.URLParam(r, "id")); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SessionInput handles POST /api/v1/sessions/{id}/input. The search runs after the
// debounce delay unless flush is set, in which case the reply carries its result.
func (s *Server) SessionInput(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	var body SessionInputRequest
	if !decodeBody(w, r, &body) {
		return
	}
	if len(body.Query) > request.MaxQueryLength {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed, "query too long")
		return
	}

	sess.Submit(body.Query)
	if !body.Flush {
		writeJSON(w, http.StatusAccepted, sessionResponse(sess.Snapshot()))
		return
	}
	sess.Flush()
	writeJSON(w, http.StatusOK, sessionResponse(sess.Snapshot()))
}

// SessionMore handles POST /api/v1/sessions/{id}/more.
func (s *Server) SessionMore(w http.ResponseWriter, r *http.Request) {
	sess, err := s.sessions.Get(chi.URLParam(r, "id"))
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	// Errors surface in the snapshot.
	_, _ = sess.LoadMore(r.Context())
	writeJSON(w, http.StatusOK, sessionResponse(sess.Snapshot()))
}

func sessionResponse(snap searchuc.Snapshot) SessionResponse {
	resp := SessionResponse{
		ID:          snap.ID,
		Epoch:       snap.Epoch,
		Raw:         snap.Raw,
		Effective:   snap.Effective,
		Pending:     snap.Pending,
		State:       string(snap.State),
		Grants:      grantResults(snap.Grants, snap.Scores),
		Pagination:  snap.Page,
		HasMore:     snap.HasMore,
		Sectors:     snap.Sectors,
		Explanation: snap.Explanation,
	}
	if snap.Err != nil {
		msg := safeDomainMessage(snap.Err)
		if errors.Is(snap.Err, domain.ErrEmptyQuery) {
			msg = "no search performed"
		}
		resp.Error = &msg
	}
	return resp
}

