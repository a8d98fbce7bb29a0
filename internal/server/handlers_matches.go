package server

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/jonathan/recruit-desk/internal/export"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/server/middleware"
	"github.com/jonathan/recruit-desk/internal/types"
)

// maxBodyBytes caps request bodies
const maxBodyBytes = 1 << 20

// decodeBody decodes a JSON request body into v, rejecting unknown fields.
func decodeBody(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return &matching.ErrValidation{Field: "body", Message: "invalid JSON: " + err.Error()}
	}
	return nil
}

// actor returns the authenticated recruiter. Routes are only reachable
// through AuthMiddleware, so a missing actor is a wiring bug.
func actor(r *http.Request) string {
	actorID, err := middleware.GetActorID(r)
	if err != nil {
		return ""
	}
	return actorID
}

func (s *Server) handleCreateMatch(w http.ResponseWriter, r *http.Request) {
	var req types.CreateMatchRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, requestError(err))
		return
	}
	req.CreatedBy = actor(r)

	m, err := s.engine.CreateMatch(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusCreated, matching.NewView(*m))
}

func (s *Server) handleGetMatch(w http.ResponseWriter, r *http.Request) {
	view, err := s.engine.GetMatch(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleListMatches(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	page, err := s.engine.ListMatches(r.Context(), opts)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, page)
}

// parseListOptions reads filters, sorting and pagination from the query string.
func parseListOptions(q url.Values) (matching.ListOptions, error) {
	opts := matching.ListOptions{
		CandidateID: strings.TrimSpace(q.Get("candidate_id")),
		JobID:       strings.TrimSpace(q.Get("job_id")),
		CompanyID:   strings.TrimSpace(q.Get("company_id")),
	}

	for _, raw := range strings.Split(q.Get("status"), ",") {
		if raw = strings.TrimSpace(raw); raw == "" {
			continue
		}
		st, err := types.ParseStatus(raw)
		if err != nil {
			return opts, &matching.ErrValidation{Field: "status", Message: err.Error()}
		}
		opts.Statuses = append(opts.Statuses, st)
	}

	switch sort := matching.SortField(q.Get("sort")); sort {
	case "", matching.SortByStatus, matching.SortByPipeline:
		opts.Sort = sort
	default:
		return opts, &matching.ErrValidation{Field: "sort", Message: fmt.Sprintf("unknown sort %q", sort)}
	}

	switch order := matching.SortOrder(strings.ToLower(q.Get("order"))); order {
	case "", matching.OrderAsc, matching.OrderDesc:
		opts.Order = order
	default:
		return opts, &matching.ErrValidation{Field: "order", Message: fmt.Sprintf("unknown order %q", order)}
	}

	var err error
	if opts.Limit, err = queryInt(q, "limit"); err != nil {
		return opts, err
	}
	if opts.Offset, err = queryInt(q, "offset"); err != nil {
		return opts, err
	}
	return opts, nil
}

func queryInt(q url.Values, key string) (int, error) {
	raw := q.Get(key)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return 0, &matching.ErrValidation{Field: key, Message: "must be a non-negative integer"}
	}
	return v, nil
}

func (s *Server) handleUpdateStatus(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, requestError(err))
		return
	}
	req.ActorID = actor(r)

	id := r.PathValue("id")
	if err := s.engine.UpdateMatchStatus(r.Context(), id, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondWithMatch(w, r, id)
}

func (s *Server) handleUpdateEmployment(w http.ResponseWriter, r *http.Request) {
	var req types.UpdateEmploymentRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}

	id := r.PathValue("id")
	if err := s.engine.UpdateEmployment(r.Context(), id, &req); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondWithMatch(w, r, id)
}

func (s *Server) handleDeleteTimelineEntry(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if err := s.engine.DeleteLatestTimelineEntry(r.Context(), id, r.PathValue("entry_id")); err != nil {
		s.writeError(w, err)
		return
	}
	s.respondWithMatch(w, r, id)
}

func (s *Server) handleDeleteMatch(w http.ResponseWriter, r *http.Request) {
	if err := s.engine.DeleteMatch(r.Context(), r.PathValue("id")); err != nil {
		s.writeError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// respondWithMatch writes the current state of a match after a write.
func (s *Server) respondWithMatch(w http.ResponseWriter, r *http.Request, id string) {
	view, err := s.engine.GetMatch(r.Context(), id)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, view)
}

func (s *Server) handleExportMatches(w http.ResponseWriter, r *http.Request) {
	opts, err := parseListOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, err)
		return
	}

	views, err := s.collectMatches(r, opts)
	if err != nil {
		s.writeError(w, err)
		return
	}

	now := s.now()
	var buf bytes.Buffer
	if err := export.WriteMatches(&buf, views, now); err != nil {
		s.writeError(w, err)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="matches-%s.xlsx"`, now.Format("20060102")))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	_, _ = buf.WriteTo(w)
}

// collectMatches walks every page of a listing. An explicit limit or offset
// in the query still exports just that page.
func (s *Server) collectMatches(r *http.Request, opts matching.ListOptions) ([]matching.MatchView, error) {
	if opts.Limit > 0 || opts.Offset > 0 {
		page, err := s.engine.ListMatches(r.Context(), opts)
		if err != nil {
			return nil, err
		}
		return page.Matches, nil
	}

	var views []matching.MatchView
	for {
		opts.Offset = len(views)
		page, err := s.engine.ListMatches(r.Context(), opts)
		if err != nil {
			return nil, err
		}
		views = append(views, page.Matches...)
		if len(page.Matches) == 0 || len(views) >= page.Total {
			return views, nil
		}
	}
}
