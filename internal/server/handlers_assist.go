package server

import (
	"net/http"
	"strconv"
	"time"

	"github.com/jonathan/recruit-desk/internal/calendar"
	"github.com/jonathan/recruit-desk/internal/drafting"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/types"
)

// ---------------------------------------------------------------------
// Calendar links and drafted text
// ---------------------------------------------------------------------

func (s *Server) handleCalendarLink(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	details := calendar.InterviewDetails{
		CandidateName: q.Get("candidate_name"),
		CompanyName:   q.Get("company_name"),
		JobTitle:      q.Get("job_title"),
		Location:      q.Get("location"),
	}
	if raw := q.Get("duration_minutes"); raw != "" {
		minutes, err := strconv.Atoi(raw)
		if err != nil || minutes <= 0 || minutes > 24*60 {
			s.writeError(w, &matching.ErrValidation{Field: "duration_minutes", Message: "must be between 1 and 1440"})
			return
		}
		details.Duration = time.Duration(minutes) * time.Minute
	}

	view, err := s.engine.GetMatch(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return
	}

	link, err := calendar.InterviewLink(&view.Match, details)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"url": link})
}

// draftInput loads the match and the request context shared by the drafting routes.
func (s *Server) draftInput(w http.ResponseWriter, r *http.Request) (*types.Match, drafting.Context, bool) {
	var c drafting.Context
	if s.drafter == nil {
		s.writeError(w, ErrDraftingDisabled)
		return nil, c, false
	}
	if err := decodeBody(w, r, &c); err != nil {
		s.writeError(w, err)
		return nil, c, false
	}
	if err := types.ValidateStruct(c); err != nil {
		s.writeError(w, requestError(err))
		return nil, c, false
	}

	view, err := s.engine.GetMatch(r.Context(), r.PathValue("id"))
	if err != nil {
		s.writeError(w, err)
		return nil, c, false
	}
	return &view.Match, c, true
}

func (s *Server) handleDraftNote(w http.ResponseWriter, r *http.Request) {
	m, c, ok := s.draftInput(w, r)
	if !ok {
		return
	}

	note, err := s.drafter.ProposalNote(r.Context(), m, c)
	if err != nil {
		s.writeError(w, &ErrUpstream{Service: "drafting", Err: err})
		return
	}
	s.jsonResponse(w, http.StatusOK, note)
}

func (s *Server) handleStatusSummary(w http.ResponseWriter, r *http.Request) {
	m, c, ok := s.draftInput(w, r)
	if !ok {
		return
	}

	summary, err := s.drafter.StatusSummary(r.Context(), m, c)
	if err != nil {
		s.writeError(w, &ErrUpstream{Service: "drafting", Err: err})
		return
	}
	s.jsonResponse(w, http.StatusOK, map[string]string{"match_id": m.ID, "summary": summary})
}
