package server

import (
	"net/http"

	"github.com/jonathan/recruit-desk/internal/types"
)

// handleBulkWithdraw withdraws every listed match. Per-match failures are
// reported in the result, so the response is 200 even when some fail.
func (s *Server) handleBulkWithdraw(w http.ResponseWriter, r *http.Request) {
	var req types.BulkWithdrawRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, requestError(err))
		return
	}

	result := s.engine.BulkWithdraw(r.Context(), req.MatchIDs, actor(r))
	s.jsonResponse(w, http.StatusOK, result)
}

func (s *Server) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	var req types.BulkStatusRequest
	if err := decodeBody(w, r, &req); err != nil {
		s.writeError(w, err)
		return
	}
	if err := req.Validate(); err != nil {
		s.writeError(w, requestError(err))
		return
	}
	req.ActorID = actor(r)

	result, err := s.engine.BulkUpdateStatus(r.Context(), &req)
	if err != nil {
		s.writeError(w, err)
		return
	}
	s.jsonResponse(w, http.StatusOK, result)
}
