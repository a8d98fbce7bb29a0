package server

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/jonathan/recruit-desk/internal/calendar"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHTTPStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"not found", &matching.ErrNotFound{MatchID: "m1"}, http.StatusNotFound},
		{"wrapped not found", fmt.Errorf("loading: %w", &matching.ErrNotFound{MatchID: "m1"}), http.StatusNotFound},
		{"validation", &matching.ErrValidation{Field: "status", Message: "bad"}, http.StatusBadRequest},
		{"invalid operation", &matching.ErrInvalidOperation{MatchID: "m1", Reason: "x"}, http.StatusConflict},
		{"duplicate", &matching.ErrDuplicateMatch{CandidateID: "c", JobID: "j"}, http.StatusConflict},
		{"version conflict", &matching.ErrVersionConflict{MatchID: "m1", Expected: 2}, http.StatusConflict},
		{"policy", &matching.ErrPolicyViolation{MatchID: "m1", Status: types.StatusInterview}, http.StatusForbidden},
		{"no interview", calendar.ErrNoInterviewDate, http.StatusConflict},
		{"drafting disabled", ErrDraftingDisabled, http.StatusNotImplemented},
		{"upstream", &ErrUpstream{Service: "drafting", Err: errors.New("quota")}, http.StatusBadGateway},
		{"unknown", assert.AnError, http.StatusInternalServerError},
		{"nil", nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, HTTPStatus(tt.err))
		})
	}
}

func TestErrUpstream(t *testing.T) {
	inner := errors.New("quota exceeded")
	err := &ErrUpstream{Service: "drafting", Err: inner}
	assert.Equal(t, "drafting request failed: quota exceeded", err.Error())
	assert.ErrorIs(t, err, inner)
}

func TestRequestError(t *testing.T) {
	err := requestError((&types.BulkWithdrawRequest{}).Validate())
	var validation *matching.ErrValidation
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "match_ids", validation.Field)
	assert.Equal(t, "is required", validation.Message)

	err = requestError((&types.BulkWithdrawRequest{MatchIDs: []string{"a", ""}}).Validate())
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "match_ids[1]", validation.Field)

	err = requestError(errors.New("boom"))
	require.ErrorAs(t, err, &validation)
	assert.Equal(t, "request", validation.Field)
}
