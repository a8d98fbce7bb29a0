package matching_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func seedListing(t *testing.T) *matching.Engine {
	t.Helper()
	engine, _, _ := newTestEngine(matching.Options{})
	ctx := context.Background()

	rows := []struct {
		candidate, job, company string
		status                  types.Status
	}{
		{"cand-1", "job-1", "acme", types.StatusRejected},
		{"cand-1", "job-2", "acme", types.StatusInterview},
		{"cand-2", "job-1", "acme", types.StatusApplied},
		{"cand-3", "job-3", "globex", types.StatusOffer},
		{"cand-4", "job-3", "globex", types.StatusPendingProposal},
	}
	for _, r := range rows {
		_, err := engine.CreateMatch(ctx, &types.CreateMatchRequest{
			CandidateID:   r.candidate,
			JobID:         r.job,
			CompanyID:     r.company,
			InitialStatus: r.status,
		})
		require.NoError(t, err)
	}
	return engine
}

func statuses(page *matching.MatchPage) []types.Status {
	out := make([]types.Status, len(page.Matches))
	for i, m := range page.Matches {
		out[i] = m.Status
	}
	return out
}

func TestListMatches_SortByStatus(t *testing.T) {
	engine := seedListing(t)

	page, err := engine.ListMatches(context.Background(), matching.ListOptions{Order: matching.OrderAsc})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, []types.Status{
		types.StatusPendingProposal, types.StatusApplied, types.StatusInterview, types.StatusOffer, types.StatusRejected,
	}, statuses(page))

	page, err = engine.ListMatches(context.Background(), matching.ListOptions{Order: matching.OrderDesc})
	require.NoError(t, err)
	assert.Equal(t, []types.Status{
		types.StatusOffer, types.StatusInterview, types.StatusApplied, types.StatusPendingProposal, types.StatusRejected,
	}, statuses(page))
}

func TestListMatches_Filters(t *testing.T) {
	engine := seedListing(t)
	ctx := context.Background()

	page, err := engine.ListMatches(ctx, matching.ListOptions{CandidateID: "cand-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = engine.ListMatches(ctx, matching.ListOptions{CompanyID: "globex"})
	require.NoError(t, err)
	assert.Equal(t, 2, page.Total)

	page, err = engine.ListMatches(ctx, matching.ListOptions{JobID: "job-1", Statuses: []types.Status{types.StatusApplied}})
	require.NoError(t, err)
	require.Equal(t, 1, page.Total)
	assert.Equal(t, "cand-2", page.Matches[0].CandidateID)

	_, err = engine.ListMatches(ctx, matching.ListOptions{Statuses: []types.Status{"hired"}})
	assert.Equal(t, matching.KindValidation, matching.KindOf(err))
}

func TestListMatches_Pagination(t *testing.T) {
	engine := seedListing(t)
	ctx := context.Background()

	page, err := engine.ListMatches(ctx, matching.ListOptions{Sort: matching.SortByPipeline, Limit: 2, Offset: 1})
	require.NoError(t, err)
	assert.Equal(t, 5, page.Total)
	assert.Equal(t, 2, page.Limit)
	assert.Equal(t, []types.Status{types.StatusApplied, types.StatusInterview}, statuses(page))

	page, err = engine.ListMatches(ctx, matching.ListOptions{Offset: 10})
	require.NoError(t, err)
	assert.Empty(t, page.Matches)
	assert.NotNil(t, page.Matches)
	assert.Equal(t, 50, page.Limit)
}

func TestGetMatch_DerivedFields(t *testing.T) {
	engine, _, _ := newTestEngine(matching.Options{})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusApplied)

	interviewAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{
		Status:        types.StatusInterview,
		EventDateTime: &interviewAt,
	}))
	require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{
		Status: types.StatusInterviewPassed,
	}))

	view, err := engine.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, view.LatestEventDate)
	assert.True(t, view.LatestEventDate.Equal(interviewAt))
	assert.Equal(t, matching.NextStatuses(types.StatusInterviewPassed), view.NextStatuses)

	_, err = engine.GetMatch(ctx, "missing")
	assert.Equal(t, matching.KindNotFound, matching.KindOf(err))
}
