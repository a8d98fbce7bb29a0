package matching_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/matching/matchingtest"
	"github.com/jonathan/recruit-desk/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// tickingClock returns a clock that advances one minute per call.
func tickingClock(start time.Time) func() time.Time {
	var mu sync.Mutex
	current := start
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		current = current.Add(time.Minute)
		return current
	}
}

func newTestEngine(opts matching.Options) (*matching.Engine, *matchingtest.MemoryStore, *matchingtest.RecordingPublisher) {
	store := matchingtest.NewMemoryStore()
	pub := &matchingtest.RecordingPublisher{}
	engine := matching.NewEngine(store, pub, opts)
	engine.SetClock(tickingClock(time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC)))
	return engine, store, pub
}

func createMatch(t *testing.T, engine *matching.Engine, status types.Status) *types.Match {
	t.Helper()
	m, err := engine.CreateMatch(context.Background(), &types.CreateMatchRequest{
		CandidateID:   "cand-1",
		JobID:         "job-1",
		CompanyID:     "company-1",
		Score:         80,
		InitialStatus: status,
		CreatedBy:     "recruiter-1",
	})
	require.NoError(t, err)
	return m
}

func TestCreateMatch_Defaults(t *testing.T) {
	engine, store, pub := newTestEngine(matching.Options{})

	m, err := engine.CreateMatch(context.Background(), &types.CreateMatchRequest{
		CandidateID: "cand-1",
		JobID:       "job-1",
		CompanyID:   "company-1",
		Score:       72.5,
		CreatedBy:   "recruiter-1",
	})
	require.NoError(t, err)

	assert.NotEmpty(t, m.ID)
	assert.Equal(t, types.StatusSuggested, m.Status)
	assert.Equal(t, 72.5, m.Score)
	assert.Equal(t, 1, m.Version)
	require.Len(t, m.Timeline, 1)
	assert.Equal(t, types.StatusSuggested, m.Timeline[0].Status)
	assert.Equal(t, "Match created", m.Timeline[0].Description)
	assert.Equal(t, "recruiter-1", m.Timeline[0].CreatedBy)
	assert.NotNil(t, m.MatchReasons)
	assert.Equal(t, 1, store.Len())

	events := pub.Events()
	require.Len(t, events, 1)
	assert.Equal(t, matching.EventMatchCreated, events[0].Type)
	assert.Equal(t, m.ID, events[0].MatchID)
}

func TestCreateMatch_Validation(t *testing.T) {
	engine, store, _ := newTestEngine(matching.Options{})

	tests := []struct {
		name  string
		req   *types.CreateMatchRequest
		field string
	}{
		{"nil request", nil, "request"},
		{"missing candidate", &types.CreateMatchRequest{JobID: "j", CompanyID: "c"}, "candidate_id"},
		{"blank job", &types.CreateMatchRequest{CandidateID: "x", JobID: "  ", CompanyID: "c"}, "job_id"},
		{"missing company", &types.CreateMatchRequest{CandidateID: "x", JobID: "j"}, "company_id"},
		{"unknown status", &types.CreateMatchRequest{CandidateID: "x", JobID: "j", CompanyID: "c", InitialStatus: "hired"}, "initial_status"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := engine.CreateMatch(context.Background(), tt.req)
			var verr *matching.ErrValidation
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
	assert.Equal(t, 0, store.Len())
}

func TestCreateMatch_RejectsDuplicate(t *testing.T) {
	engine, _, _ := newTestEngine(matching.Options{})
	req := &types.CreateMatchRequest{CandidateID: "cand-1", JobID: "job-1", CompanyID: "company-1"}

	first, err := engine.CreateMatch(context.Background(), req)
	require.NoError(t, err)

	_, err = engine.CreateMatch(context.Background(), req)
	var dup *matching.ErrDuplicateMatch
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, first.ID, dup.ExistingID)
	assert.Equal(t, matching.KindDuplicate, matching.KindOf(err))
}

func TestCreateMatch_AllowDuplicates(t *testing.T) {
	engine, store, _ := newTestEngine(matching.Options{AllowDuplicates: true})
	req := &types.CreateMatchRequest{CandidateID: "cand-1", JobID: "job-1", CompanyID: "company-1"}

	_, err := engine.CreateMatch(context.Background(), req)
	require.NoError(t, err)
	_, err = engine.CreateMatch(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, 2, store.Len())
}

// The walkthrough a recruiter performs most often: propose, apply, book an
// interview, then undo the interview.
func TestLifecycleScenario(t *testing.T) {
	engine, store, pub := newTestEngine(matching.Options{})
	ctx := context.Background()

	m, err := engine.CreateMatch(ctx, &types.CreateMatchRequest{
		CandidateID:   "cand-1",
		JobID:         "job-1",
		CompanyID:     "company-1",
		InitialStatus: types.StatusPendingProposal,
		CreatedBy:     "recruiter-1",
	})
	require.NoError(t, err)
	require.Len(t, m.Timeline, 1)

	require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{
		Status:  types.StatusApplied,
		ActorID: "recruiter-1",
	}))

	interviewAt := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{
		Status:        types.StatusInterview,
		EventDateTime: &interviewAt,
		Description:   "First round",
		ActorID:       "recruiter-1",
	}))

	got, err := store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusInterview, got.Status)
	require.NotNil(t, got.InterviewDate)
	assert.True(t, got.InterviewDate.Equal(interviewAt))
	require.Len(t, got.Timeline, 3)
	assert.Equal(t, 3, got.Version)

	view, err := engine.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	require.NotNil(t, view.LatestEventDate)
	assert.True(t, view.LatestEventDate.Equal(interviewAt))

	require.NoError(t, engine.DeleteLatestTimelineEntry(ctx, m.ID, got.Timeline[2].ID))

	got, err = store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApplied, got.Status)
	assert.Len(t, got.Timeline, 2)
	assert.Nil(t, got.InterviewDate)

	var kinds []matching.EventType
	for _, e := range pub.Events() {
		kinds = append(kinds, e.Type)
	}
	assert.Equal(t, []matching.EventType{
		matching.EventMatchCreated,
		matching.EventStatusChanged,
		matching.EventStatusChanged,
		matching.EventTimelineReverted,
	}, kinds)
}

func TestUpdateMatchStatus_AppendsEntryAndMovesStatus(t *testing.T) {
	engine, store, pub := newTestEngine(matching.Options{})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusSuggested)

	storeID := "store-9"
	start := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)
	require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{
		Status:    types.StatusApplied,
		Notes:     "sent CV",
		StoreID:   &storeID,
		StartDate: &start,
		ActorID:   "recruiter-2",
	}))

	got, err := store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	require.Len(t, got.Timeline, 2)

	last := got.Timeline[1]
	assert.Equal(t, types.StatusApplied, last.Status)
	assert.Equal(t, "sent CV", last.Notes)
	assert.Equal(t, "recruiter-2", last.CreatedBy)
	assert.Nil(t, last.EventDate)
	assert.Equal(t, last.Status, got.Status)
	assert.Nil(t, got.AppliedDate)
	require.NotNil(t, got.StoreID)
	assert.Equal(t, "store-9", *got.StoreID)
	require.NotNil(t, got.StartDate)
	assert.True(t, got.StartDate.Equal(start))
	assert.True(t, got.UpdatedAt.Equal(last.Timestamp))

	events := pub.Events()
	require.Len(t, events, 2)
	assert.Equal(t, types.StatusSuggested, events[1].FromStatus)
	assert.Equal(t, types.StatusApplied, events[1].ToStatus)
	assert.Equal(t, "recruiter-2", events[1].ActorID)
}

func TestUpdateMatchStatus_SameStatusStillAppends(t *testing.T) {
	engine, store, _ := newTestEngine(matching.Options{})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusInterview)

	first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
	second := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
	for _, d := range []time.Time{first, second} {
		require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{
			Status:        types.StatusInterview,
			EventDateTime: &d,
		}))
	}

	got, err := store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Len(t, got.Timeline, 3)
	require.NotNil(t, got.InterviewDate)
	assert.True(t, got.InterviewDate.Equal(second))
}

func TestUpdateMatchStatus_Errors(t *testing.T) {
	engine, _, _ := newTestEngine(matching.Options{})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusSuggested)

	err := engine.UpdateMatchStatus(ctx, "missing", &types.UpdateStatusRequest{Status: types.StatusApplied})
	assert.Equal(t, matching.KindNotFound, matching.KindOf(err))

	err = engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: "hired"})
	assert.Equal(t, matching.KindValidation, matching.KindOf(err))

	err = engine.UpdateMatchStatus(ctx, m.ID, nil)
	assert.Equal(t, matching.KindValidation, matching.KindOf(err))
}

func TestUpdateMatchStatus_FlowIsAdvisoryByDefault(t *testing.T) {
	engine, store, _ := newTestEngine(matching.Options{})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusRejected)

	require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: types.StatusOffer}))
	got, err := store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusOffer, got.Status)
}

func TestUpdateMatchStatus_EnforceStatusFlow(t *testing.T) {
	engine, store, _ := newTestEngine(matching.Options{EnforceStatusFlow: true})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusSuggested)

	err := engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: types.StatusOffer})
	var invalid *matching.ErrInvalidOperation
	require.ErrorAs(t, err, &invalid)

	got, err := store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusSuggested, got.Status)
	assert.Len(t, got.Timeline, 1)

	require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: types.StatusApplied}))
}

func TestUpdateMatchStatus_RetriesOnVersionConflict(t *testing.T) {
	engine, store, _ := newTestEngine(matching.Options{})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusSuggested)

	// A competing writer lands between the read and the first write.
	raced := false
	store.BeforeUpdate = func(id string) {
		if raced {
			return
		}
		raced = true
		current, err := store.GetMatch(ctx, id)
		require.NoError(t, err)
		current.Version++
		current.Notes = "edited elsewhere"
		store.Put(*current)
	}

	require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: types.StatusApplied}))

	got, err := store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApplied, got.Status)
	assert.Equal(t, "edited elsewhere", got.Notes)
	assert.Len(t, got.Timeline, 2)
	assert.Equal(t, 3, got.Version)
}

func TestUpdateMatchStatus_GivesUpAfterMaxAttempts(t *testing.T) {
	engine, store, _ := newTestEngine(matching.Options{MaxWriteAttempts: 2})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusSuggested)

	store.BeforeUpdate = func(id string) {
		current, err := store.GetMatch(ctx, id)
		require.NoError(t, err)
		current.Version++
		store.Put(*current)
	}

	err := engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: types.StatusApplied})
	var conflict *matching.ErrVersionConflict
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, matching.KindConflict, matching.KindOf(err))
}

func TestUpdateMatchStatus_StoreFailureIsDependencyError(t *testing.T) {
	engine, store, pub := newTestEngine(matching.Options{})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusSuggested)

	store.FailOn[m.ID] = errors.New("connection reset")
	err := engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: types.StatusApplied})
	require.Error(t, err)
	assert.Equal(t, matching.KindDependency, matching.KindOf(err))
	assert.Len(t, pub.Events(), 1)
}

func TestUpdateMatchStatus_PublishFailureDoesNotFail(t *testing.T) {
	engine, store, pub := newTestEngine(matching.Options{})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusSuggested)

	pub.Err = errors.New("broker down")
	require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: types.StatusApplied}))

	got, err := store.GetMatch(ctx, m.ID)
	require.NoError(t, err)
	assert.Equal(t, types.StatusApplied, got.Status)
}

func TestDeleteLatestTimelineEntry(t *testing.T) {
	ctx := context.Background()

	t.Run("only entry", func(t *testing.T) {
		engine, store, _ := newTestEngine(matching.Options{})
		m := createMatch(t, engine, types.StatusSuggested)

		err := engine.DeleteLatestTimelineEntry(ctx, m.ID, m.Timeline[0].ID)
		var invalid *matching.ErrInvalidOperation
		require.ErrorAs(t, err, &invalid)

		got, _ := store.GetMatch(ctx, m.ID)
		assert.Len(t, got.Timeline, 1)
	})

	t.Run("not the latest entry", func(t *testing.T) {
		engine, store, _ := newTestEngine(matching.Options{})
		m := createMatch(t, engine, types.StatusSuggested)
		require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: types.StatusApplied}))

		err := engine.DeleteLatestTimelineEntry(ctx, m.ID, m.Timeline[0].ID)
		assert.Equal(t, matching.KindInvalidOperation, matching.KindOf(err))

		got, _ := store.GetMatch(ctx, m.ID)
		assert.Len(t, got.Timeline, 2)
		assert.Equal(t, types.StatusApplied, got.Status)
	})

	t.Run("unknown entry", func(t *testing.T) {
		engine, _, _ := newTestEngine(matching.Options{})
		m := createMatch(t, engine, types.StatusSuggested)
		require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: types.StatusApplied}))

		err := engine.DeleteLatestTimelineEntry(ctx, m.ID, "nope")
		var notFound *matching.ErrNotFound
		require.ErrorAs(t, err, &notFound)
		assert.Equal(t, "nope", notFound.EntryID)
	})

	t.Run("unknown match", func(t *testing.T) {
		engine, _, _ := newTestEngine(matching.Options{})
		err := engine.DeleteLatestTimelineEntry(ctx, "missing", "entry")
		assert.Equal(t, matching.KindNotFound, matching.KindOf(err))
	})

	t.Run("restores earlier date for repeated status", func(t *testing.T) {
		engine, store, _ := newTestEngine(matching.Options{})
		m := createMatch(t, engine, types.StatusApplied)

		first := time.Date(2025, 3, 1, 10, 0, 0, 0, time.UTC)
		second := time.Date(2025, 3, 8, 10, 0, 0, 0, time.UTC)
		for _, d := range []time.Time{first, second} {
			require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{
				Status:        types.StatusInterview,
				EventDateTime: &d,
			}))
		}

		got, _ := store.GetMatch(ctx, m.ID)
		require.NoError(t, engine.DeleteLatestTimelineEntry(ctx, m.ID, got.Timeline[2].ID))

		got, _ = store.GetMatch(ctx, m.ID)
		assert.Equal(t, types.StatusInterview, got.Status)
		require.NotNil(t, got.InterviewDate)
		assert.True(t, got.InterviewDate.Equal(first))
	})
}

// Deleting the latest entry after any sequence of updates restores the
// status the match had before the last update.
func TestDeleteLatestTimelineEntry_UndoesLastUpdate(t *testing.T) {
	sequences := [][]types.Status{
		{types.StatusApplied},
		{types.StatusApplied, types.StatusDocumentScreening, types.StatusDocumentPassed},
		{types.StatusInterview, types.StatusInterviewPassed, types.StatusInterview},
		{types.StatusRejected, types.StatusSuggested},
	}
	ctx := context.Background()

	for _, seq := range sequences {
		engine, store, _ := newTestEngine(matching.Options{})
		m := createMatch(t, engine, types.StatusSuggested)

		previous := m.Status
		for i, s := range seq {
			if i == len(seq)-1 {
				got, _ := store.GetMatch(ctx, m.ID)
				previous = got.Status
			}
			require.NoError(t, engine.UpdateMatchStatus(ctx, m.ID, &types.UpdateStatusRequest{Status: s}))
		}

		got, _ := store.GetMatch(ctx, m.ID)
		require.Len(t, got.Timeline, len(seq)+1)
		require.NoError(t, engine.DeleteLatestTimelineEntry(ctx, m.ID, got.Timeline[len(seq)].ID))

		got, _ = store.GetMatch(ctx, m.ID)
		assert.Equal(t, previous, got.Status, "sequence %v", seq)
		assert.Len(t, got.Timeline, len(seq))
	}
}

func TestDeleteMatch(t *testing.T) {
	ctx := context.Background()

	t.Run("suggested match is deleted", func(t *testing.T) {
		engine, store, pub := newTestEngine(matching.Options{})
		m := createMatch(t, engine, types.StatusSuggested)

		require.NoError(t, engine.DeleteMatch(ctx, m.ID))
		assert.Equal(t, 0, store.Len())
		events := pub.Events()
		assert.Equal(t, matching.EventMatchDeleted, events[len(events)-1].Type)
	})

	for _, s := range types.AllStatuses {
		if s == types.StatusSuggested {
			continue
		}
		t.Run("refuses "+string(s), func(t *testing.T) {
			engine, store, _ := newTestEngine(matching.Options{})
			m := createMatch(t, engine, s)

			err := engine.DeleteMatch(ctx, m.ID)
			var policy *matching.ErrPolicyViolation
			require.ErrorAs(t, err, &policy)
			assert.Equal(t, s, policy.Status)
			assert.Equal(t, 1, store.Len())
		})
	}

	t.Run("missing match", func(t *testing.T) {
		engine, _, _ := newTestEngine(matching.Options{})
		err := engine.DeleteMatch(ctx, "missing")
		assert.Equal(t, matching.KindNotFound, matching.KindOf(err))
	})

	t.Run("status moved on before the delete lands", func(t *testing.T) {
		engine, store, pub := newTestEngine(matching.Options{})
		m := createMatch(t, engine, types.StatusSuggested)

		var once sync.Once
		store.BeforeDelete = func(id string) {
			once.Do(func() {
				require.NoError(t, engine.UpdateMatchStatus(ctx, id, &types.UpdateStatusRequest{
					Status:  types.StatusApplied,
					ActorID: "recruiter-2",
				}))
			})
		}

		err := engine.DeleteMatch(ctx, m.ID)
		var policy *matching.ErrPolicyViolation
		require.ErrorAs(t, err, &policy)
		assert.Equal(t, types.StatusApplied, policy.Status)

		require.Equal(t, 1, store.Len())
		got, err := engine.GetMatch(ctx, m.ID)
		require.NoError(t, err)
		assert.Len(t, got.Timeline, 2)
		for _, e := range pub.Events() {
			assert.NotEqual(t, matching.EventMatchDeleted, e.Type)
		}
	})

	t.Run("retries a conflict that leaves the match suggested", func(t *testing.T) {
		engine, store, _ := newTestEngine(matching.Options{})
		m := createMatch(t, engine, types.StatusSuggested)
		hired := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

		var once sync.Once
		store.BeforeDelete = func(id string) {
			once.Do(func() {
				require.NoError(t, engine.UpdateEmployment(ctx, id, &types.UpdateEmploymentRequest{
					StartDate: &hired,
				}))
			})
		}

		require.NoError(t, engine.DeleteMatch(ctx, m.ID))
		assert.Equal(t, 0, store.Len())
	})

	t.Run("gives up after max attempts", func(t *testing.T) {
		engine, store, _ := newTestEngine(matching.Options{MaxWriteAttempts: 2})
		m := createMatch(t, engine, types.StatusSuggested)
		hired := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

		store.BeforeDelete = func(id string) {
			require.NoError(t, engine.UpdateEmployment(ctx, id, &types.UpdateEmploymentRequest{
				StartDate: &hired,
			}))
		}

		err := engine.DeleteMatch(ctx, m.ID)
		assert.Equal(t, matching.KindConflict, matching.KindOf(err))
		assert.Equal(t, 1, store.Len())
	})
}

func TestCreateMatch_StoreRejectsRacingDuplicate(t *testing.T) {
	engine, store, pub := newTestEngine(matching.Options{})
	store.UniquePairs = true
	ctx := context.Background()

	// Another writer lands the same pair after the engine's own check.
	var once sync.Once
	store.BeforeCreate = func(m *types.Match) {
		once.Do(func() {
			store.Put(types.Match{
				ID:          "racer",
				CandidateID: m.CandidateID,
				JobID:       m.JobID,
				CompanyID:   m.CompanyID,
				Status:      types.StatusSuggested,
				Version:     1,
			})
		})
	}

	_, err := engine.CreateMatch(ctx, &types.CreateMatchRequest{
		CandidateID: "cand-1",
		JobID:       "job-1",
		CompanyID:   "company-1",
	})
	var dup *matching.ErrDuplicateMatch
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "racer", dup.ExistingID)
	assert.Equal(t, 1, store.Len())
	assert.Empty(t, pub.Events())
}

func TestUpdateEmployment(t *testing.T) {
	engine, store, _ := newTestEngine(matching.Options{})
	ctx := context.Background()
	m := createMatch(t, engine, types.StatusOfferAccepted)

	start := time.Date(2025, 5, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2025, 4, 1, 0, 0, 0, 0, time.UTC)

	err := engine.UpdateEmployment(ctx, m.ID, &types.UpdateEmploymentRequest{StartDate: &start, EndDate: &end})
	assert.Equal(t, matching.KindValidation, matching.KindOf(err))

	err = engine.UpdateEmployment(ctx, m.ID, &types.UpdateEmploymentRequest{})
	assert.Equal(t, matching.KindValidation, matching.KindOf(err))

	require.NoError(t, engine.UpdateEmployment(ctx, m.ID, &types.UpdateEmploymentRequest{StartDate: &start}))
	got, _ := store.GetMatch(ctx, m.ID)
	require.NotNil(t, got.StartDate)
	assert.True(t, got.StartDate.Equal(start))
	assert.Nil(t, got.EndDate)
	assert.Len(t, got.Timeline, 1)
	assert.Equal(t, types.StatusOfferAccepted, got.Status)
}
