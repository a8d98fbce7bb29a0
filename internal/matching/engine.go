package matching

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/recruit-desk/internal/types"
)

const (
	defaultBulkConcurrency  = 8
	defaultMaxWriteAttempts = 3

	defaultCreateDescription = "Match created"
	bulkWithdrawalNote       = "bulk withdrawal"
)

// Options tunes engine behavior
type Options struct {
	// EnforceStatusFlow rejects transitions that StatusFlow does not list.
	EnforceStatusFlow bool
	// AllowDuplicates permits several matches for the same candidate and job.
	AllowDuplicates bool
	// BulkConcurrency bounds how many matches a bulk operation updates at once.
	BulkConcurrency int
	// MaxWriteAttempts bounds retries after a version conflict.
	MaxWriteAttempts int
}

// Engine applies lifecycle operations to matches held in a Store.
type Engine struct {
	store     Store
	publisher Publisher
	opts      Options

	now   func() time.Time
	newID func() string
}

// NewEngine creates an engine. publisher may be nil.
func NewEngine(store Store, publisher Publisher, opts Options) *Engine {
	if opts.BulkConcurrency <= 0 {
		opts.BulkConcurrency = defaultBulkConcurrency
	}
	if opts.MaxWriteAttempts <= 0 {
		opts.MaxWriteAttempts = defaultMaxWriteAttempts
	}
	return &Engine{
		store:     store,
		publisher: publisher,
		opts:      opts,
		now:       func() time.Time { return time.Now().UTC() },
		newID:     uuid.NewString,
	}
}

// CreateMatch proposes a new match seeded with a single timeline entry.
func (e *Engine) CreateMatch(ctx context.Context, req *types.CreateMatchRequest) (*types.Match, error) {
	if req == nil {
		return nil, &ErrValidation{Field: "request", Message: "is required"}
	}

	candidateID := strings.TrimSpace(req.CandidateID)
	jobID := strings.TrimSpace(req.JobID)
	companyID := strings.TrimSpace(req.CompanyID)
	switch {
	case candidateID == "":
		return nil, &ErrValidation{Field: "candidate_id", Message: "is required"}
	case jobID == "":
		return nil, &ErrValidation{Field: "job_id", Message: "is required"}
	case companyID == "":
		return nil, &ErrValidation{Field: "company_id", Message: "is required"}
	}

	status := req.InitialStatus
	if status == "" {
		status = types.StatusSuggested
	}
	if !status.Valid() {
		return nil, &ErrValidation{Field: "initial_status", Message: fmt.Sprintf("unknown status %q", status)}
	}

	if !e.opts.AllowDuplicates {
		existing, err := e.store.ListMatchesByCandidate(ctx, candidateID)
		if err != nil {
			return nil, fmt.Errorf("failed to check existing matches: %w", err)
		}
		for _, m := range existing {
			if m.JobID == jobID {
				return nil, &ErrDuplicateMatch{CandidateID: candidateID, JobID: jobID, ExistingID: m.ID}
			}
		}
	}

	description := req.Description
	if description == "" {
		description = defaultCreateDescription
	}

	now := e.now()
	m := &types.Match{
		CandidateID:  candidateID,
		JobID:        jobID,
		CompanyID:    companyID,
		Status:       status,
		Score:        req.Score,
		MatchReasons: req.MatchReasons,
		Timeline: []types.TimelineEntry{{
			ID:          e.newID(),
			Status:      status,
			Timestamp:   now,
			Description: description,
			CreatedBy:   req.CreatedBy,
		}},
		Notes:     req.Notes,
		CreatedBy: req.CreatedBy,
		CreatedAt: now,
		UpdatedAt: now,
		Version:   1,
	}
	if m.MatchReasons == nil {
		m.MatchReasons = []types.MatchReason{}
	}

	created, err := e.store.CreateMatch(ctx, m)
	if err != nil {
		var dup *ErrDuplicateMatch
		if errors.As(err, &dup) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to create match: %w", err)
	}

	e.publish(ctx, Event{
		Type:        EventMatchCreated,
		MatchID:     created.ID,
		CandidateID: created.CandidateID,
		JobID:       created.JobID,
		CompanyID:   created.CompanyID,
		ToStatus:    created.Status,
		ActorID:     req.CreatedBy,
		OccurredAt:  now,
	})

	return created, nil
}

// UpdateMatchStatus appends a timeline entry for the new status and moves
// the match to it in a single store write.
func (e *Engine) UpdateMatchStatus(ctx context.Context, matchID string, req *types.UpdateStatusRequest) error {
	if req == nil {
		return &ErrValidation{Field: "request", Message: "is required"}
	}
	if !req.Status.Valid() {
		return &ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status %q", req.Status)}
	}

	var entry types.TimelineEntry
	before, err := e.mutate(ctx, matchID, func(m *types.Match) (*MatchPatch, error) {
		if e.opts.EnforceStatusFlow && !CanTransition(m.Status, req.Status) {
			return nil, &ErrInvalidOperation{
				MatchID: matchID,
				Reason:  fmt.Sprintf("transition from %s to %s is not allowed", m.Status, req.Status),
			}
		}

		now := e.now()
		entry = types.TimelineEntry{
			ID:          e.newID(),
			Status:      req.Status,
			Timestamp:   now,
			EventDate:   copyTime(req.EventDateTime),
			Description: req.Description,
			Notes:       req.Notes,
			CreatedBy:   req.ActorID,
		}

		status := req.Status
		patch := &MatchPatch{
			Status:          &status,
			AppendEntry:     &entry,
			StoreID:         req.StoreID,
			StartDate:       copyTime(req.StartDate),
			EndDate:         copyTime(req.EndDate),
			ExpectedVersion: m.Version,
			UpdatedAt:       now,
		}
		if entry.EventDate != nil && HasDateField(status) {
			timeline := append(slices.Clone(m.Timeline), entry)
			patch.SetDates = map[types.Status]*time.Time{
				status: DeriveDates(timeline)[status],
			}
		}
		return patch, nil
	})
	if err != nil {
		return err
	}

	e.publish(ctx, Event{
		Type:        EventStatusChanged,
		MatchID:     before.ID,
		CandidateID: before.CandidateID,
		JobID:       before.JobID,
		CompanyID:   before.CompanyID,
		FromStatus:  before.Status,
		ToStatus:    entry.Status,
		EventDate:   entry.EventDate,
		ActorID:     req.ActorID,
		OccurredAt:  entry.Timestamp,
	})
	return nil
}

// DeleteLatestTimelineEntry undoes the most recent status change. Only the
// chronologically latest entry may be removed and the sole entry never can.
func (e *Engine) DeleteLatestTimelineEntry(ctx context.Context, matchID, entryID string) error {
	var removed types.TimelineEntry
	var restored types.Status
	var now time.Time

	before, err := e.mutate(ctx, matchID, func(m *types.Match) (*MatchPatch, error) {
		if len(m.Timeline) <= 1 {
			return nil, &ErrInvalidOperation{MatchID: matchID, Reason: "the only timeline entry cannot be deleted"}
		}

		idx, latest := LatestEntry(m.Timeline)
		if latest.ID != entryID {
			if !slices.ContainsFunc(m.Timeline, func(e types.TimelineEntry) bool { return e.ID == entryID }) {
				return nil, &ErrNotFound{MatchID: matchID, EntryID: entryID}
			}
			return nil, &ErrInvalidOperation{MatchID: matchID, Reason: "only the latest timeline entry can be deleted"}
		}

		remaining := slices.Delete(slices.Clone(m.Timeline), idx, idx+1)
		_, tip := LatestEntry(remaining)

		removed = *latest
		restored = tip.Status
		now = e.now()

		patch := &MatchPatch{
			Status:          &restored,
			RemoveEntryID:   entryID,
			ExpectedVersion: m.Version,
			UpdatedAt:       now,
		}
		if removed.EventDate != nil && HasDateField(removed.Status) {
			patch.SetDates = map[types.Status]*time.Time{
				removed.Status: DeriveDates(remaining)[removed.Status],
			}
		}
		return patch, nil
	})
	if err != nil {
		return err
	}

	e.publish(ctx, Event{
		Type:        EventTimelineReverted,
		MatchID:     before.ID,
		CandidateID: before.CandidateID,
		JobID:       before.JobID,
		CompanyID:   before.CompanyID,
		FromStatus:  removed.Status,
		ToStatus:    restored,
		OccurredAt:  now,
	})
	return nil
}

// DeleteMatch permanently removes a match. Only untouched proposals
// (status suggested) may be deleted.
func (e *Engine) DeleteMatch(ctx context.Context, matchID string) error {
	for attempt := 1; ; attempt++ {
		m, err := e.load(ctx, matchID)
		if err != nil {
			return err
		}
		if m.Status != types.StatusSuggested {
			return &ErrPolicyViolation{
				MatchID: matchID,
				Status:  m.Status,
				Reason:  "only proposals not yet acted upon may be deleted",
			}
		}

		// The delete only lands on the version the policy was checked against.
		err = e.store.DeleteMatch(ctx, matchID, m.Version)
		if err == nil {
			e.publish(ctx, Event{
				Type:        EventMatchDeleted,
				MatchID:     m.ID,
				CandidateID: m.CandidateID,
				JobID:       m.JobID,
				CompanyID:   m.CompanyID,
				FromStatus:  m.Status,
				OccurredAt:  e.now(),
			})
			return nil
		}

		var conflict *ErrVersionConflict
		if errors.As(err, &conflict) {
			if attempt < e.opts.MaxWriteAttempts {
				log.Printf("[MATCH] Version conflict deleting %s, retrying (%d/%d)", matchID, attempt, e.opts.MaxWriteAttempts)
				continue
			}
			return err
		}

		var notFound *ErrNotFound
		if errors.As(err, &notFound) {
			return err
		}
		return fmt.Errorf("failed to delete match: %w", err)
	}
}

// UpdateEmployment sets the post-hire employment window without touching the
// timeline.
func (e *Engine) UpdateEmployment(ctx context.Context, matchID string, req *types.UpdateEmploymentRequest) error {
	if req == nil || (req.StartDate == nil && req.EndDate == nil) {
		return &ErrValidation{Field: "start_date", Message: "start_date or end_date is required"}
	}
	if req.StartDate != nil && req.EndDate != nil && req.EndDate.Before(*req.StartDate) {
		return &ErrValidation{Field: "end_date", Message: "must not be before start_date"}
	}

	var now time.Time
	before, err := e.mutate(ctx, matchID, func(m *types.Match) (*MatchPatch, error) {
		now = e.now()
		return &MatchPatch{
			StartDate:       copyTime(req.StartDate),
			EndDate:         copyTime(req.EndDate),
			ExpectedVersion: m.Version,
			UpdatedAt:       now,
		}, nil
	})
	if err != nil {
		return err
	}

	e.publish(ctx, Event{
		Type:        EventEmploymentUpdated,
		MatchID:     before.ID,
		CandidateID: before.CandidateID,
		JobID:       before.JobID,
		CompanyID:   before.CompanyID,
		ToStatus:    before.Status,
		OccurredAt:  now,
	})
	return nil
}

// load reads a match, converting a missing record into *ErrNotFound.
func (e *Engine) load(ctx context.Context, matchID string) (*types.Match, error) {
	m, err := e.store.GetMatch(ctx, matchID)
	if err != nil {
		return nil, fmt.Errorf("failed to get match %s: %w", matchID, err)
	}
	if m == nil {
		return nil, &ErrNotFound{MatchID: matchID}
	}
	return m, nil
}

// mutate reads the match, builds a patch from it and writes the patch with
// an expected version. Version conflicts re-read and rebuild the patch.
// It returns the match as it was read before the successful write.
func (e *Engine) mutate(ctx context.Context, matchID string, build func(m *types.Match) (*MatchPatch, error)) (*types.Match, error) {
	for attempt := 1; ; attempt++ {
		m, err := e.load(ctx, matchID)
		if err != nil {
			return nil, err
		}

		patch, err := build(m)
		if err != nil {
			return nil, err
		}

		err = e.store.UpdateMatch(ctx, matchID, patch)
		if err == nil {
			return m, nil
		}

		var conflict *ErrVersionConflict
		if errors.As(err, &conflict) {
			if attempt < e.opts.MaxWriteAttempts {
				log.Printf("[MATCH] Version conflict on %s, retrying (%d/%d)", matchID, attempt, e.opts.MaxWriteAttempts)
				continue
			}
			return nil, err
		}

		var notFound *ErrNotFound
		if errors.As(err, &notFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to update match %s: %w", matchID, err)
	}
}
