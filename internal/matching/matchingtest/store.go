// Package matchingtest provides in-memory collaborators for tests of code
// built on the matching engine.
package matchingtest

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/types"
)

// MemoryStore is a concurrency-safe matching.Store kept in memory.
// Set FailOn to make every call for a given match id fail with Err.
type MemoryStore struct {
	mu      sync.Mutex
	matches map[string]*types.Match
	order   []string

	FailOn map[string]error
	// UniquePairs makes CreateMatch reject a second match for the same
	// candidate and job, like the PostgreSQL store.
	UniquePairs bool

	// Hooks run before the store lock is taken.
	BeforeCreate func(m *types.Match)
	BeforeUpdate func(id string)
	BeforeDelete func(id string)
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		matches: make(map[string]*types.Match),
		FailOn:  make(map[string]error),
	}
}

// GetMatch implements matching.Store.
func (s *MemoryStore) GetMatch(_ context.Context, id string) (*types.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailOn[id]; err != nil {
		return nil, err
	}
	m, ok := s.matches[id]
	if !ok {
		return nil, nil
	}
	return clone(m), nil
}

// ListMatchesByCandidate implements matching.Store.
func (s *MemoryStore) ListMatchesByCandidate(_ context.Context, candidateID string) ([]types.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []types.Match
	for _, id := range s.order {
		if m := s.matches[id]; m.CandidateID == candidateID {
			out = append(out, *clone(m))
		}
	}
	return out, nil
}

// ListMatches implements matching.Store.
func (s *MemoryStore) ListMatches(_ context.Context) ([]types.Match, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]types.Match, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, *clone(s.matches[id]))
	}
	return out, nil
}

// CreateMatch implements matching.Store.
func (s *MemoryStore) CreateMatch(_ context.Context, m *types.Match) (*types.Match, error) {
	if s.BeforeCreate != nil {
		s.BeforeCreate(m)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.UniquePairs {
		for _, id := range s.order {
			if e := s.matches[id]; e.CandidateID == m.CandidateID && e.JobID == m.JobID {
				return nil, &matching.ErrDuplicateMatch{CandidateID: m.CandidateID, JobID: m.JobID, ExistingID: id}
			}
		}
	}

	stored := clone(m)
	stored.ID = uuid.NewString()
	now := time.Now().UTC()
	if stored.CreatedAt.IsZero() {
		stored.CreatedAt = now
	}
	stored.UpdatedAt = stored.CreatedAt
	if stored.Version == 0 {
		stored.Version = 1
	}

	s.matches[stored.ID] = stored
	s.order = append(s.order, stored.ID)
	return clone(stored), nil
}

// UpdateMatch implements matching.Store.
func (s *MemoryStore) UpdateMatch(_ context.Context, id string, patch *matching.MatchPatch) error {
	if s.BeforeUpdate != nil {
		s.BeforeUpdate(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailOn[id]; err != nil {
		return err
	}
	m, ok := s.matches[id]
	if !ok {
		return &matching.ErrNotFound{MatchID: id}
	}
	if patch.ExpectedVersion != 0 && patch.ExpectedVersion != m.Version {
		return &matching.ErrVersionConflict{MatchID: id, Expected: patch.ExpectedVersion}
	}

	updated := clone(m)
	patch.Apply(updated)
	s.matches[id] = updated
	return nil
}

// DeleteMatch implements matching.Store.
func (s *MemoryStore) DeleteMatch(_ context.Context, id string, expectedVersion int) error {
	if s.BeforeDelete != nil {
		s.BeforeDelete(id)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.FailOn[id]; err != nil {
		return err
	}
	m, ok := s.matches[id]
	if !ok {
		return &matching.ErrNotFound{MatchID: id}
	}
	if expectedVersion != 0 && expectedVersion != m.Version {
		return &matching.ErrVersionConflict{MatchID: id, Expected: expectedVersion}
	}
	delete(s.matches, id)
	s.order = slices.DeleteFunc(s.order, func(v string) bool { return v == id })
	return nil
}

// Len returns the number of stored matches.
func (s *MemoryStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.matches)
}

// Put stores m as-is, replacing any match with the same id.
func (s *MemoryStore) Put(m types.Match) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.matches[m.ID]; !ok {
		s.order = append(s.order, m.ID)
	}
	s.matches[m.ID] = clone(&m)
}

// RecordingPublisher collects published events.
type RecordingPublisher struct {
	mu     sync.Mutex
	events []matching.Event
	Err    error
}

// Publish implements matching.Publisher.
func (p *RecordingPublisher) Publish(_ context.Context, event matching.Event) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, event)
	return p.Err
}

// Events returns a copy of the events published so far.
func (p *RecordingPublisher) Events() []matching.Event {
	p.mu.Lock()
	defer p.mu.Unlock()
	return slices.Clone(p.events)
}

func clone(m *types.Match) *types.Match {
	c := *m
	c.MatchReasons = slices.Clone(m.MatchReasons)
	c.Timeline = make([]types.TimelineEntry, len(m.Timeline))
	for i, e := range m.Timeline {
		e.EventDate = copyTime(e.EventDate)
		c.Timeline[i] = e
	}
	if m.StoreID != nil {
		id := *m.StoreID
		c.StoreID = &id
	}
	c.AppliedDate = copyTime(m.AppliedDate)
	c.InterviewDate = copyTime(m.InterviewDate)
	c.OfferDate = copyTime(m.OfferDate)
	c.AcceptedDate = copyTime(m.AcceptedDate)
	c.RejectedDate = copyTime(m.RejectedDate)
	c.StartDate = copyTime(m.StartDate)
	c.EndDate = copyTime(m.EndDate)
	return &c
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
