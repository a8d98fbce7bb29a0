package matching

import (
	"context"
	"errors"
	"log"
	"time"

	"github.com/jonathan/recruit-desk/internal/types"
)

// Store persists matches and their timelines.
//
// GetMatch returns (nil, nil) when the match does not exist. UpdateMatch must
// apply a patch atomically and, when ExpectedVersion is non-zero, fail with
// *ErrVersionConflict if the stored version differs. DeleteMatch follows the
// same rule for expectedVersion.
//
// CreateMatch may return *ErrDuplicateMatch when the store itself guards
// the (candidate, job) pair.
type Store interface {
	GetMatch(ctx context.Context, id string) (*types.Match, error)
	ListMatchesByCandidate(ctx context.Context, candidateID string) ([]types.Match, error)
	ListMatches(ctx context.Context) ([]types.Match, error)
	CreateMatch(ctx context.Context, m *types.Match) (*types.Match, error)
	UpdateMatch(ctx context.Context, id string, patch *MatchPatch) error
	DeleteMatch(ctx context.Context, id string, expectedVersion int) error
}

// MatchPatch is a partial update of a match. Nil fields are left untouched.
type MatchPatch struct {
	Status        *types.Status
	AppendEntry   *types.TimelineEntry
	RemoveEntryID string
	// SetDates overwrites the date field of each status key; a nil value clears it.
	SetDates  map[types.Status]*time.Time
	StoreID   *string
	StartDate *time.Time
	EndDate   *time.Time

	ExpectedVersion int
	UpdatedAt       time.Time
}

// Apply applies the patch to an in-memory match, bumping its version.
// Stores that keep whole documents use it to stay consistent with the
// relational implementation.
func (p *MatchPatch) Apply(m *types.Match) {
	if p.RemoveEntryID != "" {
		kept := m.Timeline[:0:0]
		for _, e := range m.Timeline {
			if e.ID != p.RemoveEntryID {
				kept = append(kept, e)
			}
		}
		m.Timeline = kept
	}
	if p.AppendEntry != nil {
		m.Timeline = append(m.Timeline, *p.AppendEntry)
	}
	if p.Status != nil {
		m.Status = *p.Status
	}
	for s, d := range p.SetDates {
		m.SetDateFor(s, copyTime(d))
	}
	if p.StoreID != nil {
		id := *p.StoreID
		m.StoreID = &id
	}
	if p.StartDate != nil {
		m.StartDate = copyTime(p.StartDate)
	}
	if p.EndDate != nil {
		m.EndDate = copyTime(p.EndDate)
	}
	if !p.UpdatedAt.IsZero() {
		m.UpdatedAt = p.UpdatedAt
	}
	m.Version++
}

// EventType names a lifecycle event
type EventType string

// Lifecycle events
const (
	EventMatchCreated      EventType = "match.created"
	EventStatusChanged     EventType = "match.status_changed"
	EventTimelineReverted  EventType = "match.timeline_reverted"
	EventMatchDeleted      EventType = "match.deleted"
	EventEmploymentUpdated EventType = "match.employment_updated"
)

// Event describes a completed lifecycle operation for downstream consumers
// such as calendar offers, chat notifications and the message bus.
type Event struct {
	Type        EventType    `json:"type"`
	MatchID     string       `json:"match_id"`
	CandidateID string       `json:"candidate_id"`
	JobID       string       `json:"job_id"`
	CompanyID   string       `json:"company_id"`
	FromStatus  types.Status `json:"from_status,omitempty"`
	ToStatus    types.Status `json:"to_status,omitempty"`
	EventDate   *time.Time   `json:"event_date,omitempty"`
	ActorID     string       `json:"actor_id,omitempty"`
	OccurredAt  time.Time    `json:"occurred_at"`
}

// Publisher receives lifecycle events after the store write succeeded.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// FanOut publishes to every publisher and joins their errors.
type FanOut []Publisher

// Publish implements Publisher.
func (f FanOut) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if p == nil {
			continue
		}
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// publish sends the event and logs failures. Side effects never fail the
// operation that triggered them.
func (e *Engine) publish(ctx context.Context, event Event) {
	if e.publisher == nil {
		return
	}
	if err := e.publisher.Publish(ctx, event); err != nil {
		log.Printf("[MATCH] Failed to publish %s for match %s: %v", event.Type, event.MatchID, err)
	}
}
