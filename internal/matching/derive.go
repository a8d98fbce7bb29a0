package matching

import (
	"time"

	"github.com/jonathan/recruit-desk/internal/types"
)

// datedStatuses are the statuses with a denormalized date field on Match
var datedStatuses = []types.Status{
	types.StatusApplied,
	types.StatusInterview,
	types.StatusOffer,
	types.StatusOfferAccepted,
	types.StatusRejected,
}

// storedDateFallback is the order in which stored date fields are consulted
// when the timeline carries no event date at all.
var storedDateFallback = []types.Status{
	types.StatusOfferAccepted,
	types.StatusOffer,
	types.StatusInterview,
	types.StatusApplied,
	types.StatusRejected,
}

// HasDateField reports whether a status has a denormalized date on Match.
func HasDateField(s types.Status) bool {
	for _, d := range datedStatuses {
		if d == s {
			return true
		}
	}
	return false
}

// later reports whether entry i of the timeline was recorded after entry j.
// Equal timestamps fall back to insertion order.
func later(timeline []types.TimelineEntry, i, j int) bool {
	ti, tj := timeline[i].Timestamp, timeline[j].Timestamp
	if ti.Equal(tj) {
		return i > j
	}
	return ti.After(tj)
}

// LatestEntry returns the index of the chronologically latest entry and a
// pointer to it, or -1 and nil for an empty timeline.
func LatestEntry(timeline []types.TimelineEntry) (int, *types.TimelineEntry) {
	if len(timeline) == 0 {
		return -1, nil
	}
	best := 0
	for i := 1; i < len(timeline); i++ {
		if later(timeline, i, best) {
			best = i
		}
	}
	return best, &timeline[best]
}

// latestMatching returns the most recent entry satisfying keep.
func latestMatching(timeline []types.TimelineEntry, keep func(*types.TimelineEntry) bool) *types.TimelineEntry {
	best := -1
	for i := range timeline {
		if !keep(&timeline[i]) {
			continue
		}
		if best < 0 || later(timeline, i, best) {
			best = i
		}
	}
	if best < 0 {
		return nil
	}
	return &timeline[best]
}

// LatestEventDate resolves the date shown for a match: the latest event date
// recorded against the current status, else the latest event date of any
// entry, else a date already stored on the match.
func LatestEventDate(m *types.Match) *time.Time {
	if m == nil {
		return nil
	}

	if e := latestMatching(m.Timeline, func(e *types.TimelineEntry) bool {
		return e.Status == m.Status && e.EventDate != nil
	}); e != nil {
		return copyTime(e.EventDate)
	}

	if e := latestMatching(m.Timeline, func(e *types.TimelineEntry) bool {
		return e.EventDate != nil
	}); e != nil {
		return copyTime(e.EventDate)
	}

	if d := m.DateFor(m.Status); d != nil {
		return copyTime(d)
	}
	for _, s := range storedDateFallback {
		if d := m.DateFor(s); d != nil {
			return copyTime(d)
		}
	}
	return nil
}

// DeriveDates computes every denormalized status date from the timeline.
// Statuses without a dated entry map to nil.
func DeriveDates(timeline []types.TimelineEntry) map[types.Status]*time.Time {
	dates := make(map[types.Status]*time.Time, len(datedStatuses))
	for _, s := range datedStatuses {
		status := s
		e := latestMatching(timeline, func(e *types.TimelineEntry) bool {
			return e.Status == status && e.EventDate != nil
		})
		if e != nil {
			dates[s] = copyTime(e.EventDate)
		} else {
			dates[s] = nil
		}
	}
	return dates
}

func copyTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}
