package matching

import (
	"context"
	"fmt"
	"slices"
	"time"

	"github.com/jonathan/recruit-desk/internal/types"
)

const (
	defaultListLimit = 50
	maxListLimit     = 500
)

// MatchView is a match plus the fields derived for display
type MatchView struct {
	types.Match
	LatestEventDate *time.Time     `json:"latest_event_date,omitempty"`
	NextStatuses    []types.Status `json:"next_statuses"`
}

// NewView derives the display fields of m.
func NewView(m types.Match) MatchView {
	return MatchView{
		Match:           m,
		LatestEventDate: LatestEventDate(&m),
		NextStatuses:    NextStatuses(m.Status),
	}
}

// SortField selects the list comparator
type SortField string

// Sort fields
const (
	SortByStatus   SortField = "status"
	SortByPipeline SortField = "pipeline"
)

// ListOptions carries filtering, sorting and pagination for ListMatches.
type ListOptions struct {
	CandidateID string
	JobID       string
	CompanyID   string
	Statuses    []types.Status
	Sort        SortField
	Order       SortOrder
	Limit       int
	Offset      int
}

// MatchPage is one page of a match listing
type MatchPage struct {
	Matches []MatchView `json:"matches"`
	Total   int         `json:"total"`
	Limit   int         `json:"limit"`
	Offset  int         `json:"offset"`
}

// GetMatch returns a match with its derived fields.
func (e *Engine) GetMatch(ctx context.Context, matchID string) (*MatchView, error) {
	m, err := e.load(ctx, matchID)
	if err != nil {
		return nil, err
	}
	view := NewView(*m)
	return &view, nil
}

// ListMatches filters, sorts and paginates matches.
func (e *Engine) ListMatches(ctx context.Context, opts ListOptions) (*MatchPage, error) {
	for _, s := range opts.Statuses {
		if !s.Valid() {
			return nil, &ErrValidation{Field: "status", Message: fmt.Sprintf("unknown status %q", s)}
		}
	}

	var all []types.Match
	var err error
	if opts.CandidateID != "" {
		all, err = e.store.ListMatchesByCandidate(ctx, opts.CandidateID)
	} else {
		all, err = e.store.ListMatches(ctx)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list matches: %w", err)
	}

	filtered := make([]types.Match, 0, len(all))
	for _, m := range all {
		if opts.JobID != "" && m.JobID != opts.JobID {
			continue
		}
		if opts.CompanyID != "" && m.CompanyID != opts.CompanyID {
			continue
		}
		if len(opts.Statuses) > 0 && !slices.Contains(opts.Statuses, m.Status) {
			continue
		}
		filtered = append(filtered, m)
	}

	switch opts.Sort {
	case SortByPipeline:
		SortMatches(filtered, CompareByPipeline)
	default:
		SortMatches(filtered, CompareByStatus(opts.Order))
	}

	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	limit = min(limit, maxListLimit)
	offset := max(opts.Offset, 0)

	page := &MatchPage{
		Matches: []MatchView{},
		Total:   len(filtered),
		Limit:   limit,
		Offset:  offset,
	}
	if offset >= len(filtered) {
		return page, nil
	}
	end := min(offset+limit, len(filtered))
	for _, m := range filtered[offset:end] {
		page.Matches = append(page.Matches, NewView(m))
	}
	return page, nil
}
