package matching

import (
	"cmp"
	"slices"

	"github.com/jonathan/recruit-desk/internal/types"
)

// SortOrder is the direction of a status sort
type SortOrder string

// Sort orders
const (
	OrderAsc  SortOrder = "asc"
	OrderDesc SortOrder = "desc"
)

// Comparator orders two matches, cmp-style.
type Comparator func(a, b types.Match) int

// CompareByStatus orders by status and breaks ties by UpdatedAt, newest first.
// Ascending uses Priority; descending uses ActivityRank so terminal matches
// sink to the bottom in both directions.
func CompareByStatus(order SortOrder) Comparator {
	return func(a, b types.Match) int {
		var c int
		if order == OrderDesc {
			c = cmp.Compare(ActivityRank(b.Status), ActivityRank(a.Status))
		} else {
			c = cmp.Compare(Priority(a.Status), Priority(b.Status))
		}
		if c != 0 {
			return c
		}
		return b.UpdatedAt.Compare(a.UpdatedAt)
	}
}

// CompareByPipeline orders by Priority ascending, oldest match first on ties.
func CompareByPipeline(a, b types.Match) int {
	if c := cmp.Compare(Priority(a.Status), Priority(b.Status)); c != 0 {
		return c
	}
	return a.CreatedAt.Compare(b.CreatedAt)
}

// SortMatches sorts in place. Equal matches keep their relative order.
func SortMatches(matches []types.Match, compare Comparator) {
	slices.SortStableFunc(matches, compare)
}
