// Package matching implements the lifecycle of candidate-to-job matches:
// status transitions, the timeline history, derived dates and list ordering.
package matching

import (
	"github.com/jonathan/recruit-desk/internal/types"
)

// terminalPriority is shared by rejected and withdrawn in ascending contexts
const terminalPriority = 9

var priorities = map[types.Status]int{
	types.StatusPendingProposal:   0,
	types.StatusSuggested:         1,
	types.StatusApplied:           2,
	types.StatusDocumentScreening: 3,
	types.StatusDocumentPassed:    4,
	types.StatusInterview:         5,
	types.StatusInterviewPassed:   6,
	types.StatusOffer:             7,
	types.StatusOfferAccepted:     8,
	types.StatusRejected:          terminalPriority,
	types.StatusWithdrawn:         terminalPriority,
}

// Priority returns the pipeline position of a status, ascending from
// pending_proposal. Rejected and withdrawn share the last position.
// Unknown statuses sort after everything else.
func Priority(s types.Status) int {
	if p, ok := priorities[s]; ok {
		return p
	}
	return terminalPriority + 1
}

// ActivityRank is the descending-context ordering: the further a live match
// has progressed the higher its rank, and terminal matches rank lowest.
func ActivityRank(s types.Status) int {
	if s.Terminal() {
		return 0
	}
	if p, ok := priorities[s]; ok {
		return p + 1
	}
	return -1
}

// StatusFlow lists the statuses directly reachable from each status.
var StatusFlow = map[types.Status][]types.Status{
	types.StatusPendingProposal: {
		types.StatusSuggested, types.StatusApplied, types.StatusRejected, types.StatusWithdrawn,
	},
	types.StatusSuggested: {
		types.StatusApplied, types.StatusRejected, types.StatusWithdrawn,
	},
	types.StatusApplied: {
		types.StatusDocumentScreening, types.StatusInterview, types.StatusRejected, types.StatusWithdrawn,
	},
	types.StatusDocumentScreening: {
		types.StatusDocumentPassed, types.StatusRejected, types.StatusWithdrawn,
	},
	types.StatusDocumentPassed: {
		types.StatusInterview, types.StatusRejected, types.StatusWithdrawn,
	},
	types.StatusInterview: {
		types.StatusInterviewPassed, types.StatusRejected, types.StatusWithdrawn,
	},
	types.StatusInterviewPassed: {
		types.StatusInterview, types.StatusOffer, types.StatusRejected, types.StatusWithdrawn,
	},
	types.StatusOffer: {
		types.StatusOfferAccepted, types.StatusRejected, types.StatusWithdrawn,
	},
	types.StatusOfferAccepted: {
		types.StatusWithdrawn,
	},
	types.StatusRejected:  {},
	types.StatusWithdrawn: {},
}

// NextStatuses returns the statuses reachable from s. The returned slice is a copy.
func NextStatuses(s types.Status) []types.Status {
	next := StatusFlow[s]
	out := make([]types.Status, len(next))
	copy(out, next)
	return out
}

// CanTransition reports whether the flow graph lists to as a direct successor of from.
func CanTransition(from, to types.Status) bool {
	for _, s := range StatusFlow[from] {
		if s == to {
			return true
		}
	}
	return false
}

var labels = map[types.Status]string{
	types.StatusPendingProposal:   "Pending proposal",
	types.StatusSuggested:         "Suggested",
	types.StatusApplied:           "Applied",
	types.StatusDocumentScreening: "Document screening",
	types.StatusDocumentPassed:    "Documents passed",
	types.StatusInterview:         "Interview",
	types.StatusInterviewPassed:   "Interview passed",
	types.StatusOffer:             "Offer",
	types.StatusOfferAccepted:     "Offer accepted",
	types.StatusRejected:          "Rejected",
	types.StatusWithdrawn:         "Withdrawn",
}

// Label returns a human-readable name for a status.
func Label(s types.Status) string {
	if l, ok := labels[s]; ok {
		return l
	}
	return string(s)
}
