package matching

import (
	"errors"
	"fmt"

	"github.com/jonathan/recruit-desk/internal/types"
)

// ErrNotFound indicates the match or timeline entry does not exist
type ErrNotFound struct {
	MatchID string
	EntryID string
}

func (e *ErrNotFound) Error() string {
	if e.EntryID != "" {
		return fmt.Sprintf("timeline entry not found: %s (match %s)", e.EntryID, e.MatchID)
	}
	return fmt.Sprintf("match not found: %s", e.MatchID)
}

// ErrInvalidOperation indicates an action that the current state does not allow
type ErrInvalidOperation struct {
	MatchID string
	Reason  string
}

func (e *ErrInvalidOperation) Error() string {
	return fmt.Sprintf("invalid operation on match %s: %s", e.MatchID, e.Reason)
}

// ErrPolicyViolation indicates a business rule gate failed
type ErrPolicyViolation struct {
	MatchID string
	Status  types.Status
	Reason  string
}

func (e *ErrPolicyViolation) Error() string {
	return fmt.Sprintf("policy violation on match %s (status %s): %s", e.MatchID, e.Status, e.Reason)
}

// ErrValidation indicates missing or malformed input
type ErrValidation struct {
	Field   string
	Message string
}

func (e *ErrValidation) Error() string {
	return fmt.Sprintf("validation error: %s - %s", e.Field, e.Message)
}

// ErrDuplicateMatch indicates a match already exists for the candidate and job
type ErrDuplicateMatch struct {
	CandidateID string
	JobID       string
	ExistingID  string
}

func (e *ErrDuplicateMatch) Error() string {
	return fmt.Sprintf("match already exists for candidate %s and job %s: %s", e.CandidateID, e.JobID, e.ExistingID)
}

// ErrVersionConflict is returned by a Store when a write was based on a stale
// version of the match.
type ErrVersionConflict struct {
	MatchID  string
	Expected int
}

func (e *ErrVersionConflict) Error() string {
	return fmt.Sprintf("match %s was modified concurrently (expected version %d)", e.MatchID, e.Expected)
}

// Kind classifies an error returned by the engine.
type Kind string

// Error kinds
const (
	KindNone             Kind = ""
	KindNotFound         Kind = "not_found"
	KindInvalidOperation Kind = "invalid_operation"
	KindPolicyViolation  Kind = "policy_violation"
	KindValidation       Kind = "validation"
	KindDuplicate        Kind = "duplicate"
	KindConflict         Kind = "conflict"
	KindDependency       Kind = "dependency_failure"
)

// KindOf reports the kind of err. Errors that are not domain errors are
// treated as dependency failures.
func KindOf(err error) Kind {
	if err == nil {
		return KindNone
	}

	var notFound *ErrNotFound
	var invalid *ErrInvalidOperation
	var policy *ErrPolicyViolation
	var validation *ErrValidation
	var duplicate *ErrDuplicateMatch
	var conflict *ErrVersionConflict

	switch {
	case errors.As(err, &notFound):
		return KindNotFound
	case errors.As(err, &invalid):
		return KindInvalidOperation
	case errors.As(err, &policy):
		return KindPolicyViolation
	case errors.As(err, &validation):
		return KindValidation
	case errors.As(err, &duplicate):
		return KindDuplicate
	case errors.As(err, &conflict):
		return KindConflict
	default:
		return KindDependency
	}
}
