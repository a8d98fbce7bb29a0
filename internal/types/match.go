// Package types holds the match records and request payloads shared by the
// engine, the store and the HTTP layer.
package types

import (
	"fmt"
	"reflect"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
)

// Status is the stage of a match in the hiring pipeline.
type Status string

// Status values, in pipeline order
const (
	StatusPendingProposal   Status = "pending_proposal"
	StatusSuggested         Status = "suggested"
	StatusApplied           Status = "applied"
	StatusDocumentScreening Status = "document_screening"
	StatusDocumentPassed    Status = "document_passed"
	StatusInterview         Status = "interview"
	StatusInterviewPassed   Status = "interview_passed"
	StatusOffer             Status = "offer"
	StatusOfferAccepted     Status = "offer_accepted"
	StatusRejected          Status = "rejected"
	StatusWithdrawn         Status = "withdrawn"
)

// AllStatuses lists every status in pipeline order.
var AllStatuses = []Status{
	StatusPendingProposal,
	StatusSuggested,
	StatusApplied,
	StatusDocumentScreening,
	StatusDocumentPassed,
	StatusInterview,
	StatusInterviewPassed,
	StatusOffer,
	StatusOfferAccepted,
	StatusRejected,
	StatusWithdrawn,
}

// Valid reports whether s is one of the eleven known statuses.
func (s Status) Valid() bool {
	for _, known := range AllStatuses {
		if s == known {
			return true
		}
	}
	return false
}

// Terminal reports whether no further progress is expected.
func (s Status) Terminal() bool {
	return s == StatusRejected || s == StatusWithdrawn
}

// ParseStatus converts a raw string into a Status, rejecting unknown values.
func ParseStatus(raw string) (Status, error) {
	s := Status(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown match status: %q", raw)
	}
	return s, nil
}

// MatchReason explains why a match was proposed
type MatchReason struct {
	Type        string  `json:"type"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

// TimelineEntry is one immutable record of a status change
type TimelineEntry struct {
	ID          string     `json:"id"`
	Status      Status     `json:"status"`
	Timestamp   time.Time  `json:"timestamp"`
	EventDate   *time.Time `json:"event_date,omitempty"`
	Description string     `json:"description"`
	Notes       string     `json:"notes,omitempty"`
	CreatedBy   string     `json:"created_by"`
}

// Match is a candidate being considered for a job at a company.
// The date fields are caches of the timeline and are never authoritative.
type Match struct {
	ID           string          `json:"id"`
	CandidateID  string          `json:"candidate_id"`
	JobID        string          `json:"job_id"`
	CompanyID    string          `json:"company_id"`
	StoreID      *string         `json:"store_id,omitempty"`
	Status       Status          `json:"status"`
	Score        float64         `json:"score"`
	MatchReasons []MatchReason   `json:"match_reasons"`
	Timeline     []TimelineEntry `json:"timeline"`

	AppliedDate   *time.Time `json:"applied_date,omitempty"`
	InterviewDate *time.Time `json:"interview_date,omitempty"`
	OfferDate     *time.Time `json:"offer_date,omitempty"`
	AcceptedDate  *time.Time `json:"accepted_date,omitempty"`
	RejectedDate  *time.Time `json:"rejected_date,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`

	Notes     string    `json:"notes,omitempty"`
	CreatedBy string    `json:"created_by"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Version   int       `json:"version"`
}

// DateFor returns the denormalized date stored for a status, or nil when the
// status has no date field.
func (m *Match) DateFor(s Status) *time.Time {
	switch s {
	case StatusApplied:
		return m.AppliedDate
	case StatusInterview:
		return m.InterviewDate
	case StatusOffer:
		return m.OfferDate
	case StatusOfferAccepted:
		return m.AcceptedDate
	case StatusRejected:
		return m.RejectedDate
	}
	return nil
}

// SetDateFor writes the denormalized date for a status. It is a no-op for
// statuses without a date field.
func (m *Match) SetDateFor(s Status, t *time.Time) {
	switch s {
	case StatusApplied:
		m.AppliedDate = t
	case StatusInterview:
		m.InterviewDate = t
	case StatusOffer:
		m.OfferDate = t
	case StatusOfferAccepted:
		m.AcceptedDate = t
	case StatusRejected:
		m.RejectedDate = t
	}
}

// CreateMatchRequest is the input for proposing a new match.
type CreateMatchRequest struct {
	CandidateID   string        `json:"candidate_id" validate:"required"`
	JobID         string        `json:"job_id" validate:"required"`
	CompanyID     string        `json:"company_id" validate:"required"`
	InitialStatus Status        `json:"initial_status,omitempty"`
	Score         float64       `json:"score"`
	MatchReasons  []MatchReason `json:"match_reasons,omitempty"`
	Description   string        `json:"description,omitempty"`
	Notes         string        `json:"notes,omitempty"`
	CreatedBy     string        `json:"-"`
}

// UpdateStatusRequest is the input for moving a match to a new status.
type UpdateStatusRequest struct {
	Status        Status     `json:"status" validate:"required"`
	Description   string     `json:"description"`
	Notes         string     `json:"notes,omitempty"`
	EventDateTime *time.Time `json:"event_date_time,omitempty"`
	StoreID       *string    `json:"store_id,omitempty"`
	StartDate     *time.Time `json:"start_date,omitempty"`
	EndDate       *time.Time `json:"end_date,omitempty"`
	ActorID       string     `json:"-"`
}

// UpdateEmploymentRequest edits the post-hire employment window.
type UpdateEmploymentRequest struct {
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
}

// BulkWithdrawRequest withdraws several matches at once.
type BulkWithdrawRequest struct {
	MatchIDs []string `json:"match_ids" validate:"required,min=1,dive,required"`
}

// BulkStatusRequest moves several matches to the same status.
type BulkStatusRequest struct {
	MatchIDs    []string `json:"match_ids" validate:"required,min=1,dive,required"`
	Status      Status   `json:"status" validate:"required"`
	Description string   `json:"description"`
	Notes       string   `json:"notes,omitempty"`
	ActorID     string   `json:"-"`
}

// BulkFailure records why a single item of a bulk operation failed.
type BulkFailure struct {
	MatchID string `json:"match_id"`
	Error   string `json:"error"`
}

// BulkResult reports the outcome of a bulk operation.
type BulkResult struct {
	SuccessCount int           `json:"success_count"`
	ErrorCount   int           `json:"error_count"`
	Failures     []BulkFailure `json:"failures,omitempty"`
}

// validate reports fields by their JSON names.
var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// ValidateStruct checks the validate tags of any request payload.
func ValidateStruct(v any) error {
	return validate.Struct(v)
}

// Validate validates the CreateMatchRequest using the validator.
func (r *CreateMatchRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the UpdateStatusRequest using the validator.
func (r *UpdateStatusRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the BulkWithdrawRequest using the validator.
func (r *BulkWithdrawRequest) Validate() error {
	return validate.Struct(r)
}

// Validate validates the BulkStatusRequest using the validator.
func (r *BulkStatusRequest) Validate() error {
	return validate.Struct(r)
}
