package server

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/jonathan/recruit-desk/internal/calendar"
	"github.com/jonathan/recruit-desk/internal/matching"
)

// ErrDraftingDisabled is returned when no model client is configured.
var ErrDraftingDisabled = errors.New("proposal drafting is not configured")

// ErrUpstream wraps failures of an external model or service call.
type ErrUpstream struct {
	Service string
	Err     error
}

func (e *ErrUpstream) Error() string {
	return fmt.Sprintf("%s request failed: %v", e.Service, e.Err)
}

func (e *ErrUpstream) Unwrap() error { return e.Err }

// HTTPStatus returns the appropriate HTTP status code for an error
func HTTPStatus(err error) int {
	var upstream *ErrUpstream
	switch {
	case errors.Is(err, ErrDraftingDisabled):
		return http.StatusNotImplemented
	case errors.Is(err, calendar.ErrNoInterviewDate):
		return http.StatusConflict
	case errors.As(err, &upstream):
		return http.StatusBadGateway
	}

	switch matching.KindOf(err) {
	case matching.KindNotFound:
		return http.StatusNotFound
	case matching.KindValidation:
		return http.StatusBadRequest
	case matching.KindInvalidOperation, matching.KindDuplicate, matching.KindConflict:
		return http.StatusConflict
	case matching.KindPolicyViolation:
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// requestError converts validator output into the engine's validation error
// so both render the same way.
func requestError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) || len(fieldErrs) == 0 {
		return &matching.ErrValidation{Field: "request", Message: err.Error()}
	}

	first := fieldErrs[0]
	msg := "failed on " + first.Tag()
	switch first.Tag() {
	case "required":
		msg = "is required"
	case "min":
		msg = "must have at least " + first.Param() + " item(s)"
	}
	return &matching.ErrValidation{Field: first.Field(), Message: msg}
}
