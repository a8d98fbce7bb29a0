// Package calendar builds "add to calendar" links for scheduled interviews.
package calendar

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/jonathan/recruit-desk/internal/types"
)

const (
	templateURL = "https://calendar.google.com/calendar/render"
	stampLayout = "20060102T150405Z"

	// DefaultDuration is used when the caller does not give one
	DefaultDuration = time.Hour
)

// ErrNoInterviewDate is returned when the match has no interview scheduled.
var ErrNoInterviewDate = errors.New("match has no interview date")

// InterviewDetails are the free-text inputs shown on the calendar event.
type InterviewDetails struct {
	CandidateName string
	CompanyName   string
	JobTitle      string
	Location      string
	Duration      time.Duration
}

// InterviewLink returns a Google Calendar template link for the interview
// recorded on m.
func InterviewLink(m *types.Match, d InterviewDetails) (string, error) {
	if m == nil || m.InterviewDate == nil {
		return "", ErrNoInterviewDate
	}
	duration := d.Duration
	if duration <= 0 {
		duration = DefaultDuration
	}

	start := m.InterviewDate.UTC()
	end := start.Add(duration)

	q := url.Values{}
	q.Set("action", "TEMPLATE")
	q.Set("text", eventTitle(d))
	q.Set("dates", start.Format(stampLayout)+"/"+end.Format(stampLayout))
	q.Set("details", eventDetails(m, d))
	if loc := strings.TrimSpace(d.Location); loc != "" {
		q.Set("location", loc)
	}
	return templateURL + "?" + q.Encode(), nil
}

func eventTitle(d InterviewDetails) string {
	title := "Interview"
	if d.CandidateName != "" {
		title += ": " + d.CandidateName
	}
	if d.CompanyName != "" {
		title += " @ " + d.CompanyName
	}
	return title
}

func eventDetails(m *types.Match, d InterviewDetails) string {
	var lines []string
	if d.JobTitle != "" {
		lines = append(lines, "Position: "+d.JobTitle)
	}
	if d.CompanyName != "" {
		lines = append(lines, "Company: "+d.CompanyName)
	}
	if d.CandidateName != "" {
		lines = append(lines, "Candidate: "+d.CandidateName)
	}
	lines = append(lines, fmt.Sprintf("Match: %s", m.ID))
	return strings.Join(lines, "\n")
}
