// Package observability renders matches and batch results as boxed text for
// the command line.
package observability

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 72
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5

	timeLayout = "2006-01-02 15:04"
)

// Printer handles formatted output for the CLI
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(title, boxWidth-4))
	fmt.Fprintf(p.out, "├%s┤\n", border)

	for _, line := range strings.Split(content, "\n") {
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, truncate(line, boxWidth-4))
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// truncate shortens s to n runes, marking the cut with "...".
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n-3]) + "..."
}

// PrintMatch outputs a match, its pipeline dates and its full timeline.
func (p *Printer) PrintMatch(view *matching.MatchView) {
	if view == nil {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "Candidate: %s\n", view.CandidateID)
	fmt.Fprintf(&sb, "Job:       %s @ %s\n", view.JobID, view.CompanyID)
	fmt.Fprintf(&sb, "Status:    %s\n", matching.Label(view.Status))
	fmt.Fprintf(&sb, "Score:     %.1f\n", view.Score)
	if view.LatestEventDate != nil {
		fmt.Fprintf(&sb, "Latest:    %s\n", view.LatestEventDate.Format(timeLayout))
	}
	if len(view.NextStatuses) > 0 {
		next := make([]string, len(view.NextStatuses))
		for i, s := range view.NextStatuses {
			next[i] = string(s)
		}
		fmt.Fprintf(&sb, "Next:      %s\n", strings.Join(next, ", "))
	}

	if len(view.MatchReasons) > 0 {
		sb.WriteString("\nWhy this match:\n")
		count := min(len(view.MatchReasons), maxItemsToShow)
		for _, r := range view.MatchReasons[:count] {
			fmt.Fprintf(&sb, "  • %s (%.2f) %s\n", r.Type, r.Weight, r.Description)
		}
		if len(view.MatchReasons) > maxItemsToShow {
			fmt.Fprintf(&sb, "  ... and %d more\n", len(view.MatchReasons)-maxItemsToShow)
		}
	}

	sb.WriteString("\nTimeline:\n")
	for _, e := range view.Timeline {
		fmt.Fprintf(&sb, "  %s  %-18s %s\n", e.Timestamp.Format(timeLayout), e.Status, e.Description)
		if e.EventDate != nil {
			fmt.Fprintf(&sb, "  %16s  event on %s\n", "", e.EventDate.Format(timeLayout))
		}
	}

	p.printBox("MATCH "+view.ID, strings.TrimSuffix(sb.String(), "\n"))
}

// PrintBulkResult outputs success and failure counts with the first failures.
func (p *Printer) PrintBulkResult(title string, result types.BulkResult) {
	var sb strings.Builder
	fmt.Fprintf(&sb, "Succeeded: %d\n", result.SuccessCount)
	fmt.Fprintf(&sb, "Failed:    %d", result.ErrorCount)

	if len(result.Failures) > 0 {
		sb.WriteString("\n")
		count := min(len(result.Failures), maxItemsToShow)
		for _, f := range result.Failures[:count] {
			fmt.Fprintf(&sb, "\n  ✗ %s: %s", f.MatchID, f.Error)
		}
		if len(result.Failures) > maxItemsToShow {
			fmt.Fprintf(&sb, "\n  ... and %d more", len(result.Failures)-maxItemsToShow)
		}
	}

	p.printBox(title, sb.String())
}

// PrintEvent outputs a one-line description of a lifecycle event.
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) PrintEvent(event matching.Event) {
	change := string(event.ToStatus)
	if event.FromStatus != "" {
		change = fmt.Sprintf("%s → %s", event.FromStatus, event.ToStatus)
	}
	fmt.Fprintf(p.out, "%s  %-26s %s  %s\n", event.OccurredAt.UTC().Format(time.RFC3339), event.Type, event.MatchID, change)
}
