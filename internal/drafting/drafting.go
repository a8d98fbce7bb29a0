// Package drafting asks an LLM for recruiter-facing text about a match, such
// as the note that accompanies a candidate proposal.
package drafting

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jonathan/recruit-desk/internal/llm"
	"github.com/jonathan/recruit-desk/internal/matching"
	"github.com/jonathan/recruit-desk/internal/prompts"
	"github.com/jonathan/recruit-desk/internal/schemas"
	"github.com/jonathan/recruit-desk/internal/types"
)

const defaultTone = "warm, professional"

// proposalNoteSchema constrains what the model may return
const proposalNoteSchema = `{
  "type": "object",
  "required": ["subject", "body", "highlights"],
  "properties": {
    "subject": {"type": "string", "minLength": 1},
    "body": {"type": "string", "minLength": 1},
    "highlights": {"type": "array", "minItems": 1, "maxItems": 5, "items": {"type": "string"}}
  }
}`

// Context is the free text the match itself does not carry.
type Context struct {
	CandidateName string `json:"candidate_name" validate:"required"`
	CompanyName   string `json:"company_name" validate:"required"`
	JobTitle      string `json:"job_title" validate:"required"`
	Tone          string `json:"tone,omitempty"`
}

// ProposalNote is a drafted note to a hiring manager
type ProposalNote struct {
	Subject    string   `json:"subject"`
	Body       string   `json:"body"`
	Highlights []string `json:"highlights"`
}

// Drafter produces text with an LLM client
type Drafter struct {
	client llm.Client
}

// New creates a Drafter.
func New(client llm.Client) *Drafter {
	return &Drafter{client: client}
}

// ProposalNote drafts the note sent with a candidate proposal.
func (d *Drafter) ProposalNote(ctx context.Context, m *types.Match, c Context) (*ProposalNote, error) {
	prompt, err := proposalPrompt(m, c)
	if err != nil {
		return nil, err
	}

	raw, err := d.client.GenerateJSON(ctx, prompt, llm.TierStandard)
	if err != nil {
		return nil, fmt.Errorf("failed to draft proposal note: %w", err)
	}
	if err := schemas.ValidateJSONString(proposalNoteSchema, raw); err != nil {
		return nil, fmt.Errorf("model returned an invalid proposal note: %w", err)
	}

	var note ProposalNote
	if err := json.Unmarshal([]byte(raw), &note); err != nil {
		return nil, fmt.Errorf("failed to parse proposal note: %w", err)
	}
	return &note, nil
}

// StatusSummary drafts a one or two sentence summary of the match timeline.
func (d *Drafter) StatusSummary(ctx context.Context, m *types.Match, c Context) (string, error) {
	prompt, err := prompts.Render(prompts.DraftingFile, "status-summary", map[string]string{
		"CandidateName": c.CandidateName,
		"CompanyName":   c.CompanyName,
		"JobTitle":      c.JobTitle,
		"Timeline":      formatTimeline(m.Timeline),
	})
	if err != nil {
		return "", err
	}

	text, err := d.client.GenerateContent(ctx, prompt, llm.TierLite)
	if err != nil {
		return "", fmt.Errorf("failed to draft status summary: %w", err)
	}
	return strings.TrimSpace(text), nil
}

func proposalPrompt(m *types.Match, c Context) (string, error) {
	tone := c.Tone
	if tone == "" {
		tone = defaultTone
	}
	notes := m.Notes
	if notes == "" {
		notes = "(none)"
	}

	return prompts.Render(prompts.DraftingFile, "proposal-note", map[string]string{
		"CandidateName": c.CandidateName,
		"CompanyName":   c.CompanyName,
		"JobTitle":      c.JobTitle,
		"Score":         fmt.Sprintf("%.0f", m.Score),
		"Status":        matching.Label(m.Status),
		"Reasons":       formatReasons(m.MatchReasons),
		"Notes":         notes,
		"Tone":          tone,
	})
}

func formatReasons(reasons []types.MatchReason) string {
	if len(reasons) == 0 {
		return "- (no reasons recorded)"
	}
	lines := make([]string, 0, len(reasons))
	for _, r := range reasons {
		line := "- " + r.Type
		if r.Description != "" {
			line += ": " + r.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}

func formatTimeline(timeline []types.TimelineEntry) string {
	lines := make([]string, 0, len(timeline))
	for _, e := range timeline {
		line := fmt.Sprintf("- %s %s", e.Timestamp.Format("2006-01-02"), matching.Label(e.Status))
		if e.EventDate != nil {
			line += " (event " + e.EventDate.Format("2006-01-02 15:04") + ")"
		}
		if e.Description != "" {
			line += ": " + e.Description
		}
		lines = append(lines, line)
	}
	return strings.Join(lines, "\n")
}
