// Package llm wraps the Gemini API behind a small client interface used for
// drafting recruiter-facing text.
package llm

import "maps"

// ModelTier selects how capable (and how expensive) a model should be
type ModelTier string

const (
	// TierLite is for short, formulaic text such as status summaries
	TierLite ModelTier = "lite"
	// TierStandard is for proposal notes and other client-facing prose
	TierStandard ModelTier = "standard"
)

// Provider names an LLM provider
type Provider string

// ProviderGemini is the only provider wired today
const ProviderGemini Provider = "gemini"

// Config holds model selection and sampling settings
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
}

// DefaultConfig returns the Gemini configuration used when none is given.
func DefaultConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
		},
		Temperature: 0.4,
	}
}

// GetModel returns the model for a tier, falling back to the standard then
// the lite model. Returns "" when nothing is configured.
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return ""
}

// WithModel returns a copy of the config using model for tier.
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	next := &Config{
		Provider:    c.Provider,
		Models:      maps.Clone(c.Models),
		Temperature: c.Temperature,
	}
	if next.Models == nil {
		next.Models = make(map[ModelTier]string)
	}
	next.Models[tier] = model
	return next
}
