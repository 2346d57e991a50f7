// Package llm provides the chat-completion clients used by the AI features.
// Callers pick a model tier; the configured provider maps it to a model name.
package llm

import "fmt"

// ModelTier represents the complexity/capability level of a model
type ModelTier string

const (
	// TierLite is for short rewrites of a single field
	TierLite ModelTier = "lite"
	// TierStandard is for summaries and bullet rewrites
	TierStandard ModelTier = "standard"
	// TierAdvanced is for whole-resume tailoring
	TierAdvanced ModelTier = "advanced"
)

// Provider represents an LLM provider
type Provider string

// Provider constants define supported LLM providers
const (
	// ProviderGemini is the Google Gemini provider
	ProviderGemini Provider = "gemini"
	// ProviderOpenAI is the OpenAI chat completions provider
	ProviderOpenAI Provider = "openai"
)

// defaultTemperature keeps rewrites close to the user's own wording.
const defaultTemperature = 0.3

// Config holds the model configuration for the application
type Config struct {
	Provider    Provider
	Models      map[ModelTier]string
	Temperature float32
	BaseURL     string // optional override for OpenAI-compatible endpoints
}

// DefaultConfig returns the default configuration (Gemini)
func DefaultConfig() *Config {
	return DefaultGeminiConfig()
}

// DefaultGeminiConfig returns the default Gemini configuration
func DefaultGeminiConfig() *Config {
	return &Config{
		Provider: ProviderGemini,
		Models: map[ModelTier]string{
			TierLite:     "gemini-2.5-flash-lite",
			TierStandard: "gemini-2.5-flash",
			TierAdvanced: "gemini-2.5-pro",
		},
		Temperature: defaultTemperature,
	}
}

// DefaultOpenAIConfig returns the default OpenAI configuration
func DefaultOpenAIConfig() *Config {
	return &Config{
		Provider: ProviderOpenAI,
		Models: map[ModelTier]string{
			TierLite:     "gpt-4o-mini",
			TierStandard: "gpt-4o-mini",
			TierAdvanced: "gpt-4o",
		},
		Temperature: defaultTemperature,
	}
}

// ConfigFor returns the defaults for a provider name, with any non-empty
// model overrides applied.
func ConfigFor(provider string, lite, standard, advanced string) (*Config, error) {
	var cfg *Config
	switch Provider(provider) {
	case ProviderGemini, "":
		cfg = DefaultGeminiConfig()
	case ProviderOpenAI:
		cfg = DefaultOpenAIConfig()
	default:
		return nil, fmt.Errorf("unknown LLM provider %q", provider)
	}

	for tier, model := range map[ModelTier]string{TierLite: lite, TierStandard: standard, TierAdvanced: advanced} {
		if model != "" {
			cfg = cfg.WithModel(tier, model)
		}
	}
	return cfg, nil
}

// GetModel returns the model name for a given tier
func (c *Config) GetModel(tier ModelTier) string {
	if model, ok := c.Models[tier]; ok {
		return model
	}
	// Fallback chain: try standard, then lite
	if model, ok := c.Models[TierStandard]; ok {
		return model
	}
	if model, ok := c.Models[TierLite]; ok {
		return model
	}
	return "" // No model configured
}

// WithModel returns a new Config with a specific model for a tier
func (c *Config) WithModel(tier ModelTier, model string) *Config {
	newConfig := *c
	newConfig.Models = make(map[ModelTier]string, len(c.Models)+1)
	for k, v := range c.Models {
		newConfig.Models[k] = v
	}
	newConfig.Models[tier] = model
	return &newConfig
}
