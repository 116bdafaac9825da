package llm

import (
	"fmt"
)

// Options carry everything needed to build a provider. Credentials are
// passed in explicitly; this package never reads the environment.
type Options struct {
	Provider string
	Model    string
	APIKey   string
	// BaseURL overrides the service endpoint (the Ollama host for "ollama").
	BaseURL string
	// RequestsPerMinute wraps the provider in a rate limiter when positive.
	RequestsPerMinute int
}

// NewProvider creates an LLM provider from opts.
// Supported providers: "anthropic", "openai", "google", "ollama", "minimax", "openrouter".
func NewProvider(opts Options) (Provider, error) {
	var p Provider

	switch opts.Provider {
	case "anthropic", "openai", "google", "minimax", "openrouter":
		if opts.APIKey == "" {
			return nil, fmt.Errorf("an API key is required for provider %s", opts.Provider)
		}
	}

	switch opts.Provider {
	case "anthropic":
		p = NewAnthropicProvider(opts.APIKey, opts.Model, opts.BaseURL)
	case "openai":
		p = NewOpenAIProvider(opts.APIKey, opts.Model, opts.BaseURL)
	case "google":
		p = NewGoogleProvider(opts.APIKey, opts.Model, opts.BaseURL)
	case "minimax":
		mm := newOpenAICompatible("minimax", opts.APIKey, opts.Model, firstNonEmpty(opts.BaseURL, minimaxBaseURL))
		mm.clampTemperature = true
		p = mm
	case "openrouter":
		p = newOpenAICompatible("openrouter", opts.APIKey, opts.Model, firstNonEmpty(opts.BaseURL, openRouterBaseURL))
	case "ollama":
		p = NewOllamaProvider(firstNonEmpty(opts.BaseURL, "http://localhost:11434"), opts.Model)
	default:
		return nil, fmt.Errorf("unsupported provider type: %s", opts.Provider)
	}

	if opts.RequestsPerMinute > 0 {
		p = NewRateLimitedProvider(p, opts.RequestsPerMinute)
	}
	return p, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
