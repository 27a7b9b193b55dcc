package backend

import (
	"fmt"
	"time"

	"codewright/internal/types"
)

// Options selects and configures a provider client.
type Options struct {
	Provider string // "openai" (default, covers any compatible endpoint) or "gemini"
	APIKey   string
	BaseURL  string
	Model    string
	Timeout  time.Duration
}

// New constructs the backend collaborator for the given options.
func New(opts Options) (types.Backend, error) {
	switch opts.Provider {
	case "", "openai":
		cfg := DefaultOpenAIConfig(opts.APIKey)
		if opts.BaseURL != "" {
			cfg.BaseURL = opts.BaseURL
		}
		if opts.Model != "" {
			cfg.Model = opts.Model
		}
		if opts.Timeout > 0 {
			cfg.Timeout = opts.Timeout
		}
		return NewOpenAIClientWithConfig(cfg), nil
	case "gemini":
		return NewGeminiClient(opts.APIKey, opts.Model)
	default:
		return nil, fmt.Errorf("unknown backend provider %q", opts.Provider)
	}
}
