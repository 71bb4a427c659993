// Package llm wraps the model providers behind one Provider interface so the
// extraction stage stays provider-agnostic. Provider selection and API keys
// live in the agent package; nothing here reads configuration beyond the
// environment variables the SDKs expect.
package llm

import (
	"context"
)

// Options are per-call generation knobs. Zero values mean provider defaults.
type Options struct {
	Model       string
	Temperature float64
	JSONMode    bool
	MaxTokens   int
}

// Provider is a single model backend.
type Provider interface {
	Name() string
	Generate(ctx context.Context, systemPrompt, prompt string, opts Options) (string, error)
}
