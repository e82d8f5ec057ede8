// Package providers implements the LLM client abstraction. Each provider
// submits one prompt and returns the raw model response; retry and pacing
// policy live in the dispatch loop, not here.
package providers

import (
	"context"
	"fmt"
)

// Request contains the data sent to an LLM for one chunk analysis.
type Request struct {
	SystemPrompt string
	UserPrompt   string
	MaxTokens    int
	Temperature  float64
}

// Response contains the raw response from an LLM.
type Response struct {
	Content    string
	TokensUsed int
}

// Analyzer is the provider abstraction interface.
type Analyzer interface {
	Analyze(ctx context.Context, req Request) (Response, error)
	Name() string
}

// New creates a provider by name.
func New(provider, model string) (Analyzer, error) {
	switch provider {
	case "claude", "anthropic":
		return NewClaude(model)
	case "openai":
		return NewOpenAI(model)
	case "gemini", "google":
		return NewGemini(model)
	default:
		return nil, fmt.Errorf("unknown provider: %s (known: claude, openai, gemini)", provider)
	}
}
