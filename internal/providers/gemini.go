package providers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	genai "google.golang.org/genai"
)

// Gemini implements the Analyzer interface using the official genai client.
type Gemini struct {
	cli   *genai.Client
	model string
}

// NewGemini creates a new Gemini provider. The genai client reads
// GEMINI_API_KEY from the environment.
func NewGemini(model string) (*Gemini, error) {
	if os.Getenv("GEMINI_API_KEY") == "" && os.Getenv("GOOGLE_API_KEY") == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable is not set")
	}
	cli, err := genai.NewClient(context.Background(), &genai.ClientConfig{Backend: genai.BackendGeminiAPI})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Gemini{cli: cli, model: model}, nil
}

func (g *Gemini) Name() string { return "gemini" }

func (g *Gemini) Analyze(ctx context.Context, req Request) (Response, error) {
	maxTokens := req.MaxTokens
	if maxTokens == 0 {
		maxTokens = 4096
	}

	full := req.SystemPrompt + "\n\n" + req.UserPrompt
	cfg := &genai.GenerateContentConfig{
		MaxOutputTokens: int32(maxTokens),
	}
	if req.Temperature > 0 {
		t := float32(req.Temperature)
		cfg.Temperature = &t
	}

	resp, err := g.cli.Models.GenerateContent(ctx, g.model,
		[]*genai.Content{{Parts: []*genai.Part{{Text: full}}}}, cfg)
	if err != nil {
		return Response{}, classifyGenAI(err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil || len(resp.Candidates[0].Content.Parts) == 0 {
		return Response{}, fmt.Errorf("empty text content in API response")
	}

	var content string
	for _, part := range resp.Candidates[0].Content.Parts {
		content += part.Text
	}

	tokens := 0
	if resp.UsageMetadata != nil {
		tokens = int(resp.UsageMetadata.TotalTokenCount)
	}
	return Response{Content: content, TokensUsed: tokens}, nil
}

// classifyGenAI maps genai SDK errors into the shared error taxonomy.
func classifyGenAI(err error) error {
	var ae genai.APIError
	if errors.As(err, &ae) {
		switch {
		case ae.Code == http.StatusTooManyRequests:
			return &RateLimitError{}
		case ae.Code == http.StatusUnauthorized || ae.Code == http.StatusForbidden:
			return &AuthError{Message: ae.Message}
		case ae.Code >= 500:
			return &TransportError{Status: ae.Code}
		default:
			return fmt.Errorf("API error (status %d): %s", ae.Code, ae.Message)
		}
	}
	if errors.Is(err, context.Canceled) {
		return err
	}
	return &TransportError{Err: err}
}
