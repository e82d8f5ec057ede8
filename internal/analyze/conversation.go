package analyze

import (
	"context"
	"fmt"
	"strings"

	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/yuyudhan/repo-analyzer/internal/providers"
)

// conversationContextLines caps how much of the analysis is replayed to
// the provider per question.
const conversationContextLines = 400

// Conversation answers follow-up questions about a completed run. Repeated
// questions are served from a small LRU without another API call.
type Conversation struct {
	provider    providers.Analyzer
	maxTokens   int
	temperature float64
	context     string
	answers     *lru.Cache[string, string]
}

// NewConversation builds a conversation over a finished run.
func NewConversation(provider providers.Analyzer, report *RunReport, maxTokens int, temperature float64) (*Conversation, error) {
	if report == nil || report.Result == nil || report.Result.Empty() {
		return nil, fmt.Errorf("no analysis available to converse about")
	}
	answers, err := lru.New[string, string](32)
	if err != nil {
		return nil, err
	}
	return &Conversation{
		provider:    provider,
		maxTokens:   maxTokens,
		temperature: temperature,
		context:     buildConversationContext(report),
		answers:     answers,
	}, nil
}

// Ask sends one question grounded in the run's analysis.
func (c *Conversation) Ask(ctx context.Context, question string) (string, error) {
	question = strings.TrimSpace(question)
	if question == "" {
		return "", fmt.Errorf("empty question")
	}
	key := strings.ToLower(question)
	if answer, ok := c.answers.Get(key); ok {
		return answer, nil
	}

	resp, err := c.provider.Analyze(ctx, providers.Request{
		SystemPrompt: "You are answering questions about a repository that was " +
			"just analyzed. Ground every answer in the analysis excerpt provided; " +
			"say so plainly when the analysis does not cover the question.",
		UserPrompt: fmt.Sprintf("Analysis excerpt:\n%s\n\nQuestion: %s",
			c.context, question),
		MaxTokens:   c.maxTokens,
		Temperature: c.temperature,
	})
	if err != nil {
		return "", err
	}
	c.answers.Add(key, resp.Content)
	return resp.Content, nil
}

// buildConversationContext flattens the result into a bounded excerpt,
// keeping whole sections in report order until the line cap is hit.
func buildConversationContext(report *RunReport) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s (provider %s, model %s)\n",
		report.RepoName, report.Provider, report.Model)
	lines := 1
	for _, section := range SectionNames {
		frags := report.Result.Get(section)
		if len(frags) == 0 {
			continue
		}
		body := strings.Join(frags, "\n\n")
		n := strings.Count(body, "\n") + 3
		if lines+n > conversationContextLines {
			break
		}
		fmt.Fprintf(&b, "\n## %s\n%s\n", section, body)
		lines += n
	}
	return b.String()
}
