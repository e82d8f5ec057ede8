package analyze

import (
	"context"
	"strings"
	"testing"
)

func testReport() *RunReport {
	res := NewResult()
	res.Append("Purpose", "A CLI that analyzes repositories.")
	res.Append("Technology Stack Analysis", "Go with cobra.")
	return &RunReport{
		RepoName: "demo",
		Provider: "scripted",
		Model:    "test-model",
		Result:   res,
	}
}

func TestConversation_AskAndCache(t *testing.T) {
	p := &scripted{response: "It is written in Go."}
	conv, err := NewConversation(p, testReport(), 1000, 0.1)
	if err != nil {
		t.Fatalf("NewConversation: %v", err)
	}

	answer, err := conv.Ask(context.Background(), "What language is it?")
	if err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if answer != "It is written in Go." {
		t.Errorf("answer = %q", answer)
	}
	if p.calls != 1 {
		t.Fatalf("calls = %d, want 1", p.calls)
	}

	// Same question, different case: served from cache.
	if _, err := conv.Ask(context.Background(), "WHAT LANGUAGE IS IT?"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if p.calls != 1 {
		t.Errorf("calls = %d, want 1 (cached)", p.calls)
	}

	// A new question goes to the provider.
	if _, err := conv.Ask(context.Background(), "How is it tested?"); err != nil {
		t.Fatalf("Ask: %v", err)
	}
	if p.calls != 2 {
		t.Errorf("calls = %d, want 2", p.calls)
	}
}

func TestConversation_EmptyQuestion(t *testing.T) {
	conv, err := NewConversation(&scripted{}, testReport(), 1000, 0.1)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := conv.Ask(context.Background(), "   "); err == nil {
		t.Error("expected error for empty question")
	}
}

func TestConversation_RequiresResult(t *testing.T) {
	if _, err := NewConversation(&scripted{}, &RunReport{Result: NewResult()}, 1000, 0.1); err == nil {
		t.Error("expected error for empty result")
	}
	if _, err := NewConversation(&scripted{}, nil, 1000, 0.1); err == nil {
		t.Error("expected error for nil report")
	}
}

func TestBuildConversationContext(t *testing.T) {
	ctx := buildConversationContext(testReport())
	if !strings.Contains(ctx, "Repository: demo") {
		t.Error("missing repo header")
	}
	if !strings.Contains(ctx, "## Purpose") || !strings.Contains(ctx, "## Technology Stack Analysis") {
		t.Errorf("missing sections: %q", ctx)
	}
}
