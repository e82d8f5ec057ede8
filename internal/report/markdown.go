// Package report renders a completed run into its persisted artifacts:
// the markdown analysis, a JSON summary, and the chunk progress log.
package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/yuyudhan/repo-analyzer/internal/analyze"
	"github.com/yuyudhan/repo-analyzer/internal/redact"
)

// unavailable marks sections no chunk contributed to. They stay visible
// so a partial run is obviously partial.
const unavailable = "_analysis unavailable_"

// MarkdownWriter renders the full analysis report.
type MarkdownWriter struct{}

func (m *MarkdownWriter) Write(w io.Writer, r *analyze.RunReport) error {
	fmt.Fprintf(w, "# Repository Analysis: %s\n\n", r.RepoName)
	fmt.Fprintf(w, "Generated: %s | Mode: %s | Provider: %s (%s)\n\n",
		r.Timestamp.Format("2006-01-02 15:04:05"), r.Mode, r.Provider, r.Model)

	// Run summary table
	fmt.Fprintf(w, "| Metric | Value |\n")
	fmt.Fprintf(w, "|--------|-------|\n")
	fmt.Fprintf(w, "| Files analyzed | %d |\n", r.FilesAnalyzed)
	fmt.Fprintf(w, "| Total lines | %d |\n", r.TotalLines)
	fmt.Fprintf(w, "| Chunks | %d |\n", r.ChunkCount)
	fmt.Fprintf(w, "| Succeeded | %d |\n", r.Succeeded())
	if n := r.Failed(); n > 0 {
		fmt.Fprintf(w, "| Failed | %d |\n", n)
	}
	if n := r.Aborted(); n > 0 {
		fmt.Fprintf(w, "| Aborted | %d |\n", n)
	}
	fmt.Fprintf(w, "| Tokens used | %d |\n\n", r.TokensUsed)

	writeGit(w, r)
	writeEnv(w, r)

	for _, section := range analyze.SectionNames {
		fmt.Fprintf(w, "## %s\n\n", section)
		frags := r.Result.Get(section)
		if len(frags) == 0 {
			fmt.Fprintf(w, "%s\n\n", unavailable)
			continue
		}
		fmt.Fprintf(w, "%s\n\n", strings.TrimSpace(strings.Join(frags, "\n\n")))
	}

	fmt.Fprintf(w, "---\n\nRun ID: `%s`\n", r.RunID)
	return nil
}

func writeGit(w io.Writer, r *analyze.RunReport) {
	fmt.Fprintf(w, "## Git Repository\n\n")
	if !r.Git.IsRepo {
		fmt.Fprintf(w, "Not a git repository.\n\n")
		return
	}
	if r.Git.URL != "" {
		fmt.Fprintf(w, "- Remote: %s\n", r.Git.URL)
	}
	if r.Git.Branch != "" {
		fmt.Fprintf(w, "- Branch: %s (%d local branches)\n", r.Git.Branch, len(r.Git.Branches))
	}
	if r.Git.Commits > 0 {
		fmt.Fprintf(w, "- Commits: %d\n", r.Git.Commits)
	}
	if r.Git.Last.Hash != "" {
		fmt.Fprintf(w, "- Last commit: `%.8s` %s (%s, %s)\n",
			r.Git.Last.Hash, r.Git.Last.Subject, r.Git.Last.Author, r.Git.Last.Date)
	}
	fmt.Fprintf(w, "\n")
}

func writeEnv(w io.Writer, r *analyze.RunReport) {
	if len(r.Env) == 0 {
		return
	}
	fmt.Fprintf(w, "## Environment Variables\n\n")
	fmt.Fprintf(w, "| Variable | Example | Notes | Declared in |\n")
	fmt.Fprintf(w, "|----------|---------|-------|-------------|\n")
	for _, v := range r.Env {
		fmt.Fprintf(w, "| `%s` | %s | %s | %s |\n",
			v.Key, redact.MaskValue(v.Key, v.Value), v.Comment, v.File)
	}
	fmt.Fprintf(w, "\n")
}
