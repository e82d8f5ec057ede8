package analyze

import (
	"fmt"
	"sort"
	"strings"

	"github.com/yuyudhan/repo-analyzer/internal/lang"
)

// Mode selects the analysis emphasis.
type Mode string

const (
	// ModeAnalysis produces a reader-oriented architecture report.
	ModeAnalysis Mode = "analysis"
	// ModeDeveloper adds onboarding detail: build, test, extension points.
	ModeDeveloper Mode = "developer"
)

// ParseMode validates a mode string.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeAnalysis, ModeDeveloper:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown mode %q (expected analysis or developer)", s)
	}
}

// RenderChunk formats a chunk's files into the prompt body: a header per
// file with path, file-type description, and rendering note, then the
// content in a fenced block tagged with the language.
func RenderChunk(c Chunk) string {
	var b strings.Builder
	for i, fp := range c.Files {
		if i > 0 {
			b.WriteString("\n")
		}
		fmt.Fprintf(&b, "### File: %s\n", fp.Record.Path)
		fmt.Fprintf(&b, "%s | Priority: %s | Lines: %d",
			lang.Describe(fp.Record.Path), fp.Record.Priority, fp.OriginalLines)
		switch fp.Action {
		case ActionCompress:
			fmt.Fprintf(&b, " (compressed to %d lines, nesting beyond depth %d elided)",
				fp.RenderedLines, fp.Depth)
		case ActionTruncate:
			fmt.Fprintf(&b, " (truncated to %d lines)", fp.MaxLines)
		}
		b.WriteString("\n\n")
		fmt.Fprintf(&b, "```%s\n", fp.Record.Lang)
		b.WriteString(fp.Rendered)
		if !strings.HasSuffix(fp.Rendered, "\n") {
			b.WriteString("\n")
		}
		b.WriteString("```\n")
	}
	return b.String()
}

// SystemPrompt returns the system prompt for the given mode.
func SystemPrompt(mode Mode) string {
	base := `You are a senior software architect analyzing a source repository.
You receive the repository in chunks of files. For each chunk, produce
findings organized under these exact markdown headings (omit headings with
nothing to say):

`
	var b strings.Builder
	b.WriteString(base)
	for _, s := range SectionNames {
		b.WriteString("## ")
		b.WriteString(s)
		b.WriteString("\n")
	}
	b.WriteString(`
Be specific: name files, symbols, and patterns you actually see. Do not
write generic filler. Markdown only.`)
	if mode == ModeDeveloper {
		b.WriteString(`
Emphasize what a new developer needs: how to build, test, and run the
code, where the entry points are, and which modules to read first.`)
	}
	return b.String()
}

// UserPrompt wraps the rendered chunk with run context.
func UserPrompt(repoName string, c Chunk, totalChunks int, humanContext string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Repository: %s\nChunk %d of %d (%d files, %d lines)\n\n",
		repoName, c.Index, totalChunks, len(c.Files), c.Lines)
	if humanContext != "" {
		fmt.Fprintf(&b, "Additional context from the requester:\n%s\n\n", humanContext)
	}
	b.WriteString(RenderChunk(c))
	return b.String()
}

// ParseSections splits a model response on "## Heading" lines and returns
// the content keyed by heading. Content before the first heading is keyed
// under "".
func ParseSections(response string) map[string]string {
	sections := make(map[string]string)
	current := ""
	var buf strings.Builder
	flush := func() {
		text := strings.TrimSpace(buf.String())
		if text != "" {
			if prev, ok := sections[current]; ok {
				sections[current] = prev + "\n\n" + text
			} else {
				sections[current] = text
			}
		}
		buf.Reset()
	}
	for _, line := range strings.Split(response, "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "## ") {
			flush()
			current = strings.TrimSpace(strings.TrimPrefix(trimmed, "## "))
			continue
		}
		buf.WriteString(line)
		buf.WriteString("\n")
	}
	flush()
	return sections
}

// MergeResponse routes a chunk response's sections into the result.
// Preamble text with no heading goes to Implementation Deep Dive. The merge
// order is fixed (preamble, known sections in report order, then unknown
// headings sorted) so identical responses always produce identical reports.
func MergeResponse(res *Result, response string) {
	sections := ParseSections(response)
	if text, ok := sections[""]; ok {
		res.Append("Implementation Deep Dive", text)
		delete(sections, "")
	}
	for _, name := range SectionNames {
		if text, ok := sections[name]; ok {
			res.Append(name, text)
			delete(sections, name)
		}
	}
	unknown := make([]string, 0, len(sections))
	for name := range sections {
		unknown = append(unknown, name)
	}
	sort.Strings(unknown)
	for _, name := range unknown {
		res.Append(name, sections[name])
	}
}
