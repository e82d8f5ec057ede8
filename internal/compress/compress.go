// Package compress implements the smart code compression heuristic: deeply
// nested implementation bodies are elided while the file's public shape
// (declarations, imports, comments, shallow control flow) is preserved.
package compress

import (
	"fmt"
	"strings"
)

// Marker replaces each contiguous block of elided lines. It reads as a
// comment in most languages and survives re-compression unchanged.
const Marker = "// ... [compressed: deeply nested code] ..."

// DefaultIndentSpaces is the indentation unit assumed when a file gives no
// better signal.
const DefaultIndentSpaces = 4

// importantPatterns mark lines preserved regardless of indentation depth.
// The matching is substring-based and deliberately approximate; false
// positives keep a little extra context, false negatives lose nested detail.
var importantPatterns = []string{
	// Imports and module structure
	"import ", "from ", "export ", "require(", "include ",
	"package ", "module ", "namespace ",
	// Declarations
	"def ", "class ", "function ", "async def", "fn ", "pub fn",
	"func ", "interface ", "trait ", "impl ", "struct ", "enum ",
	"type ", "typedef ", "protocol ",
	// Annotations and comments
	"@", "#[", "/*", "//", "#",
	// Constants and bindings
	"const ", "let ", "var ", "final ", "static ",
	// Control flow and error handling
	"if ", "else", "elif ", "while ", "for ", "switch ", "case ",
	"try ", "catch ", "except ", "finally ", "rescue ",
	"return ", "yield ", "throw ", "raise ",
	// Routes and persistence
	"app.", "router.", "CREATE TABLE", "ALTER TABLE",
	"SELECT ", "INSERT ", "UPDATE ",
	// Async markers
	"async ", "await ",
}

// Compress reduces content by eliding lines nested deeper than maxDepth
// indentation levels. Lines at depth <= maxDepth are preserved verbatim and
// in order; each contiguous elided block is replaced by a single Marker
// line. Compression is idempotent for a fixed maxDepth.
func Compress(content string, maxDepth int) string {
	if content == "" {
		return content
	}

	lines := strings.Split(content, "\n")
	unit, tabs := detectIndent(lines)

	var out []string
	blankRun := 0
	inString := false
	lastWasMarker := false
	markerLine := markerIndent(unit, tabs, maxDepth) + Marker

	for _, line := range lines {
		stripped := strings.TrimSpace(line)

		if stripped == "" {
			// Collapse runs of blank lines to one.
			blankRun++
			if blankRun <= 1 {
				out = append(out, "")
				lastWasMarker = false
			}
			continue
		}
		blankRun = 0

		delims := strings.Count(line, `"""`) + strings.Count(line, "'''")
		keep := inString ||
			delims > 0 ||
			indentDepth(line, unit, tabs) <= maxDepth ||
			isImportant(stripped)
		if delims%2 == 1 {
			inString = !inString
		}

		if keep {
			out = append(out, line)
			lastWasMarker = stripped == Marker
			continue
		}
		if !lastWasMarker {
			out = append(out, markerLine)
			lastWasMarker = true
		}
	}

	for len(out) > 0 && strings.TrimSpace(out[len(out)-1]) == "" {
		out = out[:len(out)-1]
	}
	return strings.Join(out, "\n")
}

// Truncate caps content at maxLines lines, appending a trailing omission
// marker. Used when smart compression is disabled.
func Truncate(content string, maxLines int) string {
	if maxLines <= 0 {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) <= maxLines {
		return content
	}
	omitted := len(lines) - maxLines
	kept := append([]string{}, lines[:maxLines]...)
	kept = append(kept, fmt.Sprintf("// ... [truncated: %d lines omitted] ...", omitted))
	return strings.Join(kept, "\n")
}

// CountLines reports the number of lines in content, counting a trailing
// partial line.
func CountLines(content string) int {
	if content == "" {
		return 0
	}
	n := strings.Count(content, "\n")
	if !strings.HasSuffix(content, "\n") {
		n++
	}
	return n
}

// detectIndent inspects the first 50 lines and returns the indentation unit
// in spaces, or tabs=true for tab-indented files.
func detectIndent(lines []string) (unit int, tabs bool) {
	limit := len(lines)
	if limit > 50 {
		limit = 50
	}
	for _, line := range lines[:limit] {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if strings.HasPrefix(line, "\t") {
			return 1, true
		}
		if strings.HasPrefix(line, " ") {
			leading := len(line) - len(strings.TrimLeft(line, " "))
			for _, size := range []int{4, 2, 8} {
				if leading%size == 0 {
					return size, false
				}
			}
			return DefaultIndentSpaces, false
		}
	}
	return DefaultIndentSpaces, false
}

// indentDepth computes a line's indentation level in units. Tabs inside a
// space-indented file are normalized to one unit each.
func indentDepth(line string, unit int, tabs bool) int {
	if tabs {
		return len(line) - len(strings.TrimLeft(line, "\t"))
	}
	width := 0
	for _, r := range line {
		if r == ' ' {
			width++
		} else if r == '\t' {
			width += unit
		} else {
			break
		}
	}
	return width / unit
}

func markerIndent(unit int, tabs bool, maxDepth int) string {
	if maxDepth < 0 {
		maxDepth = 0
	}
	if tabs {
		return strings.Repeat("\t", maxDepth)
	}
	return strings.Repeat(" ", maxDepth*unit)
}

func isImportant(stripped string) bool {
	for _, pat := range importantPatterns {
		if strings.Contains(stripped, pat) {
			return true
		}
	}
	return false
}
