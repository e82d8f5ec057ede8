package compress

import (
	"strings"
	"testing"
)

// sample has a declaration at depth 0, body at depths 1-2, and filler
// lines at depths 3-4 that match no structural pattern.
const sample = `def handler(request):
    session = open_session(request)
    with session.begin():
        rows = session.query(Item)
        totals = {}
        rows = rows.filter_by(active=True)
        grouped = group(rows)
        merged = merge(grouped)
            deep_one = merged[0]
            deep_two = merged[1]
            deep_three = deep_one + deep_two
    return totals
`

func TestCompress_PreservesShallowLines(t *testing.T) {
	got := Compress(sample, 2)

	for _, want := range []string{
		"def handler(request):",
		"    session = open_session(request)",
		"        rows = session.query(Item)",
		"    return totals",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("compressed output missing %q", want)
		}
	}
	if strings.Contains(got, "deep_one") || strings.Contains(got, "deep_three") {
		t.Error("depth-3 lines should be elided")
	}
	if n := strings.Count(got, Marker); n != 1 {
		t.Errorf("got %d markers, want 1 per contiguous elided block", n)
	}
}

func TestCompress_ShallowOrderPreserved(t *testing.T) {
	got := Compress(sample, 2)
	iSession := strings.Index(got, "session = open_session")
	iRows := strings.Index(got, "rows = session.query")
	iReturn := strings.Index(got, "return totals")
	if !(iSession < iRows && iRows < iReturn) {
		t.Error("shallow lines reordered by compression")
	}
}

func TestCompress_Idempotent(t *testing.T) {
	for _, depth := range []int{0, 1, 2, 3} {
		once := Compress(sample, depth)
		twice := Compress(once, depth)
		if once != twice {
			t.Errorf("depth %d: compress is not idempotent:\nonce:\n%s\ntwice:\n%s", depth, once, twice)
		}
	}
}

func TestCompress_MonotonicWithDepth(t *testing.T) {
	prev := -1
	// Deeper allowance must never preserve fewer original lines.
	for _, depth := range []int{0, 1, 2, 3, 4} {
		got := Compress(sample, depth)
		kept := 0
		for _, line := range strings.Split(got, "\n") {
			s := strings.TrimSpace(line)
			if s != "" && s != Marker {
				kept++
			}
		}
		if kept < prev {
			t.Errorf("depth %d preserves %d lines, fewer than depth-1's %d", depth, kept, prev)
		}
		prev = kept
	}
}

func TestCompress_ImportantLinesKeptRegardlessOfDepth(t *testing.T) {
	content := "class A:\n" +
		"                    import os\n" +
		"                    value = value + 1\n"
	got := Compress(content, 1)
	if !strings.Contains(got, "import os") {
		t.Error("import line must survive any depth")
	}
	if strings.Contains(got, "value = value + 1") {
		t.Error("deep non-structural line should be elided")
	}
}

func TestCompress_TabIndentation(t *testing.T) {
	content := "func run() {\n" +
		"\tx := start()\n" +
		"\t\t\t\tdeep1 := x + 1\n" +
		"\t\t\t\tdeep2 := deep1 + 1\n" +
		"}\n"
	got := Compress(content, 2)
	if !strings.Contains(got, "\tx := start()") {
		t.Error("shallow tab-indented line lost")
	}
	if strings.Contains(got, "deep2") {
		t.Error("deep tab-indented line should be elided")
	}
	if Compress(got, 2) != got {
		t.Error("tab compression not idempotent")
	}
}

func TestCompress_BlankLineCollapse(t *testing.T) {
	content := "top = 1\n\n\n\n\nbottom = 2\n"
	got := Compress(content, 3)
	if strings.Contains(got, "\n\n\n") {
		t.Error("blank runs should collapse to a single blank line")
	}
}

func TestCompress_EmptyInput(t *testing.T) {
	if got := Compress("", 3); got != "" {
		t.Errorf("empty input changed: %q", got)
	}
}

func TestCompress_MultilineStringPreserved(t *testing.T) {
	content := "def doc():\n" +
		"    s = \"\"\"\n" +
		"                        kept inside string\n" +
		"    \"\"\"\n"
	got := Compress(content, 1)
	if !strings.Contains(got, "kept inside string") {
		t.Error("lines inside multiline strings must be preserved")
	}
}

func TestTruncate(t *testing.T) {
	big := strings.Repeat("x := 1\n", 20000)
	got := Truncate(big, 15000)
	lines := strings.Split(got, "\n")
	// 15000 kept lines plus the trailing omission marker.
	if len(lines) != 15001 {
		t.Fatalf("got %d lines, want 15001", len(lines))
	}
	if !strings.Contains(lines[len(lines)-1], "truncated") {
		t.Errorf("missing omission marker, got %q", lines[len(lines)-1])
	}
}

func TestTruncate_SmallFileUntouched(t *testing.T) {
	content := "a\nb\nc\n"
	if got := Truncate(content, 100); got != content {
		t.Errorf("small file modified: %q", got)
	}
}
