package report

import (
	"bytes"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/yuyudhan/repo-analyzer/internal/analyze"
	"github.com/yuyudhan/repo-analyzer/internal/envscan"
	"github.com/yuyudhan/repo-analyzer/internal/gitrepo"
)

func sampleReport() *analyze.RunReport {
	res := analyze.NewResult()
	res.Append("Purpose", "A demo service.")
	res.Append("Technology Stack Analysis", "Go, Postgres.")
	return &analyze.RunReport{
		RunID:         "run-123",
		RepoName:      "demo",
		Source:        "/tmp/demo",
		Timestamp:     time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC),
		Mode:          analyze.ModeAnalysis,
		Provider:      "claude",
		Model:         "claude-3-5-sonnet-20241022",
		FilesAnalyzed: 12,
		TotalLines:    3400,
		ChunkCount:    3,
		TokensUsed:    4200,
		Outcomes: []analyze.ChunkOutcome{
			{Index: 1, Files: []string{"main.go"}, State: analyze.StateSucceeded, Attempts: 1},
			{Index: 2, Files: []string{"db.go"}, State: analyze.StateSucceeded, Attempts: 2},
			{Index: 3, Files: []string{"web.go"}, State: analyze.StateFailed, Attempts: 3,
				Err: errors.New("rate limited")},
		},
		Result: res,
		Git: gitrepo.Meta{
			IsRepo: true, Branch: "main", Commits: 42,
			Last: gitrepo.Commit{Hash: "abcdef1234567890", Subject: "fix things", Author: "Dev", Date: "2026-03-13"},
		},
		Env: []envscan.Var{
			{Key: "DATABASE_PASSWORD", Value: "changeme-longer", Comment: "required", File: ".env.example"},
			{Key: "PORT", Value: "8080", File: ".env.example"},
		},
	}
}

func TestMarkdown_SectionsInOrder(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	last := -1
	for _, section := range analyze.SectionNames {
		idx := strings.Index(out, "## "+section)
		if idx < 0 {
			t.Fatalf("section %q missing from markdown", section)
		}
		if idx < last {
			t.Errorf("section %q out of order", section)
		}
		last = idx
	}
}

func TestMarkdown_UnavailableSectionsMarked(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	if !strings.Contains(out, unavailable) {
		t.Error("empty sections should be marked unavailable, not omitted")
	}
	if !strings.Contains(out, "A demo service.") {
		t.Error("populated section content missing")
	}
}

func TestMarkdown_MasksEnvValues(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "changeme-longer") {
		t.Error("sensitive env value must be masked")
	}
	if !strings.Contains(out, "8080") {
		t.Error("non-sensitive env value should pass through")
	}
	if !strings.Contains(out, "`DATABASE_PASSWORD`") {
		t.Error("env key should be listed")
	}
}

func TestMarkdown_GitMetadata(t *testing.T) {
	var buf bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "Branch: main") {
		t.Error("branch missing")
	}
	if !strings.Contains(out, "`abcdef12`") {
		t.Error("short hash missing")
	}
}

func TestJSON_MirrorsSections(t *testing.T) {
	var buf bytes.Buffer
	if err := (&JSONWriter{}).Write(&buf, sampleReport()); err != nil {
		t.Fatalf("Write: %v", err)
	}
	var s Summary
	if err := json.Unmarshal(buf.Bytes(), &s); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}

	if len(s.Sections) != len(analyze.SectionNames) {
		t.Errorf("sections = %d, want %d (empty ones included)", len(s.Sections), len(analyze.SectionNames))
	}
	if s.Sections["Purpose"] != "A demo service." {
		t.Errorf("Purpose = %q", s.Sections["Purpose"])
	}
	if s.Chunks.Succeeded != 2 || s.Chunks.Failed != 1 {
		t.Errorf("chunk counts = %+v", s.Chunks)
	}
	if len(s.ChunkOutcomes) != 3 {
		t.Fatalf("outcomes = %d", len(s.ChunkOutcomes))
	}
	if s.ChunkOutcomes[2].Error != "rate limited" {
		t.Errorf("outcome error = %q", s.ChunkOutcomes[2].Error)
	}
}

func TestSaver_Layout(t *testing.T) {
	s := &Saver{OutputDir: "out"}
	paths := s.Layout(sampleReport())

	if paths.Dir != filepath.Join("out", "demo") {
		t.Errorf("Dir = %q", paths.Dir)
	}
	wantMD := filepath.Join("out", "demo", "20260314_093000_demo_analysis.md")
	if paths.Markdown != wantMD {
		t.Errorf("Markdown = %q, want %q", paths.Markdown, wantMD)
	}
	if filepath.Base(paths.Latest) != "demo_latest.md" {
		t.Errorf("Latest = %q", paths.Latest)
	}
}

func TestSaver_SaveWritesArtifacts(t *testing.T) {
	s := &Saver{OutputDir: t.TempDir()}
	paths, err := s.Save(sampleReport())
	if err != nil {
		t.Fatalf("Save: %v", err)
	}

	for _, p := range []string{paths.Markdown, paths.JSON, paths.Latest} {
		if _, err := os.Stat(p); err != nil {
			t.Errorf("missing artifact %s: %v", p, err)
		}
	}

	md, _ := os.ReadFile(paths.Markdown)
	latest, _ := os.ReadFile(paths.Latest)
	if !bytes.Equal(md, latest) {
		t.Error("latest pointer should mirror the markdown report")
	}
}

func TestSaver_NoLatestWithoutSuccess(t *testing.T) {
	r := sampleReport()
	for i := range r.Outcomes {
		r.Outcomes[i].State = analyze.StateFailed
	}
	s := &Saver{OutputDir: t.TempDir()}
	paths, err := s.Save(r)
	if err != nil {
		t.Fatalf("Save: %v", err)
	}
	if _, err := os.Stat(paths.Latest); !os.IsNotExist(err) {
		t.Error("latest pointer should not be written for a fully failed run")
	}
	if _, err := os.Stat(paths.Markdown); err != nil {
		t.Error("the dated report should still be written")
	}
}

func TestProgress_RecordsOutcomes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "progress.md")
	p, err := NewProgress(path, "demo")
	if err != nil {
		t.Fatalf("NewProgress: %v", err)
	}

	r := sampleReport()
	for _, out := range r.Outcomes {
		p.Record(out)
	}
	if err := p.Finish(r); err != nil {
		t.Fatalf("Finish: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	out := string(data)
	if !strings.Contains(out, "chunk 1: succeeded") {
		t.Error("missing chunk 1 line")
	}
	if !strings.Contains(out, "chunk 3: failed") || !strings.Contains(out, "rate limited") {
		t.Error("failed chunk should carry its error")
	}
	if !strings.Contains(out, "Succeeded: 2 | Failed: 1 | Aborted: 0") {
		t.Error("missing closing totals")
	}
}
