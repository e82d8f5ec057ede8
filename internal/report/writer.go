package report

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"github.com/yuyudhan/repo-analyzer/internal/analyze"
)

// Saver persists all run artifacts under {outputDir}/{repoName}/.
type Saver struct {
	OutputDir string
}

// Paths are the artifact locations for one run.
type Paths struct {
	Dir      string
	Markdown string
	JSON     string
	Progress string
	Latest   string
}

// Layout computes the artifact paths for a run without touching disk. The
// timestamp prefix keeps runs sortable; the latest pointer is stable.
func (s *Saver) Layout(r *analyze.RunReport) Paths {
	dir := filepath.Join(s.OutputDir, r.RepoName)
	ts := r.Timestamp.Format("20060102_150405")
	base := fmt.Sprintf("%s_%s", ts, r.RepoName)
	return Paths{
		Dir:      dir,
		Markdown: filepath.Join(dir, base+"_analysis.md"),
		JSON:     filepath.Join(dir, base+"_summary.json"),
		Progress: filepath.Join(dir, base+"_progress.md"),
		Latest:   filepath.Join(dir, r.RepoName+"_latest.md"),
	}
}

// Save writes the markdown report and JSON summary. The latest pointer is
// refreshed only when at least one chunk succeeded, so a clean older
// report is never shadowed by an empty run.
func (s *Saver) Save(r *analyze.RunReport) (Paths, error) {
	paths := s.Layout(r)
	if err := os.MkdirAll(paths.Dir, 0o755); err != nil {
		return paths, fmt.Errorf("creating output directory: %w", err)
	}

	var md bytes.Buffer
	if err := (&MarkdownWriter{}).Write(&md, r); err != nil {
		return paths, err
	}
	if err := os.WriteFile(paths.Markdown, md.Bytes(), 0o644); err != nil {
		return paths, fmt.Errorf("writing markdown report: %w", err)
	}

	var js bytes.Buffer
	if err := (&JSONWriter{}).Write(&js, r); err != nil {
		return paths, err
	}
	if err := os.WriteFile(paths.JSON, js.Bytes(), 0o644); err != nil {
		return paths, fmt.Errorf("writing summary: %w", err)
	}

	if r.Succeeded() > 0 {
		if err := os.WriteFile(paths.Latest, md.Bytes(), 0o644); err != nil {
			return paths, fmt.Errorf("writing latest pointer: %w", err)
		}
	}
	return paths, nil
}
