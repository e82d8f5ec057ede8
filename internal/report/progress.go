package report

import (
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/yuyudhan/repo-analyzer/internal/analyze"
)

// Progress is an append-only log of chunk outcomes, flushed per event so
// an interrupted run still leaves a readable trail.
type Progress struct {
	mu sync.Mutex
	f  *os.File
}

// NewProgress opens (creating or truncating) the progress file and writes
// its header.
func NewProgress(path, repoName string) (*Progress, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("creating progress file: %w", err)
	}
	fmt.Fprintf(f, "# Analysis Progress: %s\n\n", repoName)
	fmt.Fprintf(f, "Started: %s\n\n", time.Now().Format("2006-01-02 15:04:05"))
	return &Progress{f: f}, nil
}

// Record appends one chunk outcome.
func (p *Progress) Record(out analyze.ChunkOutcome) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f == nil {
		return
	}
	fmt.Fprintf(p.f, "- chunk %d: %s", out.Index, out.State)
	if out.Attempts > 1 {
		fmt.Fprintf(p.f, " (attempts: %d)", out.Attempts)
	}
	if out.FromCache {
		fmt.Fprintf(p.f, " (cached)")
	}
	if out.Err != nil {
		fmt.Fprintf(p.f, " (error: %v)", out.Err)
	}
	fmt.Fprintf(p.f, "\n  files: %s\n", joinPaths(out.Files))
	p.f.Sync()
}

// Finish writes the closing totals and closes the file.
func (p *Progress) Finish(r *analyze.RunReport) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.f == nil {
		return nil
	}
	fmt.Fprintf(p.f, "\nFinished: %s\n", time.Now().Format("2006-01-02 15:04:05"))
	fmt.Fprintf(p.f, "Succeeded: %d | Failed: %d | Aborted: %d\n",
		r.Succeeded(), r.Failed(), r.Aborted())
	err := p.f.Close()
	p.f = nil
	return err
}

func joinPaths(paths []string) string {
	if len(paths) == 0 {
		return "(none)"
	}
	out := ""
	for i, p := range paths {
		if i > 0 {
			out += ", "
		}
		out += p
	}
	return out
}
