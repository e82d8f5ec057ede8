package analyze

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/yuyudhan/repo-analyzer/internal/cache"
	"github.com/yuyudhan/repo-analyzer/internal/collect"
	"github.com/yuyudhan/repo-analyzer/internal/config"
	"github.com/yuyudhan/repo-analyzer/internal/envscan"
	"github.com/yuyudhan/repo-analyzer/internal/gitrepo"
	"github.com/yuyudhan/repo-analyzer/internal/providers"
)

// RunOptions is everything a single analysis run needs.
type RunOptions struct {
	Source       string // local path or clone URL
	Branch       string
	Mode         Mode
	HumanContext string

	Settings config.Settings
	Limits   config.RateLimit

	Cache *cache.Cache
	Log   *slog.Logger

	// OnOutcome receives each chunk's terminal outcome as it happens.
	OnOutcome func(ChunkOutcome)
}

// RunReport is the complete record of one analysis run, consumed by the
// report writers.
type RunReport struct {
	RunID     string
	RepoName  string
	RepoPath  string
	Source    string
	Timestamp time.Time
	Mode      Mode
	Provider  string
	Model     string

	FilesAnalyzed int
	TotalLines    int
	ChunkCount    int
	TokensUsed    int

	Outcomes []ChunkOutcome
	Result   *Result
	Git      gitrepo.Meta
	Env      []envscan.Var
}

// Succeeded counts chunks that reached StateSucceeded.
func (r *RunReport) Succeeded() int { return r.countState(StateSucceeded) }

// Failed counts chunks that exhausted their retries.
func (r *RunReport) Failed() int { return r.countState(StateFailed) }

// Aborted counts chunks terminated by a non-retryable failure or cancel.
func (r *RunReport) Aborted() int { return r.countState(StateAborted) }

func (r *RunReport) countState(s ChunkState) int {
	n := 0
	for _, out := range r.Outcomes {
		if out.State == s {
			n++
		}
	}
	return n
}

// Run executes a full analysis: acquire the repository, collect and plan
// files, dispatch every chunk, and assemble the run record. Errors before
// dispatch are fatal; once dispatch starts, per-chunk failures are
// recorded in the report instead.
func Run(ctx context.Context, opts RunOptions) (*RunReport, error) {
	log := opts.Log
	if log == nil {
		log = slog.Default()
	}
	st := opts.Settings

	local, err := gitrepo.Acquire(ctx, opts.Source, opts.Branch,
		time.Duration(st.CloneTimeoutSeconds)*time.Second)
	if err != nil {
		return nil, fmt.Errorf("acquiring repository: %w", err)
	}
	defer local.Cleanup()
	log.Info("repository acquired", "path", local.Path, "cloned", local.Cloned)

	meta := gitrepo.Info(ctx, local.Path)
	envVars := envscan.Scan(local.Path)

	files, err := collect.Collect(local.Path, collect.Options{})
	if err != nil {
		return nil, err
	}
	log.Info("files collected", "count", len(files))

	chunks, err := Plan(files, PlanOptions{
		FilesPerChunk:  st.FilesPerChunk,
		ChunkLines:     st.ChunkLines,
		MaxFileLines:   st.MaxFileLines,
		UseCompression: st.UseCompression,
		MaxIndentation: st.MaxIndentation,
	})
	if err != nil {
		return nil, err
	}
	log.Info("chunks planned", "count", len(chunks))

	provider, err := providers.New(st.Provider, st.Model)
	if err != nil {
		return nil, err
	}

	loop := &Loop{
		Provider:     provider,
		Model:        st.Model,
		Limits:       opts.Limits,
		Delay:        time.Duration(st.ProcessingDelay * float64(time.Second)),
		MaxTokens:    st.MaxTokens,
		Temperature:  st.Temperature,
		RepoName:     local.Name,
		Mode:         opts.Mode,
		HumanContext: opts.HumanContext,
		Cache:        opts.Cache,
		Log:          log,
		OnOutcome:    opts.OnOutcome,
	}
	result, outcomes, _ := loop.Run(ctx, chunks, RateLimitState{})

	report := &RunReport{
		RunID:         uuid.NewString(),
		RepoName:      local.Name,
		RepoPath:      local.Path,
		Source:        opts.Source,
		Timestamp:     time.Now(),
		Mode:          opts.Mode,
		Provider:      provider.Name(),
		Model:         st.Model,
		FilesAnalyzed: len(files),
		ChunkCount:    len(chunks),
		Outcomes:      outcomes,
		Result:        result,
		Git:           meta,
		Env:           envVars,
	}
	for _, f := range files {
		report.TotalLines += f.Lines
	}
	for _, out := range outcomes {
		report.TokensUsed += out.TokensUsed
	}
	log.Info("run complete",
		"succeeded", report.Succeeded(),
		"failed", report.Failed(),
		"aborted", report.Aborted(),
		"tokens", report.TokensUsed)
	return report, nil
}
