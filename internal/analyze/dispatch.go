package analyze

import (
	"context"
	"log/slog"
	"time"

	"github.com/yuyudhan/repo-analyzer/internal/cache"
	"github.com/yuyudhan/repo-analyzer/internal/config"
	"github.com/yuyudhan/repo-analyzer/internal/providers"
)

// burstWindow is the span the burst limit applies to.
const burstWindow = 10 * time.Second

// RateLimitState is the pacing state threaded through the dispatch loop.
// It is passed in and returned rather than hidden in the loop so callers
// (and tests) can observe and resume it.
type RateLimitState struct {
	// Window holds the send times of requests in the last minute.
	Window []time.Time
	// LastRequest is when the most recent request was sent.
	LastRequest time.Time
	// Retries counts retry attempts across the whole run.
	Retries int
}

// Loop dispatches chunks to a provider strictly sequentially, pacing
// requests with the provider's rate-limit policy.
type Loop struct {
	Provider providers.Analyzer
	Model    string
	Limits   config.RateLimit

	// Delay is the minimum gap between consecutive requests.
	Delay       time.Duration
	MaxTokens   int
	Temperature float64

	RepoName     string
	Mode         Mode
	HumanContext string

	Cache *cache.Cache
	Log   *slog.Logger

	// OnOutcome, if set, is called after each chunk reaches a terminal
	// state. Used for progress reporting.
	OnOutcome func(ChunkOutcome)

	// Now and Sleep are injectable for tests. Nil values use the real
	// clock.
	Now   func() time.Time
	Sleep func(ctx context.Context, d time.Duration) error
}

func (l *Loop) now() time.Time {
	if l.Now != nil {
		return l.Now()
	}
	return time.Now()
}

func (l *Loop) sleep(ctx context.Context, d time.Duration) error {
	if l.Sleep != nil {
		return l.Sleep(ctx, d)
	}
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func (l *Loop) log() *slog.Logger {
	if l.Log != nil {
		return l.Log
	}
	return slog.Default()
}

// Run dispatches all chunks in order and merges their responses into a
// Result. It never fails the whole run for a single bad chunk: transient
// failures exhaust their retries and the loop moves on. Authentication
// errors and context cancellation terminate the loop; chunks not yet
// submitted are marked aborted. Outcomes are returned for every chunk,
// in chunk order, along with the final pacing state.
func (l *Loop) Run(ctx context.Context, chunks []Chunk, st RateLimitState) (*Result, []ChunkOutcome, RateLimitState) {
	res := NewResult()
	outcomes := make([]ChunkOutcome, 0, len(chunks))
	terminate := false

	for _, c := range chunks {
		if terminate || ctx.Err() != nil {
			out := ChunkOutcome{Index: c.Index, Files: chunkPaths(c), State: StateAborted, Err: ctx.Err()}
			outcomes = append(outcomes, out)
			l.emit(out)
			continue
		}

		out, next := l.dispatch(ctx, c, len(chunks), st, res)
		st = next
		outcomes = append(outcomes, out)
		l.emit(out)

		if out.State == StateAborted {
			terminate = true
		}
	}
	return res, outcomes, st
}

func (l *Loop) emit(out ChunkOutcome) {
	if l.OnOutcome != nil {
		l.OnOutcome(out)
	}
}

// dispatch runs one chunk to a terminal state.
func (l *Loop) dispatch(ctx context.Context, c Chunk, total int, st RateLimitState, res *Result) (ChunkOutcome, RateLimitState) {
	out := ChunkOutcome{Index: c.Index, Files: chunkPaths(c), State: StateInFlight}
	log := l.log().With("chunk", c.Index, "files", len(c.Files))

	userPrompt := UserPrompt(l.RepoName, c, total, l.HumanContext)
	req := providers.Request{
		SystemPrompt: SystemPrompt(l.Mode),
		UserPrompt:   userPrompt,
		MaxTokens:    l.MaxTokens,
		Temperature:  l.Temperature,
	}

	cacheKey := ""
	if l.Cache != nil && l.Cache.Enabled() {
		cacheKey = cache.BuildKey(l.Provider.Name(), l.Model, string(l.Mode), userPrompt)
		if body, ok := l.Cache.Get(cacheKey); ok {
			log.Debug("cache hit, skipping request")
			MergeResponse(res, body)
			out.State = StateSucceeded
			out.FromCache = true
			return out, st
		}
	}

	maxRetries := l.Limits.MaxRetries
	if maxRetries <= 0 {
		maxRetries = 1
	}

	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		var err error
		st, err = l.wait(ctx, st)
		if err != nil {
			out.State = StateAborted
			out.Err = err
			return out, st
		}

		out.Attempts = attempt
		st = l.record(st)
		resp, err := l.Provider.Analyze(ctx, req)
		if err == nil {
			MergeResponse(res, resp.Content)
			out.State = StateSucceeded
			out.TokensUsed = resp.TokensUsed
			if cacheKey != "" {
				if cerr := l.Cache.Put(cacheKey, resp.Content); cerr != nil {
					log.Warn("cache write failed", "error", cerr)
				}
			}
			return out, st
		}

		lastErr = err
		// Non-retryable failures recur deterministically, so the run
		// aborts rather than burning the remaining chunks.
		if !providers.IsRetryable(err) || ctx.Err() != nil {
			log.Error("aborting run", "error", err)
			out.State = StateAborted
			out.Err = err
			return out, st
		}
		if attempt == maxRetries {
			break
		}

		backoff := l.backoff(err, attempt)
		st.Retries++
		log.Warn("retrying chunk", "attempt", attempt, "backoff", backoff, "error", err)
		if serr := l.sleep(ctx, backoff); serr != nil {
			out.State = StateAborted
			out.Err = serr
			return out, st
		}
	}

	log.Error("chunk failed after retries", "attempts", out.Attempts, "error", lastErr)
	out.State = StateFailed
	out.Err = lastErr
	return out, st
}

// wait blocks until the pacing policy allows the next request: the
// configured inter-request delay, the burst gate, and the per-minute
// sliding window.
func (l *Loop) wait(ctx context.Context, st RateLimitState) (RateLimitState, error) {
	now := l.now()

	if !st.LastRequest.IsZero() && l.Delay > 0 {
		if gap := l.Delay - now.Sub(st.LastRequest); gap > 0 {
			if err := l.sleep(ctx, gap); err != nil {
				return st, err
			}
			now = l.now()
		}
	}

	st.Window = prune(st.Window, now)

	if b := l.Limits.BurstLimit; b > 0 && len(st.Window) >= b {
		anchor := st.Window[len(st.Window)-b]
		if wait := burstWindow - now.Sub(anchor); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return st, err
			}
			now = l.now()
			st.Window = prune(st.Window, now)
		}
	}

	if rpm := l.Limits.RequestsPerMinute; rpm > 0 && len(st.Window) >= rpm {
		oldest := st.Window[len(st.Window)-rpm]
		if wait := time.Minute - now.Sub(oldest); wait > 0 {
			if err := l.sleep(ctx, wait); err != nil {
				return st, err
			}
			now = l.now()
			st.Window = prune(st.Window, now)
		}
	}
	return st, nil
}

// record notes a request send in the pacing state.
func (l *Loop) record(st RateLimitState) RateLimitState {
	now := l.now()
	st.LastRequest = now
	st.Window = append(prune(st.Window, now), now)
	return st
}

// backoff chooses the retry pause: the provider's hint when present,
// otherwise the configured base doubled per attempt.
func (l *Loop) backoff(err error, attempt int) time.Duration {
	if hint, ok := providers.RetryAfterHint(err); ok {
		return hint
	}
	base := time.Duration(l.Limits.RetryAfter * float64(time.Second))
	if base <= 0 {
		base = time.Second
	}
	return base << (attempt - 1)
}

func prune(window []time.Time, now time.Time) []time.Time {
	cutoff := now.Add(-time.Minute)
	i := 0
	for i < len(window) && !window[i].After(cutoff) {
		i++
	}
	return window[i:]
}

func chunkPaths(c Chunk) []string {
	paths := make([]string, len(c.Files))
	for i, fp := range c.Files {
		paths[i] = fp.Record.Path
	}
	return paths
}
