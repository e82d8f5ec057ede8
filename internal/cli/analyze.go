package cli

import (
	"bufio"
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yuyudhan/repo-analyzer/internal/analyze"
	"github.com/yuyudhan/repo-analyzer/internal/cache"
	"github.com/yuyudhan/repo-analyzer/internal/config"
	"github.com/yuyudhan/repo-analyzer/internal/gitrepo"
	"github.com/yuyudhan/repo-analyzer/internal/providers"
	"github.com/yuyudhan/repo-analyzer/internal/report"
)

var (
	flagRepo            string
	flagBranch          string
	flagMode            string
	flagLLM             string
	flagModel           string
	flagOutputDir       string
	flagFilesPerChunk   int
	flagUseCompression  bool
	flagNoCompression   bool
	flagMaxIndentation  int
	flagProcessingDelay float64
	flagRateLimits      string
	flagHumanContext    string
	flagConversation    bool
	flagNoCache         bool
	flagVerbose         bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Analyze a repository and write the report artifacts",
	RunE:  runAnalyze,
}

func init() {
	f := analyzeCmd.Flags()
	f.StringVar(&flagRepo, "repo", "", "Repository path or clone URL (required)")
	f.StringVar(&flagBranch, "branch", "", "Branch to analyze")
	f.StringVar(&flagMode, "mode", "analysis", "Analysis mode (analysis, developer)")
	f.StringVar(&flagLLM, "llm", "", "LLM provider (claude, openai, gemini)")
	f.StringVar(&flagModel, "model", "", "Model name")
	f.StringVar(&flagOutputDir, "output-dir", "", "Directory for report artifacts")
	f.IntVar(&flagFilesPerChunk, "files-per-chunk", 0, "Maximum files per analysis chunk")
	f.BoolVar(&flagUseCompression, "use-compression", true, "Elide deeply nested code in large files")
	f.BoolVar(&flagNoCompression, "no-compression", false, "Disable code compression")
	f.IntVar(&flagMaxIndentation, "max-indentation", 0, "Deepest indentation level kept when compressing")
	f.Float64Var(&flagProcessingDelay, "processing-delay", -1, "Minimum seconds between API requests")
	f.StringVar(&flagRateLimits, "rate-limits", "", "YAML file overriding provider rate limits")
	f.StringVar(&flagHumanContext, "human-context", "", "Extra context passed to the model with every chunk")
	f.BoolVar(&flagConversation, "conversation-mode", false, "Ask follow-up questions after the analysis")
	f.BoolVar(&flagNoCache, "no-cache", false, "Bypass the response cache")
	f.BoolVar(&flagVerbose, "verbose", false, "Enable debug logging")
	analyzeCmd.MarkFlagRequired("repo")
}

func buildOverrides() map[string]string {
	m := make(map[string]string)
	if flagLLM != "" {
		m["provider"] = flagLLM
	}
	if flagModel != "" {
		m["model"] = flagModel
	}
	if flagOutputDir != "" {
		m["outputDir"] = flagOutputDir
	}
	if flagFilesPerChunk > 0 {
		m["filesPerChunk"] = fmt.Sprintf("%d", flagFilesPerChunk)
	}
	if flagMaxIndentation > 0 {
		m["maxIndentation"] = fmt.Sprintf("%d", flagMaxIndentation)
	}
	if flagNoCompression {
		m["useCompression"] = "false"
	} else if !flagUseCompression {
		m["useCompression"] = "false"
	}
	if flagProcessingDelay >= 0 {
		m["processingDelay"] = fmt.Sprintf("%g", flagProcessingDelay)
	}
	if flagRateLimits != "" {
		m["rateLimitsFile"] = flagRateLimits
	}
	return m
}

func setupLogging(verbose bool) *slog.Logger {
	level := slog.LevelWarn
	if verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(log)
	return log
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	// Local .env supplies provider API keys; absence is fine.
	godotenv.Load()
	log := setupLogging(flagVerbose)

	mode, err := analyze.ParseMode(flagMode)
	if err != nil {
		exitCode = ExitUsageError
		return err
	}

	cfg, err := config.Load(buildOverrides())
	if err != nil {
		exitCode = ExitUsageError
		return err
	}
	limits, err := config.LoadRateLimits(cfg.RateLimitsFile)
	if err != nil {
		exitCode = ExitUsageError
		return err
	}

	var respCache *cache.Cache
	if cfg.Cache.Enabled && !flagNoCache {
		respCache, err = cache.New(true, cfg.Cache.Dir, cfg.Cache.TTLSeconds, cfg.Cache.MemoryEntries)
		if err != nil {
			log.Warn("cache unavailable, continuing without it", "error", err)
			respCache = nil
		}
	}

	// Interrupt stops before the next chunk submission; accumulated
	// results are still flushed below.
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	saver := &report.Saver{OutputDir: cfg.OutputDir}
	started := time.Now()
	progress, perr := openProgress(saver, flagRepo, started)
	if perr != nil {
		log.Warn("progress log unavailable", "error", perr)
	}

	opts := analyze.RunOptions{
		Source:       flagRepo,
		Branch:       flagBranch,
		Mode:         mode,
		HumanContext: flagHumanContext,
		Settings:     cfg,
		Limits:       limits.For(cfg.Provider),
		Cache:        respCache,
		Log:          log,
		OnOutcome: func(out analyze.ChunkOutcome) {
			fmt.Fprintf(os.Stderr, "chunk %d: %s\n", out.Index, out.State)
			if progress != nil {
				progress.Record(out)
			}
		},
	}

	runReport, err := analyze.Run(ctx, opts)
	if err != nil {
		if providers.IsAuthError(err) {
			exitCode = ExitAuthError
		} else {
			exitCode = ExitRuntimeError
		}
		return err
	}
	// The progress log and the report artifacts share the start
	// timestamp so one run's files sort together.
	runReport.Timestamp = started

	if progress != nil {
		if err := progress.Finish(runReport); err != nil {
			log.Warn("closing progress log", "error", err)
		}
	}

	paths, err := saver.Save(runReport)
	if err != nil {
		exitCode = ExitRuntimeError
		return err
	}

	printSummary(runReport, paths)

	if runReport.Succeeded() == 0 {
		for _, out := range runReport.Outcomes {
			if out.State == analyze.StateAborted && providers.IsAuthError(out.Err) {
				exitCode = ExitAuthError
				return nil
			}
		}
		exitCode = ExitNoResults
		return nil
	}

	if flagConversation {
		if err := runConversation(ctx, cfg, runReport); err != nil {
			log.Warn("conversation ended", "error", err)
		}
	}
	return nil
}

// openProgress creates the progress log up front so an interrupted run
// still leaves a trail. The saver's layout is reused for the path.
func openProgress(saver *report.Saver, source string, started time.Time) (*report.Progress, error) {
	stub := &analyze.RunReport{
		RepoName:  gitrepo.RepoName(source),
		Timestamp: started,
	}
	paths := saver.Layout(stub)
	if err := os.MkdirAll(paths.Dir, 0o755); err != nil {
		return nil, err
	}
	return report.NewProgress(paths.Progress, stub.RepoName)
}

func printSummary(r *analyze.RunReport, paths report.Paths) {
	fmt.Fprintf(os.Stdout, "\nAnalysis of %s complete.\n", r.RepoName)
	fmt.Fprintf(os.Stdout, "  chunks: %d succeeded, %d failed, %d aborted (of %d)\n",
		r.Succeeded(), r.Failed(), r.Aborted(), r.ChunkCount)
	fmt.Fprintf(os.Stdout, "  tokens: %d\n", r.TokensUsed)
	fmt.Fprintf(os.Stdout, "  report: %s\n", paths.Markdown)
	fmt.Fprintf(os.Stdout, "  summary: %s\n", paths.JSON)
	if r.Succeeded() > 0 {
		fmt.Fprintf(os.Stdout, "  latest: %s\n", paths.Latest)
	}
}

func runConversation(ctx context.Context, cfg config.Settings, r *analyze.RunReport) error {
	provider, err := providers.New(cfg.Provider, cfg.Model)
	if err != nil {
		return err
	}
	conv, err := analyze.NewConversation(provider, r, cfg.MaxTokens, cfg.Temperature)
	if err != nil {
		return err
	}

	fmt.Fprintln(os.Stdout, "\nConversation mode. Ask about the analysis; 'exit' to quit.")
	scanner := bufio.NewScanner(os.Stdin)
	for {
		fmt.Fprint(os.Stdout, "> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		question := scanner.Text()
		if question == "exit" || question == "quit" {
			return nil
		}
		answer, err := conv.Ask(ctx, question)
		if err != nil {
			if providers.IsAuthError(err) || ctx.Err() != nil {
				return err
			}
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
			continue
		}
		fmt.Fprintf(os.Stdout, "%s\n", answer)
	}
}
