package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

const version = "0.1.0"

// Exit codes. A run that produced at least one succeeded chunk is a
// success even when other chunks failed.
const (
	ExitSuccess      = 0
	ExitNoResults    = 1
	ExitUsageError   = 2
	ExitAuthError    = 3
	ExitRuntimeError = 4
)

var rootCmd = &cobra.Command{
	Use:   "repo-analyzer",
	Short: "LLM-powered repository analysis CLI",
	Long: "repo-analyzer clones or opens a repository, splits its source into\n" +
		"chunks, sends them to an LLM provider under rate-limit pacing, and\n" +
		"assembles a structured markdown and JSON analysis report.",
}

// Run executes the root command and returns an exit code.
func Run() int {
	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	if err := rootCmd.Execute(); err != nil {
		// Cobra already prints the error
		return ExitUsageError
	}

	return exitCode
}

// exitCode is set by command handlers to control the process exit code.
var exitCode = ExitSuccess

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print repo-analyzer version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(os.Stdout, "repo-analyzer version %s\n", version)
	},
}
