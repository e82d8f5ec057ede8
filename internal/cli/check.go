package cli

import (
	"fmt"
	"os"
	"os/exec"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/yuyudhan/repo-analyzer/internal/config"
)

// providerKeys maps each provider to the env vars that can hold its key.
var providerKeys = map[string][]string{
	"claude": {"ANTHROPIC_API_KEY"},
	"openai": {"OPENAI_API_KEY"},
	"gemini": {"GEMINI_API_KEY", "GOOGLE_API_KEY"},
}

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the environment is ready for analysis",
	RunE: func(cmd *cobra.Command, args []string) error {
		godotenv.Load()
		ok := true

		if _, err := exec.LookPath("git"); err != nil {
			fmt.Fprintln(os.Stdout, "git:   MISSING (required for cloning and metadata)")
			ok = false
		} else {
			fmt.Fprintln(os.Stdout, "git:   ok")
		}

		cfg, err := config.Load(nil)
		if err != nil {
			return err
		}
		for provider, keys := range providerKeys {
			found := ""
			for _, key := range keys {
				if os.Getenv(key) != "" {
					found = key
					break
				}
			}
			marker := " "
			if provider == cfg.Provider {
				marker = "*"
			}
			if found != "" {
				fmt.Fprintf(os.Stdout, "%s %s: key found (%s)\n", marker, provider, found)
			} else {
				fmt.Fprintf(os.Stdout, "%s %s: no API key\n", marker, provider)
				if provider == cfg.Provider {
					ok = false
				}
			}
		}

		if !ok {
			exitCode = ExitRuntimeError
			fmt.Fprintln(os.Stdout, "\nEnvironment is not ready. '*' marks the configured provider.")
			return nil
		}
		fmt.Fprintln(os.Stdout, "\nEnvironment is ready.")
		return nil
	},
}
