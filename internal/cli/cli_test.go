package cli

import (
	"testing"
)

// resetFlags resets all package-level flag variables to their zero values.
func resetFlags() {
	flagRepo = ""
	flagBranch = ""
	flagMode = "analysis"
	flagLLM = ""
	flagModel = ""
	flagOutputDir = ""
	flagFilesPerChunk = 0
	flagUseCompression = true
	flagNoCompression = false
	flagMaxIndentation = 0
	flagProcessingDelay = -1
	flagRateLimits = ""
	flagHumanContext = ""
	flagConversation = false
	flagNoCache = false
	flagVerbose = false
}

func TestBuildOverrides_Empty(t *testing.T) {
	resetFlags()
	m := buildOverrides()
	if len(m) != 0 {
		t.Errorf("overrides = %v, want empty", m)
	}
}

func TestBuildOverrides_Values(t *testing.T) {
	resetFlags()
	flagLLM = "openai"
	flagModel = "gpt-4o"
	flagFilesPerChunk = 4
	flagProcessingDelay = 1.5
	flagNoCompression = true

	m := buildOverrides()
	want := map[string]string{
		"provider":        "openai",
		"model":           "gpt-4o",
		"filesPerChunk":   "4",
		"processingDelay": "1.5",
		"useCompression":  "false",
	}
	for k, v := range want {
		if m[k] != v {
			t.Errorf("overrides[%q] = %q, want %q", k, m[k], v)
		}
	}
	if len(m) != len(want) {
		t.Errorf("overrides = %v", m)
	}
}

func TestBuildOverrides_ZeroDelayIsExplicit(t *testing.T) {
	resetFlags()
	flagProcessingDelay = 0

	m := buildOverrides()
	if m["processingDelay"] != "0" {
		t.Errorf("a zero delay must override the default, got %v", m)
	}
}

func TestProviderKeysCoverFactory(t *testing.T) {
	for _, provider := range []string{"claude", "openai", "gemini"} {
		if _, ok := providerKeys[provider]; !ok {
			t.Errorf("check command has no key mapping for %s", provider)
		}
	}
}
