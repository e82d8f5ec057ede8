package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	if cfg.Provider != "claude" {
		t.Errorf("Provider = %q, want claude", cfg.Provider)
	}
	if cfg.FilesPerChunk != 8 {
		t.Errorf("FilesPerChunk = %d, want 8", cfg.FilesPerChunk)
	}
	if cfg.ChunkLines != 150 {
		t.Errorf("ChunkLines = %d, want 150", cfg.ChunkLines)
	}
	if cfg.MaxFileLines != 15000 {
		t.Errorf("MaxFileLines = %d, want 15000", cfg.MaxFileLines)
	}
	if !cfg.UseCompression {
		t.Error("UseCompression should default to true")
	}
	if cfg.MaxIndentation != 3 {
		t.Errorf("MaxIndentation = %d, want 3", cfg.MaxIndentation)
	}
	if cfg.ProcessingDelay != 2.0 {
		t.Errorf("ProcessingDelay = %v, want 2.0", cfg.ProcessingDelay)
	}
	if cfg.CloneTimeoutSeconds != 300 {
		t.Errorf("CloneTimeoutSeconds = %d, want 300", cfg.CloneTimeoutSeconds)
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir()) // avoid reading a real config file
	t.Setenv("REPO_ANALYZER_PROVIDER", "openai")
	t.Setenv("REPO_ANALYZER_FILES_PER_CHUNK", "4")
	t.Setenv("REPO_ANALYZER_NO_COMPRESSION", "true")

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("Provider = %q, want openai", cfg.Provider)
	}
	if cfg.FilesPerChunk != 4 {
		t.Errorf("FilesPerChunk = %d, want 4", cfg.FilesPerChunk)
	}
	if cfg.UseCompression {
		t.Error("UseCompression should be disabled by env")
	}
}

func TestFlagOverridesBeatEnv(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	t.Setenv("REPO_ANALYZER_PROVIDER", "openai")

	cfg, err := Load(map[string]string{
		"provider":      "gemini",
		"filesPerChunk": "2",
	})
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "gemini" {
		t.Errorf("Provider = %q, want gemini", cfg.Provider)
	}
	if cfg.FilesPerChunk != 2 {
		t.Errorf("FilesPerChunk = %d, want 2", cfg.FilesPerChunk)
	}
}

func TestFileMerge(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	cfgDir := filepath.Join(dir, "repo-analyzer")
	if err := os.MkdirAll(cfgDir, 0o755); err != nil {
		t.Fatal(err)
	}
	content := `{"model": "gpt-4o", "filesPerChunk": 6}`
	if err := os.WriteFile(filepath.Join(cfgDir, "config.json"), []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(nil)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Model != "gpt-4o" {
		t.Errorf("Model = %q, want gpt-4o", cfg.Model)
	}
	if cfg.FilesPerChunk != 6 {
		t.Errorf("FilesPerChunk = %d, want 6", cfg.FilesPerChunk)
	}
	// Untouched keys keep defaults.
	if cfg.Provider != "claude" {
		t.Errorf("Provider = %q, want claude", cfg.Provider)
	}
}

func TestInvalidOverride(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	if _, err := Load(map[string]string{"filesPerChunk": "zero"}); err == nil {
		t.Error("expected error for non-numeric filesPerChunk")
	}
	if _, err := Load(map[string]string{"bogus": "1"}); err == nil {
		t.Error("expected error for unknown key")
	}
}

func TestRateLimitDefaults(t *testing.T) {
	table := DefaultRateLimits()

	claude := table.For("claude")
	if claude.RequestsPerMinute != 50 || claude.BurstLimit != 5 || claude.MaxRetries != 3 {
		t.Errorf("claude limits = %+v", claude)
	}

	unknown := table.For("mistral")
	if unknown.RequestsPerMinute != 30 || unknown.MaxRetries != 2 {
		t.Errorf("unknown provider should fall back to default, got %+v", unknown)
	}
}

func TestLoadRateLimitsMerge(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	content := `claude:
  requests_per_minute: 10
local:
  requests_per_minute: 1000
  max_retries: 1
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}

	table, err := LoadRateLimits(path)
	if err != nil {
		t.Fatalf("LoadRateLimits: %v", err)
	}

	claude := table.For("claude")
	if claude.RequestsPerMinute != 10 {
		t.Errorf("claude rpm = %d, want 10 (overridden)", claude.RequestsPerMinute)
	}
	if claude.MaxRetries != 3 {
		t.Errorf("claude max_retries = %d, want 3 (kept from defaults)", claude.MaxRetries)
	}

	local := table.For("local")
	if local.RequestsPerMinute != 1000 || local.MaxRetries != 1 {
		t.Errorf("local limits = %+v", local)
	}
	// Unset fields inherit from the default entry.
	if local.RetryAfter != 3.0 {
		t.Errorf("local retry_after = %v, want 3.0", local.RetryAfter)
	}
}

func TestLoadRateLimitsMissingFile(t *testing.T) {
	if _, err := LoadRateLimits("/nonexistent/limits.yaml"); err == nil {
		t.Error("expected error for missing file")
	}
}
