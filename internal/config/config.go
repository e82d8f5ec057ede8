// Package config holds run settings and the per-provider rate-limit table.
// Effective settings are built by merging defaults <- config file <- env
// <- CLI flag overrides.
package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strconv"
)

// Settings represents the repo-analyzer configuration.
type Settings struct {
	Provider string `json:"provider"`
	Model    string `json:"model"`

	OutputDir string `json:"outputDir"`

	FilesPerChunk  int  `json:"filesPerChunk"`
	ChunkLines     int  `json:"chunkLines"`
	MaxFileLines   int  `json:"maxFileLines"`
	UseCompression bool `json:"useCompression"`
	MaxIndentation int  `json:"maxIndentation"`

	MaxTokens   int     `json:"maxTokens"`
	Temperature float64 `json:"temperature"`

	// ProcessingDelay is the minimum gap between API requests, in seconds.
	ProcessingDelay float64 `json:"processingDelay"`
	// MaxConcurrent bounds a future parallel dispatch mode. The default
	// policy is strictly sequential regardless of this value.
	MaxConcurrent int `json:"maxConcurrent"`

	CloneTimeoutSeconds int `json:"cloneTimeoutSeconds"`

	RateLimitsFile string      `json:"rateLimitsFile,omitempty"`
	Cache          CacheConfig `json:"cache"`
}

// CacheConfig controls response caching.
type CacheConfig struct {
	Enabled       bool   `json:"enabled"`
	Dir           string `json:"dir,omitempty"`
	TTLSeconds    int    `json:"ttlSeconds"`
	MemoryEntries int    `json:"memoryEntries"`
}

// Default returns Settings with all defaults applied.
func Default() Settings {
	return Settings{
		Provider:            "claude",
		Model:               "claude-3-5-sonnet-20241022",
		OutputDir:           "repo_analysis",
		FilesPerChunk:       8,
		ChunkLines:          150,
		MaxFileLines:        15000,
		UseCompression:      true,
		MaxIndentation:      3,
		MaxTokens:           8000,
		Temperature:         0.1,
		ProcessingDelay:     2.0,
		MaxConcurrent:       3,
		CloneTimeoutSeconds: 300,
		Cache: CacheConfig{
			Enabled:       true,
			TTLSeconds:    86400,
			MemoryEntries: 128,
		},
	}
}

// ConfigDir returns the platform-appropriate config directory.
func ConfigDir() (string, error) {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "repo-analyzer"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("cannot determine home directory: %w", err)
	}
	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support", "repo-analyzer"), nil
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, "repo-analyzer"), nil
		}
		return filepath.Join(home, "AppData", "Roaming", "repo-analyzer"), nil
	default:
		return filepath.Join(home, ".config", "repo-analyzer"), nil
	}
}

// ConfigPath returns the full path to the config file.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.json"), nil
}

// LoadFile loads settings from the config file. Returns zero Settings and
// nil error if the file doesn't exist.
func LoadFile() (Settings, error) {
	path, err := ConfigPath()
	if err != nil {
		return Settings{}, err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Settings{}, nil
		}
		return Settings{}, fmt.Errorf("reading config file: %w", err)
	}
	var cfg Settings
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Settings{}, fmt.Errorf("parsing config file: %w", err)
	}
	return cfg, nil
}

// Load builds the effective settings by merging: defaults <- file <- env
// <- overrides. The overrides map comes from CLI flags (only set values
// should be present).
func Load(overrides map[string]string) (Settings, error) {
	cfg := Default()

	fileCfg, err := LoadFile()
	if err != nil {
		return Settings{}, err
	}
	mergeFile(&cfg, fileCfg)
	mergeEnv(&cfg)
	if err := mergeOverrides(&cfg, overrides); err != nil {
		return Settings{}, err
	}
	return cfg, nil
}

func mergeFile(dst *Settings, src Settings) {
	if src.Provider != "" {
		dst.Provider = src.Provider
	}
	if src.Model != "" {
		dst.Model = src.Model
	}
	if src.OutputDir != "" {
		dst.OutputDir = src.OutputDir
	}
	if src.FilesPerChunk > 0 {
		dst.FilesPerChunk = src.FilesPerChunk
	}
	if src.ChunkLines > 0 {
		dst.ChunkLines = src.ChunkLines
	}
	if src.MaxFileLines > 0 {
		dst.MaxFileLines = src.MaxFileLines
	}
	if src.MaxIndentation > 0 {
		dst.MaxIndentation = src.MaxIndentation
	}
	if src.MaxTokens > 0 {
		dst.MaxTokens = src.MaxTokens
	}
	if src.Temperature > 0 {
		dst.Temperature = src.Temperature
	}
	if src.ProcessingDelay > 0 {
		dst.ProcessingDelay = src.ProcessingDelay
	}
	if src.MaxConcurrent > 0 {
		dst.MaxConcurrent = src.MaxConcurrent
	}
	if src.CloneTimeoutSeconds > 0 {
		dst.CloneTimeoutSeconds = src.CloneTimeoutSeconds
	}
	if src.RateLimitsFile != "" {
		dst.RateLimitsFile = src.RateLimitsFile
	}
	if src.Cache.Dir != "" {
		dst.Cache.Dir = src.Cache.Dir
	}
	if src.Cache.TTLSeconds > 0 {
		dst.Cache.TTLSeconds = src.Cache.TTLSeconds
	}
	if src.Cache.MemoryEntries > 0 {
		dst.Cache.MemoryEntries = src.Cache.MemoryEntries
	}
}

func mergeEnv(cfg *Settings) {
	if v := os.Getenv("REPO_ANALYZER_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("REPO_ANALYZER_MODEL"); v != "" {
		cfg.Model = v
	}
	if v := os.Getenv("REPO_ANALYZER_OUTPUT_DIR"); v != "" {
		cfg.OutputDir = v
	}
	if v := os.Getenv("REPO_ANALYZER_FILES_PER_CHUNK"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.FilesPerChunk = n
		}
	}
	if v := os.Getenv("REPO_ANALYZER_PROCESSING_DELAY"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f >= 0 {
			cfg.ProcessingDelay = f
		}
	}
	if v := os.Getenv("REPO_ANALYZER_NO_COMPRESSION"); v == "1" || v == "true" {
		cfg.UseCompression = false
	}
}

func mergeOverrides(cfg *Settings, overrides map[string]string) error {
	for key, value := range overrides {
		switch key {
		case "provider":
			cfg.Provider = value
		case "model":
			cfg.Model = value
		case "outputDir":
			cfg.OutputDir = value
		case "filesPerChunk":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("filesPerChunk must be a positive integer: %q", value)
			}
			cfg.FilesPerChunk = n
		case "chunkLines":
			n, err := strconv.Atoi(value)
			if err != nil || n <= 0 {
				return fmt.Errorf("chunkLines must be a positive integer: %q", value)
			}
			cfg.ChunkLines = n
		case "maxIndentation":
			n, err := strconv.Atoi(value)
			if err != nil || n < 0 {
				return fmt.Errorf("maxIndentation must be a non-negative integer: %q", value)
			}
			cfg.MaxIndentation = n
		case "useCompression":
			cfg.UseCompression = value == "true"
		case "processingDelay":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil || f < 0 {
				return fmt.Errorf("processingDelay must be a non-negative number: %q", value)
			}
			cfg.ProcessingDelay = f
		case "rateLimitsFile":
			cfg.RateLimitsFile = value
		default:
			return fmt.Errorf("unknown config key: %s", key)
		}
	}
	return nil
}
