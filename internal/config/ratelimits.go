package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// RateLimit is the dispatch pacing policy for a single provider.
type RateLimit struct {
	RequestsPerMinute int     `yaml:"requests_per_minute"`
	BurstLimit        int     `yaml:"burst_limit"`
	RetryAfter        float64 `yaml:"retry_after"`
	MaxRetries        int     `yaml:"max_retries"`
}

// RateLimitTable maps a provider name to its rate-limit policy. The
// "default" entry is the fallback for unknown providers.
type RateLimitTable map[string]RateLimit

// DefaultRateLimits returns the built-in provider pacing table.
func DefaultRateLimits() RateLimitTable {
	return RateLimitTable{
		"claude": {
			RequestsPerMinute: 50,
			BurstLimit:        5,
			RetryAfter:        2.0,
			MaxRetries:        3,
		},
		"openai": {
			RequestsPerMinute: 60,
			BurstLimit:        10,
			RetryAfter:        1.0,
			MaxRetries:        3,
		},
		"gemini": {
			RequestsPerMinute: 15,
			BurstLimit:        2,
			RetryAfter:        4.0,
			MaxRetries:        3,
		},
		"default": {
			RequestsPerMinute: 30,
			BurstLimit:        3,
			RetryAfter:        3.0,
			MaxRetries:        2,
		},
	}
}

// For returns the policy for the named provider, falling back to the
// "default" entry.
func (t RateLimitTable) For(provider string) RateLimit {
	if rl, ok := t[provider]; ok {
		return rl
	}
	return t["default"]
}

// LoadRateLimits reads a YAML rate-limit file and merges it over the
// built-in defaults. An empty path returns the defaults unchanged.
func LoadRateLimits(path string) (RateLimitTable, error) {
	table := DefaultRateLimits()
	if path == "" {
		return table, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading rate limits file: %w", err)
	}
	var loaded map[string]RateLimit
	if err := yaml.Unmarshal(data, &loaded); err != nil {
		return nil, fmt.Errorf("parsing rate limits file: %w", err)
	}
	for name, rl := range loaded {
		base := table.For(name)
		if rl.RequestsPerMinute > 0 {
			base.RequestsPerMinute = rl.RequestsPerMinute
		}
		if rl.BurstLimit > 0 {
			base.BurstLimit = rl.BurstLimit
		}
		if rl.RetryAfter > 0 {
			base.RetryAfter = rl.RetryAfter
		}
		if rl.MaxRetries > 0 {
			base.MaxRetries = rl.MaxRetries
		}
		table[name] = base
	}
	return table, nil
}
