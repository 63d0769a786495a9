package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Rate-limit classes. Each route is assigned one.
const (
	ClassAIAnalysis  = "ai_analysis"
	ClassFileUpload  = "file_upload"
	ClassDBWrite     = "db_write"
	ClassDBRead      = "db_read"
	ClassUserProfile = "user_profile"
	ClassAuth        = "auth"
)

// RatePolicy admits at most Limit requests per Window.
type RatePolicy struct {
	Limit  int
	Window time.Duration
}

// DefaultRateLimits returns the built-in policy table.
func DefaultRateLimits() map[string]RatePolicy {
	return map[string]RatePolicy{
		ClassAIAnalysis:  {Limit: 50, Window: time.Hour},
		ClassFileUpload:  {Limit: 50, Window: time.Hour},
		ClassDBWrite:     {Limit: 200, Window: time.Hour},
		ClassDBRead:      {Limit: 500, Window: time.Hour},
		ClassUserProfile: {Limit: 100, Window: time.Hour},
		ClassAuth:        {Limit: 100, Window: time.Hour},
	}
}

type rateLimitFile struct {
	Classes map[string]struct {
		Limit  int    `yaml:"limit"`
		Window string `yaml:"window"`
	} `yaml:"classes"`
}

// LoadRateLimits reads per-class overrides from a YAML file:
//
//	classes:
//	  ai_analysis: {limit: 20, window: 1h}
//
// An empty path returns the defaults.
func LoadRateLimits(path string) (map[string]RatePolicy, error) {
	policies := DefaultRateLimits()
	if path == "" {
		return policies, nil
	}
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rate limits: %w", err)
	}
	return ParseRateLimits(b, policies)
}

// ParseRateLimits overlays YAML overrides on base.
func ParseRateLimits(b []byte, base map[string]RatePolicy) (map[string]RatePolicy, error) {
	var f rateLimitFile
	if err := yaml.Unmarshal(b, &f); err != nil {
		return nil, fmt.Errorf("parse rate limits: %w", err)
	}
	out := make(map[string]RatePolicy, len(base))
	for k, v := range base {
		out[k] = v
	}
	for class, raw := range f.Classes {
		p, ok := out[class]
		if !ok {
			return nil, fmt.Errorf("rate limits: unknown class %q", class)
		}
		if raw.Limit != 0 {
			if raw.Limit < 0 {
				return nil, fmt.Errorf("rate limits: %s: limit must be positive", class)
			}
			p.Limit = raw.Limit
		}
		if raw.Window != "" {
			d, err := time.ParseDuration(raw.Window)
			if err != nil || d <= 0 {
				return nil, fmt.Errorf("rate limits: %s: invalid window %q", class, raw.Window)
			}
			p.Window = d
		}
		out[class] = p
	}
	return out, nil
}
