package api

import (
	"os"
	"strconv"
)

// Config holds all configuration for the backend gateway client.
type Config struct {
	BaseURL   string
	Token     string // opaque bearer token; session verification is server-side
	UserID    string
	TimeoutMs int
	LogCalls  bool

	// TierLimitOverride forces the meal-plan duration limit without asking
	// the backend. Zero means "ask the backend"; use -1 for unlimited.
	TierLimitOverride int
}

// DefaultConfig returns a Config with sensible defaults pointing at a
// local gateway.
func DefaultConfig() Config {
	return Config{
		BaseURL:   "http://localhost:8080/api",
		TimeoutMs: 15000,
	}
}

// LoadConfig reads client configuration from environment variables,
// falling back to defaults for any unset values.
func LoadConfig() Config {
	cfg := DefaultConfig()

	if v := os.Getenv("PLATECAL_API_BASE"); v != "" {
		cfg.BaseURL = v
	}
	if v := os.Getenv("PLATECAL_API_TOKEN"); v != "" {
		cfg.Token = v
	}
	if v := os.Getenv("PLATECAL_USER_ID"); v != "" {
		cfg.UserID = v
	}
	if v := os.Getenv("PLATECAL_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.TimeoutMs = n
		}
	}
	if v := os.Getenv("PLATECAL_LOG_CALLS"); v != "" {
		cfg.LogCalls, _ = strconv.ParseBool(v)
	}
	if v := os.Getenv("PLATECAL_TIER_LIMIT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.TierLimitOverride = n
		}
	}

	return cfg
}
