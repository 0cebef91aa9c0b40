// Package twelvedata provides a client for the Twelve Data stock market API.
package twelvedata

import (
	"os"
	"strconv"
	"time"
)

const (
	defaultBaseURL    = "https://api.twelvedata.com"
	defaultMaxRetries = 3
)

// Config holds configuration for the Twelve Data API client.
type Config struct {
	TwelveDataAPIKey string        // API key for authentication
	BaseURL          string        // Base URL for the API (e.g., "https://api.twelvedata.com")
	Timeout          time.Duration // HTTP request timeout
	MaxRetries       uint64        // retries for 429/5xx and transport errors
	RetryInterval    time.Duration // first backoff interval
}

// LoadConfig loads Twelve Data configuration from environment variables.
func LoadConfig() Config {
	cfg := Config{
		TwelveDataAPIKey: os.Getenv("TWELVE_DATA_API_KEY"),
		BaseURL:          os.Getenv("TWELVE_DATA_BASE_URL"),
		Timeout:          10 * time.Second,
		MaxRetries:       defaultMaxRetries,
		RetryInterval:    time.Second,
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = defaultBaseURL
	}
	if v, err := strconv.ParseUint(os.Getenv("TWELVE_DATA_MAX_RETRIES"), 10, 64); err == nil {
		cfg.MaxRetries = v
	}
	return cfg
}
