package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all environment-driven settings. Load validates everything up
// front so a misconfigured run fails before any item is processed.
type Config struct {
	// APIToken authenticates against the primary market source. Empty means
	// the API provider is unavailable and the pipeline falls back to the
	// scraper or simulator.
	APIToken    string
	SandboxMode bool

	// ScraperBaseURL enables the scraped source when no API token is set.
	ScraperBaseURL string

	CacheDir        string
	CacheExpiryDays int

	// DealThreshold and OverpricedThreshold belong to the legacy bid/median
	// scoring scheme. They are parsed and validated so existing .env files
	// keep loading, but the classifier uses the discount-from-optimal tiers.
	DealThreshold       float64
	OverpricedThreshold float64

	RequestTimeout time.Duration
	MaxRetries     int
	// MinRequestSpacing is the minimum gap between external fetches.
	MinRequestSpacing time.Duration

	Workers int
}

const (
	defaultCacheExpiryDays     = 7
	defaultDealThreshold       = 0.85
	defaultOverpricedThreshold = 1.15
	defaultRequestTimeout      = 15 * time.Second
	defaultMaxRetries          = 2
	defaultRequestSpacing      = 500 * time.Millisecond
)

// Load reads .env (if present) and the process environment into a validated
// Config.
func Load() (*Config, error) {
	// Missing .env is fine; explicit environment still applies.
	_ = godotenv.Load()

	cfg := &Config{
		APIToken:            os.Getenv("API_TOKEN"),
		ScraperBaseURL:      os.Getenv("SCRAPER_BASE_URL"),
		CacheDir:            envOr("CACHE_DIR", "cache"),
		CacheExpiryDays:     defaultCacheExpiryDays,
		DealThreshold:       defaultDealThreshold,
		OverpricedThreshold: defaultOverpricedThreshold,
		RequestTimeout:      defaultRequestTimeout,
		MaxRetries:          defaultMaxRetries,
		MinRequestSpacing:   defaultRequestSpacing,
	}

	var err error
	if cfg.SandboxMode, err = envBool("SANDBOX_MODE", false); err != nil {
		return nil, err
	}
	if v := os.Getenv("CACHE_EXPIRY_DAYS"); v != "" {
		days, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("config: CACHE_EXPIRY_DAYS %q: %w", v, err)
		}
		cfg.CacheExpiryDays = days
	}
	if v := os.Getenv("DEAL_THRESHOLD"); v != "" {
		if cfg.DealThreshold, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("config: DEAL_THRESHOLD %q: %w", v, err)
		}
	}
	if v := os.Getenv("OVERPRICED_THRESHOLD"); v != "" {
		if cfg.OverpricedThreshold, err = strconv.ParseFloat(v, 64); err != nil {
			return nil, fmt.Errorf("config: OVERPRICED_THRESHOLD %q: %w", v, err)
		}
	}
	if v := os.Getenv("WORKERS"); v != "" {
		if cfg.Workers, err = strconv.Atoi(v); err != nil {
			return nil, fmt.Errorf("config: WORKERS %q: %w", v, err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks invariants that would otherwise surface mid-batch.
func (c *Config) Validate() error {
	if c.CacheExpiryDays <= 0 {
		return fmt.Errorf("config: CACHE_EXPIRY_DAYS must be positive, got %d", c.CacheExpiryDays)
	}
	if c.DealThreshold <= 0 {
		return fmt.Errorf("config: DEAL_THRESHOLD must be positive, got %g", c.DealThreshold)
	}
	if c.OverpricedThreshold <= c.DealThreshold {
		return fmt.Errorf("config: OVERPRICED_THRESHOLD (%g) must exceed DEAL_THRESHOLD (%g)",
			c.OverpricedThreshold, c.DealThreshold)
	}
	if c.Workers < 0 {
		return fmt.Errorf("config: WORKERS must be non-negative, got %d", c.Workers)
	}
	return nil
}

// CacheTTL converts the configured expiry days into a duration.
func (c *Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheExpiryDays) * 24 * time.Hour
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("config: %s %q: %w", key, v, err)
	}
	return b, nil
}
