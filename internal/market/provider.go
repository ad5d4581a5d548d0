package market

import (
	"context"
	"time"

	"github.com/guarzo/auctiongap/internal/config"
	"github.com/guarzo/auctiongap/internal/model"
)

// Provider fetches raw listing observations for one item description and
// returns a uniform result regardless of source. The retail price rides along
// so sources that need an anchor (the simulator) have one.
type Provider interface {
	// Available reports whether the provider is configured and usable.
	Available() bool

	// Fetch returns the market result for a description. Implementations
	// return ErrAuth for credential failures, ErrNoListings for an empty
	// result set, and *TransientError for retryable transport failures.
	Fetch(ctx context.Context, description string, retailPrice float64) (*model.MarketQueryResult, error)

	// Name identifies the provider in logs.
	Name() string
}

// NewProvider selects the primary provider from configuration: the Reverb API
// when a token is present, the scraped source when a scraper base URL is set,
// otherwise the simulator. The pipeline always keeps its own simulator for
// fallback, so this never returns nil.
func NewProvider(cfg *config.Config) Provider {
	if cfg.APIToken != "" {
		return NewReverbClient(ReverbConfig{
			Token:          cfg.APIToken,
			Sandbox:        cfg.SandboxMode,
			RequestTimeout: cfg.RequestTimeout,
			MaxRetries:     cfg.MaxRetries,
			MinSpacing:     cfg.MinRequestSpacing,
		})
	}
	if cfg.ScraperBaseURL != "" {
		return NewScraper(ScraperConfig{
			BaseURL:        cfg.ScraperBaseURL,
			RequestTimeout: cfg.RequestTimeout,
			MinSpacing:     cfg.MinRequestSpacing,
		})
	}
	return NewSimulator(time.Now().UnixNano())
}
