package market

import (
	"testing"

	"github.com/guarzo/auctiongap/internal/config"
)

func TestNewProvider_Selection(t *testing.T) {
	tests := []struct {
		name string
		cfg  config.Config
		want string
	}{
		{"token selects the API", config.Config{APIToken: "secret"}, "reverb"},
		{"scraper URL without token", config.Config{ScraperBaseURL: "https://example.com/search"}, "scraper"},
		{"token wins over scraper URL", config.Config{APIToken: "secret", ScraperBaseURL: "https://example.com"}, "reverb"},
		{"nothing configured falls back to simulation", config.Config{}, "simulator"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewProvider(&tt.cfg)
			if p.Name() != tt.want {
				t.Errorf("Expected provider %q, got %q", tt.want, p.Name())
			}
			if !p.Available() {
				t.Errorf("Expected selected provider %q to be available", p.Name())
			}
		})
	}
}
