package market

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/andybalholm/brotli"
	"golang.org/x/time/rate"

	"github.com/guarzo/auctiongap/internal/model"
)

const (
	reverbBaseURL  = "https://api.reverb.com/api/listings/all"
	sandboxBaseURL = "https://sandbox.reverb.com/api/listings/all"
	maxAPIResults  = 50
)

// ReverbConfig holds settings for the primary API source.
type ReverbConfig struct {
	Token          string
	Sandbox        bool
	BaseURL        string // overrides the host, used by tests
	RequestTimeout time.Duration
	MaxRetries     int
	MinSpacing     time.Duration
	// RetryBackoff is the backoff unit; attempt n waits n*n units.
	RetryBackoff time.Duration
}

// ReverbClient fetches sold-listing data from the Reverb API. Results carry
// source_type "api".
type ReverbClient struct {
	config  ReverbConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewReverbClient creates the API client with request spacing enforced by a
// rate limiter.
func NewReverbClient(cfg ReverbConfig) *ReverbClient {
	if cfg.BaseURL == "" {
		if cfg.Sandbox {
			cfg.BaseURL = sandboxBaseURL
		} else {
			cfg.BaseURL = reverbBaseURL
		}
	}
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	spacing := cfg.MinSpacing
	if spacing == 0 {
		spacing = 500 * time.Millisecond
	}
	if cfg.RetryBackoff == 0 {
		cfg.RetryBackoff = time.Second
	}

	return &ReverbClient{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Every(spacing), 1),
	}
}

func (r *ReverbClient) Available() bool {
	return r.config.Token != ""
}

func (r *ReverbClient) Name() string {
	return "reverb"
}

// reverbListing mirrors the subset of the API payload we consume.
type reverbListing struct {
	Title string `json:"title"`
	Price struct {
		Amount   string `json:"amount"`
		Currency string `json:"currency"`
	} `json:"price"`
	Condition struct {
		DisplayName string `json:"display_name"`
	} `json:"condition"`
	CreatedAt time.Time `json:"created_at"`
}

type reverbResponse struct {
	Listings []reverbListing `json:"listings"`
}

// Fetch queries the API with bounded retries. 401/403 map to ErrAuth, other
// failures to TransientError; an empty result set returns ErrNoListings so
// the caller can degrade to the simulator.
func (r *ReverbClient) Fetch(ctx context.Context, description string, retailPrice float64) (*model.MarketQueryResult, error) {
	var lastErr error
	for attempt := 0; attempt <= r.config.MaxRetries; attempt++ {
		if attempt > 0 {
			// Exponential backoff
			delay := time.Duration(attempt*attempt) * r.config.RetryBackoff
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		result, err := r.fetchOnce(ctx, description)
		if err == nil {
			return result, nil
		}
		if !IsTransient(err) {
			return nil, err
		}
		lastErr = err
	}
	return nil, fmt.Errorf("fetch failed after %d attempts: %w", r.config.MaxRetries+1, lastErr)
}

func (r *ReverbClient) fetchOnce(ctx context.Context, description string) (*model.MarketQueryResult, error) {
	if err := r.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s?query=%s&per_page=%d&state=sold",
		r.config.BaseURL, url.QueryEscape(description), maxAPIResults)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+r.config.Token)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Accept-Encoding", "gzip, br")

	resp, err := r.client.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, fmt.Errorf("%w: HTTP %d", ErrAuth, resp.StatusCode)
	case resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500:
		return nil, &TransientError{Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	reader, err := decodeBody(resp)
	if err != nil {
		return nil, fmt.Errorf("create reader: %w", err)
	}
	body, err := io.ReadAll(reader)
	if err != nil {
		return nil, &TransientError{Err: fmt.Errorf("read response: %w", err)}
	}

	var payload reverbResponse
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("parse response: %w", err)
	}

	listings, dropped := parseAPIListings(payload.Listings)
	if dropped > 0 {
		log.Printf("reverb: dropped %d malformed listings for %q", dropped, description)
	}
	if len(listings) == 0 {
		return nil, ErrNoListings
	}

	return buildResult(description, listings, model.SourceAPI), nil
}

// parseAPIListings converts payload entries to listings, dropping malformed
// ones and reporting how many were dropped.
func parseAPIListings(raw []reverbListing) ([]model.Listing, int) {
	listings := make([]model.Listing, 0, len(raw))
	dropped := 0
	for _, entry := range raw {
		price, err := strconv.ParseFloat(entry.Price.Amount, 64)
		if err != nil || price <= 0 {
			dropped++
			continue
		}
		observed := entry.CreatedAt
		if observed.IsZero() {
			observed = time.Now().UTC()
		}
		listings = append(listings, model.Listing{
			Price:      price,
			Condition:  mapCondition(entry.Condition.DisplayName),
			ObservedAt: observed,
			Source:     model.SourceAPI,
		})
	}
	return listings, dropped
}

// decodeBody handles gzip and brotli content encodings.
func decodeBody(resp *http.Response) (io.Reader, error) {
	switch resp.Header.Get("Content-Encoding") {
	case "gzip":
		return gzip.NewReader(resp.Body)
	case "br":
		return brotli.NewReader(resp.Body), nil
	default:
		return resp.Body, nil
	}
}
