package market

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/time/rate"

	"github.com/guarzo/auctiongap/internal/model"
)

const scraperUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// ScraperConfig holds settings for the scraped market source.
type ScraperConfig struct {
	BaseURL        string
	RequestTimeout time.Duration
	MinSpacing     time.Duration
}

// Scraper extracts sold-listing prices from search result HTML. Results
// carry source_type "scraped". Tiles that cannot be parsed are dropped and
// counted, never fatal.
type Scraper struct {
	config  ScraperConfig
	client  *http.Client
	limiter *rate.Limiter
}

// NewScraper creates the scraped source.
func NewScraper(cfg ScraperConfig) *Scraper {
	if cfg.RequestTimeout == 0 {
		cfg.RequestTimeout = 15 * time.Second
	}
	spacing := cfg.MinSpacing
	if spacing == 0 {
		spacing = time.Second
	}
	return &Scraper{
		config:  cfg,
		client:  &http.Client{Timeout: cfg.RequestTimeout},
		limiter: rate.NewLimiter(rate.Every(spacing), 1),
	}
}

func (s *Scraper) Available() bool {
	return s.config.BaseURL != ""
}

func (s *Scraper) Name() string {
	return "scraper"
}

// Fetch downloads and parses one search results page.
func (s *Scraper) Fetch(ctx context.Context, description string, retailPrice float64) (*model.MarketQueryResult, error) {
	if err := s.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	searchURL := fmt.Sprintf("%s?q=%s&sold=1", s.config.BaseURL, url.QueryEscape(description))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, searchURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("User-Agent", scraperUserAgent)
	req.Header.Set("Accept-Language", "en-US,en;q=0.9")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, &TransientError{Err: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		if resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode >= 500 {
			return nil, &TransientError{Err: fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)}
		}
		return nil, fmt.Errorf("HTTP %d: %s", resp.StatusCode, resp.Status)
	}

	doc, err := goquery.NewDocumentFromReader(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing search results: %w", err)
	}

	listings, dropped := parseListingTiles(doc)
	if dropped > 0 {
		log.Printf("scraper: dropped %d unparseable tiles for %q", dropped, description)
	}
	if len(listings) == 0 {
		return nil, ErrNoListings
	}

	return buildResult(description, listings, model.SourceScraped), nil
}

// parseListingTiles walks the sold-listing tiles and extracts price and
// condition. Tiles missing a usable price are counted as dropped.
func parseListingTiles(doc *goquery.Document) ([]model.Listing, int) {
	var listings []model.Listing
	dropped := 0

	doc.Find(".s-item, [data-listing]").Each(func(i int, tile *goquery.Selection) {
		priceText := tile.Find(".s-item__price, .listing-price").First().Text()
		price, ok := parsePrice(priceText)
		if !ok {
			dropped++
			return
		}

		condition := mapCondition(strings.TrimSpace(
			tile.Find(".s-item__condition, .listing-condition").First().Text()))

		listings = append(listings, model.Listing{
			Price:      price,
			Condition:  condition,
			ObservedAt: time.Now().UTC(),
			Source:     model.SourceScraped,
		})
	})

	return listings, dropped
}

// parsePrice extracts a positive dollar amount from text like "$1,299.99".
func parsePrice(text string) (float64, bool) {
	text = strings.TrimSpace(text)
	if idx := strings.IndexByte(text, '$'); idx >= 0 {
		text = text[idx+1:]
	}
	// Price ranges ("$100 to $150") use the first amount.
	if idx := strings.IndexAny(text, " \t"); idx >= 0 {
		text = text[:idx]
	}
	text = strings.ReplaceAll(text, ",", "")
	price, err := strconv.ParseFloat(text, 64)
	if err != nil || price <= 0 {
		return 0, false
	}
	return price, true
}
