package pipeline

import (
	"context"
	"errors"
	"fmt"
	"log"
	"runtime"
	"sort"
	"strings"
	"sync"

	"github.com/guarzo/auctiongap/internal/analysis"
	"github.com/guarzo/auctiongap/internal/cache"
	"github.com/guarzo/auctiongap/internal/market"
	"github.com/guarzo/auctiongap/internal/model"
	"github.com/guarzo/auctiongap/internal/stats"
)

// ItemError records a single item's pipeline failure. Failures never abort
// the batch except for credential errors.
type ItemError struct {
	LotNumber   int
	Description string
	Err         error
}

func (e ItemError) Error() string {
	return fmt.Sprintf("lot %d (%s): %v", e.LotNumber, e.Description, e.Err)
}

// Options configures an Analyzer.
type Options struct {
	// Workers caps per-item parallelism. Zero means min(NumCPU, 10).
	Workers int
	// ForceRefresh bypasses cache reads; fetched results still write through.
	ForceRefresh bool
	// Weights overrides the blend table. Zero value means defaults.
	Weights *analysis.WeightTable
}

// Analyzer drives the per-item pipeline across a batch: cache lookup, fetch
// on miss, aggregate, confidence, optimal price, classify. Item pipelines are
// independent and run in parallel; the cache store is safe under concurrent
// access and cache writes are last-write-wins.
type Analyzer struct {
	store    *cache.Store
	provider market.Provider
	fallback market.Provider
	weights  analysis.WeightTable
	workers  int
	force    bool

	mu      sync.Mutex
	results []model.DealAnalysis
	errs    []ItemError
}

// New creates an Analyzer. fallback provides the simulated sample when the
// primary source fails or returns nothing; it must not fail for positive
// retail prices.
func New(store *cache.Store, provider, fallback market.Provider, opts Options) *Analyzer {
	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
		if workers > 10 {
			workers = 10 // Cap to be respectful to sources
		}
	}
	weights := analysis.DefaultWeights()
	if opts.Weights != nil {
		weights = *opts.Weights
	}
	return &Analyzer{
		store:    store,
		provider: provider,
		fallback: fallback,
		weights:  weights,
		workers:  workers,
		force:    opts.ForceRefresh,
	}
}

// Analyze runs the pipeline across items and returns the analyses ordered by
// lot number. Per-item failures are recorded and skipped; an authentication
// failure aborts the whole batch since no further real fetch can succeed.
func (a *Analyzer) Analyze(ctx context.Context, items []model.AuctionItem) ([]model.DealAnalysis, error) {
	a.mu.Lock()
	a.results = nil
	a.errs = nil
	a.mu.Unlock()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	jobs := make(chan model.AuctionItem)
	var wg sync.WaitGroup
	var authErr error
	var authOnce sync.Once

	for w := 0; w < a.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				da, err := a.process(ctx, item)
				if err != nil {
					if errors.Is(err, market.ErrAuth) {
						authOnce.Do(func() {
							authErr = fmt.Errorf("lot %d: %w", item.LotNumber, err)
							cancel()
						})
						return
					}
					a.mu.Lock()
					a.errs = append(a.errs, ItemError{
						LotNumber:   item.LotNumber,
						Description: item.Description,
						Err:         err,
					})
					a.mu.Unlock()
					continue
				}
				a.mu.Lock()
				a.results = append(a.results, da)
				a.mu.Unlock()
			}
		}()
	}

feed:
	for _, item := range items {
		select {
		case jobs <- item:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if authErr != nil {
		return nil, authErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	a.mu.Lock()
	defer a.mu.Unlock()
	sort.Slice(a.results, func(i, j int) bool {
		return a.results[i].Item.LotNumber < a.results[j].Item.LotNumber
	})
	return a.results, nil
}

// process runs one item through the full pipeline.
func (a *Analyzer) process(ctx context.Context, item model.AuctionItem) (model.DealAnalysis, error) {
	if strings.TrimSpace(item.Description) == "" {
		return model.DealAnalysis{}, fmt.Errorf("invalid input: empty description")
	}
	if item.RetailPrice <= 0 {
		return model.DealAnalysis{}, fmt.Errorf("invalid input: retail price must be positive, got %g", item.RetailPrice)
	}
	if item.StartingBid < 0 {
		return model.DealAnalysis{}, fmt.Errorf("invalid input: starting bid must be non-negative, got %g", item.StartingBid)
	}

	result, err := a.marketData(ctx, item)
	if err != nil {
		return model.DealAnalysis{}, err
	}

	band := stats.Band(result.Stats.Volatility)
	optimal, err := a.weights.OptimalPrice(result.Stats.Median, item.RetailPrice, result.Confidence, band)
	if err != nil {
		return model.DealAnalysis{}, err
	}
	score, rating, err := analysis.Classify(optimal, item.StartingBid, result.ListingCount)
	if err != nil {
		return model.DealAnalysis{}, err
	}

	return model.DealAnalysis{
		Item:            item,
		Market:          result,
		OptimalPrice:    optimal,
		DealScore:       score,
		DealRating:      rating,
		ValuePercentage: analysis.ValuePercentage(optimal, item.StartingBid),
		Volatility:      band,
		RetailMarketGap: analysis.RetailMarketGap(item.RetailPrice, result.Stats.Median),
	}, nil
}

// marketData funnels fetches through the cache so the provider is invoked at
// most once per key per run unless refresh is forced. Transient exhaustion
// and empty result sets degrade to the simulated fallback; only credential
// failures propagate.
func (a *Analyzer) marketData(ctx context.Context, item model.AuctionItem) (model.MarketQueryResult, error) {
	key := cache.NormalizeKey(item.Description)

	if !a.force {
		if cached, ok := a.store.Get(key); ok {
			return cached, nil
		}
	}

	result, err := a.provider.Fetch(ctx, item.Description, item.RetailPrice)
	if err != nil {
		if errors.Is(err, market.ErrAuth) ||
			errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return model.MarketQueryResult{}, err
		}
		log.Printf("pipeline: %s failed for lot %d (%v), using simulated fallback",
			a.provider.Name(), item.LotNumber, err)
		result, err = a.fallback.Fetch(ctx, item.Description, item.RetailPrice)
		if err != nil {
			return model.MarketQueryResult{}, err
		}
	}
	result.ItemKey = key

	if err := a.store.Put(key, *result); err != nil {
		// A failed cache write costs a future refetch, not this item.
		log.Printf("pipeline: cache write for %q failed: %v", key, err)
	}
	return *result, nil
}

// Results returns the analyses from the last run, ordered by lot number.
func (a *Analyzer) Results() []model.DealAnalysis {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]model.DealAnalysis, len(a.results))
	copy(out, a.results)
	return out
}

// Errors returns the per-item failures from the last run.
func (a *Analyzer) Errors() []ItemError {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ItemError, len(a.errs))
	copy(out, a.errs)
	return out
}

// Top returns the n best deals sorted by deal score descending (higher score
// means a deeper discount against the optimal price).
func (a *Analyzer) Top(n int) []model.DealAnalysis {
	out := a.Results()
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].DealScore > out[j].DealScore
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}

// ByCategory returns analyses whose category matches name exactly or by
// case-insensitive substring, best deals first.
func (a *Analyzer) ByCategory(name string) []model.DealAnalysis {
	needle := strings.ToLower(name)
	var out []model.DealAnalysis
	for _, da := range a.Top(0) {
		if da.Item.Category == name ||
			strings.Contains(strings.ToLower(da.Item.Category), needle) {
			out = append(out, da)
		}
	}
	return out
}

// ByLot returns the analysis for a lot number, or ok=false when absent.
func (a *Analyzer) ByLot(lot int) (model.DealAnalysis, bool) {
	for _, da := range a.Results() {
		if da.Item.LotNumber == lot {
			return da, true
		}
	}
	return model.DealAnalysis{}, false
}
