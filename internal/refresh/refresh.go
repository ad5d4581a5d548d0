package refresh

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/guarzo/auctiongap/internal/cache"
	"github.com/guarzo/auctiongap/internal/market"
	"github.com/guarzo/auctiongap/internal/model"
)

// Service re-fetches cache entries approaching staleness on a cron schedule,
// so interactive runs mostly hit warm cache. Simulated entries are skipped;
// there is nothing fresher to fetch for them.
type Service struct {
	store    *cache.Store
	provider market.Provider
	// refreshAfter is the entry age past which a background re-fetch runs.
	// Typically a fraction of the cache TTL.
	refreshAfter time.Duration
	cron         *cron.Cron
}

// New creates a refresh service.
func New(store *cache.Store, provider market.Provider, refreshAfter time.Duration) *Service {
	return &Service{
		store:        store,
		provider:     provider,
		refreshAfter: refreshAfter,
		cron:         cron.New(),
	}
}

// Start schedules refresh runs. schedule uses cron syntax, e.g. "@hourly".
func (s *Service) Start(ctx context.Context, schedule string) error {
	_, err := s.cron.AddFunc(schedule, func() {
		if n := s.RefreshOnce(ctx); n > 0 {
			log.Printf("refresh: refreshed %d cache entries", n)
		}
	})
	if err != nil {
		return err
	}
	s.cron.Start()
	return nil
}

// Stop halts the schedule, waiting for a running refresh to finish.
func (s *Service) Stop() {
	<-s.cron.Stop().Done()
}

// RefreshOnce re-fetches every aging entry and reports how many were
// replaced. Fetch failures leave the old entry in place.
func (s *Service) RefreshOnce(ctx context.Context) int {
	if !s.provider.Available() {
		return 0
	}

	refreshed := 0
	for _, key := range s.store.Keys() {
		age, ok := s.store.Age(key)
		if !ok || age < s.refreshAfter {
			continue
		}
		// Fully expired entries are pruned here and re-fetched lazily by
		// the next pipeline run.
		entry, ok := s.store.Get(key)
		if !ok || entry.SourceType == model.SourceSimulated {
			continue
		}

		// The normalized key doubles as the search query; the cached
		// median anchors sources that need a reference price.
		anchor := entry.Stats.Median
		if anchor <= 0 {
			continue
		}
		result, err := s.provider.Fetch(ctx, key, anchor)
		if err != nil {
			log.Printf("refresh: %q: %v", key, err)
			continue
		}
		result.ItemKey = key
		if err := s.store.Put(key, *result); err != nil {
			log.Printf("refresh: cache write for %q failed: %v", key, err)
			continue
		}
		refreshed++
	}
	return refreshed
}
