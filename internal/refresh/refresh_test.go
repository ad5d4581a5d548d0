package refresh

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/guarzo/auctiongap/internal/cache"
	"github.com/guarzo/auctiongap/internal/model"
)

type stubProvider struct {
	available bool
	calls     []string
	err       error
}

func (s *stubProvider) Available() bool { return s.available }
func (s *stubProvider) Name() string    { return "stub" }

func (s *stubProvider) Fetch(ctx context.Context, description string, retailPrice float64) (*model.MarketQueryResult, error) {
	s.calls = append(s.calls, description)
	if s.err != nil {
		return nil, s.err
	}
	return &model.MarketQueryResult{
		ItemKey:      cache.NormalizeKey(description),
		Stats:        model.Stats{Median: retailPrice},
		ListingCount: 8,
		Confidence:   60,
		SourceType:   model.SourceAPI,
		FetchedAt:    time.Now().UTC(),
	}, nil
}

func newStore(t *testing.T) *cache.Store {
	t.Helper()
	store, err := cache.New(filepath.Join(t.TempDir(), "market_prices.json"), 24*time.Hour)
	if err != nil {
		t.Fatalf("Creating store failed: %v", err)
	}
	return store
}

func seed(t *testing.T, store *cache.Store, key string, age time.Duration, source model.SourceType) {
	t.Helper()
	err := store.Put(key, model.MarketQueryResult{
		ItemKey:    key,
		Stats:      model.Stats{Median: 500},
		Confidence: 60,
		SourceType: source,
		FetchedAt:  time.Now().UTC().Add(-age),
	})
	if err != nil {
		t.Fatalf("Seeding %q failed: %v", key, err)
	}
}

func TestRefreshOnce_RefreshesAgingEntries(t *testing.T) {
	store := newStore(t)
	seed(t, store, "fender stratocaster", 2*time.Hour, model.SourceAPI)
	seed(t, store, "boss dd 7", 10*time.Minute, model.SourceAPI)

	provider := &stubProvider{available: true}
	svc := New(store, provider, time.Hour)

	if n := svc.RefreshOnce(context.Background()); n != 1 {
		t.Fatalf("Expected 1 refreshed entry, got %d", n)
	}
	if len(provider.calls) != 1 || provider.calls[0] != "fender stratocaster" {
		t.Errorf("Expected only the aging entry fetched, got %v", provider.calls)
	}

	age, ok := store.Age("fender stratocaster")
	if !ok {
		t.Fatal("Expected refreshed entry to remain cached")
	}
	if age > time.Minute {
		t.Errorf("Expected refreshed entry to be young, age %v", age)
	}
}

func TestRefreshOnce_SkipsSimulatedEntries(t *testing.T) {
	store := newStore(t)
	seed(t, store, "obscure item", 2*time.Hour, model.SourceSimulated)

	provider := &stubProvider{available: true}
	svc := New(store, provider, time.Hour)

	if n := svc.RefreshOnce(context.Background()); n != 0 {
		t.Fatalf("Expected no refreshes, got %d", n)
	}
	if len(provider.calls) != 0 {
		t.Errorf("Expected no fetches for simulated entries, got %v", provider.calls)
	}
}

func TestRefreshOnce_FetchFailureKeepsOldEntry(t *testing.T) {
	store := newStore(t)
	seed(t, store, "fender stratocaster", 2*time.Hour, model.SourceAPI)

	provider := &stubProvider{available: true, err: errors.New("HTTP 503")}
	svc := New(store, provider, time.Hour)

	if n := svc.RefreshOnce(context.Background()); n != 0 {
		t.Fatalf("Expected no refreshes on fetch failure, got %d", n)
	}
	entry, ok := store.Get("fender stratocaster")
	if !ok {
		t.Fatal("Expected old entry to survive a failed refresh")
	}
	if entry.Stats.Median != 500 {
		t.Errorf("Expected old median 500 preserved, got %v", entry.Stats.Median)
	}
}

func TestRefreshOnce_UnavailableProviderIsNoop(t *testing.T) {
	store := newStore(t)
	seed(t, store, "fender stratocaster", 2*time.Hour, model.SourceAPI)

	provider := &stubProvider{available: false}
	svc := New(store, provider, time.Hour)

	if n := svc.RefreshOnce(context.Background()); n != 0 {
		t.Fatalf("Expected unavailable provider to be a no-op, got %d", n)
	}
	if len(provider.calls) != 0 {
		t.Errorf("Expected no fetches, got %v", provider.calls)
	}
}

func TestStartAndStop(t *testing.T) {
	store := newStore(t)
	provider := &stubProvider{available: true}
	svc := New(store, provider, time.Hour)

	if err := svc.Start(context.Background(), "@hourly"); err != nil {
		t.Fatalf("Start failed: %v", err)
	}
	svc.Stop()

	if err := svc.Start(context.Background(), "not a schedule"); err == nil {
		t.Error("Expected error for invalid cron expression")
	}
}
