package cache

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	"unicode"

	"github.com/guarzo/auctiongap/internal/model"
)

// Entry wraps a persisted market result with its freshness metadata.
type Entry struct {
	Result    model.MarketQueryResult `json:"result"`
	FetchedAt time.Time               `json:"fetched_at"`
}

// Store is a durable key/value store of market query results with TTL
// semantics. Entries are keyed by normalized item descriptions and persisted
// as one JSON record per key in a single file. Writes are last-write-wins.
type Store struct {
	path    string
	ttl     time.Duration
	entries map[string]Entry
	mu      sync.RWMutex
	// saveMu serializes marshal+write+rename so racing writers cannot
	// interleave on the shared temp file or rename a stale snapshot.
	saveMu sync.Mutex
	now    func() time.Time
}

// New opens the store at path with the given TTL. A corrupt or unreadable
// file is never fatal: the store starts fresh and overwrites on next Put.
func New(path string, ttl time.Duration) (*Store, error) {
	s := &Store{
		path:    path,
		ttl:     ttl,
		entries: make(map[string]Entry),
		now:     time.Now,
	}

	if data, err := os.ReadFile(path); err == nil && len(data) > 0 {
		if err := json.Unmarshal(data, &s.entries); err != nil {
			// Corrupt cache, start fresh
			s.entries = make(map[string]Entry)
		}
	} else if err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("read cache: %w", err)
	}

	return s, nil
}

// NormalizeKey derives the cache key from an item description: lower-case,
// punctuation stripped, whitespace collapsed. Distinct descriptions that
// normalize identically share a cache entry.
func NormalizeKey(description string) string {
	var b strings.Builder
	lastSpace := true
	for _, r := range strings.ToLower(description) {
		switch {
		case unicode.IsLetter(r) || unicode.IsDigit(r):
			b.WriteRune(r)
			lastSpace = false
		case unicode.IsSpace(r):
			if !lastSpace {
				b.WriteByte(' ')
				lastSpace = true
			}
		}
		// Punctuation and symbols dropped.
	}
	return strings.TrimRight(b.String(), " ")
}

// Get returns the entry for key, or ok=false if no entry exists or the entry
// is older than the store's TTL. Stale entries are pruned on access.
func (s *Store) Get(key string) (model.MarketQueryResult, bool) {
	s.mu.RLock()
	entry, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok {
		return model.MarketQueryResult{}, false
	}
	if s.ttl > 0 && s.now().Sub(entry.FetchedAt) > s.ttl {
		s.mu.Lock()
		if e, exists := s.entries[key]; exists && s.now().Sub(e.FetchedAt) > s.ttl {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return model.MarketQueryResult{}, false
	}
	return entry.Result, true
}

// Put persists result under key, replacing any prior entry wholly.
func (s *Store) Put(key string, result model.MarketQueryResult) error {
	s.mu.Lock()
	s.entries[key] = Entry{Result: result, FetchedAt: result.FetchedAt}
	s.mu.Unlock()
	return s.save()
}

// Keys returns all keys currently held, including stale ones, so the refresh
// service can decide what to re-fetch.
func (s *Store) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.entries))
	for k := range s.entries {
		keys = append(keys, k)
	}
	return keys
}

// Age reports how old the entry for key is. ok is false when absent.
func (s *Store) Age(key string) (time.Duration, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	entry, ok := s.entries[key]
	if !ok {
		return 0, false
	}
	return s.now().Sub(entry.FetchedAt), true
}

// Remove deletes a specific entry.
func (s *Store) Remove(key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return s.save()
}

// Clear removes all entries.
func (s *Store) Clear() error {
	s.mu.Lock()
	s.entries = make(map[string]Entry)
	s.mu.Unlock()
	return s.save()
}

// save writes the full entry map through a temp file and rename, so an
// aborted run never leaves a partially written cache visible. Saves are
// serialized; the snapshot taken under the read lock always lands intact.
func (s *Store) save() error {
	s.saveMu.Lock()
	defer s.saveMu.Unlock()

	if dir := filepath.Dir(s.path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("create cache dir: %w", err)
		}
	}

	s.mu.RLock()
	data, err := json.MarshalIndent(s.entries, "", "  ")
	s.mu.RUnlock()
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write cache: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("replace cache: %w", err)
	}
	return nil
}
