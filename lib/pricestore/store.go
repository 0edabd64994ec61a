// Package pricestore persists resolved price tables between runs so a
// repeated decklist does not hit the marketplace again. Persistence is a
// whole-file JSON overwrite; the in-memory map is guarded by a single lock
// since item resolutions complete concurrently.
package pricestore

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"cardpricer/lib/pricing"
)

// ErrCorrupt distinguishes an unreadable cache file from a missing one. A
// missing file is a fresh start; a corrupt file likely needs manual
// recovery and silently dropping it would lose every memoized result.
var ErrCorrupt = errors.New("corrupt price cache")

type Store struct {
	path string

	mu      sync.Mutex
	entries map[string]pricing.PriceTable
}

// Open loads the store at path. A missing file yields an empty store;
// unparseable contents yield ErrCorrupt.
func Open(path string) (*Store, error) {
	s := &Store{
		path:    path,
		entries: map[string]pricing.PriceTable{},
	}

	raw, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		slog.Info("no cache file found, starting fresh", "path", path)
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read cache %s: %w", path, err)
	}
	if len(raw) == 0 {
		return s, nil
	}

	if err := json.Unmarshal(raw, &s.entries); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrCorrupt, path, err)
	}
	slog.Info("loaded cached results", "entries", len(s.entries), "path", path)
	return s, nil
}

func (s *Store) Get(key string) (pricing.PriceTable, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	table, ok := s.entries[key]
	return table, ok
}

func (s *Store) Put(key string, table pricing.PriceTable) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries[key] = table
}

// Persist overwrites the backing file with the full store contents.
func (s *Store) Persist() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(s.entries, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal cache: %w", err)
	}
	if err := os.WriteFile(s.path, raw, 0644); err != nil {
		return fmt.Errorf("write cache %s: %w", s.path, err)
	}
	slog.Info("saved results to cache", "entries", len(s.entries), "path", s.path)
	return nil
}

func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = map[string]pricing.PriceTable{}
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Store) Path() string {
	return s.path
}
