package catalog

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/star/sattrack/internal/tle"
)

// MemoryStore is an in-process Store. It backs the service when no database
// path is configured and substitutes for SQLite in tests.
type MemoryStore struct {
	mu      sync.RWMutex
	entries map[int]tle.ElementSet
	now     func() time.Time
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[int]tle.ElementSet),
		now:     time.Now,
	}
}

// Upsert inserts or replaces the entry for set.CatalogID.
func (s *MemoryStore) Upsert(ctx context.Context, set tle.ElementSet) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	set.LastUpdated = s.now().UTC()
	s.entries[set.CatalogID] = set
	return nil
}

// Get returns the entry for id, or ErrNotFound.
func (s *MemoryStore) Get(ctx context.Context, id int) (*tle.ElementSet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	set, ok := s.entries[id]
	if !ok {
		return nil, ErrNotFound
	}
	return &set, nil
}

// List returns entries ordered by catalog id ascending.
func (s *MemoryStore) List(ctx context.Context, opts ListOptions) ([]tle.ElementSet, error) {
	s.mu.RLock()
	sets := make([]tle.ElementSet, 0, len(s.entries))
	for _, set := range s.entries {
		if !opts.UpdatedSince.IsZero() && set.LastUpdated.Before(opts.UpdatedSince) {
			continue
		}
		sets = append(sets, set)
	}
	s.mu.RUnlock()

	sort.Slice(sets, func(i, j int) bool { return sets[i].CatalogID < sets[j].CatalogID })

	if opts.Offset > 0 {
		if opts.Offset >= len(sets) {
			return nil, nil
		}
		sets = sets[opts.Offset:]
	}
	if opts.Limit > 0 && opts.Limit < len(sets) {
		sets = sets[:opts.Limit]
	}
	return sets, nil
}

// Count returns the number of entries.
func (s *MemoryStore) Count() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
