// Package position answers "where are these satellites right now" queries
// against the catalog with best-effort, per-identifier semantics.
package position

import (
	"context"
	"errors"
	"log/slog"
	"sort"
	"time"

	"github.com/star/sattrack/internal/catalog"
	"github.com/star/sattrack/internal/metrics"
	"github.com/star/sattrack/internal/propagation"
	"github.com/star/sattrack/internal/tle"
)

// ErrNoIdentifiers is returned for an empty identifier set; everything else
// degrades gracefully per-identifier.
var ErrNoIdentifiers = errors.New("no catalog identifiers given")

// Propagator computes a geodetic subpoint for one element set at one time.
// Satisfied by *propagation.SubpointPropagator; tests substitute fakes.
type Propagator interface {
	Subpoint(set tle.ElementSet, t time.Time) (propagation.GeodeticPosition, error)
}

// Snapshot is the result of one positions query. ComputedAt is the single
// timestamp applied to every entry, so one call is a consistent snapshot.
type Snapshot struct {
	ComputedAt time.Time                      `json:"timestamp"`
	Positions  []propagation.GeodeticPosition `json:"positions"`
}

// Service resolves catalog identifiers to current geodetic positions.
type Service struct {
	store  catalog.Store
	prop   Propagator
	logger *slog.Logger
	now    func() time.Time
}

// NewService creates a Service.
func NewService(store catalog.Store, prop Propagator, logger *slog.Logger) *Service {
	return &Service{
		store:  store,
		prop:   prop,
		logger: logger,
		now:    time.Now,
	}
}

// Query computes subpoints for ids at the given time (zero value = now).
// Identifiers that are absent, lack raw element lines, or fail lookup or
// propagation are omitted from the result, never surfaced as a batch
// failure: callers query sets and expect best-effort results. Duplicate ids
// are collapsed and results are ordered by catalog id ascending.
func (s *Service) Query(ctx context.Context, ids []int, at time.Time) (*Snapshot, error) {
	if len(ids) == 0 {
		return nil, ErrNoIdentifiers
	}

	if at.IsZero() {
		at = s.now()
	}
	at = at.UTC()

	unique := make([]int, 0, len(ids))
	seen := make(map[int]bool, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			unique = append(unique, id)
		}
	}
	sort.Ints(unique)

	snapshot := &Snapshot{
		ComputedAt: at,
		Positions:  make([]propagation.GeodeticPosition, 0, len(unique)),
	}

	for _, id := range unique {
		set, err := s.store.Get(ctx, id)
		if err != nil {
			if !errors.Is(err, catalog.ErrNotFound) {
				s.logger.Warn("catalog lookup failed", "catalog_id", id, "error", err)
			}
			continue
		}

		pos, err := s.prop.Subpoint(*set, at)
		if err != nil {
			metrics.RecordPropagationFailure()
			s.logger.Warn("propagation failed", "catalog_id", id, "error", err)
			continue
		}
		snapshot.Positions = append(snapshot.Positions, pos)
	}

	return snapshot, nil
}
