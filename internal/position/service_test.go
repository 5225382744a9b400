package position

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/star/sattrack/internal/catalog"
	"github.com/star/sattrack/internal/propagation"
	"github.com/star/sattrack/internal/tle"
)

var testLogger = slog.New(slog.NewJSONHandler(io.Discard, nil))

// fakePropagator returns a canned position keyed off the element set, or an
// error for catalog ids listed in fail.
type fakePropagator struct {
	fail map[int]error
}

func (p *fakePropagator) Subpoint(set tle.ElementSet, t time.Time) (propagation.GeodeticPosition, error) {
	if err, ok := p.fail[set.CatalogID]; ok {
		return propagation.GeodeticPosition{}, err
	}
	return propagation.GeodeticPosition{
		CatalogID:    set.CatalogID,
		LatitudeDeg:  float64(set.CatalogID % 90),
		LongitudeDeg: float64(set.CatalogID % 180),
		AltitudeKm:   420,
		ComputedAt:   t,
	}, nil
}

func seedStore(t *testing.T, ids ...int) *catalog.MemoryStore {
	t.Helper()
	store := catalog.NewMemoryStore()
	for _, id := range ids {
		err := store.Upsert(context.Background(), tle.ElementSet{
			CatalogID: id,
			Name:      "TEST SAT",
			Epoch:     time.Date(2024, 4, 10, 0, 0, 0, 0, time.UTC),
			Line1:     "1 ...",
			Line2:     "2 ...",
		})
		if err != nil {
			t.Fatalf("seeding store: %v", err)
		}
	}
	return store
}

func TestQuerySkipsMissingIdentifiers(t *testing.T) {
	store := seedStore(t, 25544)
	svc := NewService(store, &fakePropagator{}, testLogger)

	snap, err := svc.Query(context.Background(), []int{25544, 99999}, time.Time{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if len(snap.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(snap.Positions))
	}
	if snap.Positions[0].CatalogID != 25544 {
		t.Errorf("CatalogID = %d, want 25544", snap.Positions[0].CatalogID)
	}
}

func TestQueryUniformTimestamp(t *testing.T) {
	store := seedStore(t, 25544, 43013, 44713)
	svc := NewService(store, &fakePropagator{}, testLogger)

	at := time.Date(2024, 4, 10, 12, 0, 0, 0, time.UTC)
	snap, err := svc.Query(context.Background(), []int{44713, 25544, 43013}, at)
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}

	if !snap.ComputedAt.Equal(at) {
		t.Errorf("ComputedAt = %v, want %v", snap.ComputedAt, at)
	}
	for _, pos := range snap.Positions {
		if !pos.ComputedAt.Equal(at) {
			t.Errorf("position %d ComputedAt = %v, want %v", pos.CatalogID, pos.ComputedAt, at)
		}
	}

	// Results come back ordered by catalog id regardless of request order.
	want := []int{25544, 43013, 44713}
	for i, pos := range snap.Positions {
		if pos.CatalogID != want[i] {
			t.Errorf("position[%d] = %d, want %d", i, pos.CatalogID, want[i])
		}
	}
}

func TestQueryNoIdentifiers(t *testing.T) {
	svc := NewService(seedStore(t), &fakePropagator{}, testLogger)

	if _, err := svc.Query(context.Background(), nil, time.Time{}); !errors.Is(err, ErrNoIdentifiers) {
		t.Errorf("error = %v, want ErrNoIdentifiers", err)
	}
}

func TestQueryDeduplicates(t *testing.T) {
	store := seedStore(t, 25544)
	svc := NewService(store, &fakePropagator{}, testLogger)

	snap, err := svc.Query(context.Background(), []int{25544, 25544, 25544}, time.Time{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(snap.Positions) != 1 {
		t.Errorf("positions = %d, want 1 after dedupe", len(snap.Positions))
	}
}

func TestQuerySkipsPropagationFailures(t *testing.T) {
	store := seedStore(t, 25544, 43013)
	prop := &fakePropagator{fail: map[int]error{
		43013: &propagation.DivergedError{CatalogID: 43013, Reason: "decayed"},
	}}
	svc := NewService(store, prop, testLogger)

	snap, err := svc.Query(context.Background(), []int{25544, 43013}, time.Time{})
	if err != nil {
		t.Fatalf("Query failed: %v", err)
	}
	if len(snap.Positions) != 1 {
		t.Fatalf("positions = %d, want 1", len(snap.Positions))
	}
	if snap.Positions[0].CatalogID != 25544 {
		t.Errorf("surviving position = %d, want 25544", snap.Positions[0].CatalogID)
	}
}
