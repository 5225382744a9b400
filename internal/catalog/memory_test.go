package catalog

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/star/sattrack/internal/tle"
)

func testSet(id int, name string) tle.ElementSet {
	return tle.ElementSet{
		CatalogID:      id,
		Name:           name,
		ObjectID:       "98067A",
		Epoch:          time.Date(2008, 9, 20, 12, 25, 40, 0, time.UTC),
		InclinationDeg: 51.6416,
		Eccentricity:   0.0006703,
		MeanMotion:     15.72125391,
		Bstar:          -1.1606e-5,
		Line1:          "1 25544U 98067A   08264.51782528 -.00002182  00000-0 -11606-4 0  2927",
		Line2:          "2 25544  51.6416 247.4627 0006703 130.5360 325.0288 15.72125391563537",
	}
}

func TestMemoryStoreUpsertReplaces(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	// Control the clock so LastUpdated advancement is observable.
	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	if err := store.Upsert(ctx, testSet(25544, "ISS (ZARYA)")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	first, err := store.Get(ctx, 25544)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !first.LastUpdated.Equal(now) {
		t.Errorf("LastUpdated = %v, want %v", first.LastUpdated, now)
	}

	// Upsert with the same id replaces the entry and advances LastUpdated,
	// never creating a duplicate.
	now = now.Add(time.Hour)
	if err := store.Upsert(ctx, testSet(25544, "ISS (RENAMED)")); err != nil {
		t.Fatalf("second Upsert failed: %v", err)
	}

	if store.Count() != 1 {
		t.Fatalf("Count = %d, want 1", store.Count())
	}
	second, err := store.Get(ctx, 25544)
	if err != nil {
		t.Fatalf("Get after replace failed: %v", err)
	}
	if second.Name != "ISS (RENAMED)" {
		t.Errorf("Name = %q, want replacement", second.Name)
	}
	if !second.LastUpdated.After(first.LastUpdated) {
		t.Errorf("LastUpdated did not advance: %v -> %v", first.LastUpdated, second.LastUpdated)
	}
}

func TestMemoryStoreGetNotFound(t *testing.T) {
	store := NewMemoryStore()
	_, err := store.Get(context.Background(), 99999)
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Get error = %v, want ErrNotFound", err)
	}
}

func TestMemoryStoreListOrderingAndPaging(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	for _, id := range []int{44713, 25544, 43013} {
		if err := store.Upsert(ctx, testSet(id, "SAT")); err != nil {
			t.Fatalf("Upsert(%d) failed: %v", id, err)
		}
	}

	sets, err := store.List(ctx, ListOptions{})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	wantOrder := []int{25544, 43013, 44713}
	if len(sets) != len(wantOrder) {
		t.Fatalf("got %d sets, want %d", len(sets), len(wantOrder))
	}
	for i, want := range wantOrder {
		if sets[i].CatalogID != want {
			t.Errorf("sets[%d].CatalogID = %d, want %d", i, sets[i].CatalogID, want)
		}
	}

	page, err := store.List(ctx, ListOptions{Limit: 1, Offset: 1})
	if err != nil {
		t.Fatalf("List with paging failed: %v", err)
	}
	if len(page) != 1 || page[0].CatalogID != 43013 {
		t.Errorf("paged List = %v, want single entry 43013", page)
	}

	empty, err := store.List(ctx, ListOptions{Offset: 10})
	if err != nil {
		t.Fatalf("List with large offset failed: %v", err)
	}
	if len(empty) != 0 {
		t.Errorf("got %d sets for out-of-range offset, want 0", len(empty))
	}
}

func TestMemoryStoreListUpdatedSince(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	now := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }
	if err := store.Upsert(ctx, testSet(25544, "OLD")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	now = now.Add(2 * time.Hour)
	if err := store.Upsert(ctx, testSet(44713, "NEW")); err != nil {
		t.Fatalf("Upsert failed: %v", err)
	}

	cutoff := time.Date(2025, 6, 1, 1, 0, 0, 0, time.UTC)
	sets, err := store.List(ctx, ListOptions{UpdatedSince: cutoff})
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sets) != 1 || sets[0].CatalogID != 44713 {
		t.Errorf("List(updated_since) = %v, want only 44713", sets)
	}
}
