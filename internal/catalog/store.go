// Package catalog persists the latest element set per catalog identifier.
//
// The catalog is an upsert-only keyed map: ingesting an existing id fully
// replaces the stored record and advances its last-updated time, never
// creating a duplicate. Nothing here deletes entries; retention is the
// operator's concern.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/star/sattrack/internal/tle"
)

// ErrNotFound is returned by Get when no entry exists for the id.
var ErrNotFound = errors.New("satellite not found in catalog")

// ListOptions filter and page List results. Zero values mean "no limit",
// "no offset", and "no updated-since filter" respectively.
type ListOptions struct {
	Limit        int
	Offset       int
	UpdatedSince time.Time
}

// Store is the catalog persistence boundary. Implementations must make
// Upsert atomic per id; the ingestion pipeline holds no lock across records,
// so concurrent batches race per-id with last-writer-wins semantics.
type Store interface {
	// Upsert inserts or fully replaces the entry keyed by set.CatalogID
	// and stamps LastUpdated.
	Upsert(ctx context.Context, set tle.ElementSet) error
	// Get returns the entry for id, or ErrNotFound.
	Get(ctx context.Context, id int) (*tle.ElementSet, error)
	// List returns entries ordered by catalog id ascending.
	List(ctx context.Context, opts ListOptions) ([]tle.ElementSet, error)
}

// StoreError wraps a failure inside a Store implementation so callers can
// distinguish store-layer faults from absence (ErrNotFound) or bad input.
type StoreError struct {
	Op  string // "upsert", "get", "list"
	Err error
}

func (e *StoreError) Error() string { return fmt.Sprintf("catalog %s: %v", e.Op, e.Err) }

func (e *StoreError) Unwrap() error { return e.Err }
