// Package ingest pulls element snapshots from the catalog feed and merges
// them into the store with per-record failure isolation.
package ingest

import (
	"bytes"
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/star/sattrack/internal/catalog"
	"github.com/star/sattrack/internal/metrics"
	"github.com/star/sattrack/internal/tle"
)

// RecordFailure pairs a failed record's raw fragment with its error.
type RecordFailure struct {
	Fragment string
	Err      error
}

// Report summarizes one ingestion run. Callers needing totals use
// len(Succeeded) and len(Failed).
type Report struct {
	RunID      uuid.UUID
	StartedAt  time.Time
	FinishedAt time.Time
	Succeeded  []tle.ElementSet
	Failed     []RecordFailure
}

// Pipeline fetches, parses, and upserts element records. One bad record never
// aborts the batch; only a fetch failure or a payload with nothing parseable
// fails the run as a whole.
//
// Collaborators are injected, never ambient: tests substitute an in-memory
// store and a canned fetcher.
type Pipeline struct {
	fetcher Fetcher
	store   catalog.Store
	logger  *slog.Logger
	now     func() time.Time
}

// NewPipeline creates a Pipeline.
func NewPipeline(fetcher Fetcher, store catalog.Store, logger *slog.Logger) *Pipeline {
	return &Pipeline{
		fetcher: fetcher,
		store:   store,
		logger:  logger,
		now:     time.Now,
	}
}

// Run fetches the current feed snapshot and ingests it. A fetch failure is
// returned as a *FetchError without touching the store.
func (p *Pipeline) Run(ctx context.Context) (*Report, error) {
	payload, err := p.fetcher.Fetch(ctx)
	if err != nil {
		metrics.RecordIngestRun("fetch_error", 0)
		return nil, err
	}
	return p.Ingest(ctx, payload)
}

// Ingest splits payload into records, parses each, and upserts the parseable
// ones. Parse and upsert failures are collected per-record. A non-empty
// payload from which nothing parses returns a *NoValidRecordsError; an empty
// payload is the fetch layer's concern and yields an empty report.
func (p *Pipeline) Ingest(ctx context.Context, payload []byte) (*Report, error) {
	start := p.now().UTC()
	report := &Report{
		RunID:     uuid.New(),
		StartedAt: start,
	}

	records := splitRecords(payload)
	parsed := 0
	for _, rec := range records {
		set, err := tle.ParseRecord(rec.name, rec.line1, rec.line2)
		if err != nil {
			p.logger.Warn("skipping malformed record", "name", rec.name, "error", err)
			report.Failed = append(report.Failed, RecordFailure{Fragment: rec.fragment, Err: err})
			continue
		}
		parsed++

		if err := p.store.Upsert(ctx, set); err != nil {
			p.logger.Warn("upsert failed", "catalog_id", set.CatalogID, "error", err)
			report.Failed = append(report.Failed, RecordFailure{Fragment: rec.fragment, Err: err})
			continue
		}
		report.Succeeded = append(report.Succeeded, set)
	}

	if parsed == 0 && len(bytes.TrimSpace(payload)) > 0 {
		metrics.RecordIngestRun("no_valid_records", 0)
		return nil, &NoValidRecordsError{Failures: report.Failed}
	}

	report.FinishedAt = p.now().UTC()
	metrics.RecordIngestRun("ok", report.FinishedAt.Sub(start).Seconds())
	metrics.RecordIngestRecords(len(report.Succeeded), len(report.Failed))

	p.logger.Info("ingestion complete",
		"run_id", report.RunID.String(),
		"succeeded", len(report.Succeeded),
		"failed", len(report.Failed),
		"duration_ms", report.FinishedAt.Sub(start).Milliseconds(),
	)

	return report, nil
}
