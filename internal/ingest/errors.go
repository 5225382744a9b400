package ingest

import "fmt"

// FetchError reports a failure retrieving the feed snapshot. It is fatal to
// the ingestion call that triggered the fetch; a collaborator timeout is an
// ordinary FetchError, not a special case.
type FetchError struct {
	URL string
	Err error
}

func (e *FetchError) Error() string { return fmt.Sprintf("fetching %s: %v", e.URL, e.Err) }

func (e *FetchError) Unwrap() error { return e.Err }

// NoValidRecordsError reports that a non-empty payload yielded zero parseable
// records. It is distinct from the per-record failures it aggregates and is
// fatal to that ingestion call only.
type NoValidRecordsError struct {
	Failures []RecordFailure
}

func (e *NoValidRecordsError) Error() string {
	return fmt.Sprintf("no valid records in payload (%d records failed to parse)", len(e.Failures))
}
