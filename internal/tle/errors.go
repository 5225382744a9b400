package tle

import "fmt"

// MalformedRecordError reports a single element record that could not be
// decoded or failed validation. It is non-fatal to batch ingestion: the
// pipeline collects these and continues with the remaining records.
type MalformedRecordError struct {
	Line  int    // 1 or 2; 0 when the failure is not tied to one line
	Field string // offending field, e.g. "catalog id", "eccentricity"
	Err   error
}

func (e *MalformedRecordError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("malformed record: line %d %s: %v", e.Line, e.Field, e.Err)
	}
	return fmt.Sprintf("malformed record: %s: %v", e.Field, e.Err)
}

func (e *MalformedRecordError) Unwrap() error { return e.Err }

// InvalidEpochError reports an epoch sub-field that could not be decoded.
// The parser wraps it in a MalformedRecordError, so errors.As finds both.
type InvalidEpochError struct {
	Encoded string
	Reason  string
}

func (e *InvalidEpochError) Error() string {
	return fmt.Sprintf("invalid epoch %q: %s", e.Encoded, e.Reason)
}
