package ingest

import (
	"bufio"
	"bytes"
	"encoding/json"
	"strings"
)

// rawRecord is one candidate record cut from the feed payload, shape-agnostic:
// the structured and triplet splitters both reduce to name + two lines, plus
// the original fragment for failure reporting.
type rawRecord struct {
	name     string
	line1    string
	line2    string
	fragment string
}

// gpRecord mirrors the structured feed's general-perturbations JSON shape.
// Only the fields this pipeline consumes are decoded; the element lines are
// authoritative and the scalar duplicates in the JSON are ignored.
type gpRecord struct {
	ObjectName string `json:"OBJECT_NAME"`
	TLELine1   string `json:"TLE_LINE1"`
	TLELine2   string `json:"TLE_LINE2"`
}

// splitRecords cuts a feed payload into candidate records. The payload is
// probed as a structured JSON record list first; anything that does not
// decode as one falls back to triplet-line splitting.
func splitRecords(payload []byte) []rawRecord {
	if records, ok := splitStructured(payload); ok {
		return records
	}
	return splitTriplets(payload)
}

// splitStructured decodes a JSON array payload into one record per entry.
// Returns ok=false when the payload is not a JSON record list at all, so the
// caller can fall back to triplet splitting.
func splitStructured(payload []byte) ([]rawRecord, bool) {
	trimmed := bytes.TrimSpace(payload)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, false
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(trimmed, &entries); err != nil {
		return nil, false
	}

	records := make([]rawRecord, 0, len(entries))
	for _, entry := range entries {
		var gp gpRecord
		// An undecodable entry still becomes a record; the parser fails it
		// with the empty lines and the failure carries the fragment.
		_ = json.Unmarshal(entry, &gp)
		records = append(records, rawRecord{
			name:     gp.ObjectName,
			line1:    gp.TLELine1,
			line2:    gp.TLELine2,
			fragment: string(entry),
		})
	}
	return records, true
}

// splitTriplets groups non-empty lines into name/line1/line2 records,
// discarding a trailing incomplete group.
func splitTriplets(payload []byte) []rawRecord {
	scanner := bufio.NewScanner(bytes.NewReader(payload))
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}

	var records []rawRecord
	for i := 0; i+2 < len(lines); i += 3 {
		records = append(records, rawRecord{
			name:     lines[i],
			line1:    lines[i+1],
			line2:    lines[i+2],
			fragment: lines[i] + "\n" + lines[i+1] + "\n" + lines[i+2],
		})
	}
	return records
}
