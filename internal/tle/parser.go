package tle

import (
	"bufio"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// lineLen is the fixed width of an encoded element line, checksum included.
const lineLen = 69

// Fixed column ranges (0-indexed, inclusive-exclusive) per the NORAD
// two-line element format.
const (
	l1CatalogStart, l1CatalogEnd = 2, 7
	l1ObjectStart, l1ObjectEnd   = 9, 17
	l1EpochStart, l1EpochEnd     = 18, 32
	l1BstarStart, l1BstarEnd     = 53, 61

	l2InclStart, l2InclEnd = 8, 16
	l2EccStart, l2EccEnd   = 26, 33
	l2MMStart, l2MMEnd     = 52, 63
)

// ParseRecord decodes a single element record (optional name line plus the
// two fixed-width lines) into a validated ElementSet. Any field that fails
// to decode fails the whole record: defaulting a scalar to zero would
// silently corrupt downstream propagation.
func ParseRecord(name, line1, line2 string) (ElementSet, error) {
	line1 = strings.TrimRight(line1, "\r\n ")
	line2 = strings.TrimRight(line2, "\r\n ")

	if len(line1) != lineLen {
		return ElementSet{}, &MalformedRecordError{Line: 1, Field: "length",
			Err: fmt.Errorf("got %d columns, want %d", len(line1), lineLen)}
	}
	if len(line2) != lineLen {
		return ElementSet{}, &MalformedRecordError{Line: 2, Field: "length",
			Err: fmt.Errorf("got %d columns, want %d", len(line2), lineLen)}
	}
	if !strings.HasPrefix(line1, "1 ") {
		return ElementSet{}, &MalformedRecordError{Line: 1, Field: "line number",
			Err: fmt.Errorf("must start with %q", "1 ")}
	}
	if !strings.HasPrefix(line2, "2 ") {
		return ElementSet{}, &MalformedRecordError{Line: 2, Field: "line number",
			Err: fmt.Errorf("must start with %q", "2 ")}
	}

	catalogID, err := strconv.Atoi(strings.TrimSpace(line1[l1CatalogStart:l1CatalogEnd]))
	if err != nil || catalogID <= 0 {
		return ElementSet{}, &MalformedRecordError{Line: 1, Field: "catalog id",
			Err: fmt.Errorf("%q is not a positive integer", line1[l1CatalogStart:l1CatalogEnd])}
	}

	epoch, err := DecodeEpoch(strings.TrimSpace(line1[l1EpochStart:l1EpochEnd]))
	if err != nil {
		return ElementSet{}, &MalformedRecordError{Line: 1, Field: "epoch", Err: err}
	}

	bstar, err := parsePointAssumed(line1[l1BstarStart:l1BstarEnd])
	if err != nil {
		return ElementSet{}, &MalformedRecordError{Line: 1, Field: "drag term", Err: err}
	}

	incl, err := strconv.ParseFloat(strings.TrimSpace(line2[l2InclStart:l2InclEnd]), 64)
	if err != nil {
		return ElementSet{}, &MalformedRecordError{Line: 2, Field: "inclination", Err: err}
	}
	if incl < 0 || incl > 180 {
		return ElementSet{}, &MalformedRecordError{Line: 2, Field: "inclination",
			Err: fmt.Errorf("%g degrees outside [0, 180]", incl)}
	}

	// Eccentricity is encoded as bare digits with an implied leading "0.".
	eccDigits := strings.TrimSpace(line2[l2EccStart:l2EccEnd])
	ecc, err := strconv.ParseFloat("0."+eccDigits, 64)
	if err != nil || eccDigits == "" {
		return ElementSet{}, &MalformedRecordError{Line: 2, Field: "eccentricity",
			Err: fmt.Errorf("%q is not a decimal fraction", eccDigits)}
	}
	if ecc >= 1 {
		return ElementSet{}, &MalformedRecordError{Line: 2, Field: "eccentricity",
			Err: fmt.Errorf("%g outside [0, 1)", ecc)}
	}

	meanMotion, err := strconv.ParseFloat(strings.TrimSpace(line2[l2MMStart:l2MMEnd]), 64)
	if err != nil {
		return ElementSet{}, &MalformedRecordError{Line: 2, Field: "mean motion", Err: err}
	}

	return ElementSet{
		CatalogID:      catalogID,
		ObjectID:       strings.TrimSpace(line1[l1ObjectStart:l1ObjectEnd]),
		Name:           strings.TrimSpace(name),
		Epoch:          epoch,
		InclinationDeg: incl,
		Eccentricity:   ecc,
		MeanMotion:     meanMotion,
		Bstar:          bstar,
		Line1:          line1,
		Line2:          line2,
	}, nil
}

// parsePointAssumed decodes the TLE point-assumed exponent notation used by
// the B* field: "±MMMMM±E" means ±0.MMMMM × 10^±E, e.g. " 34469-3" → 3.4469e-4.
func parsePointAssumed(s string) (float64, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty field")
	}

	sign := 1.0
	switch s[0] {
	case '-':
		sign = -1.0
		s = s[1:]
	case '+':
		s = s[1:]
	}
	if len(s) < 2 {
		return 0, fmt.Errorf("field too short")
	}

	// Exponent is the trailing signed digit.
	expStr := s[len(s)-2:]
	if expStr[0] != '+' && expStr[0] != '-' {
		return 0, fmt.Errorf("missing exponent sign in %q", s)
	}
	exp, err := strconv.Atoi(expStr)
	if err != nil {
		return 0, fmt.Errorf("invalid exponent %q", expStr)
	}

	mantissa, err := strconv.ParseFloat("0."+s[:len(s)-2], 64)
	if err != nil {
		return 0, fmt.Errorf("invalid mantissa %q", s[:len(s)-2])
	}

	return sign * mantissa * pow10(exp), nil
}

func pow10(n int) float64 {
	result := 1.0
	for i := 0; i < n; i++ {
		result *= 10
	}
	for i := 0; i > n; i-- {
		result /= 10
	}
	return result
}

// Parse reads line-triplet text (name, line 1, line 2 per record) from r and
// returns the successfully parsed sets plus one error per failed record.
// Blank lines are skipped and a trailing incomplete triplet is discarded.
func Parse(r io.Reader) ([]ElementSet, []error, error) {
	scanner := bufio.NewScanner(r)
	var lines []string
	for scanner.Scan() {
		line := strings.TrimRight(scanner.Text(), "\r\n ")
		if line != "" {
			lines = append(lines, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, nil, fmt.Errorf("reading element data: %w", err)
	}

	var sets []ElementSet
	var failures []error
	for i := 0; i+2 < len(lines); i += 3 {
		set, err := ParseRecord(lines[i], lines[i+1], lines[i+2])
		if err != nil {
			failures = append(failures, err)
			continue
		}
		sets = append(sets, set)
	}

	return sets, failures, nil
}
