package tle

import (
	"fmt"
	"strconv"
	"time"
)

// DecodeEpoch converts a TLE epoch string in YYDDD.DDDDDDDD format to
// time.Time (UTC). The two-digit year follows the feed's century convention:
// 00-56 → 2000s, 57-99 → 1900s. The day of year is 1-based and fractional
// (1.0 = Jan 1 00:00); the feed encodes 8 fractional digits but any width
// is accepted.
func DecodeEpoch(s string) (time.Time, error) {
	if len(s) < 5 {
		return time.Time{}, &InvalidEpochError{Encoded: s, Reason: "too short"}
	}

	year, err := strconv.Atoi(s[:2])
	if err != nil {
		return time.Time{}, &InvalidEpochError{Encoded: s, Reason: "non-numeric year"}
	}
	if year >= 57 {
		year += 1900
	} else {
		year += 2000
	}

	dayOfYear, err := strconv.ParseFloat(s[2:], 64)
	if err != nil {
		return time.Time{}, &InvalidEpochError{Encoded: s, Reason: "non-numeric day of year"}
	}
	if dayOfYear < 1 || dayOfYear >= 367 {
		return time.Time{}, &InvalidEpochError{Encoded: s, Reason: fmt.Sprintf("day of year %g outside [1, 367)", dayOfYear)}
	}

	t := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
	// Round to the nearest microsecond so encode/decode round-trips are exact
	// at the codec's stated precision.
	micros := (dayOfYear - 1) * 86400e6
	return t.Add(time.Duration(micros+0.5) * time.Microsecond), nil
}

// EncodeEpoch is the inverse of DecodeEpoch. It emits 11 fractional digits
// (finer than the feed's 8) so that DecodeEpoch(EncodeEpoch(t)) recovers t
// to within one microsecond.
func EncodeEpoch(t time.Time) string {
	t = t.UTC()
	yearStart := time.Date(t.Year(), 1, 1, 0, 0, 0, 0, time.UTC)
	dayOfYear := 1 + float64(t.Sub(yearStart))/float64(24*time.Hour)
	return fmt.Sprintf("%02d%015.11f", t.Year()%100, dayOfYear)
}
