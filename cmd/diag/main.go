// Command diag parses a TLE file and prints the geodetic subpoint of every
// satellite in it, as an offline sanity check of the parse/propagate path.
//
// Usage: diag [-at RFC3339] file.tle
package main

import (
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/star/sattrack/internal/propagation"
	"github.com/star/sattrack/internal/tle"
)

func main() {
	atFlag := flag.String("at", "", "target time (RFC 3339), default now")
	flag.Parse()

	if flag.NArg() != 1 {
		fmt.Fprintln(os.Stderr, "usage: diag [-at RFC3339] file.tle")
		os.Exit(2)
	}

	at := time.Now().UTC()
	if *atFlag != "" {
		t, err := time.Parse(time.RFC3339, *atFlag)
		if err != nil {
			fmt.Fprintln(os.Stderr, "ERROR invalid -at:", err)
			os.Exit(2)
		}
		at = t.UTC()
	}

	f, err := os.Open(flag.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR opening file:", err)
		os.Exit(1)
	}
	defer f.Close()

	sets, failures, err := tle.Parse(f)
	if err != nil {
		fmt.Fprintln(os.Stderr, "ERROR parsing file:", err)
		os.Exit(1)
	}
	fmt.Printf("Parsed %d element sets (%d records failed)\n", len(sets), len(failures))
	for _, ferr := range failures {
		fmt.Printf("  parse failure: %v\n", ferr)
	}

	prop := propagation.NewSubpointPropagator()
	fmt.Printf("Subpoints at %s:\n", at.Format(time.RFC3339))
	fmt.Printf("%8s  %-24s %9s %10s %9s\n", "NORAD", "NAME", "LAT", "LON", "ALT_KM")

	for _, set := range sets {
		pos, err := prop.Subpoint(set, at)
		if err != nil {
			fmt.Printf("%8d  %-24s ERROR %v\n", set.CatalogID, set.Name, err)
			continue
		}
		fmt.Printf("%8d  %-24s %9.4f %10.4f %9.1f\n",
			pos.CatalogID, set.Name, pos.LatitudeDeg, pos.LongitudeDeg, pos.AltitudeKm)
	}
}
