package propagation

import (
	"fmt"
	"math"
	"strings"
	"time"

	satellite "github.com/joshuaferrara/go-satellite"

	"github.com/star/sattrack/internal/transform"
)

// SGP4 library choice: github.com/joshuaferrara/go-satellite
//
// Selected for: most community adoption, pure Go (no CGO), battle-tested
// since 2016, explicit TEME output.
//
// Note: Propagate() takes Satellite by value so SGP4 error codes are not
// visible to the caller. We detect propagation failures by checking output
// for NaN/Inf and unreasonable position magnitudes.

// kernel wraps the go-satellite SGP4 model for a single satellite.
type kernel struct {
	sat       satellite.Satellite
	catalogID int
}

// newKernel initializes the SGP4 model from raw element lines.
// Returns a DivergedError if the model flags the elements as invalid.
//
// Pre-validates line format before handing off, because go-satellite calls
// log.Fatal on malformed input (which would kill the process).
func newKernel(line1, line2 string, catalogID int) (*kernel, error) {
	if err := validateLines(line1, line2); err != nil {
		return nil, fmt.Errorf("invalid element lines for catalog id %d: %w", catalogID, err)
	}

	sat := satellite.TLEToSat(line1, line2, satellite.GravityWGS84)
	if sat.Error != 0 {
		return nil, &DivergedError{
			CatalogID: catalogID,
			Reason:    fmt.Sprintf("sgp4 init code=%d %s", sat.Error, sat.ErrorStr),
		}
	}
	return &kernel{sat: sat, catalogID: catalogID}, nil
}

// validateLines performs basic format validation on element lines.
func validateLines(line1, line2 string) error {
	line1 = strings.TrimSpace(line1)
	line2 = strings.TrimSpace(line2)

	if len(line1) != 69 {
		return fmt.Errorf("line1 length %d, expected 69", len(line1))
	}
	if len(line2) != 69 {
		return fmt.Errorf("line2 length %d, expected 69", len(line2))
	}
	if line1[0] != '1' {
		return fmt.Errorf("line1 must start with '1', got '%c'", line1[0])
	}
	if line2[0] != '2' {
		return fmt.Errorf("line2 must start with '2', got '%c'", line2[0])
	}
	return nil
}

// propagate advances the model to t and returns the TEME state (km, km/s).
// A NaN/Inf output or an orbit radius outside the plausible Earth-orbit band
// is reported as a DivergedError rather than a bogus position.
func (k *kernel) propagate(t time.Time) (transform.PositionTEME, error) {
	t = t.UTC()
	pos, vel := satellite.Propagate(k.sat, t.Year(), int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())

	if math.IsNaN(pos.X) || math.IsNaN(pos.Y) || math.IsNaN(pos.Z) ||
		math.IsInf(pos.X, 0) || math.IsInf(pos.Y, 0) || math.IsInf(pos.Z, 0) {
		return transform.PositionTEME{}, &DivergedError{CatalogID: k.catalogID, Reason: "output is NaN/Inf"}
	}

	// Radius should be between ~6200km (decayed) and ~50000km (beyond GEO).
	mag := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	if mag < 6200.0 || mag > 50000.0 {
		return transform.PositionTEME{}, &DivergedError{
			CatalogID: k.catalogID,
			Reason:    fmt.Sprintf("unreasonable position magnitude %.1f km", mag),
		}
	}

	return transform.PositionTEME{
		X:  pos.X,
		Y:  pos.Y,
		Z:  pos.Z,
		VX: vel.X,
		VY: vel.Y,
		VZ: vel.Z,
	}, nil
}
