// Package propagation advances stored element sets to arbitrary times and
// reduces them to geodetic subpoints.
package propagation

import (
	"time"

	"github.com/star/sattrack/internal/tle"
	"github.com/star/sattrack/internal/transform"
)

// GeodeticPosition is a satellite subpoint at a single instant. It is
// computed fresh on every query and never persisted.
//
// Latitude is in [-90, 90] degrees, longitude in [-180, 180] degrees,
// altitude in kilometers above the WGS-84 ellipsoid.
type GeodeticPosition struct {
	CatalogID    int       `json:"norad_id"`
	LatitudeDeg  float64   `json:"lat"`
	LongitudeDeg float64   `json:"lon"`
	AltitudeKm   float64   `json:"alt_km"`
	ComputedAt   time.Time `json:"computed_at"`
}

// SubpointPropagator computes geodetic subpoints with the SGP4/SDP4 kernel.
// It is stateless and safe for concurrent use.
type SubpointPropagator struct{}

// NewSubpointPropagator creates a SubpointPropagator.
func NewSubpointPropagator() *SubpointPropagator {
	return &SubpointPropagator{}
}

// Subpoint propagates set to t and returns the geodetic subpoint. The target
// may be before, at, or after the element epoch; accuracy degrades with
// distance from epoch but distant targets are never refused. Kernel-detected
// invalid states surface as *DivergedError.
func (p *SubpointPropagator) Subpoint(set tle.ElementSet, t time.Time) (GeodeticPosition, error) {
	if !set.CanPropagate() {
		return GeodeticPosition{}, ErrNoElementLines
	}

	k, err := newKernel(set.Line1, set.Line2, set.CatalogID)
	if err != nil {
		return GeodeticPosition{}, err
	}

	teme, err := k.propagate(t)
	if err != nil {
		return GeodeticPosition{}, err
	}

	ecef := transform.TEMEToECEF(teme, t)
	if !transform.ValidateECEF(ecef) {
		return GeodeticPosition{}, &DivergedError{CatalogID: set.CatalogID, Reason: "implausible earth-fixed position"}
	}
	point := transform.ECEFToGeodetic(ecef.X, ecef.Y, ecef.Z)

	return GeodeticPosition{
		CatalogID:    set.CatalogID,
		LatitudeDeg:  point.LatDeg,
		LongitudeDeg: point.LonDeg,
		AltitudeKm:   point.AltM / 1000.0,
		ComputedAt:   t.UTC(),
	}, nil
}
