package tle

import "time"

// ElementSet represents one satellite's orbital state at a reference epoch.
// The raw two-line element text is retained verbatim: the propagation kernel
// consumes the encoded lines directly, so the decoded scalar fields are
// informational and are never re-encoded for propagation.
type ElementSet struct {
	CatalogID      int       // NORAD catalog number, catalog primary key
	ObjectID       string    // international designator, not unique-enforced
	Name           string    // display name from the feed
	Epoch          time.Time // UTC time the elements are valid at
	InclinationDeg float64
	Eccentricity   float64
	MeanMotion     float64 // revolutions per day
	Bstar          float64 // B* drag term, 1/earth-radii
	Line1          string
	Line2          string
	LastUpdated    time.Time // set by the catalog store on every upsert
}

// CanPropagate reports whether the set carries the raw element lines the
// propagation kernel requires.
func (e *ElementSet) CanPropagate() bool {
	return e.Line1 != "" && e.Line2 != ""
}
