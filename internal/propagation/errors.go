package propagation

import (
	"errors"
	"fmt"
)

// ErrNoElementLines is returned when an element set lacks the raw encoded
// lines the kernel consumes. Such a set can be stored but never propagated.
var ErrNoElementLines = errors.New("element set has no raw element lines")

// DivergedError reports that the kernel detected an invalid orbital state
// (decayed orbit, near-singular elements, or numerically implausible output)
// at the requested time. It is per-satellite and non-fatal to a multi-id
// query; it exists so a divergence is never returned as a silently wrong
// subpoint.
type DivergedError struct {
	CatalogID int
	Reason    string
}

func (e *DivergedError) Error() string {
	return fmt.Sprintf("propagation diverged for catalog id %d: %s", e.CatalogID, e.Reason)
}
