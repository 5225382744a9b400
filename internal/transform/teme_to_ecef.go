// Package transform provides the coordinate frame conversions between the
// propagation kernel's output and geodetic subpoints.
//
// The kernel emits TEME (True Equator Mean Equinox) states; subpoints need
// ECEF (Earth-Centered Earth-Fixed). The rotation here is the GMST-only
// simplification (TEME -> PEF treated as ECEF), which ignores polar motion
// and the equation of the equinoxes. The resulting error is tens of meters,
// well inside SGP4's own accuracy envelope.
//
// Reference: Vallado, "Fundamentals of Astrodynamics and Applications", Ch. 3.
package transform

import (
	"math"
	"time"
)

// PositionTEME is a kernel-frame state vector in km and km/s.
type PositionTEME struct {
	X, Y, Z    float64
	VX, VY, VZ float64
}

// PositionECEF is an Earth-fixed state vector in meters and m/s.
type PositionECEF struct {
	X, Y, Z    float64
	VX, VY, VZ float64
}

// TEMEToECEF rotates a TEME state into the Earth-fixed frame at the given
// UTC time. Position is rotated about the Z axis by GMST; velocity
// additionally subtracts the frame rotation term omega x r.
func TEMEToECEF(teme PositionTEME, t time.Time) PositionECEF {
	theta := GMST(t)
	cosT := math.Cos(theta)
	sinT := math.Sin(theta)

	x := teme.X*cosT + teme.Y*sinT
	y := -teme.X*sinT + teme.Y*cosT
	z := teme.Z

	vx := teme.VX*cosT + teme.VY*sinT + OmegaEarth*y
	vy := -teme.VX*sinT + teme.VY*cosT - OmegaEarth*x
	vz := teme.VZ

	const kmToM = 1000.0
	return PositionECEF{
		X: x * kmToM, Y: y * kmToM, Z: z * kmToM,
		VX: vx * kmToM, VY: vy * kmToM, VZ: vz * kmToM,
	}
}

// ValidateECEF reports whether an Earth-fixed position is plausible for an
// Earth-orbiting object: finite components with a radius between a decayed
// orbit (~6200 km) and beyond GEO (~50000 km). A false result means the
// propagation or transform produced garbage, not a real position.
func ValidateECEF(pos PositionECEF) bool {
	for _, c := range [3]float64{pos.X, pos.Y, pos.Z} {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}

	const (
		minRadiusM = 6200.0e3
		maxRadiusM = 50000.0e3
	)
	radius := math.Sqrt(pos.X*pos.X + pos.Y*pos.Y + pos.Z*pos.Z)
	return radius >= minRadiusM && radius <= maxRadiusM
}
