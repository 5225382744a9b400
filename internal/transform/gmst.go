package transform

import (
	"math"
	"time"
)

// jdJ2000 is the Julian Date of the J2000.0 reference epoch.
const jdJ2000 = 2451545.0

// OmegaEarth is Earth's rotation rate in rad/s (IAU value).
const OmegaEarth = 7.292115146706979e-5

const secondsPerDay = 86400.0

// JulianDate converts a UTC time to Julian Date using the standard
// astronomical algorithm (Gregorian calendar).
func JulianDate(t time.Time) float64 {
	t = t.UTC()
	year := float64(t.Year())
	month := float64(t.Month())
	day := float64(t.Day())

	// January and February count as months 13/14 of the previous year.
	if month <= 2 {
		year--
		month += 12
	}

	century := math.Floor(year / 100)
	gregorian := 2 - century + math.Floor(century/4)

	jd := math.Floor(365.25*(year+4716)) +
		math.Floor(30.6001*(month+1)) +
		day + gregorian - 1524.5

	daySeconds := float64(t.Hour())*3600 +
		float64(t.Minute())*60 +
		float64(t.Second()) +
		float64(t.Nanosecond())/1e9
	return jd + daySeconds/secondsPerDay
}

// GMST returns Greenwich Mean Sidereal Time in radians for a UTC time,
// per the IAU-82 model (Vallado Eq 3-47, coefficients in seconds of time,
// T in Julian centuries of UT1 from J2000.0). UTC is used in place of UT1;
// the difference is under a second and far below SGP4 accuracy.
func GMST(t time.Time) float64 {
	tc := (JulianDate(t) - jdJ2000) / 36525.0

	// 876600 hours = 3155760000 seconds.
	gmstSec := 67310.54841 +
		(3155760000.0+8640184.812866)*tc +
		0.093104*tc*tc -
		6.2e-6*tc*tc*tc

	gmstSec = math.Mod(gmstSec, secondsPerDay)
	if gmstSec < 0 {
		gmstSec += secondsPerDay
	}
	return gmstSec / secondsPerDay * 2 * math.Pi
}
