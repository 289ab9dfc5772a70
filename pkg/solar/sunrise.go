package solar

import (
	"math"

	"github.com/soniakeys/meeus/v3/julian"
	"github.com/soniakeys/unit"
)

// Zenith angles of the sun's centre for the events we care about.
var (
	// Apparent sunrise/sunset: 0.833° below the horizon for refraction and the
	// solar radius.
	sunriseZenith = unit.AngleFromDeg(90.833)
	// Nautical twilight: 12° below the horizon.
	nauticalZenith = unit.AngleFromDeg(102)
)

// fractionalYear returns γ, the position in the year as an angle in radians
// with 1 January at zero.
func fractionalYear(year int, month, day int) float64 {
	doy := julian.DayOfYearGregorian(year, month, day)
	return 2 * math.Pi / 365 * float64(doy-1)
}

// equationOfTime returns the NOAA truncated Fourier approximation of the
// equation of time, in minutes.
func equationOfTime(gamma float64) float64 {
	return 229.18 * (0.000075 +
		0.001868*math.Cos(gamma) -
		0.032077*math.Sin(gamma) -
		0.014615*math.Cos(2*gamma) -
		0.040849*math.Sin(2*gamma))
}

// declination returns the NOAA approximation of the solar declination.
func declination(gamma float64) unit.Angle {
	return unit.Angle(0.006918 -
		0.399912*math.Cos(gamma) +
		0.070257*math.Sin(gamma) -
		0.006758*math.Cos(2*gamma) +
		0.000907*math.Sin(2*gamma) -
		0.002697*math.Cos(3*gamma) +
		0.00148*math.Sin(3*gamma))
}

// cosHourAngle returns cos(H) for the hour angle at which the sun crosses the
// given zenith. Values above 1 mean the sun never gets that high; values below
// -1 mean it never gets that low.
//
// cos(latitude) is not guarded: at ±90° the result is ±Inf or NaN.
func cosHourAngle(zenith unit.Angle, latitude float64, decl unit.Angle) float64 {
	lat := unit.AngleFromDeg(latitude)
	return zenith.Cos()/(lat.Cos()*decl.Cos()) - lat.Tan()*decl.Tan()
}

// eventMinutes returns the morning and evening crossing times of an hour
// angle as minutes after local midnight, using a fixed UTC offset.
func eventMinutes(hourAngleDeg, longitude, eqTime float64, utcOffsetMinutes int) (morning, evening float64) {
	morning = 720 - 4*(longitude+hourAngleDeg) - eqTime + float64(utcOffsetMinutes)
	evening = 720 - 4*(longitude-hourAngleDeg) - eqTime + float64(utcOffsetMinutes)
	return morning, evening
}

// splitMinutes breaks minutes-after-midnight into a floored hour and minute.
// The hour may fall outside [0, 24); the minute is always in [0, 60).
func splitMinutes(m float64) (hour, minute int) {
	h := math.Floor(m / 60)
	mins := int(math.Floor(m - 60*h))
	if mins >= 60 {
		return int(h) + 1, 0
	}
	return int(h), mins
}

// wrapHour folds an hour into [0, 24).
func wrapHour(h int) int {
	return ((h % 24) + 24) % 24
}
