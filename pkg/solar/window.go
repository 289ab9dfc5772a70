package solar

import (
	"fmt"
	"math"
	"time"

	"github.com/soniakeys/unit"
)

// Regime says which of the three daylight situations produced a Window.
type Regime int

const (
	// Ordinary days have a computed sunrise and sunset.
	Ordinary Regime = iota
	// ContinuousDaylight covers the midnight-sun season: the whole day is shown.
	ContinuousDaylight
	// ContinuousDarkness covers the polar night: a synthetic window is shown.
	ContinuousDarkness
)

var regimeNames = [...]string{"ordinary", "continuous-daylight", "continuous-darkness"}

func (r Regime) String() string {
	if r < 0 || int(r) >= len(regimeNames) {
		return fmt.Sprintf("Regime(%d)", int(r))
	}
	return regimeNames[r]
}

// Window is the display interval for one calendar date. Dawn and Dusk bound
// the interval; Sunrise and Sunset are informational. Every instant is in the
// configured civil zone on Date's calendar day and Dawn is never after Dusk.
type Window struct {
	Date    time.Time
	Dawn    time.Time
	Sunrise time.Time
	Sunset  time.Time
	Dusk    time.Time
	Regime  Regime
}

// ContinuousDaylight reports whether the window was produced by the midnight-sun rule.
func (w Window) ContinuousDaylight() bool { return w.Regime == ContinuousDaylight }

// ContinuousDarkness reports whether the window was produced by the polar-night rule.
func (w Window) ContinuousDarkness() bool { return w.Regime == ContinuousDarkness }

// Contains reports whether t lies within [Dawn, Dusk].
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Dawn) && !t.After(w.Dusk)
}

// Length returns Dusk - Dawn.
func (w Window) Length() time.Duration {
	return w.Dusk.Sub(w.Dawn)
}

// Calculator computes windows for a fixed configuration. It holds no mutable
// state and is safe for concurrent use.
type Calculator struct {
	cfg Config
}

// NewCalculator returns a calculator for cfg. The civil zone is resolved once.
func NewCalculator(cfg Config) *Calculator {
	cfg.Zone = cfg.CivilZone()
	return &Calculator{cfg: cfg}
}

// Config returns the configuration the calculator was built with.
func (c *Calculator) Config() Config {
	return c.cfg
}

// Window returns the display window for date's calendar day.
func (c *Calculator) Window(date time.Time) Window {
	return CalculateWindow(date, c.cfg)
}

// CalculateWindow returns the display window for the calendar day of date.
// Only date's year, month and day are used, read in date's own location; the
// clock part is ignored.
func CalculateWindow(date time.Time, cfg Config) Window {
	y, m, dd := date.Date()
	d := civilDay{year: y, month: m, day: dd, loc: cfg.CivilZone()}

	o := decide(d, cfg)

	var w Window
	switch o.regime {
	case ContinuousDaylight:
		w = daylightWindow(d)
	case ContinuousDarkness:
		w = darknessWindow(d, cfg)
	default:
		w = ordinaryWindow(d, cfg, o)
	}
	w.Date = d.start()
	w.Regime = o.regime

	if w.Dawn.After(w.Dusk) {
		w.Dawn, w.Dusk = d.start(), d.end()
	}
	return w
}

// outcome is the result of regime selection. The astronomy fields are only
// populated for Ordinary days.
type outcome struct {
	regime      Regime
	eqTime      float64
	sunriseHA   float64
	twilightHA  float64
	hasTwilight bool
}

// decide picks the regime for a day. The seasonal bands win; otherwise the
// sunrise hour angle decides, falling back to a band formula when the sun
// never rises or never sets.
func decide(d civilDay, cfg Config) outcome {
	switch {
	case cfg.Daylight.Contains(d.month, d.day):
		return outcome{regime: ContinuousDaylight}
	case cfg.Darkness.Contains(d.month, d.day):
		return outcome{regime: ContinuousDarkness}
	}

	gamma := fractionalYear(d.year, int(d.month), d.day)
	decl := declination(gamma)
	lat := cfg.Location.Latitude

	cosH := cosHourAngle(sunriseZenith, lat, decl)
	switch {
	case cosH > 1:
		return outcome{regime: ContinuousDarkness}
	case cosH < -1:
		return outcome{regime: ContinuousDaylight}
	}

	o := outcome{
		regime:    Ordinary,
		eqTime:    equationOfTime(gamma),
		sunriseHA: unit.Angle(math.Acos(cosH)).Deg(),
	}
	if cosT := cosHourAngle(nauticalZenith, lat, decl); cosT >= -1 && cosT <= 1 {
		o.twilightHA = unit.Angle(math.Acos(cosT)).Deg()
		o.hasTwilight = true
	}
	return o
}

func daylightWindow(d civilDay) Window {
	// One second inside midnight on both ends.
	dawn := d.at(0, 0, 1)
	dusk := d.end()
	return Window{Dawn: dawn, Sunrise: dawn, Sunset: dusk, Dusk: dusk}
}

func darknessWindow(d civilDay, cfg Config) Window {
	return Window{
		Dawn:    d.clamped(cfg.FakeSunriseHour-cfg.AdjustHours, 0, 0),
		Sunrise: d.clamped(cfg.FakeSunriseHour, 0, 0),
		Sunset:  d.clamped(cfg.FakeSunsetHour, 0, 0),
		Dusk:    d.clamped(cfg.FakeSunsetHour+cfg.AdjustHours, 59, 59),
	}
}

func ordinaryWindow(d civilDay, cfg Config, o outcome) Window {
	lon := cfg.Location.Longitude

	rise, set := eventMinutes(o.sunriseHA, lon, o.eqTime, cfg.UTCOffsetMinutes)
	rh, rm := splitMinutes(rise)
	sh, sm := splitMinutes(set)
	w := Window{
		Sunrise: d.at(wrapHour(rh), rm, 0),
		Sunset:  d.at(wrapHour(sh), sm, 0),
	}
	// A sunset past midnight must not wrap to before sunrise.
	if w.Sunrise.After(w.Sunset) {
		switch {
		case sh >= 24:
			w.Sunset = d.end()
		case rh < 0:
			w.Sunrise = d.start()
		}
	}

	if o.hasTwilight {
		dawn, dusk := eventMinutes(o.twilightHA, lon, o.eqTime, cfg.UTCOffsetMinutes)
		dh, dm := splitMinutes(dawn)
		switch {
		case dh < 0:
			dh, dm = 0, 0
		case dh >= 24:
			dh = wrapHour(dh)
		}
		kh, km := splitMinutes(dusk)
		if kh < 0 || kh >= 24 {
			kh, km = 23, 59
		}
		w.Dawn = d.at(dh, dm, 0)
		w.Dusk = d.at(kh, km, 0)
	} else {
		// No nautical twilight today: pad sunrise and sunset instead. The
		// unwrapped minutes keep a padded time past midnight on the
		// neighbouring day so the clamp below catches it.
		adjust := float64(60 * cfg.AdjustHours)
		w.Dawn = d.minutes(rise - adjust)
		w.Dusk = d.minutes(set + adjust)
	}

	if !d.contains(w.Dawn) {
		w.Dawn = d.start()
	}
	if !d.contains(w.Dusk) {
		w.Dusk = d.end()
	}
	return w
}

// civilDay is a calendar date pinned to the zone its instants are built in.
type civilDay struct {
	year  int
	month time.Month
	day   int
	loc   *time.Location
}

func (d civilDay) at(hour, minute, second int) time.Time {
	return time.Date(d.year, d.month, d.day, hour, minute, second, 0, d.loc)
}

// minutes returns the instant m minutes after the day's midnight, floored to
// the minute. m may fall outside the day.
func (d civilDay) minutes(m float64) time.Time {
	return d.at(0, int(math.Floor(m)), 0)
}

func (d civilDay) start() time.Time { return d.at(0, 0, 0) }
func (d civilDay) end() time.Time   { return d.at(23, 59, 59) }

// clamped builds hour:minute:second, pinning hours before the day to 00:00:00
// and hours past it to 23:59:59.
func (d civilDay) clamped(hour, minute, second int) time.Time {
	switch {
	case hour < 0:
		return d.start()
	case hour > 23:
		return d.end()
	}
	return d.at(hour, minute, second)
}

func (d civilDay) contains(t time.Time) bool {
	y, m, dd := t.In(d.loc).Date()
	return y == d.year && m == d.month && dd == d.day
}
