package solar

import (
	"fmt"
	"time"
)

// Location is a fixed observer position in decimal degrees (north and east positive).
type Location struct {
	Latitude  float64
	Longitude float64
}

// MonthDay identifies a day of the year independent of the year itself.
type MonthDay struct {
	Month time.Month
	Day   int
}

func (md MonthDay) key() int { return int(md.Month)*100 + md.Day }

func (md MonthDay) String() string {
	return fmt.Sprintf("%02d-%02d", int(md.Month), md.Day)
}

// Band is an inclusive seasonal range of days. A band whose End falls before
// its Start wraps across the new year (e.g. 12-06 through 01-06).
type Band struct {
	Start MonthDay
	End   MonthDay
}

// Contains reports whether month/day falls inside the band. Whole months that
// lie between the start and end months are always included.
func (b Band) Contains(month time.Month, day int) bool {
	k := MonthDay{Month: month, Day: day}.key()
	s, e := b.Start.key(), b.End.key()
	if s <= e {
		return k >= s && k <= e
	}
	return k >= s || k <= e
}

func (b Band) String() string {
	return b.Start.String() + ".." + b.End.String()
}

// Config holds everything the window calculation depends on besides the date.
// It is a plain value; copies are independent.
type Config struct {
	Location Location

	// Daylight is treated as continuous daylight regardless of astronomy.
	Daylight Band
	// Darkness is treated as continuous darkness regardless of astronomy.
	Darkness Band

	// Synthetic sunrise and sunset hours used during continuous darkness.
	FakeSunriseHour int
	FakeSunsetHour  int
	// AdjustHours widens the synthetic darkness window on both sides and is
	// the dawn/dusk offset used when no nautical twilight occurs.
	AdjustHours int

	// UTCOffsetMinutes converts the computed UTC times into local clock time.
	// It is a fixed offset and never follows daylight-saving changes.
	UTCOffsetMinutes int

	// Zone is the civil zone the returned instants are expressed in. When nil,
	// a fixed zone matching UTCOffsetMinutes is used.
	Zone *time.Location
}

// Default site: Gimsøysand, Lofoten.
const (
	DefaultLatitude  = 68.3300814
	DefaultLongitude = 14.0917529
)

// DefaultConfig returns the configuration the deletion windows were tuned against.
func DefaultConfig() Config {
	return Config{
		Location: Location{Latitude: DefaultLatitude, Longitude: DefaultLongitude},
		Daylight: Band{
			Start: MonthDay{Month: time.May, Day: 24},
			End:   MonthDay{Month: time.July, Day: 18},
		},
		Darkness: Band{
			Start: MonthDay{Month: time.December, Day: 6},
			End:   MonthDay{Month: time.January, Day: 6},
		},
		FakeSunriseHour:  8,
		FakeSunsetHour:   15,
		AdjustHours:      2,
		UTCOffsetMinutes: 60,
	}
}

// CivilZone returns the zone window instants are built in.
func (c Config) CivilZone() *time.Location {
	if c.Zone != nil {
		return c.Zone
	}
	return fixedZone(c.UTCOffsetMinutes)
}

func fixedZone(offsetMinutes int) *time.Location {
	sign := '+'
	m := offsetMinutes
	if m < 0 {
		sign = '-'
		m = -m
	}
	name := fmt.Sprintf("UTC%c%d", sign, m/60)
	if m%60 != 0 {
		name = fmt.Sprintf("UTC%c%d:%02d", sign, m/60, m%60)
	}
	return time.FixedZone(name, offsetMinutes*60)
}

// Validate checks the configuration for values that cannot describe a real
// site. A latitude of exactly ±90° passes: the hour-angle formula divides by
// cos(latitude) and the result at the poles is undefined.
func (c Config) Validate() error {
	if c.Location.Latitude < -90 || c.Location.Latitude > 90 {
		return fmt.Errorf("latitude %v out of range [-90, 90]", c.Location.Latitude)
	}
	if c.Location.Longitude < -180 || c.Location.Longitude > 180 {
		return fmt.Errorf("longitude %v out of range [-180, 180]", c.Location.Longitude)
	}
	bands := []struct {
		name string
		band Band
	}{{"daylight", c.Daylight}, {"darkness", c.Darkness}}
	for _, b := range bands {
		if err := validMonthDay(b.band.Start); err != nil {
			return fmt.Errorf("%s band start: %w", b.name, err)
		}
		if err := validMonthDay(b.band.End); err != nil {
			return fmt.Errorf("%s band end: %w", b.name, err)
		}
	}
	if c.FakeSunriseHour < 0 || c.FakeSunriseHour > 23 {
		return fmt.Errorf("fake sunrise hour %d out of range [0, 23]", c.FakeSunriseHour)
	}
	if c.FakeSunsetHour < 0 || c.FakeSunsetHour > 23 {
		return fmt.Errorf("fake sunset hour %d out of range [0, 23]", c.FakeSunsetHour)
	}
	if c.FakeSunriseHour > c.FakeSunsetHour {
		return fmt.Errorf("fake sunrise hour %d is after fake sunset hour %d", c.FakeSunriseHour, c.FakeSunsetHour)
	}
	if c.AdjustHours < 0 || c.AdjustHours > 24 {
		return fmt.Errorf("adjust hours %d out of range [0, 24]", c.AdjustHours)
	}
	if c.UTCOffsetMinutes < -14*60 || c.UTCOffsetMinutes > 14*60 {
		return fmt.Errorf("utc offset %d minutes out of range", c.UTCOffsetMinutes)
	}
	return nil
}

func validMonthDay(md MonthDay) error {
	if md.Month < time.January || md.Month > time.December {
		return fmt.Errorf("invalid month %d", int(md.Month))
	}
	// Feb 29 is allowed so leap-day bands can be expressed.
	limit := time.Date(2024, md.Month+1, 0, 0, 0, 0, 0, time.UTC).Day()
	if md.Day < 1 || md.Day > limit {
		return fmt.Errorf("invalid day %d for month %s", md.Day, md.Month)
	}
	return nil
}
