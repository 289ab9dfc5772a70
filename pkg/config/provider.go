package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/lilleviklofoten/webcamsweep/pkg/solar"
)

// ConfigProvider defines the interface for configuration data sources
type ConfigProvider interface {
	// Load complete configuration
	LoadConfig() (*ConfigData, error)

	// Get specific configuration sections
	GetSite() (*SiteData, error)
	GetSweep() (*SweepData, error)
	GetServer() (*ServerData, error)

	Close() error
}

// ConfigData represents the complete configuration structure
type ConfigData struct {
	Site   SiteData
	Sweep  SweepData
	Server ServerData
}

// SiteData describes where the webcam stands and how its deletion windows
// are shaped.
type SiteData struct {
	Name      string
	Latitude  float64
	Longitude float64

	Daylight solar.Band
	Darkness solar.Band

	FakeSunriseHour int
	FakeSunsetHour  int
	AdjustHours     int

	UTCOffsetMinutes int
	// Zone is an IANA zone name. Empty means a fixed zone at UTCOffsetMinutes.
	Zone string
}

// SweepData holds defaults for the cleanup command. Flags override them.
type SweepData struct {
	BaseDir         string
	MinAgeYears     int
	OnePerHour      bool
	CompressQuality int
	Workers         int
}

// ServerData holds the browsing API listener configuration
type ServerData struct {
	ListenAddr string
	Port       int
	Cert       string
	Key        string
	BaseDir    string
}

// Default returns the configuration of the original Gimsøysand installation.
func Default() *ConfigData {
	sc := solar.DefaultConfig()
	return &ConfigData{
		Site: SiteData{
			Name:             "Gimsøysand",
			Latitude:         sc.Location.Latitude,
			Longitude:        sc.Location.Longitude,
			Daylight:         sc.Daylight,
			Darkness:         sc.Darkness,
			FakeSunriseHour:  sc.FakeSunriseHour,
			FakeSunsetHour:   sc.FakeSunsetHour,
			AdjustHours:      sc.AdjustHours,
			UTCOffsetMinutes: sc.UTCOffsetMinutes,
		},
		Sweep: SweepData{
			BaseDir:     ".",
			MinAgeYears: 5,
		},
		Server: ServerData{
			Port:    8080,
			BaseDir: ".",
		},
	}
}

// Load reads filename with the YAML provider, or returns Default when
// filename is empty.
func Load(filename string) (*ConfigData, error) {
	p := NewProvider(filename)
	defer p.Close()
	return p.LoadConfig()
}

// SolarConfig returns the validated calculator configuration for the site.
func (c *ConfigData) SolarConfig() (solar.Config, error) {
	return c.Site.SolarConfig()
}

// SolarConfig converts the site into a validated calculator configuration.
func (s *SiteData) SolarConfig() (solar.Config, error) {
	sc := solar.Config{
		Location:         solar.Location{Latitude: s.Latitude, Longitude: s.Longitude},
		Daylight:         s.Daylight,
		Darkness:         s.Darkness,
		FakeSunriseHour:  s.FakeSunriseHour,
		FakeSunsetHour:   s.FakeSunsetHour,
		AdjustHours:      s.AdjustHours,
		UTCOffsetMinutes: s.UTCOffsetMinutes,
	}
	if s.Zone != "" {
		loc, err := time.LoadLocation(s.Zone)
		if err != nil {
			return solar.Config{}, fmt.Errorf("site zone %q: %w", s.Zone, err)
		}
		sc.Zone = loc
	}
	if err := sc.Validate(); err != nil {
		return solar.Config{}, fmt.Errorf("site %q: %w", s.Name, err)
	}
	return sc, nil
}

// ParseMonthDay parses "MM-DD".
func ParseMonthDay(s string) (solar.MonthDay, error) {
	m, d, ok := strings.Cut(strings.TrimSpace(s), "-")
	if !ok {
		return solar.MonthDay{}, fmt.Errorf("%q: expected MM-DD", s)
	}
	month, err := strconv.Atoi(m)
	if err != nil {
		return solar.MonthDay{}, fmt.Errorf("%q: bad month: %w", s, err)
	}
	day, err := strconv.Atoi(d)
	if err != nil {
		return solar.MonthDay{}, fmt.Errorf("%q: bad day: %w", s, err)
	}
	return solar.MonthDay{Month: time.Month(month), Day: day}, nil
}

// ParseBand parses "MM-DD..MM-DD".
func ParseBand(s string) (solar.Band, error) {
	start, end, ok := strings.Cut(s, "..")
	if !ok {
		return solar.Band{}, fmt.Errorf("%q: expected MM-DD..MM-DD", s)
	}
	var b solar.Band
	var err error
	if b.Start, err = ParseMonthDay(start); err != nil {
		return solar.Band{}, err
	}
	if b.End, err = ParseMonthDay(end); err != nil {
		return solar.Band{}, err
	}
	return b, nil
}
