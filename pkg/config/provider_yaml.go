package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// YAMLProvider implements ConfigProvider for YAML configuration files
type YAMLProvider struct {
	filename string
	config   *ConfigData
}

// NewYAMLProvider creates a new YAML configuration provider
func NewYAMLProvider(filename string) *YAMLProvider {
	return &YAMLProvider{
		filename: filename,
	}
}

// LoadConfig loads the complete configuration from the YAML file. Keys that
// are absent keep their Default values.
func (y *YAMLProvider) LoadConfig() (*ConfigData, error) {
	cfgFile, err := os.ReadFile(y.filename)
	if err != nil {
		return nil, err
	}

	yamlConfig := toYAML(Default())
	if err := yaml.Unmarshal(cfgFile, &yamlConfig); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", y.filename, err)
	}

	config, err := yamlConfig.convert()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", y.filename, err)
	}

	y.config = config
	return config, nil
}

func (y *YAMLProvider) loaded() (*ConfigData, error) {
	if y.config == nil {
		return y.LoadConfig()
	}
	return y.config, nil
}

// GetSite returns the site configuration
func (y *YAMLProvider) GetSite() (*SiteData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Site, nil
}

// GetSweep returns the cleanup defaults
func (y *YAMLProvider) GetSweep() (*SweepData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Sweep, nil
}

// GetServer returns the browsing API configuration
func (y *YAMLProvider) GetServer() (*ServerData, error) {
	c, err := y.loaded()
	if err != nil {
		return nil, err
	}
	return &c.Server, nil
}

// Close is a no-op for YAML provider
func (y *YAMLProvider) Close() error {
	return nil
}

// YAML-specific structs with proper YAML tags for parsing the file format
type ConfigYAML struct {
	Site   SiteYAML   `yaml:"site"`
	Sweep  SweepYAML  `yaml:"sweep,omitempty"`
	Server ServerYAML `yaml:"server,omitempty"`
}

type SiteYAML struct {
	Name             string  `yaml:"name,omitempty"`
	Latitude         float64 `yaml:"latitude"`
	Longitude        float64 `yaml:"longitude"`
	Daylight         string  `yaml:"daylight-band,omitempty"`
	Darkness         string  `yaml:"darkness-band,omitempty"`
	FakeSunriseHour  int     `yaml:"fake-sunrise-hour,omitempty"`
	FakeSunsetHour   int     `yaml:"fake-sunset-hour,omitempty"`
	AdjustHours      int     `yaml:"adjust-hours,omitempty"`
	UTCOffsetMinutes int     `yaml:"utc-offset-minutes,omitempty"`
	Zone             string  `yaml:"zone,omitempty"`
}

type SweepYAML struct {
	BaseDir         string `yaml:"base-dir,omitempty"`
	MinAgeYears     int    `yaml:"min-age-years,omitempty"`
	OnePerHour      bool   `yaml:"one-per-hour,omitempty"`
	CompressQuality int    `yaml:"compress-quality,omitempty"`
	Workers         int    `yaml:"workers,omitempty"`
}

type ServerYAML struct {
	ListenAddr string `yaml:"listen-addr,omitempty"`
	Port       int    `yaml:"port,omitempty"`
	Cert       string `yaml:"cert,omitempty"`
	Key        string `yaml:"key,omitempty"`
	BaseDir    string `yaml:"base-dir,omitempty"`
}

func toYAML(c *ConfigData) ConfigYAML {
	return ConfigYAML{
		Site: SiteYAML{
			Name:             c.Site.Name,
			Latitude:         c.Site.Latitude,
			Longitude:        c.Site.Longitude,
			Daylight:         c.Site.Daylight.String(),
			Darkness:         c.Site.Darkness.String(),
			FakeSunriseHour:  c.Site.FakeSunriseHour,
			FakeSunsetHour:   c.Site.FakeSunsetHour,
			AdjustHours:      c.Site.AdjustHours,
			UTCOffsetMinutes: c.Site.UTCOffsetMinutes,
			Zone:             c.Site.Zone,
		},
		Sweep: SweepYAML{
			BaseDir:         c.Sweep.BaseDir,
			MinAgeYears:     c.Sweep.MinAgeYears,
			OnePerHour:      c.Sweep.OnePerHour,
			CompressQuality: c.Sweep.CompressQuality,
			Workers:         c.Sweep.Workers,
		},
		Server: ServerYAML{
			ListenAddr: c.Server.ListenAddr,
			Port:       c.Server.Port,
			Cert:       c.Server.Cert,
			Key:        c.Server.Key,
			BaseDir:    c.Server.BaseDir,
		},
	}
}

func (c ConfigYAML) convert() (*ConfigData, error) {
	daylight, err := ParseBand(c.Site.Daylight)
	if err != nil {
		return nil, fmt.Errorf("daylight-band: %w", err)
	}
	darkness, err := ParseBand(c.Site.Darkness)
	if err != nil {
		return nil, fmt.Errorf("darkness-band: %w", err)
	}
	return &ConfigData{
		Site: SiteData{
			Name:             c.Site.Name,
			Latitude:         c.Site.Latitude,
			Longitude:        c.Site.Longitude,
			Daylight:         daylight,
			Darkness:         darkness,
			FakeSunriseHour:  c.Site.FakeSunriseHour,
			FakeSunsetHour:   c.Site.FakeSunsetHour,
			AdjustHours:      c.Site.AdjustHours,
			UTCOffsetMinutes: c.Site.UTCOffsetMinutes,
			Zone:             c.Site.Zone,
		},
		Sweep: SweepData{
			BaseDir:         c.Sweep.BaseDir,
			MinAgeYears:     c.Sweep.MinAgeYears,
			OnePerHour:      c.Sweep.OnePerHour,
			CompressQuality: c.Sweep.CompressQuality,
			Workers:         c.Sweep.Workers,
		},
		Server: ServerData{
			ListenAddr: c.Server.ListenAddr,
			Port:       c.Server.Port,
			Cert:       c.Server.Cert,
			Key:        c.Server.Key,
			BaseDir:    c.Server.BaseDir,
		},
	}, nil
}
