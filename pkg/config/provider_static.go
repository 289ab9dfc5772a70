package config

// StaticProvider implements ConfigProvider over an in-memory ConfigData,
// used when no configuration file is given.
type StaticProvider struct {
	config *ConfigData
}

// NewStaticProvider returns a provider serving c.
func NewStaticProvider(c *ConfigData) *StaticProvider {
	return &StaticProvider{config: c}
}

// NewProvider returns a YAML provider for filename, or a static provider
// over Default when filename is empty.
func NewProvider(filename string) ConfigProvider {
	if filename == "" {
		return NewStaticProvider(Default())
	}
	return NewYAMLProvider(filename)
}

func (s *StaticProvider) LoadConfig() (*ConfigData, error) { return s.config, nil }
func (s *StaticProvider) GetSite() (*SiteData, error)       { return &s.config.Site, nil }
func (s *StaticProvider) GetSweep() (*SweepData, error)     { return &s.config.Sweep, nil }
func (s *StaticProvider) GetServer() (*ServerData, error)   { return &s.config.Server, nil }
func (s *StaticProvider) Close() error                      { return nil }
