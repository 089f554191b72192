package app

import (
	corecmd "github.com/m3rciful/kinobot/core/cmd"
	coreconfig "github.com/m3rciful/kinobot/core/config"
)

// Config carries the core configuration through the runner.
type Config struct {
	*coreconfig.Config
}

// CoreConfig implements cmd.ConfigCarrier.
func (c Config) CoreConfig() *coreconfig.Config {
	return c.Config
}

// LoadConfig reads the YAML file at path with env overrides.
func LoadConfig(path string) (corecmd.ConfigCarrier, error) {
	cfg, err := coreconfig.Load(path)
	if err != nil {
		return nil, err
	}
	return Config{Config: cfg}, nil
}
