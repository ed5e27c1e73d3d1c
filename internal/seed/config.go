package seed

import (
	"fmt"

	"contact-seeder/internal/common/config"
)

type Config struct {
	DefaultCount     int
	DefaultClassName string
	MaxCount         int
}

func DefaultConfig() *Config {
	return &Config{
		DefaultCount:     100,
		DefaultClassName: "Contact",
		MaxCount:         5000,
	}
}

func (c *Config) Validate() error {
	if c.MaxCount <= 0 {
		return fmt.Errorf("max_count must be positive")
	}
	if c.DefaultCount < 0 || c.DefaultCount > c.MaxCount {
		return fmt.Errorf("default_count must be between 0 and %d", c.MaxCount)
	}
	if c.DefaultClassName == "" {
		return fmt.Errorf("default_class_name is required")
	}
	return nil
}

// createConfigFromAppConfig prefers an explicit config, then the app config, then defaults.
func createConfigFromAppConfig(appConfig *config.Config, custom *Config) *Config {
	if custom != nil {
		return custom
	}
	cfg := DefaultConfig()
	if appConfig == nil {
		return cfg
	}
	if appConfig.Seed.DefaultCount != 0 {
		cfg.DefaultCount = appConfig.Seed.DefaultCount
	}
	if appConfig.Seed.DefaultClassName != "" {
		cfg.DefaultClassName = appConfig.Seed.DefaultClassName
	}
	if appConfig.Seed.MaxCount != 0 {
		cfg.MaxCount = appConfig.Seed.MaxCount
	}
	return cfg
}
