package bot

import (
	"fmt"

	"github.com/m3rciful/bookingbot/booking"
	"github.com/m3rciful/bookingbot/booking/dialog"
	"github.com/m3rciful/bookingbot/booking/rediscache"
	coreconfig "github.com/m3rciful/bookingbot/core/config"
	coredatabase "github.com/m3rciful/bookingbot/core/database"
)

// Config is the full bot configuration: the core sections plus storage,
// cache, schedule and session settings.
type Config struct {
	coreconfig.Config `yaml:",inline"`

	Database coredatabase.Config    `yaml:"database"`
	Redis    rediscache.Config      `yaml:"redis"`
	Schedule booking.ScheduleConfig `yaml:"schedule"`
	Session  dialog.Config          `yaml:"session"`
}

// Load reads path, overlays the environment and validates the result.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := coreconfig.Decode(path, &cfg); err != nil {
		return nil, err
	}
	if err := cfg.Normalize(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Normalize validates every section and fills defaults.
func (c *Config) Normalize() error {
	if err := coreconfig.Normalize(&c.Config); err != nil {
		return err
	}
	if err := c.Database.Normalize(); err != nil {
		return err
	}
	if err := c.Schedule.Normalize(); err != nil {
		return err
	}
	if err := c.Session.Normalize(); err != nil {
		return err
	}
	if c.Redis.TTL < 0 {
		return fmt.Errorf("redis.ttl must be >= 0")
	}
	return nil
}

// CoreConfig exposes the embedded core configuration.
func (c *Config) CoreConfig() *coreconfig.Config {
	return &c.Config
}
