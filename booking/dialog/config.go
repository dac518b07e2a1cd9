package dialog

import (
	"fmt"
	"time"
)

const (
	defaultTTL           = 15 * time.Minute
	defaultSweepInterval = time.Minute
)

// Config controls session lifetime.
type Config struct {
	// TTL is how long an untouched session survives.
	TTL           time.Duration `yaml:"ttl" envconfig:"SESSION_TTL"`
	SweepInterval time.Duration `yaml:"sweep_interval" envconfig:"SESSION_SWEEP_INTERVAL"`
}

// Normalize fills defaults and rejects negative durations.
func (c *Config) Normalize() error {
	if c.TTL < 0 {
		return fmt.Errorf("session.ttl must be >= 0, got %s", c.TTL)
	}
	if c.SweepInterval < 0 {
		return fmt.Errorf("session.sweep_interval must be >= 0, got %s", c.SweepInterval)
	}
	if c.TTL == 0 {
		c.TTL = defaultTTL
	}
	if c.SweepInterval == 0 {
		c.SweepInterval = defaultSweepInterval
	}
	return nil
}
