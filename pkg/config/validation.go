package config

import (
	"fmt"
	"strings"
)

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error, got %q", c.Log.Level)
	}

	switch strings.ToLower(c.Log.Format) {
	case "json", "text", "console":
	default:
		return fmt.Errorf("log.format must be json or text, got %q", c.Log.Format)
	}

	if c.Query.Debounce <= 0 {
		return fmt.Errorf("query.debounce must be positive, got %s", c.Query.Debounce)
	}
	if c.Source.Timeout < 0 {
		return fmt.Errorf("source.timeout must not be negative, got %s", c.Source.Timeout)
	}
	if c.Source.BreakerFailures < 0 {
		return fmt.Errorf("source.breaker_failures must not be negative, got %d", c.Source.BreakerFailures)
	}
	if c.Source.BreakerFailures > 0 && c.Source.BreakerCooldown <= 0 {
		return fmt.Errorf("source.breaker_cooldown must be positive when the breaker is enabled, got %s", c.Source.BreakerCooldown)
	}
	if strings.TrimSpace(c.Service.Name) == "" {
		return fmt.Errorf("service.name is required")
	}
	return nil
}
