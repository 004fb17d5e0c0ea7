package config

import "time"

// Config is the root configuration for the listquery tools.
type Config struct {
	Service ServiceConfig `mapstructure:"service"`
	Log     LogConfig     `mapstructure:"log"`
	Query   QueryConfig   `mapstructure:"query"`
	Source  SourceConfig  `mapstructure:"source"`
}

// ServiceConfig configures service identity metadata.
type ServiceConfig struct {
	Name string `mapstructure:"name"`
}

// LogConfig configures structured logging.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// QueryConfig configures the list query engine and its screens.
type QueryConfig struct {
	// Strict makes unknown sort keys panic. Development only.
	Strict bool `mapstructure:"strict"`
	// Debounce is the quiet period before a typed search term is applied.
	Debounce time.Duration `mapstructure:"debounce"`
}

// SourceConfig configures the list-fetching collaborator.
type SourceConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
	// BreakerFailures is the number of consecutive failed refreshes that pause
	// fetching. Zero disables the breaker.
	BreakerFailures int           `mapstructure:"breaker_failures"`
	BreakerCooldown time.Duration `mapstructure:"breaker_cooldown"`
}

// DefaultConfig returns the configuration used when nothing overrides it.
func DefaultConfig() *Config {
	return &Config{
		Service: ServiceConfig{Name: "listquery"},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Query: QueryConfig{
			Strict:   false,
			Debounce: 500 * time.Millisecond,
		},
		Source: SourceConfig{
			Timeout:         10 * time.Second,
			BreakerFailures: 3,
			BreakerCooldown: 30 * time.Second,
		},
	}
}
