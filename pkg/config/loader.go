package config

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// DefaultEnvPrefix prefixes environment overrides, e.g. LISTQUERY_LOG_LEVEL.
const DefaultEnvPrefix = "LISTQUERY"

// Loader defines the interface for loading configuration
type Loader interface {
	Load() (*Config, error)
	Validate(*Config) error
}

// ViperLoader implements Loader using Viper.
// Precedence: flags > ENV > file > defaults.
type ViperLoader struct {
	configFile string
	envPrefix  string
	flags      *pflag.FlagSet
}

// NewViperLoader creates a new ViperLoader
// configFile: path to configuration file (optional, can be empty)
// envPrefix: prefix for environment variables (empty uses DefaultEnvPrefix)
func NewViperLoader(configFile, envPrefix string) *ViperLoader {
	return &ViperLoader{
		configFile: configFile,
		envPrefix:  envPrefix,
	}
}

// WithFlags binds command-line flags registered by RegisterFlags.
// Only flags the user actually set override other sources.
func (l *ViperLoader) WithFlags(flags *pflag.FlagSet) *ViperLoader {
	l.flags = flags
	return l
}

// Load loads and validates configuration.
func (l *ViperLoader) Load() (*Config, error) {
	v := viper.New()
	l.setDefaults(v, DefaultConfig())

	if l.configFile != "" {
		v.SetConfigFile(l.configFile)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", l.configFile, err)
		}
	}

	l.bindEnvVars(v)
	if err := l.bindFlags(v); err != nil {
		return nil, err
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := l.Validate(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &cfg, nil
}

// Validate checks if the configuration is valid.
func (l *ViperLoader) Validate(cfg *Config) error {
	return cfg.Validate()
}

func (l *ViperLoader) bindEnvVars(v *viper.Viper) {
	v.BindEnv("service.name", l.prefixedEnv("SERVICE_NAME"))
	v.BindEnv("log.level", l.prefixedEnv("LOG_LEVEL"))
	v.BindEnv("log.format", l.prefixedEnv("LOG_FORMAT"))
	v.BindEnv("query.strict", l.prefixedEnv("QUERY_STRICT"))
	v.BindEnv("query.debounce", l.prefixedEnv("QUERY_DEBOUNCE"))
	v.BindEnv("source.timeout", l.prefixedEnv("SOURCE_TIMEOUT"))
	v.BindEnv("source.breaker_failures", l.prefixedEnv("SOURCE_BREAKER_FAILURES"))
	v.BindEnv("source.breaker_cooldown", l.prefixedEnv("SOURCE_BREAKER_COOLDOWN"))
}

func (l *ViperLoader) bindFlags(v *viper.Viper) error {
	if l.flags == nil {
		return nil
	}
	for key, name := range flagKeys {
		flag := l.flags.Lookup(name)
		if flag == nil || !flag.Changed {
			continue
		}
		if err := v.BindPFlag(key, flag); err != nil {
			return fmt.Errorf("failed to bind --%s: %w", name, err)
		}
	}
	return nil
}

func (l *ViperLoader) prefixedEnv(suffix string) string {
	prefix := strings.TrimSpace(l.envPrefix)
	if prefix == "" {
		prefix = DefaultEnvPrefix
	}
	return fmt.Sprintf("%s_%s", strings.ToUpper(prefix), suffix)
}

func (l *ViperLoader) setDefaults(v *viper.Viper, cfg *Config) {
	v.SetDefault("service.name", cfg.Service.Name)
	v.SetDefault("log.level", cfg.Log.Level)
	v.SetDefault("log.format", cfg.Log.Format)
	v.SetDefault("query.strict", cfg.Query.Strict)
	v.SetDefault("query.debounce", cfg.Query.Debounce)
	v.SetDefault("source.timeout", cfg.Source.Timeout)
	v.SetDefault("source.breaker_failures", cfg.Source.BreakerFailures)
	v.SetDefault("source.breaker_cooldown", cfg.Source.BreakerCooldown)
}

// flagKeys maps config keys to flag names.
var flagKeys = map[string]string{
	"log.level":      "log-level",
	"log.format":     "log-format",
	"query.strict":   "strict",
	"source.timeout": "source-timeout",
}

// RegisterFlags adds the config override flags to flags.
func RegisterFlags(flags *pflag.FlagSet) {
	defaults := DefaultConfig()
	flags.String("log-level", defaults.Log.Level, "log level (debug, info, warn, error)")
	flags.String("log-format", defaults.Log.Format, "log format (text, json)")
	flags.Bool("strict", defaults.Query.Strict, "panic on unknown sort keys")
	flags.Duration("source-timeout", defaults.Source.Timeout, "timeout for loading the record list")
}
