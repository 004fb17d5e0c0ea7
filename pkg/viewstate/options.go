package viewstate

import (
	"github.com/agripanel/listquery/pkg/config"
	"github.com/agripanel/listquery/pkg/observability/logger"
	"github.com/agripanel/listquery/pkg/observability/metrics"
	"github.com/agripanel/listquery/pkg/source"
)

// OptionsFromConfig builds controller options from the query and source settings.
// Each call gets its own breaker so screens fail independently.
func OptionsFromConfig(cfg *config.Config, log logger.Logger, m *metrics.ListMetrics) Options {
	opts := Options{
		SearchDebounce: cfg.Query.Debounce,
		FetchTimeout:   cfg.Source.Timeout,
		Logger:         log,
		Metrics:        m,
	}
	if cfg.Source.BreakerFailures > 0 {
		opts.Breaker = source.NewBreaker(cfg.Source.BreakerFailures, cfg.Source.BreakerCooldown)
	}
	return opts
}
