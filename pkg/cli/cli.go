// Package cli builds the listquery command tree.
package cli

import (
	"fmt"

	"github.com/agripanel/listquery/pkg/config"
	"github.com/agripanel/listquery/pkg/listquery"
	"github.com/agripanel/listquery/pkg/observability/logger"
	"github.com/agripanel/listquery/pkg/observability/metrics"
	"github.com/agripanel/listquery/pkg/schemagen"
	"github.com/agripanel/listquery/pkg/seller"
	"github.com/agripanel/listquery/pkg/version"
	"github.com/spf13/cobra"
)

// Options configures the root command.
type Options struct {
	Name string
	// EnvPrefix prefixes environment overrides. Empty uses config.DefaultEnvPrefix.
	EnvPrefix string
}

// NewRootCommand creates the listquery command tree.
func NewRootCommand(opts Options) *cobra.Command {
	if opts.Name == "" {
		opts.Name = "listquery"
	}

	rootCmd := &cobra.Command{
		Use:          opts.Name,
		Short:        "Filter, search and sort seller panel lists",
		SilenceUsage: true,
	}

	var cfgPath string
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config-file", "c", "", "config file path")
	config.RegisterFlags(rootCmd.PersistentFlags())

	load := func(cmd *cobra.Command) (*config.Config, *logger.ZapLogger, error) {
		return LoadConfigAndLogger(cmd, cfgPath, opts.EnvPrefix)
	}

	rootCmd.AddCommand(
		newQueryCommand(load),
		newInteractCommand(load),
		newDomainsCommand(),
		newConfigCommand(load),
		newSchemaCommand(load),
		newVersionCommand(opts.Name),
	)
	return rootCmd
}

// LoadConfigAndLogger resolves configuration for cmd and builds the logger.
// Logs go to the command's error stream so stdout carries only results.
func LoadConfigAndLogger(cmd *cobra.Command, cfgPath, envPrefix string) (*config.Config, *logger.ZapLogger, error) {
	cfg, err := config.NewViperLoader(cfgPath, envPrefix).WithFlags(cmd.Flags()).Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	level, err := logger.ParseLogLevel(cfg.Log.Level)
	if err != nil {
		return nil, nil, err
	}
	format, err := logger.ParseLogFormat(cfg.Log.Format)
	if err != nil {
		return nil, nil, err
	}
	log, err := logger.NewZapLogger(logger.Config{
		Level:  level,
		Format: format,
		Output: cmd.ErrOrStderr(),
	})
	if err != nil {
		return nil, nil, fmt.Errorf("create logger: %w", err)
	}
	log.Debug("configuration loaded", "config_file", cfgPath, "strict", cfg.Query.Strict, "source_timeout", cfg.Source.Timeout)
	return cfg, log, nil
}

type loadFunc func(cmd *cobra.Command) (*config.Config, *logger.ZapLogger, error)

func newQueryCommand(load loadFunc) *cobra.Command {
	var (
		domainName   string
		file         string
		filter       string
		search       string
		sortKey      string
		output       string
		printMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "query",
		Short: "Run a filter/search/sort query over a record file",
		Long:  "Runs one query over a record file. Filter and sort values are matched case-insensitively.",
		Example: `  listquery query --domain products --file products.json --filter ACTIVE --sort PRICE_ASC
  listquery query --domain orders --file orders.yaml --search rice --output json`,
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()

			var reg *metrics.Registry
			var lists *metrics.ListMetrics
			if printMetrics {
				reg = metrics.NewRegistry()
				lists = reg.Lists()
			}

			registry, err := seller.NewRegistry(lists, listquery.WithLogger(log), listquery.WithStrict(cfg.Query.Strict))
			if err != nil {
				return err
			}
			d, err := registry.Lookup(domainName)
			if err != nil {
				return err
			}

			spec := d.DefaultSpec()
			if cmd.Flags().Changed("filter") {
				spec.Filter = normalizeKey(filter)
			}
			if cmd.Flags().Changed("search") {
				spec.Search = search
			}
			if cmd.Flags().Changed("sort") {
				spec.Sort = normalizeKey(sortKey)
			}
			if err := checkSort(d, spec.Sort, cfg.Query.Strict); err != nil {
				return err
			}

			ctx := logger.ContextWithScreen(cmd.Context(), d.Name())
			result, err := d.QueryFile(ctx, file, cfg.Source.Timeout, spec)
			if err != nil {
				return err
			}
			log.WithContext(ctx).Debug("query applied",
				"filter", spec.Filter, "search", spec.Search, "sort", spec.Sort,
				"total", result.Total, "visible", result.Visible)

			if err := writeTable(cmd.OutOrStdout(), format, result); err != nil {
				return err
			}
			if reg != nil {
				return writeMetrics(cmd.ErrOrStderr(), reg.Gatherer())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&domainName, "domain", "d", "", "list domain (products, orders, inventory, forecasts, offers)")
	cmd.Flags().StringVarP(&file, "file", "f", "", "YAML or JSON file holding the records")
	cmd.Flags().StringVar(&filter, "filter", listquery.FilterAll, "status filter, any case")
	cmd.Flags().StringVarP(&search, "search", "s", "", "case-insensitive search term")
	cmd.Flags().StringVar(&sortKey, "sort", "", "sort key, any case (defaults to the domain's default sort)")
	cmd.Flags().StringVarP(&output, "output", "o", string(outputTable), "output format (table, json, yaml)")
	cmd.Flags().BoolVar(&printMetrics, "metrics", false, "print query metrics to stderr")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func newDomainsCommand() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "domains",
		Short: "List domains with their filters and sort keys",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			registry, err := seller.NewRegistry(nil)
			if err != nil {
				return err
			}
			descriptors := make([]domainDescriptor, 0, len(registry.Names()))
			for _, name := range registry.Names() {
				d, err := registry.Lookup(name)
				if err != nil {
					return err
				}
				descriptors = append(descriptors, domainDescriptor{
					Name:        d.Name(),
					Filters:     d.Filters(),
					Sorts:       d.SortKeys(),
					DefaultSort: d.DefaultSpec().Sort,
				})
			}
			return writeDomains(cmd.OutOrStdout(), format, descriptors)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(outputTable), "output format (table, json, yaml)")
	return cmd
}

func newConfigCommand(load loadFunc) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Configuration commands",
	}
	configCmd.AddCommand(&cobra.Command{
		Use:   "show",
		Short: "Print the resolved configuration",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			return writeConfig(cmd.OutOrStdout(), cfg)
		},
	})
	return configCmd
}

func newSchemaCommand(load loadFunc) *cobra.Command {
	schemaCmd := &cobra.Command{
		Use:   "schema",
		Short: "Print JSON Schemas for config and record files",
	}
	schemaCmd.AddCommand(&cobra.Command{
		Use:   "config",
		Short: "Print the config file schema with the resolved values as defaults",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, log, err := load(cmd)
			if err != nil {
				return err
			}
			defer func() { _ = log.Sync() }()
			schema, err := schemagen.Config(cfg)
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), outputJSON, schema)
		},
	})
	schemaCmd.AddCommand(&cobra.Command{
		Use:   "records <domain>",
		Short: "Print the record file schema for a domain",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			registry, err := seller.NewRegistry(nil)
			if err != nil {
				return err
			}
			d, err := registry.Lookup(args[0])
			if err != nil {
				return err
			}
			schema, err := d.RecordSchema()
			if err != nil {
				return err
			}
			return encode(cmd.OutOrStdout(), outputJSON, schema)
		},
	})
	return schemaCmd
}

func newVersionCommand(name string) *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		RunE: func(cmd *cobra.Command, args []string) error {
			format, err := parseOutput(output)
			if err != nil {
				return err
			}
			return writeVersion(cmd.OutOrStdout(), format, version.Current(name))
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", string(outputTable), "output format (table, json, yaml)")
	return cmd
}
