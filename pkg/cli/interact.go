package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"

	"github.com/agripanel/listquery/pkg/config"
	"github.com/agripanel/listquery/pkg/listquery"
	"github.com/agripanel/listquery/pkg/observability/logger"
	"github.com/agripanel/listquery/pkg/observability/metrics"
	"github.com/agripanel/listquery/pkg/seller"
	"github.com/agripanel/listquery/pkg/viewstate"
	"github.com/spf13/cobra"
)

const interactHelp = `commands:
  filter <STATUS>   select a filter chip, any case (ALL for everything)
  sort <KEY>        select a sort key, any case
  type <term>       type into the search box (debounced)
  search <term>     submit a search term immediately
  flush             apply the pending typed term now
  refresh           reload the record file
  reset             remount the screen with default selection
  quit              exit`

func newInteractCommand(load loadFunc) *cobra.Command {
	var (
		domainName   string
		file         string
		output       string
		printMetrics bool
	)

	cmd := &cobra.Command{
		Use:   "interact",
		Short: "Drive a list screen with commands read from stdin",
		Long:  "Mounts a list screen over a record file and applies one command per input line.\n\n" + interactHelp,
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

			ctx := logger.ContextWithScreen(cmd.Context(), d.Name())
			s := d.NewSession(file, viewstate.OptionsFromConfig(cfg, log, lists))
			defer s.Close()

			r := &renderer{out: cmd.OutOrStdout(), format: format}
			s.OnChange(r.render)

			if err := s.Mount(ctx); err != nil {
				return err
			}
			if err := runInteraction(ctx, cmd.InOrStdin(), cmd.ErrOrStderr(), d, s, cfg); err != nil {
				return err
			}
			s.FlushSearch()
			if err := r.err(); err != nil {
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
	cmd.Flags().StringVarP(&output, "output", "o", string(outputTable), "output format (table, json, yaml)")
	cmd.Flags().BoolVar(&printMetrics, "metrics", false, "print screen metrics to stderr on exit")
	_ = cmd.MarkFlagRequired("domain")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

// renderer serializes renders coming from the input loop and the debounce timer.
type renderer struct {
	mu       sync.Mutex
	out      io.Writer
	format   outputFormat
	firstErr error
}

func (r *renderer) render(t seller.Table) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := writeTable(r.out, r.format, t); err != nil && r.firstErr == nil {
		r.firstErr = err
	}
}

func (r *renderer) err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.firstErr
}

func runInteraction(ctx context.Context, in io.Reader, errOut io.Writer, d seller.Domain, s seller.Session, cfg *config.Config) error {
	scanner := bufio.NewScanner(in)
	for scanner.Scan() {
		if err := ctx.Err(); err != nil {
			return err
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		verb, arg, _ := strings.Cut(line, " ")
		arg = strings.TrimSpace(arg)

		var err error
		switch strings.ToLower(verb) {
		case "filter":
			err = s.SelectFilter(normalizeKey(arg))
		case "sort":
			key := normalizeKey(arg)
			if err = checkSort(d, key, cfg.Query.Strict); err == nil {
				err = s.SelectSort(key)
			}
		case "type":
			err = s.Type(arg)
		case "search":
			err = s.Search(arg)
		case "flush":
			s.FlushSearch()
		case "refresh":
			err = s.Refresh(ctx)
		case "reset":
			err = s.Mount(ctx)
		case "quit", "exit":
			return nil
		case "help":
			_, err = fmt.Fprintln(errOut, interactHelp)
		default:
			err = fmt.Errorf("unknown command %q (try help)", verb)
		}
		if err != nil {
			fmt.Fprintf(errOut, "error: %v\n", err)
		}
	}
	return scanner.Err()
}

// normalizeKey maps a typed filter chip or sort key to its upper-case vocabulary form.
func normalizeKey(v string) string {
	return strings.ToUpper(strings.TrimSpace(v))
}

// checkSort rejects unknown keys up front in strict mode, where the engine would panic.
func checkSort(d seller.Domain, key string, strict bool) error {
	if !strict || key == "" || slices.Contains(d.SortKeys(), key) {
		return nil
	}
	return fmt.Errorf("%w %q for %s (known: %s)", listquery.ErrUnknownSortKey, key, d.Name(), strings.Join(d.SortKeys(), ", "))
}
