package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/agripanel/listquery/pkg/config"
	"github.com/agripanel/listquery/pkg/seller"
	"github.com/agripanel/listquery/pkg/version"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	outputTable outputFormat = "table"
	outputJSON  outputFormat = "json"
	outputYAML  outputFormat = "yaml"
)

const metricPrefix = "listquery_"

var headerStyle = lipgloss.NewStyle().Bold(true).Padding(0, 1)
var cellStyle = lipgloss.NewStyle().Padding(0, 1)

func parseOutput(s string) (outputFormat, error) {
	switch f := outputFormat(strings.ToLower(strings.TrimSpace(s))); f {
	case outputTable, outputJSON, outputYAML:
		return f, nil
	default:
		return "", fmt.Errorf("invalid output format %q (expected table, json or yaml)", s)
	}
}

type domainDescriptor struct {
	Name        string   `json:"name" yaml:"name"`
	Filters     []string `json:"filters" yaml:"filters"`
	Sorts       []string `json:"sorts" yaml:"sorts"`
	DefaultSort string   `json:"default_sort" yaml:"default_sort"`
}

func writeTable(w io.Writer, format outputFormat, t seller.Table) error {
	if format != outputTable {
		return encode(w, format, t)
	}
	if _, err := fmt.Fprintln(w, renderTable(t.Columns, t.Rows)); err != nil {
		return err
	}
	_, err := fmt.Fprintf(w, "%s: %d of %d (filter=%s search=%q sort=%s)\n",
		t.Domain, t.Visible, t.Total, t.Spec.Filter, t.Spec.Search, t.Spec.Sort)
	return err
}

func writeDomains(w io.Writer, format outputFormat, domains []domainDescriptor) error {
	if format != outputTable {
		return encode(w, format, domains)
	}
	rows := make([][]string, 0, len(domains))
	for _, d := range domains {
		rows = append(rows, []string{d.Name, strings.Join(d.Filters, " "), strings.Join(d.Sorts, " "), d.DefaultSort})
	}
	_, err := fmt.Fprintln(w, renderTable([]string{"DOMAIN", "FILTERS", "SORTS", "DEFAULT"}, rows))
	return err
}

func writeVersion(w io.Writer, format outputFormat, info version.Info) error {
	if format != outputTable {
		return encode(w, format, info)
	}
	_, err := fmt.Fprintf(w, "%s version %s\ncommit: %s\nbuilt: %s\ngo: %s\n",
		info.Name, info.Version, info.Commit, info.BuildTime, info.GoVersion)
	return err
}

type configView struct {
	Service struct {
		Name string `yaml:"name"`
	} `yaml:"service"`
	Log struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
	} `yaml:"log"`
	Query struct {
		Strict   bool   `yaml:"strict"`
		Debounce string `yaml:"debounce"`
	} `yaml:"query"`
	Source struct {
		Timeout         string `yaml:"timeout"`
		BreakerFailures int    `yaml:"breaker_failures"`
		BreakerCooldown string `yaml:"breaker_cooldown"`
	} `yaml:"source"`
}

// writeConfig prints cfg in the same shape the loader reads, durations included.
func writeConfig(w io.Writer, cfg *config.Config) error {
	var view configView
	view.Service.Name = cfg.Service.Name
	view.Log.Level = cfg.Log.Level
	view.Log.Format = cfg.Log.Format
	view.Query.Strict = cfg.Query.Strict
	view.Query.Debounce = cfg.Query.Debounce.String()
	view.Source.Timeout = cfg.Source.Timeout.String()
	view.Source.BreakerFailures = cfg.Source.BreakerFailures
	view.Source.BreakerCooldown = cfg.Source.BreakerCooldown.String()
	return encode(w, outputYAML, view)
}

func encode(w io.Writer, format outputFormat, v any) error {
	switch format {
	case outputJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	case outputYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return err
		}
		return enc.Close()
	default:
		return fmt.Errorf("format %q cannot encode values", format)
	}
}

func renderTable(headers []string, rows [][]string) string {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return cellStyle
		}).
		Headers(headers...).
		Rows(rows...).
		Render()
}

// writeMetrics prints the listquery_* families in the text exposition format.
func writeMetrics(w io.Writer, g prometheus.Gatherer) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("gather metrics: %w", err)
	}
	for _, mf := range families {
		if !strings.HasPrefix(mf.GetName(), metricPrefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return err
		}
	}
	return nil
}
