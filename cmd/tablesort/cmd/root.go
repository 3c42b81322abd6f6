// Package cmd implements the tablesort command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"
	_ "time/tzdata" // --tz resolves without system tzdata

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tablesort/internal/logging"
	"github.com/JonMunkholm/tablesort/internal/sorting"
	"github.com/JonMunkholm/tablesort/internal/store"
	"github.com/JonMunkholm/tablesort/internal/widget"
)

// globals are the persistent flags of every command.
type globals struct {
	tz        string
	logLevel  string
	logFormat string

	loc *time.Location
}

// tableFlags are the flags shared by the commands that read a table.
type tableFlags struct {
	dateFormat string
	locale     string
	profile    string
	profiles   string
}

func (f *tableFlags) register(c *cobra.Command) {
	c.Flags().StringVar(&f.dateFormat, "date-format", "", "moment-style date format of date columns (e.g. DD.MM.YYYY)")
	c.Flags().StringVar(&f.locale, "locale", "", "locale of month and day names in --date-format")
	c.Flags().StringVar(&f.profile, "profile", "", "profile to apply, from --profiles")
	c.Flags().StringVar(&f.profiles, "profiles", "", "YAML profiles file")
}

// options resolves the table options: the named profile, with --date-format
// and --locale taking precedence.
func (f *tableFlags) options(ctx context.Context) (widget.Options, error) {
	var opts widget.Options
	if f.profile != "" {
		if f.profiles == "" {
			return opts, errors.New("--profile needs --profiles")
		}
		profiles := store.NewMemoryStore()
		if _, err := store.LoadYAML(ctx, profiles, f.profiles); err != nil {
			return opts, err
		}
		p, err := profiles.Get(ctx, f.profile)
		if err != nil {
			return opts, err
		}
		opts = p.Options
	}
	if f.dateFormat != "" {
		opts.DateTimeFormat = f.dateFormat
		opts.DateTimeLocale = f.locale
	}
	return opts, nil
}

// registry builds a default registry in the --tz zone with the table's date
// format registered.
func (g *globals) registry(opts widget.Options) (*sorting.Registry, error) {
	reg := sorting.NewDefaultRegistry(sorting.WithLocation(g.loc))
	if _, err := opts.Apply(reg); err != nil {
		return nil, err
	}
	return reg, nil
}

// NewRootCmd builds the command tree.
func NewRootCmd() *cobra.Command {
	g := &globals{}

	root := &cobra.Command{
		Use:   "tablesort",
		Short: "Detect column kinds and sort tables",
		Long: `tablesort classifies the cells of CSV and HTML tables into sortable kinds
(currency, formatted numbers, metric sizes, wiki dates, custom date formats,
numbers and text) and sorts tables by them.

Kinds are detected per column: the first kind that accepts every cell wins.`,
		SilenceUsage: true,
		PersistentPreRunE: func(c *cobra.Command, args []string) error {
			slog.SetDefault(logging.New(c.ErrOrStderr(), g.logLevel, g.logFormat))
			loc, err := time.LoadLocation(g.tz)
			if err != nil {
				return fmt.Errorf("--tz: %w", err)
			}
			g.loc = loc
			return nil
		},
	}

	root.PersistentFlags().StringVar(&g.tz, "tz", "UTC", "time zone dates are read in")
	root.PersistentFlags().StringVar(&g.logLevel, "log-level", "warn", "log level: debug, info, warn, error")
	root.PersistentFlags().StringVar(&g.logFormat, "log-format", "text", "log format: text or json")

	root.AddCommand(newDetectCmd(g), newSortCmd(g), newHTMLCmd(g))
	return root
}

// Execute runs the command line.
func Execute() error {
	return NewRootCmd().Execute()
}

// openInput opens a file argument; "-" reads stdin.
func openInput(c *cobra.Command, name string) (io.ReadCloser, error) {
	if name == "-" {
		return io.NopCloser(c.InOrStdin()), nil
	}
	f, err := os.Open(name)
	if err != nil {
		return nil, err
	}
	return f, nil
}

// parseOrders turns --by values of the form "column[:asc|desc]" into sort
// orders. resolve maps a column name or index to its position.
func parseOrders(specs []string, resolve func(string) (int, bool)) ([]sorting.Order, error) {
	if len(specs) == 0 {
		return nil, errors.New("at least one --by column is required")
	}

	orders := make([]sorting.Order, 0, len(specs))
	for _, spec := range specs {
		name, dir := spec, sorting.Asc
		if i := strings.LastIndex(spec, ":"); i >= 0 {
			switch suffix := strings.ToLower(spec[i+1:]); suffix {
			case string(sorting.Asc), string(sorting.Desc):
				name, dir = spec[:i], sorting.ParseDirection(suffix)
			}
		}

		idx, ok := resolve(name)
		if !ok {
			return nil, fmt.Errorf("unknown column %q", name)
		}
		orders = append(orders, sorting.Order{Column: idx, Dir: dir})
	}
	return orders, nil
}
