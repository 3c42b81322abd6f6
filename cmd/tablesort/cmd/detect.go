package cmd

import (
	"fmt"
	"log/slog"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newDetectCmd(g *globals) *cobra.Command {
	var (
		table    tableFlags
		noHeader bool
	)

	c := &cobra.Command{
		Use:   "detect FILE.csv",
		Short: "Print the detected kind of every column",
		Long: `Print the detected kind of every column of a CSV file.

Use "-" to read from stdin.`,
		Args: cobra.ExactArgs(1),
		RunE: func(c *cobra.Command, args []string) error {
			opts, err := table.options(c.Context())
			if err != nil {
				return err
			}
			reg, err := g.registry(opts)
			if err != nil {
				return err
			}

			in, err := openInput(c, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			t, err := readCSV(in, !noHeader)
			if err != nil {
				return err
			}
			slog.Debug("table read", "file", args[0], "rows", len(t.rows), "columns", t.width())

			tw := tabwriter.NewWriter(c.OutOrStdout(), 0, 4, 2, ' ', 0)
			for i := range t.width() {
				fmt.Fprintf(tw, "%s\t%s\n", t.name(i), reg.DetectColumn(t.columnValues(i)))
			}
			return tw.Flush()
		},
	}

	table.register(c)
	c.Flags().BoolVar(&noHeader, "no-header", false, "the first row is data, not a header")
	return c
}
