package cmd

import (
	"log/slog"

	"github.com/spf13/cobra"
)

func newSortCmd(g *globals) *cobra.Command {
	var (
		table    tableFlags
		by       []string
		noHeader bool
	)

	c := &cobra.Command{
		Use:   "sort FILE.csv --by COLUMN[:desc] ...",
		Short: "Sort a CSV file",
		Long: `Sort the rows of a CSV file and write them to stdout.

Columns are named by header or index. Repeat --by for secondary orders; rows
that tie on every column keep their input order.`,
		Example: `  tablesort sort sizes.csv --by Size:desc
  tablesort sort releases.csv --by Date --date-format DD.MM.YYYY --locale de`,
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
			orders, err := parseOrders(by, t.column)
			if err != nil {
				return err
			}

			res, err := reg.Sort(t.values(), orders)
			if err != nil {
				return err
			}
			for col, kind := range res.Kinds {
				slog.Debug("column sorted", "column", t.name(col), "kind", kind)
			}
			return t.write(c.OutOrStdout(), res.Perm)
		},
	}

	table.register(c)
	c.Flags().StringArrayVar(&by, "by", nil, "column to sort by, with an optional :asc or :desc suffix")
	c.Flags().BoolVar(&noHeader, "no-header", false, "the first row is data, not a header")
	return c
}
