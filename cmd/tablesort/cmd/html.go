package cmd

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/JonMunkholm/tablesort/internal/htmltable"
	"github.com/JonMunkholm/tablesort/internal/widget"
)

func newHTMLCmd(g *globals) *cobra.Command {
	var (
		table   tableFlags
		by      []string
		unlink  bool
		stripes bool
	)

	c := &cobra.Command{
		Use:   "html FILE.html --by COLUMN[:desc] ...",
		Short: "Sort the first table of an HTML document",
		Long: `Sort the first table of an HTML document and write the table to stdout.

The header row stays in place and the body rows are re-striped. Row rules of
the --profile style the sorted rows.`,
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
			rules, err := opts.Rules()
			if err != nil {
				return err
			}

			in, err := openInput(c, args[0])
			if err != nil {
				return err
			}
			defer in.Close()

			t, err := htmltable.Parse(in)
			if err != nil {
				return err
			}
			orders, err := parseOrders(by, t.Column)
			if err != nil {
				return err
			}
			if _, err := t.Sort(reg, orders); err != nil {
				return err
			}

			if stripes {
				t.Restripe([]string{widget.StripeEven, widget.StripeOdd})
			}
			if unlink {
				t.UnlinkHeaders()
			}
			if !rules.Empty() {
				for i := range t.Len() {
					style, err := rules.Eval(i, t.RowData(i))
					if err != nil {
						slog.Warn("row rule failed", "row", i, "error", err)
						continue
					}
					t.SetStyle(i, style)
				}
			}

			if err := t.Render(c.OutOrStdout()); err != nil {
				return err
			}
			_, err = fmt.Fprintln(c.OutOrStdout())
			return err
		},
	}

	table.register(c)
	c.Flags().StringArrayVar(&by, "by", nil, "column to sort by, with an optional :asc or :desc suffix")
	c.Flags().BoolVar(&unlink, "unlink-headers", false, "replace header sort links with their text")
	c.Flags().BoolVar(&stripes, "stripes", true, "re-stripe the body rows")
	return c
}
