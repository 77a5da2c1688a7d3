package cli

import (
	"strings"

	"github.com/coderi421/adkit/service"
	"github.com/spf13/cobra"
)

type PQLOptions struct {
	*RootOptions
	Binds []string
}

func NewPQLCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &PQLOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "pql <select statement>",
		Short: "Run a PQL select statement",
		Long: `Run a PQL select statement and print the result set.

Example:
  adkit pql "SELECT Id, Name FROM Line_Item WHERE Status = :status LIMIT 10" --bind status=READY`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPQL(cmd, opts, strings.Join(args, " "))
		},
	}

	cmd.Flags().StringArrayVar(&opts.Binds, "bind", nil, "bind variable name=value, repeatable")

	return cmd
}

func runPQL(cmd *cobra.Command, opts *PQLOptions, query string) error {
	st, err := newStatement(strings.TrimSpace(query), opts.Binds)
	if err != nil {
		return err
	}
	c, err := opts.client()
	if err != nil {
		return err
	}
	rs, err := service.PQL(c).Select(cmd.Context(), st)
	if err != nil {
		return WrapExitError(ExitFailure, "pql", err)
	}

	p := newPrinter(opts.Format, cmd.OutOrStdout())
	if rs == nil {
		return p.message("resultSet", nil, "No results found.")
	}
	rows := make([][]string, 0, len(rs.Rows))
	for _, r := range rs.Rows {
		cells := make([]string, 0, len(r.Values))
		for _, v := range r.Values {
			cells = append(cells, v.Value)
		}
		rows = append(rows, cells)
	}
	return p.table(rs, rs.Labels(), rows)
}
