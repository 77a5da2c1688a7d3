package cli

import (
	"fmt"

	"github.com/coderi421/adkit/service"
	"github.com/coderi421/adkit/statement"
	"github.com/spf13/cobra"
)

type ActionOptions struct {
	*RootOptions
	Filter string
	Binds  []string
	IDs    []string
}

func NewActionCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ActionOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "action <entity> <action>",
		Short: "Apply a bulk action to the entities matching a filter",
		Long: `Apply a bulk action, e.g. DeactivateLabels, to the entities matching
--filter or listed with --ids. One of them is required.

Example:
  adkit action labels DeactivateLabels --ids 1,2,3
  adkit action orders ArchiveOrders --filter "WHERE advertiserId = :id" --bind id=42`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runAction(cmd, opts, args[0], args[1])
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter statement selecting the rows")
	cmd.Flags().StringArrayVar(&opts.Binds, "bind", nil, "bind variable name=value, repeatable")
	cmd.Flags().StringSliceVar(&opts.IDs, "ids", nil, "comma separated ids, builds WHERE id IN (...)")
	cmd.MarkFlagsMutuallyExclusive("filter", "ids")

	return cmd
}

func runAction(cmd *cobra.Command, opts *ActionOptions, entity string, action string) error {
	factory, err := lookupEntity(entity)
	if err != nil {
		return err
	}
	st, err := opts.statement()
	if err != nil {
		return err
	}
	c, err := opts.client()
	if err != nil {
		return err
	}

	res, err := factory(c).PerformAction(cmd.Context(), service.Action{Type: action}, st)
	if err != nil {
		return WrapExitError(ExitFailure, action, err)
	}
	opts.Logger.Info().Str("entity", entity).Str("action", action).
		Str("statement", st.String()).Int("changes", res.NumChanges).Msg("action done")
	return newPrinter(opts.Format, cmd.OutOrStdout()).
		message("numChanges", res.NumChanges, fmt.Sprintf("%d changes", res.NumChanges))
}

// statement 不允许空的过滤条件，否则会作用于所有的行
func (o *ActionOptions) statement() (statement.Statement, error) {
	if len(o.IDs) > 0 {
		ids := make([]any, 0, len(o.IDs))
		for _, id := range o.IDs {
			ids = append(ids, bindValue(id))
		}
		return service.IDFilter(ids)
	}
	if o.Filter == "" {
		return statement.Statement{}, NewExitError(ExitCommandError, "one of --filter or --ids is required")
	}
	return newStatement(o.Filter, o.Binds)
}
