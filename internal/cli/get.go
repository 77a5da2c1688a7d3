package cli

import (
	"github.com/coderi421/adkit/pager"
	"github.com/coderi421/adkit/service"
	"github.com/spf13/cobra"
)

type GetOptions struct {
	*RootOptions
	Filter      string
	Binds       []string
	Max         int
	Concurrency int
}

func NewGetCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &GetOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "get <entity>",
		Short: "List the entities matching a filter",
		Long: `List the entities matching a filter.

Without --filter every row is fetched page by page. With --filter a single
call is made and at most --max rows are printed.

Example:
  adkit get labels
  adkit get orders --filter "WHERE status = :status" --bind status=APPROVED`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runGet(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter statement, e.g. \"WHERE id = :id\"")
	cmd.Flags().StringArrayVar(&opts.Binds, "bind", nil, "bind variable name=value, repeatable")
	cmd.Flags().IntVar(&opts.Max, "max", pager.PageSize, "largest number of rows printed with --filter")
	cmd.Flags().IntVar(&opts.Concurrency, "concurrency", 1, "parallel page requests without --filter")

	return cmd
}

func runGet(cmd *cobra.Command, opts *GetOptions, entity string) error {
	factory, err := lookupEntity(entity)
	if err != nil {
		return err
	}
	st, err := newStatement(opts.Filter, opts.Binds)
	if err != nil {
		return err
	}
	c, err := opts.client()
	if err != nil {
		return err
	}

	finder := factory(c)
	var rows []service.Entity
	if opts.Filter == "" {
		rows, err = finder.FindAll(cmd.Context(), st, pager.WithConcurrency(opts.Concurrency))
	} else {
		rows, err = finder.FindSome(cmd.Context(), st, opts.Max)
	}
	if err != nil {
		return WrapExitError(ExitFailure, "get "+entity, err)
	}
	opts.Logger.Debug().Str("entity", entity).Int("rows", len(rows)).Msg("get done")
	return newPrinter(opts.Format, cmd.OutOrStdout()).entities(rows)
}
