package cli

import (
	"fmt"
	"time"

	"github.com/coderi421/adkit/service"
	"github.com/coderi421/adkit/snapshot"
	"github.com/spf13/cobra"
)

type ExportOptions struct {
	*RootOptions
	Driver string
	DSN    string
	Filter string
	Binds  []string
	Purge  bool
}

func NewExportCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &ExportOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "export <entity>",
		Short: "Copy the matching entities into the local snapshot database",
		Long: `Fetch every entity matching --filter page by page and upsert it into the
snapshot database, keyed by entity and id. --driver and --dsn override the
snapshot section of the configuration.

Example:
  adkit export labels --driver sqlite3 --dsn file:labels.db`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, opts, args[0])
		},
	}

	cmd.Flags().StringVar(&opts.Driver, "driver", "", "database driver (sqlite3|mysql)")
	cmd.Flags().StringVar(&opts.DSN, "dsn", "", "data source name")
	cmd.Flags().StringVar(&opts.Filter, "filter", "", "filter statement, e.g. \"WHERE status = :status\"")
	cmd.Flags().StringArrayVar(&opts.Binds, "bind", nil, "bind variable name=value, repeatable")
	cmd.Flags().BoolVar(&opts.Purge, "purge", false, "delete the stored rows of this entity first")

	return cmd
}

func runExport(cmd *cobra.Command, opts *ExportOptions, entity string) (err error) {
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

	driver, dsn := opts.Config.Snapshot.Driver, opts.Config.Snapshot.DSN
	if opts.Driver != "" {
		driver = opts.Driver
	}
	if opts.DSN != "" {
		dsn = opts.DSN
	}
	store, err := snapshot.Open(driver, dsn)
	if err != nil {
		return WrapExitError(ExitCommandError, "open snapshot", err)
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	ctx := cmd.Context()
	if err = store.Migrate(ctx); err != nil {
		return WrapExitError(ExitFailure, "migrate snapshot", err)
	}
	if opts.Purge {
		n, err := store.Purge(ctx, entity)
		if err != nil {
			return WrapExitError(ExitFailure, "purge snapshot", err)
		}
		opts.Logger.Info().Str("entity", entity).Int64("rows", n).Msg("snapshot purged")
	}

	// 同一次导出的所有行使用同一个时间
	at := time.Now()
	total := 0
	err = factory(c).Each(ctx, st, func(rows []service.Entity) error {
		records, err := snapshot.Records(entity, rows, at)
		if err != nil {
			return err
		}
		if err = store.Save(ctx, records); err != nil {
			return err
		}
		total += len(records)
		opts.Logger.Debug().Str("entity", entity).Int("rows", len(records)).Msg("page saved")
		return nil
	})
	if err != nil {
		return WrapExitError(ExitFailure, "export "+entity, err)
	}
	return newPrinter(opts.Format, cmd.OutOrStdout()).
		message("exported", total, fmt.Sprintf("exported %d %s", total, entity))
}
