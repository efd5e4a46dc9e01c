package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/viant/swarmdb/export"
)

func (a *app) newExportCommand() *cobra.Command {
	f := &queryFlags{}
	var dest, table, which string
	cmd := &cobra.Command{
		Use:   "export <log>",
		Short: "Copy query results into a SQLite table, one row per body",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if dest == "" {
				return errors.New("--sqlite is required")
			}
			if table == "" {
				table = a.cfg.SQLiteTable
			}
			db, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()
			result, err := f.result(db, which)
			if err != nil {
				return err
			}
			rows, err := export.ToSQLite(cmd.Context(), dest, table, result.All())
			if err != nil {
				return err
			}
			a.logger.Info("exported", "rows", rows, "table", table, "sqlite", dest)
			_, err = fmt.Fprintf(a.out, "%d rows written to %s:%s\n", rows, dest, table)
			return err
		},
	}
	f.register(cmd, true)
	cmd.Flags().StringVar(&dest, "sqlite", "", "destination SQLite database path")
	cmd.Flags().StringVar(&table, "table", "", "destination table (default from config)")
	cmd.Flags().StringVar(&which, "which", whichFinal, "query to export: initial, final or scan")
	return cmd
}
