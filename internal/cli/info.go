package cli

import (
	"encoding/json"

	"github.com/spf13/cobra"
)

func (a *app) newInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info <log>",
		Short: "Describe a log: run id, record and system counts, index source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := a.open(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			defer db.Close()
			data, err := json.MarshalIndent(db.Stats(), "", "  ")
			if err != nil {
				return err
			}
			_, err = a.out.Write(append(data, '\n'))
			return err
		},
	}
}
