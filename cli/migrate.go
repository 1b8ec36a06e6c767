package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"skillboard/backend/migrations"
)

func newMigrateCommand(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations and exit",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			db, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			applied, err := migrations.Applied(db)
			if err != nil {
				return err
			}
			for _, name := range applied {
				fmt.Fprintln(cmd.OutOrStdout(), name)
			}
			return nil
		},
	}
}
