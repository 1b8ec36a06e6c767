package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"skillboard/backend/migrations"
	"skillboard/backend/services"
)

func newSeedCommand(opts *options) *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Seed the database with demo records from dataset files",
		Long: `Insert the records of each <resource>.yaml dataset into the database.
Resources that already hold records are left alone. Refused in production.`,
		Example: `  skillboard seed --datasets ./datasets`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if dir == "" {
				dir = opts.cfg.DatasetDir
			}

			datasets, err := services.NewDatasetStore(dir, opts.logger).All()
			if err != nil {
				return fmt.Errorf("reading datasets: %w", err)
			}

			db, err := opts.openDatabase()
			if err != nil {
				return err
			}
			defer db.Close()

			repo, err := opts.repository(db)
			if err != nil {
				return err
			}

			n, err := migrations.SeedRecords(cmd.Context(), repo, services.NewValidator(), datasets, opts.cfg.IsProduction(), opts.logger)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "seeded %d records\n", n)
			return nil
		},
	}

	cmd.Flags().StringVar(&dir, "datasets", "", "dataset directory (default: datasetDir from config)")
	return cmd
}
