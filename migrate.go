package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/Green-ID-Your-Natural-Identity/GreenID-Dev/config"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load()
			if err != nil {
				return err
			}
			db, err := config.OpenDatabase(cfg.Database)
			if err != nil {
				return err
			}
			if err := config.Migrate(db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "schema is up to date (%s)\n", cfg.Database.Driver)
			return nil
		},
	}
}
