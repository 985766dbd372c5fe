package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	var path string

	cmd := &cobra.Command{
		Use:       "migrate up|down",
		Short:     "Apply all pending migrations or roll back the last one",
		Args:      cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		ValidArgs: []string{"up", "down"},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, db, _, err := connect()
			if err != nil {
				return err
			}
			defer db.Close()

			if path == "" {
				path = cfg.Database.Migrations
			}

			switch args[0] {
			case "up":
				return db.RunMigrations(path)
			case "down":
				return db.MigrateDown(path)
			default:
				return fmt.Errorf("unknown direction %q", args[0])
			}
		},
	}

	cmd.Flags().StringVar(&path, "path", "", "Migrations directory (defaults to MIGRATIONS_PATH)")
	return cmd
}
