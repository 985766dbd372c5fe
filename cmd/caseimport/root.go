package main

import (
	"os"

	"github.com/case-import-api/internal/config"
	"github.com/case-import-api/internal/database"
	"github.com/case-import-api/pkg/logger"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:          "caseimport",
		Short:        "Case spreadsheet import and schema tools",
		SilenceUsage: true,
	}
	cmd.AddCommand(newImportCmd())
	cmd.AddCommand(newMigrateCmd())
	return cmd
}

// connect loads configuration and opens the database. Logs go to stderr so
// stdout carries only command output.
func connect() (*config.Config, *database.DB, zerolog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, zerolog.Nop(), err
	}

	log := logger.NewWithWriter(os.Stderr, cfg.Log.Level, cfg.Log.Format)

	db, err := database.New(&cfg.Database, log)
	if err != nil {
		return nil, nil, log, err
	}
	return cfg, db, log, nil
}
