package main

import (
	"fmt"
	"strings"

	"github.com/phrazzld/studyquest/internal/config"
	"github.com/phrazzld/studyquest/internal/platform/postgres"
	"github.com/spf13/cobra"
)

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:       "migrate COMMAND",
		Short:     "Run schema migrations against the postgres backend",
		Long:      "COMMAND is one of: " + strings.Join(postgres.MigrationCommands, ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: postgres.MigrationCommands,
		RunE: func(cmd *cobra.Command, args []string) error {
			if c.cfg.Storage.Driver != config.DriverPostgres {
				return fmt.Errorf("migrate requires the %s storage driver, configured: %s",
					config.DriverPostgres, c.cfg.Storage.Driver)
			}

			db, err := postgres.Open(cmd.Context(), c.cfg.Storage.DatabaseURL)
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()

			return postgres.Migrate(cmd.Context(), db, args[0], c.logger)
		},
	}
}
