package main

import (
	"errors"

	pg "findmypet-search/internal/adapters/storage/postgres"

	"github.com/spf13/cobra"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Aplica el schema de Postgres (idempotente)",
	RunE: func(cmd *cobra.Command, _ []string) error {
		if cfg.DBDSN == "" {
			return errors.New("FINDMYPET_DB_DSN is required for migrate")
		}
		db, err := pg.Open(cfg.DBDSN)
		if err != nil {
			return err
		}
		defer db.Close()

		if err := pg.Migrate(cmd.Context(), db); err != nil {
			return err
		}
		log.Info().Msg("schema applied")
		return nil
	},
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
