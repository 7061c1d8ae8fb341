package main

import (
	"github.com/spf13/cobra"

	pgxadapter "github.com/lborres/quill/adapters/pgx"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the users and accounts tables",
		Long:  `Apply the Postgres schema. Safe to run repeatedly.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			log := newLogger(cfg.Log)

			pool, err := openPool(cmd.Context(), cfg.Database.URL)
			if err != nil {
				return err
			}
			defer pool.Close()

			if err := pgxadapter.New(pool).Migrate(cmd.Context()); err != nil {
				return err
			}
			log.Info("database schema applied")
			return nil
		},
	}
}
