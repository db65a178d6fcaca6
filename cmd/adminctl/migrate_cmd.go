package main

import (
	"context"
	"database/sql"

	"github.com/pressly/goose/v3"
	"github.com/spf13/cobra"

	"github.com/iota-uz/iota-admin/migrations"
	"github.com/iota-uz/iota-admin/pkg/configuration"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply, roll back or inspect schema migrations",
	}
	cmd.AddCommand(migrateAction("up", "Apply all pending migrations", migrations.Up))
	cmd.AddCommand(migrateAction("down", "Roll back the latest migration", migrations.Down))
	cmd.AddCommand(migrateAction("status", "Show the applied state of every migration", migrations.Status))
	return cmd
}

type migrateFunc func(ctx context.Context, db *sql.DB, logger goose.Logger) error

func migrateAction(use, short string, run migrateFunc) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			conf := configuration.Use()
			defer conf.Unload()

			db, err := migrations.Open(cmd.Context(), conf.Database.Opts)
			if err != nil {
				return withCode(exitDB, err)
			}
			defer db.Close()

			if err := run(cmd.Context(), db, conf.Logger()); err != nil {
				return withCode(exitDB, err)
			}
			return nil
		},
	}
}
