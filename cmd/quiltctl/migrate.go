package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"freequilt/internal/app/db"
	"freequilt/internal/configs"
)

func newMigrateCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations",
		Long:  `Apply the embedded migrations to DATABASE_URL. Only the postgres store uses a database.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := a.loadConfig()
			if err != nil {
				return fmt.Errorf("load configuration: %w", err)
			}
			if cfg.StoreBackend != configs.StorePostgres {
				return fmt.Errorf("STORE_BACKEND is %q, migrations apply to %q only", cfg.StoreBackend, configs.StorePostgres)
			}

			pool, err := db.NewPool(cmd.Context(), cfg.DatabaseDSN)
			if err != nil {
				return err
			}
			defer pool.Close()

			fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied.")
			return nil
		},
	}
}
