package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pribylovaa/sqlchat/internal/config"
	"github.com/pribylovaa/sqlchat/internal/storage/postgres"
)

func migrateCmd(configPath *string) *cobra.Command {
	return &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{postgres.MigrateUp, postgres.MigrateDown, postgres.MigrateStatus},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(*configPath)
			if err != nil {
				return err
			}

			if cfg.DB.DatabaseURL == "" {
				return fmt.Errorf("migrate: db url is empty")
			}

			st, err := postgres.New(cmd.Context(), cfg.DB.DatabaseURL)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := st.Migrate(cmd.Context(), args[0]); err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "migrate %s: done\n", args[0])
			return nil
		},
	}
}
