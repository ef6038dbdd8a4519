package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database migrations and exit",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := processEnvironment()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			client, err := openPersistence(env)
			if err != nil {
				return err
			}
			defer client.Close()

			if err := registerMigrations(ctx, client, env.DBDriver); err != nil {
				return fmt.Errorf("register migrations: %w", err)
			}
			if err := client.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			return nil
		},
	}
}
