package main

import (
	"context"
	"fmt"

	"github.com/prior-it/directory/bootstrap"
	"github.com/spf13/cobra"
)

var migrateDown bool

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the database migrations of the configured store",
	Args:  cobra.NoArgs,
	RunE:  runMigrate,
}

func init() {
	migrateCmd.Flags().BoolVar(&migrateDown, "down", false, "Roll back a single migration instead")
}

func runMigrate(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	bootstrap.CreateLogger(cfg)

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()
	if err := bootstrap.Migrate(ctx, cfg, migrateDown); err != nil {
		return err
	}

	direction := "up"
	if migrateDown {
		direction = "down"
	}
	fmt.Fprintln(cmd.OutOrStdout(), successColor.Sprintf("Migrated %s database %s", cfg.Database.Driver, direction))
	return nil
}
