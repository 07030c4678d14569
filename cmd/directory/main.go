// Command directory serves and maintains a personal contact directory.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/prior-it/directory/bootstrap"
	"github.com/prior-it/directory/config"
	"github.com/prior-it/directory/directory"
	"github.com/spf13/cobra"
)

var (
	configDir string
	envFiles  []string
	timeout   time.Duration
)

var rootCmd = &cobra.Command{
	Use:           "directory",
	Short:         "Personal contact directory",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configDir, "config", "c", ".", "Directory containing config.toml")
	rootCmd.PersistentFlags().StringSliceVar(&envFiles, "env", nil, "Additional .env files to load (default: .env)")
	rootCmd.PersistentFlags().DurationVar(&timeout, "timeout", 5*time.Minute, "Timeout for migrate, import and export")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(exportCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, errorColor.Sprint("Error: "), err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	dir, err := filepath.Abs(configDir)
	if err != nil {
		return nil, fmt.Errorf("invalid config directory: %w", err)
	}
	cfg, err := config.Load(os.DirFS(dir), envFiles...)
	if err != nil {
		return nil, fmt.Errorf("could not load the configuration: %w", err)
	}
	return cfg, nil
}

// openService loads the configuration and opens the configured store without a cache.
// The returned function closes the store.
func openService(ctx context.Context) (*directory.Service, func(context.Context), error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg.Cache.Enabled = false
	logger := bootstrap.CreateLogger(cfg)
	store, release, err := bootstrap.OpenStore(ctx, cfg, logger)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Database.Driver == config.DatabaseDriverMemory {
		slog.Warn("Contacts will not outlive this command, configure a database driver")
	}
	return directory.NewService(store), release, nil
}
