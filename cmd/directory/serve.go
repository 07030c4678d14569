package main

import (
	"github.com/prior-it/directory/bootstrap"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the contact API until interrupted",
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	server, err := bootstrap.Full(cmd.Context(), cfg)
	if err != nil {
		return err
	}
	return server.Start(cmd.Context(), nil)
}
