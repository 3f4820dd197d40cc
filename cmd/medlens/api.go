package main

import (
	"github.com/jackzampolin/medlens/internal/server/endpoints"
)

var serverURL string

func init() {
	apiCmd := endpoints.NewRegistry().BuildCommands(func() string { return serverURL })

	// Persistent so every subcommand, grouped or not, inherits it.
	apiCmd.PersistentFlags().StringVar(&serverURL, "server", "http://localhost:8080", "Server URL")

	rootCmd.AddCommand(apiCmd)
}
