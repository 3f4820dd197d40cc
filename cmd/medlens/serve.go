package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/jackzampolin/medlens/internal/server"
)

var (
	serveHost string
	servePort string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the medlens server",
	Long: `Start the medlens HTTP server.

The server provides:
  - POST /api/analyze        - Extract a record from an image or PDF upload
  - POST /api/reanalyze      - Rescore a corrected record
  - GET  /api/drugs/search   - FDA drug label lookup
  - GET  /health, /ready     - Liveness and provider readiness
  - GET  /swagger            - API documentation

Provider keys and models are reloaded when the config file changes.

Examples:
  medlens serve                    # Start on the configured port (default 8080)
  medlens serve --port 3000        # Start on custom port
  medlens serve --host 0.0.0.0     # Bind to all interfaces`,
	RunE: func(cmd *cobra.Command, args []string) error {
		logger := newLogger(slog.LevelInfo)

		cm, h, err := loadConfig(logger)
		if err != nil {
			return err
		}
		if f := cm.ConfigFile(); f != "" {
			logger.Info("using config file", "path", f)
			cm.WatchConfig()
		} else if !h.ConfigExists() {
			logger.Info("no config file found, using defaults; run 'medlens config init' to create one", "path", h.ConfigPath())
		}

		srv, err := server.New(server.Config{
			Host:          serveHost,
			Port:          servePort,
			ConfigManager: cm,
			Home:          h,
			Logger:        logger,
		})
		if err != nil {
			return err
		}
		if len(srv.Registry().ListLLM()) == 0 {
			logger.Warn("no LLM provider configured; analysis requests will return 503")
		}

		// Start server (blocks until shutdown)
		return srv.Start(cmd.Context())
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveHost, "host", "", "Host to bind to (default: server.host)")
	serveCmd.Flags().StringVar(&servePort, "port", "", "Port to listen on (default: server.port)")

	rootCmd.AddCommand(serveCmd)
}
