package main

import (
	"context"
	"log/slog"
	"os"

	"github.com/jackzampolin/medlens/internal/config"
	"github.com/jackzampolin/medlens/internal/home"
	"github.com/jackzampolin/medlens/internal/server"
	"github.com/jackzampolin/medlens/internal/svcctx"
)

func newLogger(level slog.Level) *slog.Logger {
	if verbose {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func loadConfig(logger *slog.Logger) (*config.Manager, *home.Dir, error) {
	h, err := home.New(homeDir)
	if err != nil {
		return nil, nil, err
	}
	if !h.Exists() {
		logger.Debug("home directory not created yet", "path", h.Path())
	}
	cm, err := config.NewManager(cfgFile, h.Path())
	if err != nil {
		return nil, nil, err
	}
	cm.SetLogger(logger)
	return cm, h, nil
}

// withLocalServices attaches the same services the server uses to ctx, so
// local commands run the pipeline in-process.
func withLocalServices(ctx context.Context) (context.Context, func(), error) {
	logger := newLogger(slog.LevelWarn)
	cm, h, err := loadConfig(logger)
	if err != nil {
		return nil, nil, err
	}
	services, cleanup, err := server.NewServices(cm, h, logger)
	if err != nil {
		return nil, nil, err
	}
	return svcctx.WithServices(ctx, services), cleanup, nil
}
