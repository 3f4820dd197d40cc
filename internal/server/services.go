package server

import (
	"fmt"
	"log/slog"

	"github.com/jackzampolin/medlens/internal/config"
	"github.com/jackzampolin/medlens/internal/formulary"
	"github.com/jackzampolin/medlens/internal/home"
	"github.com/jackzampolin/medlens/internal/normalize"
	"github.com/jackzampolin/medlens/internal/prompts"
	"github.com/jackzampolin/medlens/internal/prompts/drug"
	"github.com/jackzampolin/medlens/internal/prompts/extraction"
	"github.com/jackzampolin/medlens/internal/prompts/reanalysis"
	"github.com/jackzampolin/medlens/internal/providers"
	"github.com/jackzampolin/medlens/internal/svcctx"
)

// NewServices builds the shared services from config. The server and the
// local CLI commands use the same set. The returned cleanup releases the
// rasterizer and must be called once the services are no longer used.
func NewServices(cm *config.Manager, h *home.Dir, logger *slog.Logger) (*svcctx.Services, func(), error) {
	if logger == nil {
		logger = slog.Default()
	}
	cfg := cm.Get()

	regCfg := cfg.ToProviderRegistryConfig()
	regCfg.Logger = logger
	registry := providers.NewRegistryFromConfig(regCfg)

	resolver := prompts.NewResolver(logger)
	extraction.RegisterPrompts(resolver)
	reanalysis.RegisterPrompts(resolver)
	drug.RegisterPrompts(resolver)

	rasterizer, closeRasterizer, err := newRasterizer(cfg.Normalizer, logger)
	if err != nil {
		return nil, nil, err
	}

	var scratch string
	if h != nil {
		if err := h.EnsureExists(); err != nil {
			closeRasterizer()
			return nil, nil, fmt.Errorf("failed to create home directory: %w", err)
		}
		scratch = h.ScratchPath()
	}

	normalizer := normalize.New(normalize.Config{
		Rasterizer: rasterizer,
		DPI:        cfg.Normalizer.DPI,
		ScratchDir: scratch,
		Logger:     logger,
	})

	fda := formulary.NewClient(formulary.ClientConfig{
		BaseURL:     cfg.Formulary.BaseURL,
		Timeout:     cfg.Formulary.Timeout(),
		MaxAttempts: cfg.Formulary.MaxAttempts,
		Logger:      logger,
	})

	services := &svcctx.Services{
		Registry:   registry,
		Config:     cm,
		Prompts:    resolver,
		Normalizer: normalizer,
		FDA:        fda,
		Logger:     logger,
		Home:       h,
	}
	return services, closeRasterizer, nil
}

func newRasterizer(cfg config.NormalizerCfg, logger *slog.Logger) (normalize.Rasterizer, func(), error) {
	switch cfg.Rasterizer {
	case config.RasterizerDocker:
		d, err := normalize.NewDockerRasterizer(normalize.DockerConfig{
			Image:  cfg.DockerImage,
			Logger: logger,
		})
		if err != nil {
			return nil, nil, err
		}
		return d, func() {
			if err := d.Close(); err != nil {
				logger.Warn("failed to close docker client", "error", err)
			}
		}, nil
	default:
		return normalize.NewPdftoppm(cfg.PdftoppmPath, nil), func() {}, nil
	}
}
