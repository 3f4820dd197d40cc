package endpoints

import (
	"context"
	"errors"

	"github.com/jackzampolin/medlens/internal/analysis"
	"github.com/jackzampolin/medlens/internal/formulary"
	"github.com/jackzampolin/medlens/internal/prompts/drug"
	"github.com/jackzampolin/medlens/internal/prompts/extraction"
	"github.com/jackzampolin/medlens/internal/providers"
	"github.com/jackzampolin/medlens/internal/svcctx"
)

// ErrNoProvider means no LLM provider is registered, usually because no API
// key is configured.
var ErrNoProvider = errors.New("no LLM provider registered")

// DefaultLLM returns the client named by defaults.llm_provider, falling back
// to the first registered client when the default has no key configured.
func DefaultLLM(ctx context.Context) (string, providers.LLMClient, error) {
	registry := svcctx.RegistryFrom(ctx)
	if registry == nil {
		return "", nil, ErrNoProvider
	}
	name := svcctx.ConfigFrom(ctx).Defaults.LLMProvider
	if client, err := registry.GetLLM(name); err == nil {
		return name, client, nil
	}
	for _, n := range registry.ListLLM() {
		if client, err := registry.GetLLM(n); err == nil {
			return n, client, nil
		}
	}
	return "", nil, ErrNoProvider
}

// chatGenerator builds a generator on the default provider. Without a
// provider the generator still exists and fails with ErrMissingAPIKey, which
// the pipeline reports as the service being unavailable.
func chatGenerator(ctx context.Context, rf map[string]any) *analysis.ChatGenerator {
	cfg := svcctx.ConfigFrom(ctx)
	logger := svcctx.LoggerFrom(ctx)
	gen := &analysis.ChatGenerator{
		Temperature: cfg.Defaults.Temperature,
		MaxTokens:   cfg.Defaults.MaxTokens,
		Logger:      logger,
	}
	if _, client, err := DefaultLLM(ctx); err == nil {
		gen.Client = client
	}
	format, err := providers.NewResponseFormat(rf)
	if err != nil {
		logger.Warn("ignoring invalid response format", "error", err)
	}
	gen.ResponseFormat = format
	return gen
}

// NewAnalyzer builds the extraction and reanalysis pipeline from the services
// in ctx. Reanalysis expects the same record shape, so one response format
// serves both.
func NewAnalyzer(ctx context.Context) *analysis.Analyzer {
	cfg := analysis.Config{
		Generator: chatGenerator(ctx, extraction.ResponseFormat()),
		Logger:    svcctx.LoggerFrom(ctx),
	}
	if n := svcctx.NormalizerFrom(ctx); n != nil {
		cfg.Normalizer = n
	}
	return analysis.New(cfg)
}

// NewDrugService builds the formulary lookup. Name normalization is skipped
// when no provider is registered.
func NewDrugService(ctx context.Context) *formulary.Service {
	client := svcctx.FDAFrom(ctx)
	if client == nil {
		client = formulary.NewClient(formulary.ClientConfig{Logger: svcctx.LoggerFrom(ctx)})
	}
	var gen analysis.Generator
	if _, _, err := DefaultLLM(ctx); err == nil {
		gen = chatGenerator(ctx, drug.ResponseFormat)
	}
	return formulary.NewService(client, gen, svcctx.LoggerFrom(ctx))
}
