// Package analysis is the extraction and reanalysis pipeline: normalize the
// document, ask the reasoning service, decode its reply, and canonicalize
// the record.
package analysis

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/jackzampolin/medlens/internal/normalize"
	"github.com/jackzampolin/medlens/internal/providers"
)

// Generator is the reasoning-service capability: one prompt, an optional
// image, raw text back.
type Generator interface {
	Generate(ctx context.Context, prompt string, img *normalize.Image) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, prompt string, img *normalize.Image) (string, error)

func (f GeneratorFunc) Generate(ctx context.Context, prompt string, img *normalize.Image) (string, error) {
	return f(ctx, prompt, img)
}

// ChatGenerator sends prompts through an LLM client as a single user message.
type ChatGenerator struct {
	Client         providers.LLMClient
	Model          string // client default when empty
	Temperature    float64
	MaxTokens      int
	ResponseFormat *providers.ResponseFormat
	Logger         *slog.Logger
}

// Generate implements Generator.
func (g *ChatGenerator) Generate(ctx context.Context, prompt string, img *normalize.Image) (string, error) {
	if g.Client == nil {
		return "", fmt.Errorf("no reasoning service configured: %w", providers.ErrMissingAPIKey)
	}

	msg := providers.Message{Role: "user", Content: prompt}
	if img != nil {
		msg.Images = []providers.Image{{Data: img.Data, MIME: img.MIME}}
	}

	result, err := g.Client.Chat(ctx, &providers.ChatRequest{
		Messages:       []providers.Message{msg},
		Model:          g.Model,
		Temperature:    g.Temperature,
		MaxTokens:      g.MaxTokens,
		ResponseFormat: g.ResponseFormat,
	})
	if err != nil {
		return "", fmt.Errorf("%s chat failed: %w", g.Client.Name(), err)
	}

	logger := g.Logger
	if logger == nil {
		logger = slog.Default()
	}
	logger.Debug("reasoning service reply",
		"provider", result.Provider,
		"model", result.ModelUsed,
		"request_id", result.RequestID,
		"attempts", result.Attempts,
		"total_tokens", result.TotalTokens,
		"duration", result.ExecutionTime,
	)
	if result.ErrorType != "" {
		logger.Warn("structured output problem", "request_id", result.RequestID, "type", result.ErrorType, "error", result.ErrorMessage)
	}
	return result.Content, nil
}

var _ Generator = (*ChatGenerator)(nil)
