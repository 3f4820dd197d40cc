package analysis

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/jackzampolin/medlens/internal/normalize"
	"github.com/jackzampolin/medlens/internal/prompts/extraction"
	"github.com/jackzampolin/medlens/internal/report"
)

// Normalizer turns a document on disk into one image.
type Normalizer interface {
	Normalize(ctx context.Context, path, declaredMIME string) (*normalize.Image, error)
}

// Config configures an Analyzer.
type Config struct {
	Normalizer Normalizer
	Generator  Generator
	Logger     *slog.Logger
}

// Analyzer runs extraction and reanalysis. It holds no per-call state and is
// safe for concurrent use.
type Analyzer struct {
	normalizer Normalizer
	generator  Generator
	logger     *slog.Logger
}

// New creates an Analyzer. A nil Normalizer uses normalize.New defaults.
func New(cfg Config) *Analyzer {
	if cfg.Normalizer == nil {
		cfg.Normalizer = normalize.New(normalize.Config{Logger: cfg.Logger})
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	return &Analyzer{
		normalizer: cfg.Normalizer,
		generator:  cfg.Generator,
		logger:     cfg.Logger,
	}
}

// Analyze extracts a record from the document at path.
//
// A document that is not a medical report is a successful outcome: the
// returned record has IsMedicalReport false and a non-empty Error. All
// failures are *Error.
func (a *Analyzer) Analyze(ctx context.Context, path, declaredMIME string) (*report.MedicalReport, error) {
	img, err := a.normalizer.Normalize(ctx, path, declaredMIME)
	if err != nil {
		aerr := normalizeError(err)
		a.logger.Warn("document normalization failed", "file", filepath.Base(path), "kind", aerr.Kind, "error", err)
		return nil, aerr
	}
	return a.AnalyzeImage(ctx, img)
}

// AnalyzeImage runs extraction on an already normalized image.
func (a *Analyzer) AnalyzeImage(ctx context.Context, img *normalize.Image) (*report.MedicalReport, error) {
	if a.generator == nil {
		return nil, newError(KindServiceUnavailable, errNoGenerator)
	}

	raw, err := a.generator.Generate(ctx, extraction.Prompt(), img)
	if err != nil {
		a.logger.Warn("reasoning service call failed", "error", err)
		return nil, newError(KindServiceUnavailable, err)
	}

	rec, err := report.Decode(raw)
	if err != nil {
		a.logger.Warn("could not decode service reply", "error", err, "reply", snippet(raw))
		return nil, newError(KindDecodeFailure, err)
	}
	if violations := report.Check(raw); len(violations) > 0 {
		a.logger.Warn("service reply does not match report schema", "violations", violations)
	}

	if !rec.IsMedicalReport && rec.Error == "" {
		rec.Error = extraction.NotAReportMessage
	}
	report.Canonicalize(rec)

	if rec.Rejected() {
		a.logger.Info("document is not a medical report", "reason", rec.Error)
	} else {
		a.logger.Info("analysis complete", "tests", len(rec.Tests), "abnormal", rec.AbnormalCount())
	}
	return rec, nil
}

// snippet bounds raw model output for logging.
func snippet(s string) string {
	const limit = 500
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}
