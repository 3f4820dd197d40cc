package formulary

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/jackzampolin/medlens/internal/analysis"
	"github.com/jackzampolin/medlens/internal/prompts/drug"
	"github.com/jackzampolin/medlens/internal/report"
)

const (
	maxWarningLen = 500
	noWarnings    = "No warnings found"
	noFDAWarnings = "Detailed FDA warnings not found. Please consult a doctor."
)

// Source names where a DrugInfo came from.
const (
	SourceFDA = "fda"
	SourceAI  = "ai"
)

// DrugInfo is the lookup result shown to users.
type DrugInfo struct {
	Brand    string `json:"brand"`
	Generic  string `json:"generic"`
	Purpose  string `json:"purpose"`
	Warnings string `json:"warnings"`
	Source   string `json:"source"`
}

// Service combines name normalization with the FDA label lookup.
type Service struct {
	client    *Client
	generator analysis.Generator
	logger    *slog.Logger
}

// NewService creates a Service. A nil generator skips name normalization and
// searches FDA with the query as typed.
func NewService(client *Client, generator analysis.Generator, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{client: client, generator: generator, logger: logger}
}

// Search resolves a free-text drug query. The generic name is tried first,
// then the brand name. When FDA has no label but the reasoning service
// identified the drug, its answer is returned with a generic warning.
func (s *Service) Search(ctx context.Context, query string) (*DrugInfo, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return nil, ErrNotFound
	}

	id := s.identify(ctx, query)

	generic, brand := query, query
	if id != nil {
		if id.GenericName != "" {
			generic = id.GenericName
		}
		if id.BrandName != "" {
			brand = id.BrandName
		}
	}

	label, err := s.client.Label(ctx, FieldGenericName, generic)
	if errors.Is(err, ErrNotFound) {
		label, err = s.client.Label(ctx, FieldBrandName, brand)
	}

	switch {
	case err == nil:
		return fromLabel(label, id, query), nil
	case errors.Is(err, ErrNotFound):
		if id == nil {
			return nil, ErrNotFound
		}
		return &DrugInfo{
			Brand:    id.BrandName,
			Generic:  id.GenericName,
			Purpose:  id.Description,
			Warnings: noFDAWarnings,
			Source:   SourceAI,
		}, nil
	default:
		s.logger.Warn("fda lookup failed", "query", query, "error", err)
		return nil, err
	}
}

// identify asks the reasoning service for the drug's generic and brand names.
// It is best effort and returns nil on any failure.
func (s *Service) identify(ctx context.Context, query string) *drug.Identity {
	if s.generator == nil {
		return nil
	}
	prompt, err := drug.Prompt(query)
	if err != nil {
		s.logger.Warn("failed to render drug prompt", "error", err)
		return nil
	}
	raw, err := s.generator.Generate(ctx, prompt, nil)
	if err != nil {
		s.logger.Warn("drug name normalization failed", "query", query, "error", err)
		return nil
	}
	var id drug.Identity
	if err := report.DecodeInto(raw, &id); err != nil {
		s.logger.Warn("could not decode drug identity", "query", query, "error", err)
		return nil
	}
	id.GenericName = strings.TrimSpace(id.GenericName)
	id.BrandName = strings.TrimSpace(id.BrandName)
	id.Description = strings.TrimSpace(id.Description)
	s.logger.Debug("drug name normalized", "query", query, "generic", id.GenericName, "brand", id.BrandName)
	return &id
}

func fromLabel(l *Label, id *drug.Identity, query string) *DrugInfo {
	var aiBrand, aiGeneric, aiPurpose string
	if id != nil {
		aiBrand, aiGeneric, aiPurpose = id.BrandName, id.GenericName, id.Description
	}
	return &DrugInfo{
		Brand:    first(l.OpenFDA.BrandName, aiBrand, query),
		Generic:  first(l.OpenFDA.GenericName, aiGeneric),
		Purpose:  first(l.Purpose, aiPurpose, report.NotAvailable),
		Warnings: truncate(first(l.Warnings, noWarnings), maxWarningLen),
		Source:   SourceFDA,
	}
}

// first returns values[0], else the first non-empty fallback.
func first(values []string, fallbacks ...string) string {
	if len(values) > 0 && strings.TrimSpace(values[0]) != "" {
		return values[0]
	}
	for _, f := range fallbacks {
		if f != "" {
			return f
		}
	}
	return ""
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "..."
}
