// Package extraction holds the instruction sent with every document image.
package extraction

import (
	_ "embed"

	"github.com/jackzampolin/medlens/internal/prompts"
)

//go:embed extraction.tmpl
var extractionPrompt string

// PromptKey identifies the extraction prompt in the catalog.
const PromptKey = "analysis.extraction"

// NotAReportMessage is the error the service returns for non-medical documents.
const NotAReportMessage = "This document does not appear to be a medical report. Please upload a valid lab result or clinical record."

// Prompt returns the extraction instruction. It takes no variables.
func Prompt() string {
	return extractionPrompt
}

// RegisterPrompts registers the extraction prompt with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        extractionPrompt,
		Description: "Medical document validation and lab result extraction",
	})
}
