// Package reanalysis holds the prompt used to re-score a user-corrected record.
package reanalysis

import (
	_ "embed"
	"text/template"

	"github.com/jackzampolin/medlens/internal/prompts"
)

//go:embed reanalysis.tmpl
var reanalysisTmpl string

var reanalysisTemplate = template.Must(template.New("reanalysis").Parse(reanalysisTmpl))

// PromptKey identifies the reanalysis prompt in the catalog.
const PromptKey = "analysis.reanalysis"

// PromptData is the template input.
type PromptData struct {
	Record string // corrected record, serialized as JSON
}

// Prompt renders the reanalysis prompt around the serialized record.
func Prompt(recordJSON string) (string, error) {
	return prompts.Render(reanalysisTemplate, PromptData{Record: recordJSON})
}

// RegisterPrompts registers the reanalysis prompt with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        reanalysisTmpl,
		Description: "Re-scores statuses, insights and summary after user corrections",
	})
}
