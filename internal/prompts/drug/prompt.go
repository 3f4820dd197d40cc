// Package drug holds the prompt that maps a free-text drug query to the
// generic and brand names the FDA label database is indexed by.
package drug

import (
	_ "embed"
	"strings"
	"text/template"

	"github.com/jackzampolin/medlens/internal/prompts"
)

//go:embed drug.tmpl
var drugTmpl string

var drugTemplate = template.Must(template.New("drug").Parse(drugTmpl))

// PromptKey identifies the drug prompt in the catalog.
const PromptKey = "formulary.drug"

// PromptData is the template input.
type PromptData struct {
	Query string
}

// Prompt renders the drug normalization prompt.
func Prompt(query string) (string, error) {
	return prompts.Render(drugTemplate, PromptData{Query: strings.TrimSpace(query)})
}

// RegisterPrompts registers the drug prompt with the resolver.
func RegisterPrompts(r *prompts.Resolver) {
	r.Register(prompts.EmbeddedPrompt{
		Key:         PromptKey,
		Text:        drugTmpl,
		Description: "Drug name normalization to generic and brand names",
	})
}
