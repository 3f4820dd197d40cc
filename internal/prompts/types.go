// Package prompts is the catalog of embedded prompt templates.
//
// Each prompt package (extraction, reanalysis, drug) embeds its .tmpl file
// and registers it here at startup. The catalog is read-only afterwards and
// is served by the API so a stored record can be traced back to the exact
// prompt text (by hash) that produced it.
package prompts

// EmbeddedPrompt represents a prompt loaded from an embedded .tmpl file.
type EmbeddedPrompt struct {
	Key         string   `json:"key"`                 // Hierarchical key: analysis.extraction
	Text        string   `json:"text"`                // The prompt text (Go template)
	Description string   `json:"description"`         // Human-readable description
	Variables   []string `json:"variables,omitempty"` // Extracted template variables
	Hash        string   `json:"hash"`                // SHA256 hash of the text
}
