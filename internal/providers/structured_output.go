package providers

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// Structured output error types recorded on ChatResult.ErrorType.
const (
	ErrorTypeJSONParse      = "json_parse"
	ErrorTypeSchemaMismatch = "schema_mismatch"
)

// adaptedResponseFormat returns the response_format to send to OpenRouter.
// anthropic/* models can be routed to backends without native structured
// output; they get none and rely on the prompt plus local validation.
func adaptedResponseFormat(model string, rf *ResponseFormat) (*openRouterResponseFormat, error) {
	if rf == nil || isAnthropicModel(model) {
		return nil, nil
	}
	if len(rf.JSONSchema) > 0 && !json.Valid(rf.JSONSchema) {
		return nil, errors.New("response format schema is not valid JSON")
	}
	return &openRouterResponseFormat{Type: rf.Type, JSONSchema: rf.JSONSchema}, nil
}

func isAnthropicModel(model string) bool {
	return strings.HasPrefix(strings.ToLower(strings.TrimSpace(model)), "anthropic/")
}

// applyStructuredOutput fills ParsedJSON when a response format was requested.
// Parse and schema failures are recorded on the result but Content is left
// untouched, so callers can still run their own decoding.
func applyStructuredOutput(result *ChatResult, rf *ResponseFormat) {
	if rf == nil || result.Content == "" {
		return
	}
	parsed, err := parseStructuredJSON(result.Content)
	if err != nil {
		result.Success = false
		result.ErrorType = ErrorTypeJSONParse
		result.ErrorMessage = err.Error()
		return
	}
	result.ParsedJSON = parsed

	if err := validateStructuredJSON(rf.JSONSchema, parsed); err != nil {
		result.Success = false
		result.ErrorType = ErrorTypeSchemaMismatch
		result.ErrorMessage = err.Error()
	}
}

// parseStructuredJSON accepts the reply as-is, inside a markdown fence, or as
// the outermost {...} span of surrounding prose. The result is compacted.
func parseStructuredJSON(content string) (json.RawMessage, error) {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil, errors.New("empty structured output")
	}

	for _, candidate := range []string{content, unfence(content), braceSpan(content)} {
		if candidate == "" {
			continue
		}
		var buf bytes.Buffer
		if err := json.Compact(&buf, []byte(candidate)); err == nil {
			return buf.Bytes(), nil
		}
	}
	return nil, errors.New("no JSON object in structured output")
}

// unfence strips a leading ```lang line and a trailing ``` line.
func unfence(content string) string {
	if !strings.HasPrefix(content, "```") {
		return ""
	}
	_, body, ok := strings.Cut(content, "\n")
	if !ok {
		return ""
	}
	body = strings.TrimSpace(body)
	return strings.TrimSpace(strings.TrimSuffix(body, "```"))
}

func braceSpan(content string) string {
	start := strings.Index(content, "{")
	end := strings.LastIndex(content, "}")
	if start < 0 || end < start {
		return ""
	}
	return content[start : end+1]
}

// compiled schemas keyed by the raw response format schema
var schemaCache sync.Map

// validateStructuredJSON validates parsed JSON against the requested schema.
// The schema may be the bare schema or the {"name","strict","schema"} wrapper.
func validateStructuredJSON(schemaRaw, parsed json.RawMessage) error {
	if len(schemaRaw) == 0 || len(parsed) == 0 {
		return nil
	}

	schema, err := compileSchema(schemaRaw)
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(parsed, &doc); err != nil {
		return fmt.Errorf("failed to decode structured JSON for validation: %w", err)
	}
	if err := schema.Validate(doc); err != nil {
		return fmt.Errorf("structured output does not match schema: %w", err)
	}
	return nil
}

func compileSchema(schemaRaw json.RawMessage) (*jsonschema.Schema, error) {
	key := string(schemaRaw)
	if s, ok := schemaCache.Load(key); ok {
		return s.(*jsonschema.Schema), nil
	}

	var wrapper struct {
		Schema json.RawMessage `json:"schema"`
	}
	if err := json.Unmarshal(schemaRaw, &wrapper); err != nil {
		return nil, fmt.Errorf("invalid structured schema JSON: %w", err)
	}
	core := wrapper.Schema
	if len(core) == 0 {
		core = schemaRaw
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("response_format.json", bytes.NewReader(core)); err != nil {
		return nil, fmt.Errorf("failed to load structured schema: %w", err)
	}
	s, err := compiler.Compile("response_format.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile structured schema: %w", err)
	}
	schemaCache.Store(key, s)
	return s, nil
}
