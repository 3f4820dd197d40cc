package report

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema.json
var schemaJSON []byte

var (
	compileOnce    sync.Once
	compiledSchema *jsonschema.Schema
	compileErr     error
)

// Schema returns the canonical JSON schema of a MedicalReport document.
func Schema() json.RawMessage {
	return json.RawMessage(bytes.Clone(schemaJSON))
}

// ProviderSchema returns the schema without conditional keywords, which some
// structured-output backends reject.
func ProviderSchema() json.RawMessage {
	var root map[string]any
	if err := json.Unmarshal(schemaJSON, &root); err != nil {
		return Schema()
	}
	delete(root, "if")
	delete(root, "then")
	delete(root, "else")
	out, err := json.Marshal(root)
	if err != nil {
		return Schema()
	}
	return out
}

func compiled() (*jsonschema.Schema, error) {
	compileOnce.Do(func() {
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource("medical_report.json", bytes.NewReader(schemaJSON)); err != nil {
			compileErr = fmt.Errorf("failed to load report schema: %w", err)
			return
		}
		compiledSchema, compileErr = compiler.Compile("medical_report.json")
		if compileErr != nil {
			compileErr = fmt.Errorf("failed to compile report schema: %w", compileErr)
		}
	})
	return compiledSchema, compileErr
}

// Check validates raw model output against the report schema and returns one
// line per violation. Nil means the payload conforms. Check never rejects a
// record; the decoder already accepted it.
func Check(raw string) []string {
	schema, err := compiled()
	if err != nil {
		return []string{err.Error()}
	}

	var doc any
	if err := json.Unmarshal([]byte(Candidate(raw)), &doc); err != nil {
		return []string{fmt.Sprintf("not valid JSON: %v", err)}
	}

	err = schema.Validate(doc)
	if err == nil {
		return nil
	}
	var ve *jsonschema.ValidationError
	if !errors.As(err, &ve) {
		return []string{err.Error()}
	}
	var out []string
	collectViolations(ve, &out)
	return out
}

func collectViolations(ve *jsonschema.ValidationError, out *[]string) {
	if len(ve.Causes) == 0 {
		loc := ve.InstanceLocation
		if loc == "" {
			loc = "/"
		}
		*out = append(*out, fmt.Sprintf("%s: %s", loc, ve.Message))
		return
	}
	for _, c := range ve.Causes {
		collectViolations(c, out)
	}
}
