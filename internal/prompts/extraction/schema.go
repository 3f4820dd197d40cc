package extraction

import (
	"encoding/json"

	"github.com/jackzampolin/medlens/internal/report"
)

// SchemaName is the json_schema name sent to structured-output backends.
const SchemaName = "medical_report"

// ResponseFormat returns the response_format wrapper for the report schema.
// Strict mode is off: the schema allows either the report or the rejection
// shape, which strict backends cannot express.
func ResponseFormat() map[string]any {
	var schema map[string]any
	if err := json.Unmarshal(report.ProviderSchema(), &schema); err != nil {
		return nil
	}
	return map[string]any{
		"type": "json_schema",
		"json_schema": map[string]any{
			"name":   SchemaName,
			"strict": false,
			"schema": schema,
		},
	}
}
