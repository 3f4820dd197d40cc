package drug

// ResponseFormat is the structured-output schema for drug normalization.
var ResponseFormat = map[string]any{
	"type": "json_schema",
	"json_schema": map[string]any{
		"name":   "drug_identity",
		"strict": true,
		"schema": map[string]any{
			"type": "object",
			"properties": map[string]any{
				"generic_name": map[string]any{
					"type":        "string",
					"description": "Active ingredient, e.g. acetaminophen",
				},
				"brand_name": map[string]any{
					"type":        "string",
					"description": "Most common US brand name, e.g. Tylenol",
				},
				"description": map[string]any{
					"type":        "string",
					"description": "One sentence on what the drug treats",
				},
			},
			"required":             []string{"generic_name", "brand_name", "description"},
			"additionalProperties": false,
		},
	},
}

// Identity is the decoded normalization result.
type Identity struct {
	GenericName string `json:"generic_name"`
	BrandName   string `json:"brand_name"`
	Description string `json:"description"`
}
