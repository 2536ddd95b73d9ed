package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// GenerateJSONSchema returns the JSON Schema for .tf2tosca.yaml configuration.
func GenerateJSONSchema() string {
	r := &jsonschema.Reflector{
		DoNotReference:             true,
		ExpandedStruct:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}

	schema := r.Reflect(&Config{})
	schema.ID = "https://github.com/edelwud/tf2tosca/raw/main/tf2tosca.schema.json"
	schema.Title = "tf2tosca Configuration"
	schema.Description = "Configuration schema for tf2tosca - Terraform to TOSCA 2.0 translator"

	data, err := json.MarshalIndent(schema, "", "  ")
	if err != nil {
		return "{}"
	}

	return string(data)
}
