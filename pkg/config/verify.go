package config

import (
	_ "embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/invopop/jsonschema"
	validator "github.com/santhosh-tekuri/jsonschema/v5"
)

// schemaURL matches the $id of schema.json
const schemaURL = "https://github.com/umputun/indexfeed/pkg/config/config"

//go:embed schema.json
var embeddedSchema string

// VerifyAgainstEmbeddedSchema validates the config against the embedded JSON schema
func VerifyAgainstEmbeddedSchema(cfg *Config) error {
	// convert config to JSON for validation
	configData, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	var configMap map[string]any
	if err := json.Unmarshal(configData, &configMap); err != nil {
		return fmt.Errorf("unmarshal config: %w", err)
	}

	return validateDocument(configMap)
}

// validateDocument checks a decoded JSON document against the embedded schema
func validateDocument(doc any) error {
	compiler := validator.NewCompiler()
	if err := compiler.AddResource(schemaURL, strings.NewReader(embeddedSchema)); err != nil {
		return fmt.Errorf("load embedded schema: %w", err)
	}
	schema, err := compiler.Compile(schemaURL)
	if err != nil {
		return fmt.Errorf("compile embedded schema: %w", err)
	}

	if err := schema.Validate(doc); err != nil {
		var ve *validator.ValidationError
		if errors.As(err, &ve) {
			return schemaError(ve)
		}
		return fmt.Errorf("validate config: %w", err)
	}
	return nil
}

// schemaError reports the first leaf failure as "field.path: message"
func schemaError(ve *validator.ValidationError) error {
	for len(ve.Causes) > 0 {
		ve = ve.Causes[0]
	}
	path := strings.ReplaceAll(strings.TrimPrefix(ve.InstanceLocation, "/"), "/", ".")
	if path == "" {
		return fmt.Errorf("config: %s", ve.Message)
	}
	return fmt.Errorf("%s: %s", path, ve.Message)
}

// GenerateSchema generates a JSON schema for the Config struct.
// Only fields tagged with jsonschema "required" are marked as required.
func GenerateSchema() (*jsonschema.Schema, error) {
	r := &jsonschema.Reflector{RequiredFromJSONSchemaTags: true}
	return r.Reflect(&Config{}), nil
}
