package devices

import (
	"encoding/json"
	"fmt"
	"strings"

	_ "embed"
	"github.com/qsc20001102/KingSCADA-Tag/internal/types"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

//go:embed schema/settings-v1.json
var settingsSchemaJSON string

// SettingsValidator checks generation settings against the embedded schema.
type SettingsValidator struct {
	schema *jsonschema.Schema
}

func NewSettingsValidator() (*SettingsValidator, error) {
	compiler := jsonschema.NewCompiler()

	if err := compiler.AddResource("settings-v1.json",
		strings.NewReader(settingsSchemaJSON)); err != nil {
		return nil, fmt.Errorf("failed to add schema resource: %w", err)
	}

	schema, err := compiler.Compile("settings-v1.json")
	if err != nil {
		return nil, fmt.Errorf("failed to compile schema: %w", err)
	}

	return &SettingsValidator{schema: schema}, nil
}

func (v *SettingsValidator) ValidateSettings(data []byte) error {
	var settings interface{}
	if err := json.Unmarshal(data, &settings); err != nil {
		return fmt.Errorf("invalid JSON: %w", err)
	}

	if err := v.schema.Validate(settings); err != nil {
		return fmt.Errorf("schema validation failed: %w", err)
	}

	return nil
}

func (v *SettingsValidator) Validate(cfg types.UserConfig) error {
	data, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to marshal settings: %w", err)
	}

	return v.ValidateSettings(data)
}
