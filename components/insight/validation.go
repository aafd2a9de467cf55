package insight

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
)

// ConfigValidator validates view configuration payloads against their schema.
type ConfigValidator interface {
	Validate(def ViewDefinition, config map[string]any) error
}

// savedViewSchema guards the serialized filter snapshot stored in a saved
// view. Axes are nullable; the date range must be a known token.
const savedViewSchema = `{
	"type": "object",
	"properties": {
		"category": {"type": ["string", "null"]},
		"region": {"type": ["string", "null"]},
		"date_range": {"enum": ["7d", "30d", "90d", "all"]},
		"min_order_value": {"type": ["number", "null"], "minimum": 0}
	},
	"required": ["date_range"],
	"additionalProperties": false
}`

// JSONSchemaValidator compiles view schemas and validates configuration maps.
type JSONSchemaValidator struct {
	mu       sync.RWMutex
	compiled map[string]*jsonschema.Schema
}

// NewJSONSchemaValidator builds a validator backed by jsonschema v5.
func NewJSONSchemaValidator() *JSONSchemaValidator {
	return &JSONSchemaValidator{
		compiled: make(map[string]*jsonschema.Schema),
	}
}

// Validate ensures the provided configuration satisfies the view schema.
func (v *JSONSchemaValidator) Validate(def ViewDefinition, config map[string]any) error {
	if len(def.Schema) == 0 {
		return nil
	}
	schema, err := v.schemaFor(def)
	if err != nil {
		return err
	}
	var payload map[string]any
	if config == nil {
		payload = map[string]any{}
	} else {
		data, err := json.Marshal(config)
		if err != nil {
			return fmt.Errorf("insight: marshal config for %s: %w", def.Code, err)
		}
		if err := json.Unmarshal(data, &payload); err != nil {
			return fmt.Errorf("insight: normalize config for %s: %w", def.Code, err)
		}
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("insight: configuration for %s failed validation: %w", def.Code, err)
	}
	return nil
}

// ValidateSettings checks a saved-view filter snapshot before it is sent to
// the gateway or applied to the filter store.
func (v *JSONSchemaValidator) ValidateSettings(settings FilterSettings) error {
	schema, err := v.compile("insight.saved_view", savedViewSchema)
	if err != nil {
		return err
	}
	data, err := json.Marshal(settings)
	if err != nil {
		return fmt.Errorf("insight: marshal saved view settings: %w", err)
	}
	var payload map[string]any
	if err := json.Unmarshal(data, &payload); err != nil {
		return fmt.Errorf("insight: normalize saved view settings: %w", err)
	}
	if err := schema.Validate(payload); err != nil {
		return fmt.Errorf("insight: saved view settings failed validation: %w", err)
	}
	return nil
}

func (v *JSONSchemaValidator) schemaFor(def ViewDefinition) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[def.Code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	data, err := json.Marshal(def.Schema)
	if err != nil {
		return nil, fmt.Errorf("insight: marshal schema %s: %w", def.Code, err)
	}
	return v.compile(def.Code, string(data))
}

func (v *JSONSchemaValidator) compile(code, raw string) (*jsonschema.Schema, error) {
	v.mu.RLock()
	schema, ok := v.compiled[code]
	v.mu.RUnlock()
	if ok {
		return schema, nil
	}
	compiler := jsonschema.NewCompiler()
	name := code + ".json"
	if err := compiler.AddResource(name, bytes.NewReader([]byte(raw))); err != nil {
		return nil, fmt.Errorf("insight: load schema %s: %w", code, err)
	}
	compiled, err := compiler.Compile(name)
	if err != nil {
		return nil, fmt.Errorf("insight: compile schema %s: %w", code, err)
	}
	v.mu.Lock()
	v.compiled[code] = compiled
	v.mu.Unlock()
	return compiled, nil
}

type noopConfigValidator struct{}

func (noopConfigValidator) Validate(ViewDefinition, map[string]any) error { return nil }
