// Where: internal/config/validator.go
// What: Schema validation for configuration documents.
// Why: Catch wrong shapes with a precise location before resolution runs.
package config

import (
	"bytes"
	"embed"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v5"
	sigyaml "sigs.k8s.io/yaml"
)

//go:embed schema/env.schema.json
var schemaFS embed.FS

var (
	schemaOnce     sync.Once
	schemaErr      error
	compiledSchema *jsonschema.Schema
)

const schemaName = "env.schema.json"

// ValidateYAMLDocument checks a yaml config payload against the embedded
// schema before it is decoded into the model.
func ValidateYAMLDocument(payload []byte) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}

	jsonData, err := sigyaml.YAMLToJSON(payload)
	if err != nil {
		return fmt.Errorf("convert yaml to json: %w", err)
	}
	if bytes.Equal(bytes.TrimSpace(jsonData), []byte("null")) {
		return fmt.Errorf("configuration document is empty")
	}

	var document any
	if err := json.Unmarshal(jsonData, &document); err != nil {
		return fmt.Errorf("decode json: %w", err)
	}

	if err := sch.Validate(document); err != nil {
		return fmt.Errorf("configuration is not valid: %w", err)
	}
	return nil
}

// ValidateEnvDocument checks one raw environment section (as produced by
// the ini loader) against the environment schema definition.
func ValidateEnvDocument(name string, raw map[string]string) error {
	sch, err := loadSchema()
	if err != nil {
		return err
	}
	document := map[string]any{}
	for key, value := range raw {
		document[key] = value
	}
	wrapped := map[string]any{"environments": map[string]any{name: document}}
	if err := sch.Validate(wrapped); err != nil {
		return fmt.Errorf("environment %q is not valid: %w", name, err)
	}
	return nil
}

func loadSchema() (*jsonschema.Schema, error) {
	schemaOnce.Do(func() {
		payload, err := schemaFS.ReadFile("schema/" + schemaName)
		if err != nil {
			schemaErr = err
			return
		}
		compiler := jsonschema.NewCompiler()
		if err := compiler.AddResource(schemaName, bytes.NewReader(payload)); err != nil {
			schemaErr = err
			return
		}
		compiledSchema, schemaErr = compiler.Compile(schemaName)
	})
	return compiledSchema, schemaErr
}
