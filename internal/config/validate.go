package config

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"
	sigsyaml "sigs.k8s.io/yaml"
)

//go:embed config.schema.json
var configSchema string

var compiledSchema = mustCompileSchema()

func mustCompileSchema() *jsonschema.Schema {
	c := jsonschema.NewCompiler()
	if err := c.AddResource("config.schema.json", strings.NewReader(configSchema)); err != nil {
		panic(fmt.Sprintf("add config schema: %v", err))
	}
	sch, err := c.Compile("config.schema.json")
	if err != nil {
		panic(fmt.Sprintf("compile config schema: %v", err))
	}
	return sch
}

// validateYAML checks a YAML configuration document against the
// embedded schema before it is merged into the store.
func validateYAML(data []byte) error {
	jsonData, err := sigsyaml.YAMLToJSON(data)
	if err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	// An empty file converts to JSON null and is a valid no-op config.
	if bytes.Equal(bytes.TrimSpace(jsonData), []byte("null")) {
		return nil
	}
	var doc any
	if err := json.Unmarshal(jsonData, &doc); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	if err := compiledSchema.Validate(doc); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}
