package config

import (
	"encoding/json"

	"github.com/invopop/jsonschema"
)

// JSONSchema describes the config file format as a JSON Schema document,
// so editors and collaborators can validate configs without reading code.
func JSONSchema() map[string]any {
	r := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
	}
	s := r.Reflect(&Config{})
	b, _ := json.Marshal(s)
	var m map[string]any
	_ = json.Unmarshal(b, &m)
	return m
}
