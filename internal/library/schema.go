package library

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sync"

	invopop "github.com/invopop/jsonschema"
	"github.com/santhosh-tekuri/jsonschema/v5"
)

const schemaURL = "database.schema.json"

// Schema returns the JSON Schema describing an importable database document.
func Schema() ([]byte, error) {
	r := invopop.Reflector{
		Anonymous:                  true,
		DoNotReference:             true,
		AllowAdditionalProperties:  true,
		RequiredFromJSONSchemaTags: true,
	}
	s := r.Reflect(&Database{})
	s.Title = "PromptHive database"
	return json.MarshalIndent(s, "", "  ")
}

var compiledSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	raw, err := Schema()
	if err != nil {
		return nil, fmt.Errorf("generate schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, bytes.NewReader(raw)); err != nil {
		return nil, fmt.Errorf("load schema: %w", err)
	}
	return compiler.Compile(schemaURL)
})

// ValidateImport checks that raw JSON has the shape of a database document.
// A failure is reported as *InvalidDocumentError.
func ValidateImport(raw []byte) error {
	schema, err := compiledSchema()
	if err != nil {
		return err
	}

	var doc any
	if err := json.Unmarshal(raw, &doc); err != nil {
		return &InvalidDocumentError{Err: err}
	}
	if _, ok := doc.(map[string]any); !ok {
		return &InvalidDocumentError{Err: fmt.Errorf("document must be a JSON object")}
	}
	if err := schema.Validate(doc); err != nil {
		return &InvalidDocumentError{Err: err}
	}
	return nil
}
