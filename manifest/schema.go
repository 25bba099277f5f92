package manifest

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"sync"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

const schemaURL = "https://github.com/andriiyaremenko/tinyioc/manifest/schema.json"

//go:embed schema.json
var schemaSource []byte

var compileSchema = sync.OnceValues(func() (*jsonschema.Schema, error) {
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaSource))
	if err != nil {
		return nil, err
	}

	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource(schemaURL, doc); err != nil {
		return nil, err
	}

	return compiler.Compile(schemaURL)
})

// validateSchema checks a decoded YAML document against the manifest schema.
func validateSchema(doc any) error {
	schema, err := compileSchema()
	if err != nil {
		return err
	}

	// YAML scalars are normalized to JSON ones before validation
	raw, err := json.Marshal(doc)
	if err != nil {
		return err
	}

	value, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return err
	}

	return schema.Validate(value)
}
