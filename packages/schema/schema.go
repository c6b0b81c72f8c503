// Package schema validates response bodies against JSON Schema documents.
package schema

import (
	"fmt"

	"github.com/xeipuuv/gojsonschema"

	"github.com/restcall-dev/restcall/packages/rest"
)

// Result holds the outcome of one validation. Issues is empty when Valid.
type Result struct {
	Valid  bool
	Issues []string
}

// Validate checks resp's body against the given JSON Schema. A body that is
// not valid JSON yields an invalid Result, not an error; errors are reserved
// for unusable schemas.
func Validate(resp *rest.Response, schemaJSON []byte) (*Result, error) {
	schemaLoader := gojsonschema.NewBytesLoader(schemaJSON)
	documentLoader := gojsonschema.NewBytesLoader(resp.RawBody)

	result, err := gojsonschema.Validate(schemaLoader, documentLoader)
	if err != nil {
		// gojsonschema reports an unparseable document the same way as an
		// unparseable schema; classify by checking the schema alone.
		if _, schemaErr := gojsonschema.NewSchema(schemaLoader); schemaErr != nil {
			return nil, fmt.Errorf("invalid schema: %w", schemaErr)
		}
		return &Result{
			Valid:  false,
			Issues: []string{fmt.Sprintf("response body is not valid JSON: %v", err)},
		}, nil
	}

	if result.Valid() {
		return &Result{Valid: true}, nil
	}

	r := &Result{Valid: false}
	for _, desc := range result.Errors() {
		r.Issues = append(r.Issues, desc.String())
	}
	return r, nil
}
