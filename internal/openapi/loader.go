package openapi

import (
	"context"
	"fmt"

	"github.com/getkin/kin-openapi/openapi3"
)

// Load reads the document at path (JSON or YAML) and validates it.
func Load(ctx context.Context, path string) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromFile(path)
	if err != nil {
		return nil, fmt.Errorf("error loading OpenAPI document %q: %w", path, err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document %q: %w", path, err)
	}
	return doc, nil
}

// LoadData parses an in-memory document (JSON or YAML) and validates it.
func LoadData(ctx context.Context, data []byte) (*openapi3.T, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(data)
	if err != nil {
		return nil, fmt.Errorf("error parsing OpenAPI document: %w", err)
	}
	if err = doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}
	return doc, nil
}
