// Package tool defines the callable capabilities the model may request, the
// immutable registry that catalogs them, and the executor that turns a
// model-issued tool call into a normalized JSON result.
package tool

import (
	"context"

	"github.com/invopop/jsonschema"
)

// Tool represents one named, schema-described capability.
type Tool interface {
	// Name returns the unique name of the tool.
	Name() string

	// Description returns a human-readable description for the model.
	Description() string

	// Parameters returns the JSON Schema of the argument object.
	Parameters() *jsonschema.Schema

	// Execute runs the tool against already-parsed arguments.
	Execute(ctx context.Context, args map[string]any) (any, error)
}
