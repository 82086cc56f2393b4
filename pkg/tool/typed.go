package tool

import (
	"context"

	"github.com/invopop/jsonschema"
	"github.com/mitchellh/mapstructure"
)

// Typed adapts a function taking a typed argument struct into a Tool. The
// parameter schema is reflected from T; incoming argument maps are bound onto
// T with weak typing, so a model emitting "3" where an int is declared still
// binds cleanly.
type Typed[T any] struct {
	name        string
	description string
	schema      *jsonschema.Schema
	fn          func(ctx context.Context, args T) (any, error)
}

// NewTyped creates a tool from a function and its argument struct type.
func NewTyped[T any](name, description string, fn func(ctx context.Context, args T) (any, error)) *Typed[T] {
	var zero T
	return &Typed[T]{
		name:        name,
		description: description,
		schema:      ReflectSchema(&zero),
		fn:          fn,
	}
}

func (t *Typed[T]) Name() string { return t.name }

func (t *Typed[T]) Description() string { return t.description }

func (t *Typed[T]) Parameters() *jsonschema.Schema { return t.schema }

// Execute binds the argument map onto T and runs the wrapped function.
func (t *Typed[T]) Execute(ctx context.Context, args map[string]any) (any, error) {
	var in T
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           &in,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(args); err != nil {
		return nil, &ArgumentError{Name: t.name, Cause: err}
	}
	return t.fn(ctx, in)
}

// Ensure interface compliance.
var _ Tool = (*Typed[struct{}])(nil)
