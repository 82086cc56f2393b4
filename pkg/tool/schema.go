package tool

import "github.com/invopop/jsonschema"

// reflector is configured for model-facing parameter schemas.
// DoNotReference inlines all definitions to avoid $ref, which the chat
// completion APIs do not resolve.
var reflector = &jsonschema.Reflector{
	DoNotReference: true,
}

// ReflectSchema creates a JSON Schema from an argument struct. Field names
// come from json tags; descriptions, enums, ranges and required markers come
// from jsonschema tags.
func ReflectSchema(v any) *jsonschema.Schema {
	return reflector.Reflect(v)
}
