package tool

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

type forecastArgs struct {
	City string `json:"city" jsonschema:"required,description=City name"`
	Days int    `json:"days,omitempty" jsonschema:"minimum=1,maximum=7,default=3"`
	Size string `json:"size,omitempty" jsonschema:"enum=256x256,enum=512x512"`
}

func TestReflectSchema(t *testing.T) {
	schema := ReflectSchema(&forecastArgs{})

	raw, err := json.Marshal(schema)
	require.NoError(t, err)

	var decoded struct {
		Type       string          `json:"type"`
		Required   []string        `json:"required"`
		Properties map[string]json.RawMessage `json:"properties"`
	}
	require.NoError(t, json.Unmarshal(raw, &decoded))

	require.Equal(t, "object", decoded.Type)
	require.Equal(t, []string{"city"}, decoded.Required)
	require.Contains(t, decoded.Properties, "city")
	require.Contains(t, decoded.Properties, "days")
	require.Contains(t, string(decoded.Properties["size"]), "256x256")
}

func TestTyped_Execute(t *testing.T) {
	tl := NewTyped("forecast", "test", func(ctx context.Context, args forecastArgs) (any, error) {
		return args, nil
	})

	t.Run("Weakly Typed Binding", func(t *testing.T) {
		// Models regularly emit numbers as strings; binding must tolerate it.
		out, err := tl.Execute(context.Background(), map[string]any{"city": "Beijing", "days": "3"})
		require.NoError(t, err)
		require.Equal(t, forecastArgs{City: "Beijing", Days: 3}, out)
	})

	t.Run("Unbindable Input", func(t *testing.T) {
		_, err := tl.Execute(context.Background(), map[string]any{"city": "Beijing", "days": map[string]any{"x": 1}})
		var argErr *ArgumentError
		require.ErrorAs(t, err, &argErr)
		require.Equal(t, "forecast", argErr.Name)
	})
}
