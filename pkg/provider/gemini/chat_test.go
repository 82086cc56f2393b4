package gemini

import (
	"context"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/require"

	"github.com/baoman007/ai-weather-agent/pkg/types"
)

func TestNewChatModel_RequiresKey(t *testing.T) {
	_, err := NewChatModel(context.Background(), Config{})
	require.Error(t, err)
}

func TestToGeminiSchema(t *testing.T) {
	params := map[string]any{
		"type":        "object",
		"description": "weather query",
		"properties": map[string]any{
			"city": map[string]any{"type": "string", "description": "city name"},
			"days": map[string]any{"type": "integer"},
			"size": map[string]any{"type": "string", "enum": []string{"256x256", "512x512"}},
		},
		"required": []string{"city"},
	}

	schema, err := toGeminiSchema(params)
	require.NoError(t, err)

	require.Equal(t, genai.TypeObject, schema.Type)
	require.Equal(t, []string{"city"}, schema.Required)
	require.Equal(t, genai.TypeString, schema.Properties["city"].Type)
	require.Equal(t, genai.TypeInteger, schema.Properties["days"].Type)
	require.Equal(t, []string{"256x256", "512x512"}, schema.Properties["size"].Enum)
}

func TestToGeminiParts_ToolRoundTrip(t *testing.T) {
	assistant := types.Message{
		Role: types.RoleAssistant,
		ToolCalls: []types.ToolCall{
			{ID: "call_1", Type: "function", Function: types.FunctionCall{Name: "get_stock", Arguments: `{"symbol":"AAPL"}`}},
		},
	}
	parts := toGeminiParts(assistant)
	require.Len(t, parts, 1)
	fc, ok := parts[0].(genai.FunctionCall)
	require.True(t, ok)
	require.Equal(t, "get_stock", fc.Name)
	require.Equal(t, "AAPL", fc.Args["symbol"])

	toolMsg := types.NewToolMessage(types.ToolResult{
		ToolCallID: "call_1",
		Name:       "get_stock",
		Content:    `{"price":"178.50"}`,
	})
	parts = toGeminiParts(toolMsg)
	require.Len(t, parts, 1)
	fr, ok := parts[0].(genai.FunctionResponse)
	require.True(t, ok)
	require.Equal(t, "get_stock", fr.Name)
	require.Equal(t, "178.50", fr.Response["price"])
}

func TestResponseMap_NonObject(t *testing.T) {
	m := responseMap(`"plain text"`)
	require.Equal(t, map[string]any{"result": `"plain text"`}, m)
}
