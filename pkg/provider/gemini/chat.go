// Package gemini implements provider.ChatModel on Google Gemini, including
// tool declarations and function-call round-trips. Gemini does not issue tool
// call IDs, so this provider synthesizes them; tool results are matched back
// by function name as the Gemini protocol expects.
package gemini

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"github.com/google/uuid"
	"google.golang.org/api/option"

	"github.com/baoman007/ai-weather-agent/pkg/provider"
	"github.com/baoman007/ai-weather-agent/pkg/types"
)

const (
	defaultModel       = "gemini-1.5-pro"
	defaultTemperature = 0.5
)

// Config contains Gemini credential and runtime options.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
}

// ChatModel implements provider.ChatModel using Google Gemini.
type ChatModel struct {
	client             *genai.Client
	defaultModel       string
	defaultTemperature float64
}

// NewChatModel builds a Gemini chat provider.
func NewChatModel(ctx context.Context, cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}

	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultModel
	}

	temp := cfg.Temperature
	if temp == 0 {
		temp = defaultTemperature
	}

	return &ChatModel{
		client:             client,
		defaultModel:       modelName,
		defaultTemperature: temp,
	}, nil
}

func (m *ChatModel) Name() string {
	return "gemini"
}

// Chat implements provider.ChatModel.
func (m *ChatModel) Chat(ctx context.Context, messages []types.Message, opts ...provider.Option) (*types.ChatResponse, error) {
	if len(messages) == 0 {
		return nil, &provider.GatewayError{Provider: m.Name(), Message: "no messages to send"}
	}

	options := &provider.ChatOptions{
		Model:       m.defaultModel,
		Temperature: m.defaultTemperature,
	}
	options.Apply(opts)

	gm := m.client.GenerativeModel(options.Model)
	gm.SetTemperature(float32(options.Temperature))
	if options.MaxTokens > 0 {
		gm.SetMaxOutputTokens(int32(options.MaxTokens))
	}
	if len(options.Tools) > 0 {
		tools, err := toGeminiTools(options.Tools)
		if err != nil {
			return nil, &provider.GatewayError{Provider: m.Name(), Message: "tool catalog conversion failed", Cause: err}
		}
		gm.Tools = tools
	}

	// Gemini's ChatSession carries previous turns in History and takes the
	// newest message's parts through SendMessage.
	cs := gm.StartChat()
	for _, msg := range messages[:len(messages)-1] {
		if msg.Role == types.RoleSystem {
			gm.SystemInstruction = &genai.Content{
				Parts: []genai.Part{genai.Text(msg.Content)},
			}
			continue
		}
		cs.History = append(cs.History, &genai.Content{
			Role:  geminiRole(msg.Role),
			Parts: toGeminiParts(msg),
		})
	}

	last := messages[len(messages)-1]
	resp, err := cs.SendMessage(ctx, toGeminiParts(last)...)
	if err != nil {
		return nil, &provider.GatewayError{Provider: m.Name(), Message: "generate content failed", Cause: err}
	}

	return toChatResponse(resp), nil
}

func geminiRole(role types.Role) string {
	switch role {
	case types.RoleAssistant:
		return "model"
	case types.RoleTool:
		return "function"
	default:
		return "user"
	}
}

func toGeminiParts(msg types.Message) []genai.Part {
	var parts []genai.Part

	if msg.Role == types.RoleTool {
		return []genai.Part{genai.FunctionResponse{
			Name:     msg.Name,
			Response: responseMap(msg.Content),
		}}
	}

	for _, p := range msg.Parts {
		switch p.Type {
		case "image_url":
			// Gemini takes inline data rather than data URLs; references are
			// forwarded as text so the model can at least see them.
			parts = append(parts, genai.Text(p.ImageURL.URL))
		default:
			parts = append(parts, genai.Text(p.Text))
		}
	}
	if msg.Content != "" {
		parts = append(parts, genai.Text(msg.Content))
	}
	for _, tc := range msg.ToolCalls {
		var args map[string]any
		if err := json.Unmarshal([]byte(tc.Function.Arguments), &args); err != nil {
			args = map[string]any{}
		}
		parts = append(parts, genai.FunctionCall{Name: tc.Function.Name, Args: args})
	}
	if len(parts) == 0 {
		parts = append(parts, genai.Text(""))
	}
	return parts
}

// responseMap decodes tool result JSON into the map shape FunctionResponse
// requires; non-object results are wrapped.
func responseMap(content string) map[string]any {
	var obj map[string]any
	if err := json.Unmarshal([]byte(content), &obj); err == nil {
		return obj
	}
	return map[string]any{"result": content}
}

func toChatResponse(resp *genai.GenerateContentResponse) *types.ChatResponse {
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return &types.ChatResponse{
			Message: types.Message{Role: types.RoleAssistant},
		}
	}

	cand := resp.Candidates[0]
	msg := types.Message{Role: types.RoleAssistant}

	var sb strings.Builder
	for _, part := range cand.Content.Parts {
		switch p := part.(type) {
		case genai.Text:
			sb.WriteString(string(p))
		case genai.FunctionCall:
			args, err := json.Marshal(p.Args)
			if err != nil {
				args = []byte("{}")
			}
			msg.ToolCalls = append(msg.ToolCalls, types.ToolCall{
				ID:       "call_" + uuid.NewString()[:8],
				Type:     "function",
				Function: types.FunctionCall{Name: p.Name, Arguments: string(args)},
			})
		}
	}
	msg.Content = sb.String()

	out := &types.ChatResponse{
		Message:      msg,
		FinishReason: toFinishReason(cand.FinishReason),
	}
	if len(msg.ToolCalls) > 0 {
		out.FinishReason = "tool_calls"
	}
	if resp.UsageMetadata != nil {
		out.Usage = types.Usage{
			PromptTokens:     int(resp.UsageMetadata.PromptTokenCount),
			CompletionTokens: int(resp.UsageMetadata.CandidatesTokenCount),
			TotalTokens:      int(resp.UsageMetadata.TotalTokenCount),
		}
	}
	return out
}

func toFinishReason(fr genai.FinishReason) string {
	switch fr {
	case genai.FinishReasonStop:
		return "stop"
	case genai.FinishReasonMaxTokens:
		return "length"
	default:
		return fmt.Sprintf("unknown:%d", fr)
	}
}

// toGeminiTools maps the OpenAI-style catalog onto Gemini function
// declarations, converting each JSON Schema into a genai.Schema.
func toGeminiTools(defs []types.ToolDefinition) ([]*genai.Tool, error) {
	decls := make([]*genai.FunctionDeclaration, 0, len(defs))
	for _, def := range defs {
		schema, err := toGeminiSchema(def.Function.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", def.Function.Name, err)
		}
		decls = append(decls, &genai.FunctionDeclaration{
			Name:        def.Function.Name,
			Description: def.Function.Description,
			Parameters:  schema,
		})
	}
	return []*genai.Tool{{FunctionDeclarations: decls}}, nil
}

// jsonSchema is the subset of JSON Schema the builtin tools produce.
type jsonSchema struct {
	Type        string                 `json:"type"`
	Description string                 `json:"description,omitempty"`
	Properties  map[string]*jsonSchema `json:"properties,omitempty"`
	Required    []string               `json:"required,omitempty"`
	Enum        []any                  `json:"enum,omitempty"`
	Items       *jsonSchema            `json:"items,omitempty"`
}

func toGeminiSchema(params any) (*genai.Schema, error) {
	raw, err := json.Marshal(params)
	if err != nil {
		return nil, err
	}
	var js jsonSchema
	if err := json.Unmarshal(raw, &js); err != nil {
		return nil, err
	}
	return convertSchema(&js), nil
}

func convertSchema(js *jsonSchema) *genai.Schema {
	if js == nil {
		return nil
	}
	out := &genai.Schema{
		Type:        geminiType(js.Type),
		Description: js.Description,
		Required:    js.Required,
	}
	for _, e := range js.Enum {
		out.Enum = append(out.Enum, fmt.Sprint(e))
	}
	if len(js.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(js.Properties))
		for name, prop := range js.Properties {
			out.Properties[name] = convertSchema(prop)
		}
	}
	if js.Items != nil {
		out.Items = convertSchema(js.Items)
	}
	return out
}

func geminiType(t string) genai.Type {
	switch t {
	case "object":
		return genai.TypeObject
	case "string":
		return genai.TypeString
	case "integer":
		return genai.TypeInteger
	case "number":
		return genai.TypeNumber
	case "boolean":
		return genai.TypeBoolean
	case "array":
		return genai.TypeArray
	default:
		return genai.TypeUnspecified
	}
}

// Ensure interface compliance.
var _ provider.ChatModel = (*ChatModel)(nil)
