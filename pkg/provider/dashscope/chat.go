// Package dashscope implements provider.ChatModel against the DashScope
// OpenAI-compatible endpoint (qwen chat and vision-language models).
package dashscope

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	goopenai "github.com/sashabaranov/go-openai"

	"github.com/baoman007/ai-weather-agent/pkg/provider"
	"github.com/baoman007/ai-weather-agent/pkg/types"
)

const (
	defaultBaseURL     = "https://dashscope.aliyuncs.com/compatible-mode/v1"
	defaultModel       = "qwen-plus"
	defaultTemperature = 0.7
)

// Config contains DashScope credential and runtime options.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float64
	Timeout     time.Duration
	HTTPClient  *http.Client
}

// ChatModel talks to DashScope through the go-openai client.
type ChatModel struct {
	client             *goopenai.Client
	defaultModel       string
	defaultTemperature float64
	timeout            time.Duration
}

// NewChatModel builds a DashScope chat provider.
func NewChatModel(cfg Config) (*ChatModel, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("dashscope api key is required")
	}

	apiCfg := goopenai.DefaultConfig(cfg.APIKey)
	apiCfg.BaseURL = defaultBaseURL
	if cfg.BaseURL != "" {
		apiCfg.BaseURL = cfg.BaseURL
	}
	if cfg.HTTPClient != nil {
		apiCfg.HTTPClient = cfg.HTTPClient
	}

	modelName := cfg.Model
	if strings.TrimSpace(modelName) == "" {
		modelName = defaultModel
	}

	temp := cfg.Temperature
	if temp == 0 {
		temp = defaultTemperature
	}

	return &ChatModel{
		client:             goopenai.NewClientWithConfig(apiCfg),
		defaultModel:       modelName,
		defaultTemperature: temp,
		timeout:            cfg.Timeout,
	}, nil
}

func (m *ChatModel) Name() string {
	return "dashscope"
}

// Chat implements provider.ChatModel.
func (m *ChatModel) Chat(ctx context.Context, messages []types.Message, opts ...provider.Option) (*types.ChatResponse, error) {
	options := &provider.ChatOptions{
		Model:       m.defaultModel,
		Temperature: m.defaultTemperature,
	}
	options.Apply(opts)

	req := goopenai.ChatCompletionRequest{
		Model:       options.Model,
		Messages:    toWireMessages(messages),
		Temperature: float32(options.Temperature),
		MaxTokens:   options.MaxTokens,
	}

	if len(options.Tools) > 0 {
		req.Tools = make([]goopenai.Tool, len(options.Tools))
		for i, t := range options.Tools {
			req.Tools[i] = goopenai.Tool{
				Type: goopenai.ToolType(t.Type),
				Function: &goopenai.FunctionDefinition{
					Name:        t.Function.Name,
					Description: t.Function.Description,
					Parameters:  t.Function.Parameters,
				},
			}
		}
		if options.ToolChoice != "" {
			req.ToolChoice = string(options.ToolChoice)
		}
	}

	if m.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, m.timeout)
		defer cancel()
	}

	resp, err := m.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return nil, m.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return nil, &provider.GatewayError{Provider: m.Name(), Message: "no choices returned"}
	}

	choice := resp.Choices[0]
	chatMsg := types.Message{
		Role:    types.RoleAssistant,
		Content: choice.Message.Content,
	}
	if len(choice.Message.ToolCalls) > 0 {
		chatMsg.ToolCalls = fromWireToolCalls(choice.Message.ToolCalls)
	}

	return &types.ChatResponse{
		Message:      chatMsg,
		FinishReason: string(choice.FinishReason),
		Usage: types.Usage{
			PromptTokens:     resp.Usage.PromptTokens,
			CompletionTokens: resp.Usage.CompletionTokens,
			TotalTokens:      resp.Usage.TotalTokens,
		},
	}, nil
}

func (m *ChatModel) wrapError(err error) error {
	var apiErr *goopenai.APIError
	if errors.As(err, &apiErr) {
		return &provider.GatewayError{
			Provider:   m.Name(),
			StatusCode: apiErr.HTTPStatusCode,
			Message:    apiErr.Message,
			Cause:      err,
		}
	}
	var statusErr *goopenai.RequestError
	if errors.As(err, &statusErr) {
		return &provider.GatewayError{
			Provider:   m.Name(),
			StatusCode: statusErr.HTTPStatusCode,
			Message:    "request failed",
			Cause:      err,
		}
	}
	return &provider.GatewayError{Provider: m.Name(), Message: "chat completion failed", Cause: err}
}

func toWireMessages(messages []types.Message) []goopenai.ChatCompletionMessage {
	out := make([]goopenai.ChatCompletionMessage, len(messages))
	for i, msg := range messages {
		oMsg := goopenai.ChatCompletionMessage{
			Content: msg.Content,
			Name:    msg.Name,
		}

		switch msg.Role {
		case types.RoleSystem:
			oMsg.Role = goopenai.ChatMessageRoleSystem
		case types.RoleUser:
			oMsg.Role = goopenai.ChatMessageRoleUser
			if len(msg.Parts) > 0 {
				oMsg.Content = ""
				oMsg.MultiContent = toWireParts(msg.Parts)
			}
		case types.RoleAssistant:
			oMsg.Role = goopenai.ChatMessageRoleAssistant
			if len(msg.ToolCalls) > 0 {
				oMsg.ToolCalls = toWireToolCalls(msg.ToolCalls)
			}
		case types.RoleTool:
			oMsg.Role = goopenai.ChatMessageRoleTool
			oMsg.ToolCallID = msg.ToolCallID
		default:
			oMsg.Role = goopenai.ChatMessageRoleUser
		}
		out[i] = oMsg
	}
	return out
}

func toWireParts(parts []types.ContentPart) []goopenai.ChatMessagePart {
	out := make([]goopenai.ChatMessagePart, len(parts))
	for i, p := range parts {
		switch p.Type {
		case "image_url":
			out[i] = goopenai.ChatMessagePart{
				Type:     goopenai.ChatMessagePartTypeImageURL,
				ImageURL: &goopenai.ChatMessageImageURL{URL: p.ImageURL.URL},
			}
		default:
			out[i] = goopenai.ChatMessagePart{
				Type: goopenai.ChatMessagePartTypeText,
				Text: p.Text,
			}
		}
	}
	return out
}

func toWireToolCalls(tcs []types.ToolCall) []goopenai.ToolCall {
	out := make([]goopenai.ToolCall, len(tcs))
	for i, tc := range tcs {
		out[i] = goopenai.ToolCall{
			ID:   tc.ID,
			Type: goopenai.ToolType(tc.Type),
			Function: goopenai.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		}
	}
	return out
}

func fromWireToolCalls(tcs []goopenai.ToolCall) []types.ToolCall {
	out := make([]types.ToolCall, len(tcs))
	for i, tc := range tcs {
		out[i] = types.ToolCall{
			ID:   tc.ID,
			Type: string(tc.Type),
			Function: types.FunctionCall{
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			},
		}
	}
	return out
}

// Ensure interface compliance.
var _ provider.ChatModel = (*ChatModel)(nil)
