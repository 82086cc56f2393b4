package provider

import (
	"context"

	"github.com/baoman007/ai-weather-agent/pkg/types"
)

// ToolChoice tells the model whether it may select tools.
type ToolChoice string

const (
	// ToolChoiceAuto lets the model decide whether to call zero or more tools.
	ToolChoiceAuto ToolChoice = "auto"
	// ToolChoiceNone forbids tool selection; the model must answer in text.
	ToolChoiceNone ToolChoice = "none"
)

// ChatOptions contains configurable parameters for one chat completion.
type ChatOptions struct {
	Model       string
	Temperature float64
	MaxTokens   int
	Tools       []types.ToolDefinition
	ToolChoice  ToolChoice
}

// Option is a functional option for configuring ChatOptions.
type Option func(*ChatOptions)

func WithModel(m string) Option {
	return func(o *ChatOptions) {
		o.Model = m
	}
}

func WithTemperature(t float64) Option {
	return func(o *ChatOptions) {
		o.Temperature = t
	}
}

func WithMaxTokens(n int) Option {
	return func(o *ChatOptions) {
		o.MaxTokens = n
	}
}

// WithTools attaches the tool catalog advertised to the model for this call.
func WithTools(tools []types.ToolDefinition) Option {
	return func(o *ChatOptions) {
		o.Tools = tools
	}
}

func WithToolChoice(tc ToolChoice) Option {
	return func(o *ChatOptions) {
		o.ToolChoice = tc
	}
}

// Apply folds options onto a base configuration.
func (o *ChatOptions) Apply(opts []Option) {
	for _, opt := range opts {
		opt(o)
	}
}

// ChatModel is the single point of contact with an LLM endpoint. One call is
// one attempt: implementations do not retry.
type ChatModel interface {
	// Name returns the provider name (e.g. "dashscope", "gemini").
	Name() string

	// Chat sends the message list and returns the complete response, which
	// carries either plain text or requested tool calls.
	Chat(ctx context.Context, messages []types.Message, opts ...Option) (*types.ChatResponse, error)
}
