// Package agent holds the orchestration loop: one user turn becomes at most
// two model calls with an optional tool round-trip in between. The loop is a
// fixed two-state machine, not a general recursive chain; a second round of
// tool requests is a protocol violation, not a deeper recursion.
package agent

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/baoman007/ai-weather-agent/pkg/prompt"
	"github.com/baoman007/ai-weather-agent/pkg/provider"
	"github.com/baoman007/ai-weather-agent/pkg/tool"
	"github.com/baoman007/ai-weather-agent/pkg/types"
)

// Turn is one incoming chat request. History is the caller's responsibility:
// the agent keeps no conversation state between turns.
type Turn struct {
	Message string
	History []types.Message
}

// Reply is the terminal result of a turn. ToolCalls is empty when the model
// answered directly.
type Reply struct {
	Text      string
	ToolCalls []types.ToolCallSummary
}

// Config describes how an Agent is assembled.
type Config struct {
	Provider     provider.ChatModel
	Registry     *tool.Registry
	Executor     *tool.Executor
	SystemPrompt prompt.Template
	Model        string
	Temperature  float64
}

// Agent coordinates the model gateway, tool registry and tool executor for
// single turns. Safe for concurrent use: it owns no mutable state.
type Agent struct {
	provider     provider.ChatModel
	registry     *tool.Registry
	executor     *tool.Executor
	systemPrompt prompt.Template
	model        string
	temperature  float64
	now          func() time.Time
}

const defaultSystemPrompt = `You are a helpful multimodal assistant.`

// New builds an Agent and wires defaults.
func New(cfg Config) (*Agent, error) {
	if cfg.Provider == nil {
		return nil, fmt.Errorf("provider is required")
	}
	if cfg.Registry == nil {
		return nil, fmt.Errorf("registry is required")
	}
	if cfg.Executor == nil {
		return nil, fmt.Errorf("executor is required")
	}

	promptTemplate := cfg.SystemPrompt
	if promptTemplate.Text == "" {
		promptTemplate = prompt.NewTemplate(defaultSystemPrompt)
	}

	return &Agent{
		provider:     cfg.Provider,
		registry:     cfg.Registry,
		executor:     cfg.Executor,
		systemPrompt: promptTemplate,
		model:        cfg.Model,
		temperature:  cfg.Temperature,
		now:          time.Now,
	}, nil
}

// Respond runs one full turn: first model pass with the tool catalog
// attached, an optional sequential tool round, and a second pass that folds
// the tool results back in. Any failure along the way fails the whole turn;
// no partial answer is synthesized and nothing is retried.
func (a *Agent) Respond(ctx context.Context, turn Turn) (*Reply, error) {
	system := a.systemPrompt.Render(map[string]any{
		"date": a.now().Format("2006-01-02"),
	})
	messages := Assemble(system, turn.History, types.UserText(turn.Message))

	first, err := a.provider.Chat(ctx, messages,
		a.baseOptions(
			provider.WithTools(a.registry.Definitions()),
			provider.WithToolChoice(provider.ToolChoiceAuto),
		)...)
	if err != nil {
		return nil, err
	}

	calls := first.Message.ToolCalls
	if len(calls) == 0 {
		slog.Debug("model answered directly", "provider", a.provider.Name())
		return &Reply{Text: first.Message.Content}, nil
	}

	slog.Info("model requested tools", "count", len(calls), "first", calls[0].Function.Name)
	results, err := a.executor.RunAll(ctx, calls)
	if err != nil {
		return nil, err
	}

	// The model's own framing of why it called tools is part of the record it
	// expects back: replay its assistant message verbatim, then one tool
	// message per result in request order.
	second := append(messages, first.Message)
	for _, res := range results {
		second = append(second, types.NewToolMessage(res))
	}

	final, err := a.provider.Chat(ctx, second, a.baseOptions()...)
	if err != nil {
		return nil, err
	}
	if len(final.Message.ToolCalls) > 0 {
		return nil, &provider.GatewayError{
			Provider: a.provider.Name(),
			Message:  "model requested tools on the final pass",
		}
	}

	return &Reply{
		Text:      final.Message.Content,
		ToolCalls: types.Summarize(calls),
	}, nil
}

func (a *Agent) baseOptions(extra ...provider.Option) []provider.Option {
	var opts []provider.Option
	if a.model != "" {
		opts = append(opts, provider.WithModel(a.model))
	}
	if a.temperature > 0 {
		opts = append(opts, provider.WithTemperature(a.temperature))
	}
	return append(opts, extra...)
}
