// Package script provides a deterministic in-memory ChatModel. It replays a
// fixed queue of responses and records every request it sees, which makes the
// orchestration control flow reproducible in tests. With an empty queue it
// degrades to a canned answer, so it also serves as the no-credentials
// fallback provider.
package script

import (
	"context"
	"sync"

	"github.com/baoman007/ai-weather-agent/pkg/provider"
	"github.com/baoman007/ai-weather-agent/pkg/types"
)

// Request is one recorded Chat invocation with its resolved options.
type Request struct {
	Messages []types.Message
	Options  provider.ChatOptions
}

// Provider is a scripted ChatModel. Safe for concurrent use.
type Provider struct {
	mu       sync.Mutex
	name     string
	queue    []*types.ChatResponse
	requests []Request
}

// New builds a scripted provider that returns the given responses in order.
func New(name string, replies ...*types.ChatResponse) *Provider {
	return &Provider{name: name, queue: replies}
}

// Push appends another scripted response to the queue.
func (p *Provider) Push(resp *types.ChatResponse) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.queue = append(p.queue, resp)
}

func (p *Provider) Name() string {
	if p.name == "" {
		return "script"
	}
	return p.name
}

// Chat implements provider.ChatModel.
func (p *Provider) Chat(ctx context.Context, messages []types.Message, opts ...provider.Option) (*types.ChatResponse, error) {
	if err := ctx.Err(); err != nil {
		return nil, &provider.GatewayError{Provider: p.Name(), Message: "context done", Cause: err}
	}

	options := provider.ChatOptions{}
	options.Apply(opts)

	p.mu.Lock()
	defer p.mu.Unlock()

	msgs := make([]types.Message, len(messages))
	copy(msgs, messages)
	p.requests = append(p.requests, Request{Messages: msgs, Options: options})

	if len(p.queue) == 0 {
		return &types.ChatResponse{
			Message: types.Message{
				Role:    types.RoleAssistant,
				Content: "No model endpoint is configured; this is a scripted fallback answer.",
			},
			FinishReason: "stop",
		}, nil
	}

	next := p.queue[0]
	p.queue = p.queue[1:]
	return next, nil
}

// Requests returns a copy of every recorded invocation in call order.
func (p *Provider) Requests() []Request {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]Request, len(p.requests))
	copy(out, p.requests)
	return out
}

// CallCount reports how many Chat invocations were made.
func (p *Provider) CallCount() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.requests)
}

// Ensure interface compliance.
var _ provider.ChatModel = (*Provider)(nil)
