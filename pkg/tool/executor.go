package tool

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/baoman007/ai-weather-agent/pkg/types"
)

const defaultTimeout = 30 * time.Second

// Executor dispatches model-issued tool calls against a registry. Each call
// is one-shot: no caching, no retry. Calls within a turn run sequentially in
// emission order.
type Executor struct {
	registry *Registry
	timeout  time.Duration
}

// NewExecutor builds an Executor with a per-call timeout.
func NewExecutor(registry *Registry, timeout time.Duration) *Executor {
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	return &Executor{registry: registry, timeout: timeout}
}

// Run executes one tool call and normalizes its output to JSON text.
func (e *Executor) Run(ctx context.Context, call types.ToolCall) (types.ToolResult, error) {
	name := call.Function.Name

	t, err := e.registry.Resolve(name)
	if err != nil {
		return types.ToolResult{}, err
	}

	args, err := parseArguments(call.Function.Arguments)
	if err != nil {
		return types.ToolResult{}, &ArgumentError{CallID: call.ID, Name: name, Cause: err}
	}
	if err := checkRequired(t, args); err != nil {
		return types.ToolResult{}, &ArgumentError{CallID: call.ID, Name: name, Cause: err}
	}

	execCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	slog.Debug("executing tool", "tool", name, "call_id", call.ID)
	out, err := t.Execute(execCtx, args)
	if err != nil {
		if argErr, ok := asArgumentError(err); ok {
			argErr.CallID = call.ID
			return types.ToolResult{}, argErr
		}
		return types.ToolResult{}, &ExecutionError{CallID: call.ID, Name: name, Cause: err}
	}

	content, err := json.Marshal(out)
	if err != nil {
		return types.ToolResult{}, &ExecutionError{CallID: call.ID, Name: name, Cause: fmt.Errorf("serialize result: %w", err)}
	}

	return types.ToolResult{ToolCallID: call.ID, Name: name, Content: string(content)}, nil
}

// RunAll executes the calls sequentially in emission order. The first failure
// aborts the batch: partial results are discarded, nothing is synthesized.
func (e *Executor) RunAll(ctx context.Context, calls []types.ToolCall) ([]types.ToolResult, error) {
	results := make([]types.ToolResult, 0, len(calls))
	for _, call := range calls {
		res, err := e.Run(ctx, call)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

func asArgumentError(err error) (*ArgumentError, bool) {
	for e := err; e != nil; {
		if argErr, ok := e.(*ArgumentError); ok {
			return argErr, true
		}
		u, ok := e.(interface{ Unwrap() error })
		if !ok {
			break
		}
		e = u.Unwrap()
	}
	return nil, false
}

var codeFenceRE = regexp.MustCompile("(?s)```(?:json)?(.*?)```")

// parseArguments decodes the raw argument text, tolerating markdown code
// fences some models wrap around JSON. Empty text means no arguments.
func parseArguments(raw string) (map[string]any, error) {
	raw = strings.TrimSpace(raw)
	if m := codeFenceRE.FindStringSubmatch(raw); len(m) > 1 {
		raw = strings.TrimSpace(m[1])
	}
	if raw == "" {
		return map[string]any{}, nil
	}

	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, fmt.Errorf("malformed argument JSON: %w", err)
	}
	return args, nil
}

// checkRequired validates presence of schema-required fields before the tool
// runs, so missing arguments fail as ArgumentError rather than deep inside a
// backend call.
func checkRequired(t Tool, args map[string]any) error {
	schema := t.Parameters()
	if schema == nil {
		return nil
	}
	for _, field := range schema.Required {
		if _, ok := args[field]; !ok {
			return fmt.Errorf("missing required field: %s", field)
		}
	}
	return nil
}
