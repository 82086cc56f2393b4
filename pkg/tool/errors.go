package tool

import "fmt"

// ArgumentError means the model-issued arguments could not be parsed or are
// missing required fields. Local to the executor, never retried.
type ArgumentError struct {
	CallID string
	Name   string
	Cause  error
}

func (e *ArgumentError) Error() string {
	return fmt.Sprintf("tool %s: bad arguments (call %s): %v", e.Name, e.CallID, e.Cause)
}

func (e *ArgumentError) Unwrap() error {
	return e.Cause
}

// ExecutionError means the underlying capability failed. It aborts the turn;
// partial tool results are discarded.
type ExecutionError struct {
	CallID string
	Name   string
	Cause  error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("tool %s failed (call %s): %v", e.Name, e.CallID, e.Cause)
}

func (e *ExecutionError) Unwrap() error {
	return e.Cause
}

// NotFoundError means the model requested a tool name absent from the
// registry. Fatal for the turn, never silently skipped.
type NotFoundError struct {
	Name string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("tool not found: %s", e.Name)
}
