package provider

import "fmt"

// GatewayError represents a failed model endpoint call: transport error,
// non-2xx status, or a malformed response body. The orchestration loop does
// not retry; one GatewayError fails the whole turn.
type GatewayError struct {
	Provider   string
	StatusCode int
	Message    string
	Cause      error
}

func (e *GatewayError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s gateway error (status %d): %s", e.Provider, e.StatusCode, e.Message)
	}
	if e.Cause != nil {
		return fmt.Sprintf("%s gateway error: %s: %v", e.Provider, e.Message, e.Cause)
	}
	return fmt.Sprintf("%s gateway error: %s", e.Provider, e.Message)
}

func (e *GatewayError) Unwrap() error {
	return e.Cause
}
