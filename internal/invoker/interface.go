// Package invoker provides capability invocation for agents.
// The engine treats invocation as opaque: a request goes in, a structured
// result with a confidence figure comes out.
package invoker

import "context"

// Request describes one capability invocation.
type Request struct {
	// AgentModel is the underlying model identifier of the invoking agent.
	AgentModel string
	// Capability names the operation to perform.
	Capability string
	// Input is the operation payload.
	Input map[string]any
	// Auth is the resolved authentication configuration for the capability.
	Auth AuthConfig
}

// Result is the structured outcome of a successful invocation.
type Result struct {
	// Output is the structured result payload.
	Output map[string]any
	// Confidence is the invoker-reported confidence in the result (0-1).
	Confidence float64
}

// Invoker executes capability invocations.
// Implementations must honor ctx cancellation and deadlines.
type Invoker interface {
	// Invoke performs one capability invocation.
	Invoke(ctx context.Context, req Request) (*Result, error)
}

// Compile-time verification of the Invoker implementations.
var (
	_ Invoker = (*AnthropicInvoker)(nil)
	_ Invoker = (*ScriptedInvoker)(nil)
)
