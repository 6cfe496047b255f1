package invoker

import (
	"context"
	"sync"
)

// ScriptedResponse is one queued response for the scripted invoker.
type ScriptedResponse struct {
	// Result is returned when Err is nil.
	Result *Result
	// Err is returned instead of a result when set.
	Err error
}

// ScriptedInvoker is a test double that replays queued responses and
// records every request it receives. When the script is exhausted it
// returns the default result.
type ScriptedInvoker struct {
	mu       sync.Mutex
	script   []ScriptedResponse
	requests []Request
	// Default is returned when no scripted responses remain.
	Default Result
}

// NewScriptedInvoker creates a scripted invoker with a high-confidence
// empty default result.
func NewScriptedInvoker(script ...ScriptedResponse) *ScriptedInvoker {
	return &ScriptedInvoker{
		script:  script,
		Default: Result{Output: map[string]any{"ok": true}, Confidence: 0.99},
	}
}

// Enqueue appends responses to the script.
func (s *ScriptedInvoker) Enqueue(responses ...ScriptedResponse) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.script = append(s.script, responses...)
}

// Invoke records the request and replays the next scripted response.
func (s *ScriptedInvoker) Invoke(ctx context.Context, req Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.requests = append(s.requests, req)

	if len(s.script) == 0 {
		def := s.Default
		return &def, nil
	}

	next := s.script[0]
	s.script = s.script[1:]
	if next.Err != nil {
		return nil, next.Err
	}
	return next.Result, nil
}

// Requests returns a copy of all recorded requests.
func (s *ScriptedInvoker) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Request, len(s.requests))
	copy(out, s.requests)
	return out
}

// CallCount returns the number of invocations received.
func (s *ScriptedInvoker) CallCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
