// Package workflow executes multi-step workflows against the capability
// invoker, resolving templated inputs from prior step outputs and retrying
// failed steps with backoff.
package workflow

import (
	"strings"

	"github.com/coreflow360/agentcore/pkg/models"
)

const (
	refOpen  = "{{"
	refClose = "}}"
	// ContextSource binds a reference to the original execution context
	// instead of a prior step's output.
	ContextSource = "context"
)

// Ref is a parsed template reference. Source is either ContextSource or a
// prior step's ID; Path is the dotted key path walked inside that source.
type Ref struct {
	Source string
	Path   []string
}

// ParseRef parses a step input value as a template reference. It returns
// false when the value is not a string of the form {{source.key.subkey}}.
func ParseRef(v any) (Ref, bool) {
	s, ok := v.(string)
	if !ok {
		return Ref{}, false
	}
	if !strings.HasPrefix(s, refOpen) || !strings.HasSuffix(s, refClose) {
		return Ref{}, false
	}
	inner := strings.TrimSpace(s[len(refOpen) : len(s)-len(refClose)])
	parts := strings.Split(inner, ".")
	if len(parts) < 2 || parts[0] == "" {
		return Ref{}, false
	}
	for _, p := range parts[1:] {
		if p == "" {
			return Ref{}, false
		}
	}
	return Ref{Source: parts[0], Path: parts[1:]}, true
}

// ResolveInputs produces the concrete input map for a step. Template
// references are resolved against the execution context or prior step
// outputs; anything else passes through as a literal. An unresolved
// reference falls back to its literal template string so a single bad
// binding does not abort the workflow.
func ResolveInputs(step models.WorkflowStep, ectx models.ExecutionContext, outputs map[string]map[string]any, warnf func(format string, args ...any)) map[string]any {
	if len(step.Input) == 0 {
		return nil
	}
	resolved := make(map[string]any, len(step.Input))
	for key, raw := range step.Input {
		ref, ok := ParseRef(raw)
		if !ok {
			resolved[key] = raw
			continue
		}
		val, found := lookup(ref, ectx, outputs)
		if !found {
			if warnf != nil {
				warnf("step %s: input %q reference %v unresolved, passing literal", step.ID, key, raw)
			}
			resolved[key] = raw
			continue
		}
		resolved[key] = val
	}
	return resolved
}

func lookup(ref Ref, ectx models.ExecutionContext, outputs map[string]map[string]any) (any, bool) {
	var root map[string]any
	if ref.Source == ContextSource {
		root = ectx
	} else {
		root = outputs[ref.Source]
	}
	if root == nil {
		return nil, false
	}
	var current any = root
	for _, key := range ref.Path {
		m, ok := current.(map[string]any)
		if !ok {
			return nil, false
		}
		current, ok = m[key]
		if !ok {
			return nil, false
		}
	}
	return current, true
}
