package workflow

import (
	"testing"

	"github.com/coreflow360/agentcore/pkg/models"
)

func TestParseRef(t *testing.T) {
	tests := []struct {
		name   string
		value  any
		want   Ref
		wantOK bool
	}{
		{"context path", "{{context.financialData.revenue}}", Ref{Source: "context", Path: []string{"financialData", "revenue"}}, true},
		{"step path", "{{forecast.projection}}", Ref{Source: "forecast", Path: []string{"projection"}}, true},
		{"inner whitespace", "{{ context.region }}", Ref{Source: "context", Path: []string{"region"}}, true},
		{"plain string", "quarterly", Ref{}, false},
		{"missing path", "{{context}}", Ref{}, false},
		{"empty segment", "{{context..revenue}}", Ref{}, false},
		{"non-string", 42, Ref{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ParseRef(tt.value)
			if ok != tt.wantOK {
				t.Fatalf("ParseRef(%v) ok = %v, want %v", tt.value, ok, tt.wantOK)
			}
			if !ok {
				return
			}
			if got.Source != tt.want.Source {
				t.Errorf("source = %q, want %q", got.Source, tt.want.Source)
			}
			if len(got.Path) != len(tt.want.Path) {
				t.Fatalf("path = %v, want %v", got.Path, tt.want.Path)
			}
			for i := range got.Path {
				if got.Path[i] != tt.want.Path[i] {
					t.Errorf("path = %v, want %v", got.Path, tt.want.Path)
				}
			}
		})
	}
}

func TestResolveInputsFromContext(t *testing.T) {
	ectx := models.ExecutionContext{
		"financialData": map[string]any{"revenue": 100},
	}
	step := models.WorkflowStep{
		ID: "s1",
		Input: map[string]any{
			"revenue": "{{context.financialData.revenue}}",
			"period":  "quarterly",
		},
	}

	got := ResolveInputs(step, ectx, nil, nil)
	if got["revenue"] != 100 {
		t.Errorf("revenue = %v, want 100", got["revenue"])
	}
	if got["period"] != "quarterly" {
		t.Errorf("period = %v, want literal passthrough", got["period"])
	}
}

func TestResolveInputsFromPriorStep(t *testing.T) {
	outputs := map[string]map[string]any{
		"forecast": {"projection": map[string]any{"q3": 250.0}},
	}
	step := models.WorkflowStep{
		ID:    "s2",
		Input: map[string]any{"target": "{{forecast.projection.q3}}"},
	}

	got := ResolveInputs(step, nil, outputs, nil)
	if got["target"] != 250.0 {
		t.Errorf("target = %v, want 250.0", got["target"])
	}
}

func TestResolveInputsUnresolvedFallsBackToLiteral(t *testing.T) {
	var warned bool
	step := models.WorkflowStep{
		ID:    "s1",
		Input: map[string]any{"x": "{{context.missing.key}}"},
	}

	got := ResolveInputs(step, models.ExecutionContext{}, nil, func(string, ...any) { warned = true })
	if got["x"] != "{{context.missing.key}}" {
		t.Errorf("unresolved ref should pass literal, got %v", got["x"])
	}
	if !warned {
		t.Error("unresolved ref should log a warning")
	}
}
