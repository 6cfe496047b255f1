package models

import (
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestWorkflowUnmarshalYAML(t *testing.T) {
	doc := `
id: monthly-close
name: Monthly Close
min_tier: professional
estimated_duration: 5m
estimated_cost: 0.25
steps:
  - id: forecast
    name: Forecast cash flow
    capability: cash-flow-forecast
    input:
      horizon: "90d"
    retry:
      max_retries: 2
      backoff_multiplier: 2.0
      timeout: 10s
  - id: anomalies
    name: Detect anomalies
    capability: anomaly-detection
    depends_on: [forecast]
    input:
      forecast: "{{forecast.projection}}"
`
	var wf Workflow
	if err := yaml.Unmarshal([]byte(doc), &wf); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if wf.ID != "monthly-close" {
		t.Errorf("ID = %q, want monthly-close", wf.ID)
	}
	if wf.MinTier != TierProfessional {
		t.Errorf("MinTier = %q, want %q", wf.MinTier, TierProfessional)
	}
	if wf.EstimatedDuration != 5*time.Minute {
		t.Errorf("EstimatedDuration = %v, want 5m", wf.EstimatedDuration)
	}
	if len(wf.Steps) != 2 {
		t.Fatalf("len(Steps) = %d, want 2", len(wf.Steps))
	}
	if got := wf.Steps[0].Retry.Timeout; got != 10*time.Second {
		t.Errorf("Steps[0].Retry.Timeout = %v, want 10s", got)
	}
	if got := wf.Steps[1].Input["forecast"]; got != "{{forecast.projection}}" {
		t.Errorf("Steps[1].Input[forecast] = %v", got)
	}
}

func TestWorkflowUnmarshalYAMLBadDuration(t *testing.T) {
	doc := "id: w1\nestimated_duration: soon\n"
	var wf Workflow
	if err := yaml.Unmarshal([]byte(doc), &wf); err == nil {
		t.Fatal("expected error for malformed duration")
	}
}

func TestPerformanceTargetsUnmarshalYAML(t *testing.T) {
	doc := `
target_latency: 500ms
target_accuracy: 0.9
cost_per_operation: 0.004
`
	var p PerformanceTargets
	if err := yaml.Unmarshal([]byte(doc), &p); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if p.TargetLatency != 500*time.Millisecond {
		t.Errorf("TargetLatency = %v, want 500ms", p.TargetLatency)
	}
	if p.TargetAccuracy != 0.9 {
		t.Errorf("TargetAccuracy = %v, want 0.9", p.TargetAccuracy)
	}
}
