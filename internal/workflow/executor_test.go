package workflow

import (
	"context"
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/coreflow360/agentcore/internal/invoker"
	"github.com/coreflow360/agentcore/pkg/models"
)

func testCatalog(t *testing.T) *invoker.Catalog {
	t.Helper()
	c := invoker.NewCatalog()
	configs := []invoker.CapabilityConfig{
		{
			Name:              "cash-flow-forecast",
			Auth:              invoker.AuthConfig{Method: invoker.AuthNone},
			AccuracyThreshold: 0.75,
			ExpectedLatency:   100 * time.Millisecond,
			CostPerCall:       0.05,
		},
		{
			Name:              "anomaly-detection",
			Auth:              invoker.AuthConfig{Method: invoker.AuthNone},
			AccuracyThreshold: 0.70,
			ExpectedLatency:   100 * time.Millisecond,
			CostPerCall:       0.02,
		},
	}
	for _, cfg := range configs {
		if err := c.Register(cfg); err != nil {
			t.Fatal(err)
		}
	}
	return c
}

func newTestExecutor(t *testing.T, inv invoker.Invoker) *Executor {
	t.Helper()
	e := NewExecutor(inv, testCatalog(t), "claude-sonnet-4-20250514")
	e.SetBaseDelay(time.Millisecond)
	return e
}

func forecastStep(retry models.RetryPolicy) models.WorkflowStep {
	return models.WorkflowStep{
		ID:         "forecast",
		Name:       "Cash flow forecast",
		Capability: "cash-flow-forecast",
		Input:      map[string]any{"horizon": "90d"},
		Retry:      retry,
	}
}

func TestExecuteSingleStepSuccess(t *testing.T) {
	inv := invoker.NewScriptedInvoker(invoker.ScriptedResponse{
		Result: &invoker.Result{Output: map[string]any{"projection": 250.0}, Confidence: 0.9},
	})
	e := newTestExecutor(t, inv)

	wf := &models.Workflow{ID: "wf1", Steps: []models.WorkflowStep{forecastStep(models.RetryPolicy{})}}
	res := e.Execute(context.Background(), wf, nil)

	if !res.Success {
		t.Fatalf("workflow failed: %v", res.Errors)
	}
	if res.Output["forecast"]["projection"] != 250.0 {
		t.Errorf("output = %v", res.Output)
	}
	if res.TotalCost != 0.05 {
		t.Errorf("total cost = %v, want 0.05", res.TotalCost)
	}
	if inv.CallCount() != 1 {
		t.Errorf("call count = %d, want 1", inv.CallCount())
	}
}

func TestExecutePassesPriorStepOutputForward(t *testing.T) {
	inv := invoker.NewScriptedInvoker(
		invoker.ScriptedResponse{Result: &invoker.Result{Output: map[string]any{"projection": 250.0}, Confidence: 0.9}},
		invoker.ScriptedResponse{Result: &invoker.Result{Output: map[string]any{"anomalies": 0}, Confidence: 0.9}},
	)
	e := newTestExecutor(t, inv)

	wf := &models.Workflow{ID: "wf1", Steps: []models.WorkflowStep{
		forecastStep(models.RetryPolicy{}),
		{
			ID:         "detect",
			Capability: "anomaly-detection",
			Input:      map[string]any{"baseline": "{{forecast.projection}}"},
			DependsOn:  []string{"forecast"},
		},
	}}
	res := e.Execute(context.Background(), wf, nil)

	if !res.Success {
		t.Fatalf("workflow failed: %v", res.Errors)
	}
	reqs := inv.Requests()
	if len(reqs) != 2 {
		t.Fatalf("call count = %d, want 2", len(reqs))
	}
	if reqs[1].Input["baseline"] != 250.0 {
		t.Errorf("second step baseline = %v, want resolved 250.0", reqs[1].Input["baseline"])
	}
	if math.Abs(res.TotalCost-0.07) > 1e-9 {
		t.Errorf("total cost = %v, want 0.07", res.TotalCost)
	}
}

func TestExecuteRetriesExactlyMaxRetriesTimes(t *testing.T) {
	transport := errors.New("connection reset")
	inv := invoker.NewScriptedInvoker(
		invoker.ScriptedResponse{Err: transport},
		invoker.ScriptedResponse{Err: transport},
		invoker.ScriptedResponse{Err: transport},
		invoker.ScriptedResponse{Err: transport},
	)
	e := newTestExecutor(t, inv)

	wf := &models.Workflow{ID: "wf1", Steps: []models.WorkflowStep{
		forecastStep(models.RetryPolicy{MaxRetries: 2, BackoffMultiplier: 2, Timeout: 10 * time.Millisecond}),
	}}
	res := e.Execute(context.Background(), wf, nil)

	if res.Success {
		t.Fatal("workflow should fail when every attempt fails")
	}
	// Initial attempt plus two retries.
	if inv.CallCount() != 3 {
		t.Errorf("call count = %d, want 3", inv.CallCount())
	}
	if len(res.Steps) != 1 {
		t.Fatalf("step results = %d, want 1", len(res.Steps))
	}
	sr := res.Steps[0]
	if sr.Retries != 2 {
		t.Errorf("retries = %d, want 2", sr.Retries)
	}
	if sr.FailureReason != models.FailureTransport {
		t.Errorf("failure reason = %s, want transport", sr.FailureReason)
	}
	if res.TotalCost != 0 {
		t.Errorf("failed workflow charged %v", res.TotalCost)
	}
}

func TestExecuteRecoversViaSecondAttempt(t *testing.T) {
	inv := invoker.NewScriptedInvoker(
		invoker.ScriptedResponse{Err: errors.New("connection reset")},
		invoker.ScriptedResponse{Result: &invoker.Result{Output: map[string]any{"projection": 1.0}, Confidence: 0.9}},
	)
	e := newTestExecutor(t, inv)

	wf := &models.Workflow{ID: "wf1", Steps: []models.WorkflowStep{
		forecastStep(models.RetryPolicy{MaxRetries: 2, BackoffMultiplier: 2}),
	}}
	res := e.Execute(context.Background(), wf, nil)

	if !res.Success {
		t.Fatalf("workflow failed: %v", res.Errors)
	}
	if res.Steps[0].Retries != 1 {
		t.Errorf("retries = %d, want 1", res.Steps[0].Retries)
	}
}

func TestExecuteLowConfidenceTriggersRetry(t *testing.T) {
	inv := invoker.NewScriptedInvoker(
		// Transport success, but below cash-flow-forecast's 0.75 threshold.
		invoker.ScriptedResponse{Result: &invoker.Result{Output: map[string]any{"projection": 1.0}, Confidence: 0.4}},
		invoker.ScriptedResponse{Result: &invoker.Result{Output: map[string]any{"projection": 2.0}, Confidence: 0.9}},
	)
	e := newTestExecutor(t, inv)

	wf := &models.Workflow{ID: "wf1", Steps: []models.WorkflowStep{
		forecastStep(models.RetryPolicy{MaxRetries: 1, BackoffMultiplier: 1}),
	}}
	res := e.Execute(context.Background(), wf, nil)

	if !res.Success {
		t.Fatalf("workflow failed: %v", res.Errors)
	}
	if res.Output["forecast"]["projection"] != 2.0 {
		t.Errorf("should keep the confident result, got %v", res.Output["forecast"])
	}
	if inv.CallCount() != 2 {
		t.Errorf("call count = %d, want 2", inv.CallCount())
	}
}

func TestExecuteFallbackRunsAfterRetriesExhausted(t *testing.T) {
	inv := invoker.NewScriptedInvoker(
		invoker.ScriptedResponse{Err: errors.New("connection reset")},
		invoker.ScriptedResponse{Err: errors.New("connection reset")},
		invoker.ScriptedResponse{Result: &invoker.Result{Output: map[string]any{"anomalies": 3}, Confidence: 0.9}},
	)
	e := newTestExecutor(t, inv)

	step := forecastStep(models.RetryPolicy{MaxRetries: 1, BackoffMultiplier: 1})
	step.Fallback = &models.WorkflowStep{
		ID:         "forecast-fallback",
		Capability: "anomaly-detection",
	}
	wf := &models.Workflow{ID: "wf1", Steps: []models.WorkflowStep{step}}
	res := e.Execute(context.Background(), wf, nil)

	if !res.Success {
		t.Fatalf("workflow failed: %v", res.Errors)
	}
	// Output lands under the original step ID so later bindings resolve.
	if res.Output["forecast"]["anomalies"] != 3 {
		t.Errorf("fallback output = %v", res.Output["forecast"])
	}
	if len(res.Steps) != 2 {
		t.Fatalf("step results = %d, want failed step plus fallback", len(res.Steps))
	}
	if res.Steps[0].Success || !res.Steps[1].Success {
		t.Errorf("step successes = %v/%v, want false/true", res.Steps[0].Success, res.Steps[1].Success)
	}
	// Fallback's capability is what was actually charged.
	if res.TotalCost != 0.02 {
		t.Errorf("total cost = %v, want 0.02", res.TotalCost)
	}
}

func TestExecuteUnknownCapabilityAbortsWithoutRetry(t *testing.T) {
	inv := invoker.NewScriptedInvoker()
	e := newTestExecutor(t, inv)

	wf := &models.Workflow{ID: "wf1", Steps: []models.WorkflowStep{
		{
			ID:         "bogus",
			Capability: "no-such-capability",
			Retry:      models.RetryPolicy{MaxRetries: 5, BackoffMultiplier: 2},
			Fallback:   &models.WorkflowStep{ID: "fb", Capability: "anomaly-detection"},
		},
	}}
	res := e.Execute(context.Background(), wf, nil)

	if res.Success {
		t.Fatal("unknown capability should fail the workflow")
	}
	if inv.CallCount() != 0 {
		t.Errorf("invoker called %d times for a config error", inv.CallCount())
	}
	if len(res.Errors) == 0 || !strings.Contains(res.Errors[0], "unknown capability") {
		t.Errorf("errors = %v", res.Errors)
	}
}

func TestExecuteStopsAtFailedStep(t *testing.T) {
	inv := invoker.NewScriptedInvoker(
		invoker.ScriptedResponse{Err: errors.New("connection reset")},
	)
	e := newTestExecutor(t, inv)

	wf := &models.Workflow{ID: "wf1", Steps: []models.WorkflowStep{
		forecastStep(models.RetryPolicy{}),
		{ID: "after", Capability: "anomaly-detection"},
	}}
	res := e.Execute(context.Background(), wf, nil)

	if res.Success {
		t.Fatal("workflow should fail")
	}
	if inv.CallCount() != 1 {
		t.Errorf("later steps should not run, call count = %d", inv.CallCount())
	}
	if len(res.Steps) != 1 {
		t.Errorf("step results = %d, want 1", len(res.Steps))
	}
}
