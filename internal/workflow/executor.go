package workflow

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/coreflow360/agentcore/internal/invoker"
	"github.com/coreflow360/agentcore/pkg/models"
)

// DefaultBaseDelay is the initial retry delay before the backoff
// multiplier is applied.
const DefaultBaseDelay = 100 * time.Millisecond

// Executor runs a workflow's steps strictly in order, binding each step's
// input from the execution context or prior step outputs.
type Executor struct {
	invoker   invoker.Invoker
	catalog   *invoker.Catalog
	model     string
	baseDelay time.Duration
	logf      func(format string, args ...any)
}

// NewExecutor builds an executor. model is the model identifier passed to
// the invoker for every capability call.
func NewExecutor(inv invoker.Invoker, catalog *invoker.Catalog, model string) *Executor {
	return &Executor{
		invoker:   inv,
		catalog:   catalog,
		model:     model,
		baseDelay: DefaultBaseDelay,
		logf:      func(string, ...any) {},
	}
}

// SetBaseDelay overrides the initial retry delay.
func (e *Executor) SetBaseDelay(d time.Duration) {
	if d > 0 {
		e.baseDelay = d
	}
}

// SetLogf routes executor warnings to the given logger.
func (e *Executor) SetLogf(logf func(format string, args ...any)) {
	if logf != nil {
		e.logf = logf
	}
}

// Execute runs every step of wf in order. A step that exhausts its retries
// without a fallback fails the workflow; later steps are not run. The
// returned result always carries the per-step records accumulated so far,
// whether or not the workflow succeeded.
func (e *Executor) Execute(ctx context.Context, wf *models.Workflow, ectx models.ExecutionContext) *models.WorkflowResult {
	started := time.Now()
	result := &models.WorkflowResult{
		WorkflowID: wf.ID,
		Output:     make(map[string]map[string]any),
	}

	for _, step := range wf.Steps {
		sr, fallbackSR, err := e.runStep(ctx, step, ectx, result.Output)
		result.Steps = append(result.Steps, sr)
		if fallbackSR != nil {
			result.Steps = append(result.Steps, *fallbackSR)
		}
		final := sr
		if fallbackSR != nil {
			final = *fallbackSR
		}
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("step %s: %v", step.ID, err))
			result.Duration = time.Since(started)
			return result
		}
		// A fallback's output stands in for the original step so later
		// references to the step ID keep resolving.
		result.Output[step.ID] = final.Output
		if cfg, cerr := e.catalog.Resolve(final.Capability); cerr == nil {
			result.TotalCost += cfg.CostPerCall
		}
	}

	result.Success = true
	result.Duration = time.Since(started)
	return result
}

// runStep executes one step with retries, then the fallback if configured.
// The returned error is nil when either the step or its fallback succeeded.
func (e *Executor) runStep(ctx context.Context, step models.WorkflowStep, ectx models.ExecutionContext, outputs map[string]map[string]any) (models.StepResult, *models.StepResult, error) {
	sr, err := e.attemptStep(ctx, step, ectx, outputs)
	if err == nil {
		return sr, nil, nil
	}
	var unknown *invoker.ErrUnknownCapability
	if errors.As(err, &unknown) {
		// Config error, not a transient condition. No fallback.
		return sr, nil, err
	}
	if step.Fallback == nil {
		return sr, nil, err
	}

	e.logf("step %s failed after %d retries, running fallback %s", step.ID, sr.Retries, step.Fallback.ID)
	fsr, ferr := e.attemptStep(ctx, *step.Fallback, ectx, outputs)
	if ferr != nil {
		return sr, &fsr, fmt.Errorf("fallback %s: %w", step.Fallback.ID, ferr)
	}
	return sr, &fsr, nil
}

// attemptStep invokes the step's capability up to 1+MaxRetries times with
// exponential backoff between attempts.
func (e *Executor) attemptStep(ctx context.Context, step models.WorkflowStep, ectx models.ExecutionContext, outputs map[string]map[string]any) (models.StepResult, error) {
	sr := models.StepResult{
		StepID:     step.ID,
		Capability: step.Capability,
		Resource:   step.Resource,
		StartedAt:  time.Now(),
	}

	cfg, err := e.catalog.Resolve(step.Capability)
	if err != nil {
		sr.CompletedAt = time.Now()
		sr.Error = err.Error()
		return sr, err
	}

	input := ResolveInputs(step, ectx, outputs, e.logf)
	req := invoker.Request{
		AgentModel: e.model,
		Capability: step.Capability,
		Input:      input,
		Auth:       cfg.Auth,
	}

	var lastErr error
	for attempt := 0; attempt <= step.Retry.MaxRetries; attempt++ {
		if attempt > 0 {
			sr.Retries++
			if err := e.backoff(ctx, step.Retry, attempt); err != nil {
				lastErr = err
				break
			}
		}

		output, reason, err := e.invokeOnce(ctx, cfg, req)
		if err == nil {
			sr.CompletedAt = time.Now()
			sr.Success = true
			sr.Output = output
			return sr, nil
		}
		lastErr = err
		sr.FailureReason = reason
		e.logf("step %s attempt %d/%d failed (%s): %v", step.ID, attempt+1, step.Retry.MaxRetries+1, reason, err)
	}

	sr.CompletedAt = time.Now()
	sr.Error = lastErr.Error()
	return sr, lastErr
}

// invokeOnce performs a single bounded invocation and applies the
// capability's accuracy gate.
func (e *Executor) invokeOnce(ctx context.Context, cfg invoker.CapabilityConfig, req invoker.Request) (map[string]any, models.FailureReason, error) {
	callCtx, cancel := context.WithTimeout(ctx, cfg.Timeout())
	defer cancel()

	res, err := e.invoker.Invoke(callCtx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || callCtx.Err() != nil {
			return nil, models.FailureTimeout, fmt.Errorf("capability %s timed out after %s: %w", cfg.Name, cfg.Timeout(), err)
		}
		return nil, models.FailureTransport, err
	}
	if res.Confidence < cfg.AccuracyThreshold {
		return nil, models.FailureLowConfidence, fmt.Errorf("capability %s: confidence %.2f below threshold %.2f", cfg.Name, res.Confidence, cfg.AccuracyThreshold)
	}
	return res.Output, "", nil
}

// backoff sleeps min(baseDelay * multiplier^attempt, policy.Timeout),
// returning early if ctx is cancelled.
func (e *Executor) backoff(ctx context.Context, policy models.RetryPolicy, attempt int) error {
	mult := policy.BackoffMultiplier
	if mult <= 0 {
		mult = 1
	}
	delay := time.Duration(float64(e.baseDelay) * math.Pow(mult, float64(attempt)))
	if policy.Timeout > 0 && delay > policy.Timeout {
		delay = policy.Timeout
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
