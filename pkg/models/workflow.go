package models

import "time"

// RetryPolicy controls how a failed workflow step is retried.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the initial attempt.
	MaxRetries int `json:"max_retries" yaml:"max_retries"`
	// BackoffMultiplier scales the delay between successive retries.
	BackoffMultiplier float64 `json:"backoff_multiplier" yaml:"backoff_multiplier"`
	// Timeout caps the delay before any single retry.
	Timeout time.Duration `json:"timeout" yaml:"timeout"`
}

// WorkflowStep is one step in a workflow's ordered step list.
type WorkflowStep struct {
	// ID uniquely identifies the step within its workflow.
	ID string `json:"id" yaml:"id"`
	// Name is a human-readable label.
	Name string `json:"name" yaml:"name"`
	// Capability names the capability this step invokes.
	Capability string `json:"capability" yaml:"capability"`
	// Resource names the external resource or target the step operates on.
	Resource string `json:"resource,omitempty" yaml:"resource,omitempty"`
	// Input maps parameter names to literal values or reference expressions
	// of the form {{source.path}} where source is "context" or a prior
	// step's ID.
	Input map[string]any `json:"input,omitempty" yaml:"input,omitempty"`
	// ExpectedOutput describes the anticipated output shape. Advisory only.
	ExpectedOutput map[string]any `json:"expected_output,omitempty" yaml:"expected_output,omitempty"`
	// DependsOn lists predecessor step IDs. Used for input binding only;
	// steps always execute in list order.
	DependsOn []string `json:"depends_on,omitempty" yaml:"depends_on,omitempty"`
	// Retry is the retry policy applied on failure.
	Retry RetryPolicy `json:"retry" yaml:"retry"`
	// Fallback, if set, runs in place of the step after retries are exhausted.
	Fallback *WorkflowStep `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// TriggerType distinguishes how a workflow is started.
type TriggerType string

const (
	// TriggerOnDemand starts a workflow from an explicit caller request.
	TriggerOnDemand TriggerType = "on_demand"
	// TriggerSchedule starts a workflow on a schedule.
	TriggerSchedule TriggerType = "schedule"
)

// Trigger defines how a workflow is started.
type Trigger struct {
	// Type is the trigger kind.
	Type TriggerType `json:"type" yaml:"type"`
	// Schedule is a cron expression, set when Type is TriggerSchedule.
	Schedule string `json:"schedule,omitempty" yaml:"schedule,omitempty"`
}

// Workflow is an ordered sequence of steps executed as one logical unit.
type Workflow struct {
	// ID is the unique identifier for this workflow.
	ID string `json:"id" yaml:"id"`
	// Name is a human-readable label.
	Name string `json:"name" yaml:"name"`
	// Steps are executed strictly in order.
	Steps []WorkflowStep `json:"steps" yaml:"steps"`
	// Trigger defines how the workflow starts.
	Trigger Trigger `json:"trigger" yaml:"trigger"`
	// MinTier is the minimum subscription tier required to run this workflow.
	MinTier Tier `json:"min_tier,omitempty" yaml:"min_tier,omitempty"`
	// RequiredCapabilities lists capability names the workflow depends on.
	RequiredCapabilities []string `json:"required_capabilities,omitempty" yaml:"required_capabilities,omitempty"`
	// RequiredResources lists external resources the workflow depends on.
	RequiredResources []string `json:"required_resources,omitempty" yaml:"required_resources,omitempty"`
	// EstimatedDuration is the expected end-to-end runtime.
	EstimatedDuration time.Duration `json:"estimated_duration,omitempty" yaml:"estimated_duration,omitempty"`
	// EstimatedCost is the expected dollar cost of one run.
	EstimatedCost float64 `json:"estimated_cost,omitempty" yaml:"estimated_cost,omitempty"`
	// SuccessRate is the historical success rate (0-1), if known.
	SuccessRate float64 `json:"success_rate,omitempty" yaml:"success_rate,omitempty"`
}

// FailureReason classifies why a step attempt failed.
type FailureReason string

const (
	// FailureTransport is a transport-level invocation error.
	FailureTransport FailureReason = "transport"
	// FailureTimeout is an invocation that exceeded its deadline.
	FailureTimeout FailureReason = "timeout"
	// FailureLowConfidence is a result below the capability's accuracy threshold.
	FailureLowConfidence FailureReason = "low_confidence"
)

// StepResult records the outcome of one executed workflow step.
type StepResult struct {
	// StepID is the ID of the executed step.
	StepID string `json:"step_id"`
	// Capability is the capability that was invoked.
	Capability string `json:"capability"`
	// Resource is the resource the step operated on.
	Resource string `json:"resource,omitempty"`
	// StartedAt is when execution of the step began.
	StartedAt time.Time `json:"started_at"`
	// CompletedAt is when execution of the step finished.
	CompletedAt time.Time `json:"completed_at"`
	// Success indicates whether the step ultimately succeeded.
	Success bool `json:"success"`
	// Output is the step's structured output on success.
	Output map[string]any `json:"output,omitempty"`
	// Error is the final failure message if the step failed.
	Error string `json:"error,omitempty"`
	// FailureReason classifies the final failure, if any.
	FailureReason FailureReason `json:"failure_reason,omitempty"`
	// Retries is the number of retries actually consumed.
	Retries int `json:"retries"`
}

// WorkflowResult is the aggregate outcome of a workflow execution.
type WorkflowResult struct {
	// Success indicates whether every step completed.
	Success bool `json:"success"`
	// WorkflowID is the executed workflow's ID.
	WorkflowID string `json:"workflow_id"`
	// Duration is the total wall-clock execution time.
	Duration time.Duration `json:"duration"`
	// Steps are the per-step results in execution order, including
	// failed attempts and fallback executions.
	Steps []StepResult `json:"steps"`
	// Output merges step outputs keyed by step ID.
	Output map[string]map[string]any `json:"output,omitempty"`
	// TotalCost is the summed per-call cost of successful invocations.
	TotalCost float64 `json:"total_cost"`
	// Errors lists failure messages when the workflow did not succeed.
	Errors []string `json:"errors,omitempty"`
}
