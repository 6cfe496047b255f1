package models

import "time"

// TaskType identifies the business operation a task performs.
type TaskType string

const (
	// TaskTypeAnalyzeEntity analyzes a single business entity (customer, deal, account).
	TaskTypeAnalyzeEntity TaskType = "analyze_entity"
	// TaskTypePredictAttrition predicts customer or employee attrition risk.
	TaskTypePredictAttrition TaskType = "predict_attrition"
	// TaskTypeDetectAnomaly detects anomalies in transactional data.
	TaskTypeDetectAnomaly TaskType = "detect_anomaly"
	// TaskTypeForecastCashFlow produces a cash-flow forecast.
	TaskTypeForecastCashFlow TaskType = "forecast_cash_flow"
	// TaskTypeProcessPayroll runs a payroll computation cycle.
	TaskTypeProcessPayroll TaskType = "process_payroll"
	// TaskTypeOptimizeBOM optimizes a manufacturing bill of materials.
	TaskTypeOptimizeBOM TaskType = "optimize_bom"
	// TaskTypeAutomateProcess executes a configured process automation.
	TaskTypeAutomateProcess TaskType = "automate_process"
	// TaskTypeCrossDomainInsight synthesizes insights across business domains.
	TaskTypeCrossDomainInsight TaskType = "cross_domain_insight"
)

// Valid returns true if the task type is a known value.
func (t TaskType) Valid() bool {
	switch t {
	case TaskTypeAnalyzeEntity, TaskTypePredictAttrition, TaskTypeDetectAnomaly,
		TaskTypeForecastCashFlow, TaskTypeProcessPayroll, TaskTypeOptimizeBOM,
		TaskTypeAutomateProcess, TaskTypeCrossDomainInsight:
		return true
	default:
		return false
	}
}

// TaskStatus represents the current state of a task.
type TaskStatus string

const (
	// TaskStatusPending indicates the task has been created but not queued.
	TaskStatusPending TaskStatus = "pending"
	// TaskStatusQueued indicates the task is waiting in the scheduler queue.
	TaskStatusQueued TaskStatus = "queued"
	// TaskStatusInProgress indicates the task has been dispatched to an agent.
	TaskStatusInProgress TaskStatus = "in_progress"
	// TaskStatusCompleted indicates the task finished successfully.
	TaskStatusCompleted TaskStatus = "completed"
	// TaskStatusFailed indicates the task failed.
	TaskStatusFailed TaskStatus = "failed"
	// TaskStatusCancelled indicates the task was cancelled before dispatch.
	TaskStatusCancelled TaskStatus = "cancelled"
)

// Valid returns true if the status is a known value.
func (s TaskStatus) Valid() bool {
	switch s {
	case TaskStatusPending, TaskStatusQueued, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// Terminal returns true if no further transitions are allowed from this status.
func (s TaskStatus) Terminal() bool {
	switch s {
	case TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled:
		return true
	default:
		return false
	}
}

// CanTransitionTo reports whether moving to next is a legal, forward-only
// move in the task state machine. Tasks never re-enter pending or queued
// once they have left.
func (s TaskStatus) CanTransitionTo(next TaskStatus) bool {
	switch s {
	case TaskStatusPending:
		return next == TaskStatusQueued || next == TaskStatusCancelled
	case TaskStatusQueued:
		return next == TaskStatusInProgress || next == TaskStatusCancelled
	case TaskStatusInProgress:
		return next == TaskStatusCompleted || next == TaskStatusFailed
	default:
		return false
	}
}

// Requirements captures caller-specified execution constraints for a task.
type Requirements struct {
	// MaxExecutionTime bounds the total execution time, if positive.
	MaxExecutionTime time.Duration `json:"max_execution_time,omitempty"`
	// AccuracyThreshold is the minimum acceptable result confidence (0-1).
	AccuracyThreshold float64 `json:"accuracy_threshold,omitempty"`
	// CostBudget is the maximum spend in dollars for this task.
	CostBudget float64 `json:"cost_budget,omitempty"`
	// Explainability requests a human-readable explanation with the result.
	Explainability bool `json:"explainability,omitempty"`
	// RealTime marks the task as latency-sensitive.
	RealTime bool `json:"real_time,omitempty"`
}

// ExecutionContext carries entity references, historical data, and
// cross-domain hints alongside a task or workflow. Values are free-form
// and addressable by dotted paths from workflow step inputs.
type ExecutionContext map[string]any

// Task represents an asynchronous unit of work submitted to the engine.
type Task struct {
	// ID is the unique identifier for this task.
	ID string `json:"id"`
	// Type is the business operation this task performs.
	Type TaskType `json:"type"`
	// Priority orders tasks in the queue; lower values run first.
	Priority int `json:"priority"`
	// TenantID is the owning tenant.
	TenantID string `json:"tenant_id"`
	// RequesterID is the user who submitted the task, if known.
	RequesterID string `json:"requester_id,omitempty"`
	// Input is the operation payload.
	Input map[string]any `json:"input,omitempty"`
	// Context carries entity references and historical data.
	Context ExecutionContext `json:"context,omitempty"`
	// Requirements are caller-specified execution constraints.
	Requirements Requirements `json:"requirements"`
	// Status is the current lifecycle state.
	Status TaskStatus `json:"status"`
	// AssignedAgent is the ID of the agent the task was dispatched to.
	AssignedAgent string `json:"assigned_agent,omitempty"`
	// Result holds the structured output once completed.
	Result map[string]any `json:"result,omitempty"`
	// Error contains the failure message if the task failed.
	Error string `json:"error,omitempty"`
	// CreatedAt is when the task was submitted.
	CreatedAt time.Time `json:"created_at"`
	// UpdatedAt is when the task last changed state.
	UpdatedAt time.Time `json:"updated_at"`
}
