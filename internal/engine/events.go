package engine

import "time"

// EventType represents the type of engine event.
type EventType string

const (
	// EventTaskQueued indicates a task passed admission and was enqueued.
	EventTaskQueued EventType = "task_queued"
	// EventTaskRejected indicates a submission was rejected at admission.
	EventTaskRejected EventType = "task_rejected"
	// EventTaskStarted indicates a task was dispatched to an agent.
	EventTaskStarted EventType = "task_started"
	// EventTaskCompleted indicates a task completed successfully.
	EventTaskCompleted EventType = "task_completed"
	// EventTaskFailed indicates a task failed.
	EventTaskFailed EventType = "task_failed"
	// EventTaskCancelled indicates a queued task was cancelled.
	EventTaskCancelled EventType = "task_cancelled"
	// EventWorkflowCompleted indicates a workflow finished successfully.
	EventWorkflowCompleted EventType = "workflow_completed"
	// EventWorkflowFailed indicates a workflow failed at some step.
	EventWorkflowFailed EventType = "workflow_failed"
)

// Event represents an event emitted by the engine. Callers consume these
// for progress reporting and audit.
type Event struct {
	// Type is the kind of event.
	Type EventType
	// TaskID is the ID of the related task, if applicable.
	TaskID string
	// WorkflowID is the ID of the related workflow, if applicable.
	WorkflowID string
	// TenantID is the owning tenant.
	TenantID string
	// AgentID is the ID of the related agent, if applicable.
	AgentID string
	// Message provides additional context about the event.
	Message string
	// Error contains error details for failure events.
	Error error
	// Cost is the dollar cost attributed to the event, if any.
	Cost float64
	// Timestamp is when the event occurred.
	Timestamp time.Time
}
