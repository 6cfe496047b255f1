// Package engine is the orchestration facade: admission, scheduling,
// execution, and result retrieval behind one API.
package engine

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/coreflow360/agentcore/internal/cache"
	"github.com/coreflow360/agentcore/internal/config"
	"github.com/coreflow360/agentcore/internal/entitlement"
	"github.com/coreflow360/agentcore/internal/invoker"
	"github.com/coreflow360/agentcore/internal/quota"
	"github.com/coreflow360/agentcore/internal/registry"
	"github.com/coreflow360/agentcore/internal/scheduler"
	"github.com/coreflow360/agentcore/internal/state"
	"github.com/coreflow360/agentcore/internal/workflow"
	"github.com/coreflow360/agentcore/pkg/models"
)

// Sentinel errors for task lookup and cancellation.
var (
	ErrTaskNotFound   = errors.New("task not found")
	ErrNotCancellable = errors.New("task is not cancellable")
)

// taskCapabilities maps each task type to the capability a dispatched agent
// invokes for it.
var taskCapabilities = map[models.TaskType]string{
	models.TaskTypeAnalyzeEntity:      "entity-analysis",
	models.TaskTypePredictAttrition:   "churn-prediction",
	models.TaskTypeDetectAnomaly:      "anomaly-detection",
	models.TaskTypeForecastCashFlow:   "cash-flow-forecast",
	models.TaskTypeProcessPayroll:     "payroll-processing",
	models.TaskTypeOptimizeBOM:        "bom-optimization",
	models.TaskTypeAutomateProcess:    "process-automation",
	models.TaskTypeCrossDomainInsight: "cross-domain-synthesis",
}

// SubmitRequest describes one task submission.
type SubmitRequest struct {
	Type         models.TaskType
	Input        map[string]any
	Context      models.ExecutionContext
	Requirements models.Requirements
	Priority     int
	TenantID     string
	RequesterID  string
}

// Deps are the engine's injectable collaborators. Store and Invoker are
// required; the rest default to production implementations.
type Deps struct {
	Store        state.Store
	Invoker      invoker.Invoker
	Registry     *registry.Registry
	Capabilities *invoker.Catalog
	Accountant   *quota.Accountant
	Logger       *DebugLogger
}

// HealthReport summarizes the engine's runtime state.
type HealthReport struct {
	// Agents is the number of registered agents.
	Agents int `json:"agents"`
	// QueueDepth is the number of queued, undispatched tasks.
	QueueDepth int `json:"queue_depth"`
	// InFlight is the number of tasks currently executing.
	InFlight int `json:"in_flight"`
	// AgentErrors counts failed executions per agent since start.
	AgentErrors map[string]int `json:"agent_errors,omitempty"`
	// Capabilities lists the registered capability names.
	Capabilities []string `json:"capabilities"`
}

// Engine is the orchestration facade.
type Engine struct {
	cfg        *config.Config
	reg        *registry.Registry
	caps       *invoker.Catalog
	inv        invoker.Invoker
	accountant *quota.Accountant
	store      state.Store
	filter     *entitlement.Filter
	queue      *scheduler.Queue
	dispatcher *scheduler.Dispatcher
	executor   *workflow.Executor
	results    *cache.Cache

	mu    sync.RWMutex
	tasks map[string]*models.Task

	events chan Event

	runMu   sync.Mutex
	cancel  context.CancelFunc
	group   *errgroup.Group
	started bool
}

// New assembles an engine from configuration and dependencies.
func New(cfg *config.Config, deps Deps) (*Engine, error) {
	if cfg == nil {
		cfg = config.Default()
	}
	if deps.Store == nil {
		return nil, fmt.Errorf("engine: store is required")
	}
	if deps.Invoker == nil {
		return nil, fmt.Errorf("engine: invoker is required")
	}

	reg := deps.Registry
	caps := deps.Capabilities
	if caps == nil {
		caps = invoker.NewCatalog()
		for _, c := range invoker.DefaultCapabilities() {
			if err := caps.Register(c); err != nil {
				return nil, fmt.Errorf("register default capability: %w", err)
			}
		}
	}
	if reg == nil {
		reg = registry.New()
		if cfg.Catalog.Path != "" {
			catalog, err := registry.LoadCatalog(cfg.Catalog.Path)
			if err != nil {
				return nil, fmt.Errorf("load agent catalog: %w", err)
			}
			if err := catalog.Apply(reg, caps); err != nil {
				return nil, fmt.Errorf("apply agent catalog: %w", err)
			}
		} else {
			for _, p := range registry.DefaultAgents() {
				if err := reg.Register(p); err != nil {
					return nil, fmt.Errorf("register default agent: %w", err)
				}
			}
		}
	}

	accountant := deps.Accountant
	if accountant == nil {
		accountant = quota.NewAccountant(deps.Store)
	}

	logger := deps.Logger
	if logger == nil {
		logger = NopLogger()
	}
	setPackageLogger(logger)

	e := &Engine{
		cfg:        cfg,
		reg:        reg,
		caps:       caps,
		inv:        deps.Invoker,
		accountant: accountant,
		store:      deps.Store,
		filter:     entitlement.NewFilter(reg),
		queue:      scheduler.NewQueue(),
		tasks:      make(map[string]*models.Task),
		events:     make(chan Event, 256),
	}

	tick := cfg.Scheduler.Tick
	if tick <= 0 {
		tick = time.Second
	}
	e.dispatcher = scheduler.NewDispatcher(e.queue, reg, e, tick)
	e.dispatcher.SetLogf(debugLog)

	e.executor = workflow.NewExecutor(deps.Invoker, caps, cfg.Anthropic.Model)
	e.executor.SetLogf(debugLog)
	if cfg.Retry.BaseDelay > 0 {
		e.executor.SetBaseDelay(cfg.Retry.BaseDelay)
	}

	cacheOpts := []cache.Option{cache.WithDurableStore(deps.Store)}
	if cfg.Cache.MaxEntries > 0 {
		cacheOpts = append(cacheOpts, cache.WithMaxEntries(cfg.Cache.MaxEntries))
	}
	if cfg.Cache.TTL > 0 {
		cacheOpts = append(cacheOpts, cache.WithTTL(cfg.Cache.TTL))
	}
	e.results = cache.New(cacheOpts...)

	return e, nil
}

// PutSubscription registers or replaces a tenant's subscription.
func (e *Engine) PutSubscription(sub *models.Subscription) {
	e.accountant.PutSubscription(sub)
}

// Start launches the dispatch loop and, when configured, the catalog
// watcher. Queued tasks persisted by a previous run are re-enqueued.
func (e *Engine) Start(ctx context.Context) error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if e.started {
		return fmt.Errorf("engine already started")
	}

	pending, err := e.store.LoadPending()
	if err != nil {
		return fmt.Errorf("load pending tasks: %w", err)
	}
	for _, task := range pending {
		if task.Status == models.TaskStatusPending {
			task.Status = models.TaskStatusQueued
		}
		e.mu.Lock()
		e.tasks[task.ID] = task
		e.mu.Unlock()
		e.queue.Enqueue(task)
	}
	if len(pending) > 0 {
		debugLog("recovered %d pending task(s) from store", len(pending))
	}

	runCtx, cancel := context.WithCancel(ctx)
	g, gctx := errgroup.WithContext(runCtx)
	g.Go(func() error { return e.dispatcher.Run(gctx) })
	if e.cfg.Catalog.Path != "" && e.cfg.Catalog.Watch {
		g.Go(func() error { return registry.Watch(gctx, e.cfg.Catalog.Path, e.reg, e.caps) })
	}

	e.cancel = cancel
	e.group = g
	e.started = true
	debugLog("engine started: %d agent(s), tick %s", e.reg.Count(), e.cfg.Scheduler.Tick)
	return nil
}

// Stop cancels the dispatch loop and waits for in-flight tasks to drain.
func (e *Engine) Stop() error {
	e.runMu.Lock()
	defer e.runMu.Unlock()
	if !e.started {
		return nil
	}
	e.cancel()
	err := e.group.Wait()
	e.started = false
	debugLog("engine stopped")
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}

// SubmitTask admits and enqueues one task. The returned error is an
// *entitlement.UpgradeRequired or *quota.LimitExceeded when admission
// rejects the submission; both name what the caller can do about it.
func (e *Engine) SubmitTask(ctx context.Context, req SubmitRequest) (string, error) {
	task, err := e.admit(req, 1)
	if err != nil {
		return "", err
	}
	if err := e.enqueue(task); err != nil {
		return "", err
	}
	return task.ID, nil
}

// SubmitTasks admits a batch for one tenant with a single quota check for
// the batch total. Either every task is queued or none are.
func (e *Engine) SubmitTasks(ctx context.Context, reqs []SubmitRequest) ([]string, error) {
	if len(reqs) == 0 {
		return nil, nil
	}
	tenantID := reqs[0].TenantID
	for _, req := range reqs[1:] {
		if req.TenantID != tenantID {
			return nil, fmt.Errorf("batch submission spans tenants %s and %s", tenantID, req.TenantID)
		}
	}

	tasks := make([]*models.Task, 0, len(reqs))
	for i, req := range reqs {
		estimate := int64(len(reqs))
		if i > 0 {
			// The batch total was already checked with the first task.
			estimate = 0
		}
		task, err := e.admit(req, estimate)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i, err)
		}
		tasks = append(tasks, task)
	}

	ids := make([]string, 0, len(tasks))
	for _, task := range tasks {
		if err := e.enqueue(task); err != nil {
			return nil, err
		}
		ids = append(ids, task.ID)
	}
	return ids, nil
}

// admit runs the admission pipeline: task-type validation, entitlement
// filtering, then quota. It builds but does not enqueue the task.
func (e *Engine) admit(req SubmitRequest, quotaEstimate int64) (*models.Task, error) {
	if !req.Type.Valid() {
		return nil, fmt.Errorf("unknown task type %q", req.Type)
	}

	sub, err := e.accountant.GetSubscription(req.TenantID)
	if err != nil {
		return nil, err
	}

	if _, err := e.filter.EligibleAgents(&sub, req.Type); err != nil {
		e.emit(Event{Type: EventTaskRejected, TenantID: req.TenantID, Message: string(req.Type), Error: err})
		debugLog("submission rejected for tenant %s: %v", req.TenantID, err)
		return nil, err
	}

	if quotaEstimate > 0 {
		if err := e.accountant.Check(req.TenantID, quotaEstimate); err != nil {
			e.emit(Event{Type: EventTaskRejected, TenantID: req.TenantID, Message: string(req.Type), Error: err})
			debugLog("submission rejected for tenant %s: %v", req.TenantID, err)
			return nil, err
		}
	}

	now := time.Now()
	return &models.Task{
		ID:           uuid.NewString(),
		Type:         req.Type,
		Priority:     req.Priority,
		TenantID:     req.TenantID,
		RequesterID:  req.RequesterID,
		Input:        req.Input,
		Context:      req.Context,
		Requirements: req.Requirements,
		Status:       models.TaskStatusQueued,
		CreatedAt:    now,
		UpdatedAt:    now,
	}, nil
}

// enqueue persists the admitted task, makes it queryable, and hands it to
// the scheduler.
func (e *Engine) enqueue(task *models.Task) error {
	if err := e.store.SaveTask(task); err != nil {
		return err
	}
	e.mu.Lock()
	e.tasks[task.ID] = task
	e.mu.Unlock()
	e.queue.Enqueue(task)
	e.dispatcher.Trigger()
	e.emit(Event{Type: EventTaskQueued, TaskID: task.ID, TenantID: task.TenantID, Message: string(task.Type)})
	return nil
}

// CancelTask cancels a queued task. Tasks already dispatched run to
// completion and return ErrNotCancellable.
func (e *Engine) CancelTask(taskID string) error {
	e.mu.Lock()
	task, ok := e.tasks[taskID]
	e.mu.Unlock()
	if !ok {
		return fmt.Errorf("cancel %s: %w", taskID, ErrTaskNotFound)
	}

	if _, removed := e.queue.Remove(taskID); !removed {
		return fmt.Errorf("cancel %s (status %s): %w", taskID, task.Status, ErrNotCancellable)
	}

	e.transition(task, models.TaskStatusCancelled, nil)
	if err := e.store.SaveTask(task); err != nil {
		return err
	}
	e.emit(Event{Type: EventTaskCancelled, TaskID: taskID, TenantID: task.TenantID})
	return nil
}

// GetTaskStatus returns the task's current state, falling back to the
// persistent store for tasks from previous runs. Returns ErrTaskNotFound
// when the ID is unknown.
func (e *Engine) GetTaskStatus(taskID string) (*models.Task, error) {
	e.mu.RLock()
	task, ok := e.tasks[taskID]
	e.mu.RUnlock()
	if ok {
		copied := *task
		return &copied, nil
	}

	task, err := e.store.GetTask(taskID)
	if err != nil {
		return nil, err
	}
	if task == nil {
		return nil, fmt.Errorf("status %s: %w", taskID, ErrTaskNotFound)
	}
	return task, nil
}

// ExecuteWorkflow runs a workflow synchronously for a tenant. Admission
// (tier gate, quota estimate over the step count) happens before any step
// executes. On success, usage is recorded and the result is cached for
// GetFlowResult.
func (e *Engine) ExecuteWorkflow(ctx context.Context, wf *models.Workflow, ectx models.ExecutionContext, tenantID string) (*models.WorkflowResult, error) {
	sub, err := e.accountant.GetSubscription(tenantID)
	if err != nil {
		return nil, err
	}
	if wf.MinTier != "" && !sub.Tier.AtLeast(wf.MinTier) {
		return nil, &entitlement.UpgradeRequired{NeededTier: wf.MinTier}
	}
	if err := e.accountant.Check(tenantID, int64(len(wf.Steps))); err != nil {
		return nil, err
	}

	debugLog("executing workflow %s for tenant %s (%d steps)", wf.ID, tenantID, len(wf.Steps))
	result := e.executor.Execute(ctx, wf, ectx)

	if result.Success {
		units := int64(0)
		for _, sr := range result.Steps {
			if sr.Success {
				units++
			}
		}
		if err := e.accountant.RecordUsage(tenantID, result.TotalCost, units); err != nil {
			debugLog("record usage for %s: %v", tenantID, err)
		}
		if payload, err := json.Marshal(result); err == nil {
			if err := e.results.Set(flowKey(tenantID, wf.ID), payload); err != nil {
				debugLog("cache workflow result %s: %v", wf.ID, err)
			}
		}
		e.emit(Event{Type: EventWorkflowCompleted, WorkflowID: wf.ID, TenantID: tenantID, Cost: result.TotalCost})
	} else {
		e.emit(Event{Type: EventWorkflowFailed, WorkflowID: wf.ID, TenantID: tenantID, Message: firstError(result)})
	}
	return result, nil
}

// GetFlowResult returns a cached workflow result, or ErrTaskNotFound-style
// nil when no result is stored for the tenant and flow.
func (e *Engine) GetFlowResult(flowID, tenantID string) (*models.WorkflowResult, error) {
	payload, ok := e.results.Get(flowKey(tenantID, flowID))
	if !ok {
		return nil, nil
	}
	var result models.WorkflowResult
	if err := json.Unmarshal(payload, &result); err != nil {
		return nil, fmt.Errorf("decode flow result %s: %w", flowID, err)
	}
	return &result, nil
}

// GetAvailableAgents returns the agents the tenant's subscription unlocks.
func (e *Engine) GetAvailableAgents(tenantID string) ([]models.AgentProfile, error) {
	sub, err := e.accountant.GetSubscription(tenantID)
	if err != nil {
		return nil, err
	}
	return e.filter.AvailableAgents(&sub), nil
}

// Events returns the engine's event stream. Events are dropped, not
// blocked on, when no consumer keeps up.
func (e *Engine) Events() <-chan Event {
	return e.events
}

// Health summarizes runtime state for liveness and introspection.
func (e *Engine) Health() HealthReport {
	return HealthReport{
		Agents:       e.reg.Count(),
		QueueDepth:   e.queue.Len(),
		InFlight:     e.dispatcher.InFlight(),
		AgentErrors:  e.dispatcher.ErrorCounts(),
		Capabilities: e.caps.Names(),
	}
}

// Run executes one dispatched task against its assigned agent. It owns the
// task's terminal state transition; a returned error additionally feeds the
// dispatcher's per-agent error counter.
func (e *Engine) Run(ctx context.Context, task *models.Task, agent models.AgentProfile) error {
	if !e.transition(task, models.TaskStatusInProgress, func(t *models.Task) {
		t.AssignedAgent = agent.ID
	}) {
		// Terminal before dispatch got to it; nothing to run.
		return nil
	}
	e.emit(Event{Type: EventTaskStarted, TaskID: task.ID, TenantID: task.TenantID, AgentID: agent.ID})
	if err := e.store.SaveTask(task); err != nil {
		debugLog("persist in_progress for %s: %v", task.ID, err)
	}

	capName, ok := taskCapabilities[task.Type]
	if !ok {
		return e.failTask(task, agent, fmt.Errorf("no capability mapped for task type %q", task.Type))
	}
	cfg, err := e.caps.Resolve(capName)
	if err != nil {
		return e.failTask(task, agent, err)
	}

	timeout := cfg.Timeout()
	if task.Requirements.MaxExecutionTime > 0 && task.Requirements.MaxExecutionTime < timeout {
		timeout = task.Requirements.MaxExecutionTime
	}
	callCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	input := task.Input
	if len(task.Context) > 0 {
		merged := make(map[string]any, len(input)+1)
		for k, v := range input {
			merged[k] = v
		}
		merged["context"] = map[string]any(task.Context)
		input = merged
	}

	res, err := e.inv.Invoke(callCtx, invoker.Request{
		AgentModel: agent.Model,
		Capability: capName,
		Input:      input,
		Auth:       cfg.Auth,
	})
	if err != nil {
		return e.failTask(task, agent, fmt.Errorf("invoke %s: %w", capName, err))
	}

	threshold := cfg.AccuracyThreshold
	if task.Requirements.AccuracyThreshold > threshold {
		threshold = task.Requirements.AccuracyThreshold
	}
	if res.Confidence < threshold {
		return e.failTask(task, agent, fmt.Errorf("capability %s: confidence %.2f below threshold %.2f", capName, res.Confidence, threshold))
	}

	e.transition(task, models.TaskStatusCompleted, func(t *models.Task) {
		t.Result = res.Output
	})
	if err := e.store.SaveTask(task); err != nil {
		debugLog("persist completion for %s: %v", task.ID, err)
	}
	if err := e.accountant.RecordUsage(task.TenantID, cfg.CostPerCall, 1); err != nil {
		debugLog("record usage for %s: %v", task.TenantID, err)
	}
	e.emit(Event{Type: EventTaskCompleted, TaskID: task.ID, TenantID: task.TenantID, AgentID: agent.ID, Cost: cfg.CostPerCall})
	return nil
}

// transition moves the task to next under the task lock, refusing moves
// the state machine forbids. mutate, when non-nil, applies dependent
// field updates under the same lock.
func (e *Engine) transition(task *models.Task, next models.TaskStatus, mutate func(*models.Task)) bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !task.Status.CanTransitionTo(next) {
		debugLog("refusing status %s -> %s for task %s", task.Status, next, task.ID)
		return false
	}
	task.Status = next
	task.UpdatedAt = time.Now()
	if mutate != nil {
		mutate(task)
	}
	return true
}

// failTask records a terminal failure. State is persisted before the error
// surfaces so status queries agree with the error path.
func (e *Engine) failTask(task *models.Task, agent models.AgentProfile, cause error) error {
	e.transition(task, models.TaskStatusFailed, func(t *models.Task) {
		t.Error = cause.Error()
	})
	if err := e.store.SaveTask(task); err != nil {
		debugLog("persist failure for %s: %v", task.ID, err)
	}
	e.emit(Event{Type: EventTaskFailed, TaskID: task.ID, TenantID: task.TenantID, AgentID: agent.ID, Error: cause})
	debugLog("task %s failed on %s: %v", task.ID, agent.ID, cause)
	return cause
}

// emit sends an event without blocking; slow consumers lose events rather
// than stalling dispatch.
func (e *Engine) emit(ev Event) {
	ev.Timestamp = time.Now()
	select {
	case e.events <- ev:
	default:
		debugLog("event channel full, dropping %s", ev.Type)
	}
}

func flowKey(tenantID, flowID string) string {
	return tenantID + "/" + flowID
}

func firstError(r *models.WorkflowResult) string {
	if len(r.Errors) > 0 {
		return r.Errors[0]
	}
	return ""
}

// Compile-time verification that the engine is a scheduler TaskRunner.
var _ scheduler.TaskRunner = (*Engine)(nil)
