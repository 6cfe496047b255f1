package scheduler

import (
	"context"
	"sync"
	"time"

	"github.com/coreflow360/agentcore/internal/entitlement"
	"github.com/coreflow360/agentcore/internal/registry"
	"github.com/coreflow360/agentcore/pkg/models"
)

// TaskRunner executes one dispatched task on an agent.
// Implementations own the task's status transitions, from in_progress
// through its terminal state; the returned error feeds the agent's
// error counter.
type TaskRunner interface {
	Run(ctx context.Context, task *models.Task, agent models.AgentProfile) error
}

// Dispatcher drains the queue onto agents on a fixed tick.
// It preserves one hard invariant: an agent's active-task count never
// exceeds its MaxConcurrentTasks.
type Dispatcher struct {
	// queue is the pending-task queue.
	queue *Queue
	// reg is the agent catalog.
	reg *registry.Registry
	// runner executes dispatched tasks.
	runner TaskRunner
	// tick is the scheduling interval.
	tick time.Duration
	// active maps agent IDs to their current in-flight task count.
	active map[string]int
	// errCounts maps agent IDs to their cumulative failed-task count.
	errCounts map[string]int
	// trigger wakes the loop early, e.g. after a submission.
	trigger chan struct{}
	// wg tracks in-flight task goroutines for drain on shutdown.
	wg sync.WaitGroup
	// dispatchMu serializes dispatch rounds.
	dispatchMu sync.Mutex
	// mu protects active and errCounts.
	mu sync.Mutex
	// logf is the debug log hook.
	logf func(format string, args ...any)
}

// NewDispatcher creates a dispatcher over the given queue and registry.
func NewDispatcher(queue *Queue, reg *registry.Registry, runner TaskRunner, tick time.Duration) *Dispatcher {
	if tick <= 0 {
		tick = time.Second
	}
	return &Dispatcher{
		queue:     queue,
		reg:       reg,
		runner:    runner,
		tick:      tick,
		active:    make(map[string]int),
		errCounts: make(map[string]int),
		trigger:   make(chan struct{}, 1),
		logf:      func(string, ...any) {},
	}
}

// SetLogf installs a debug log hook.
func (d *Dispatcher) SetLogf(logf func(format string, args ...any)) {
	d.logf = logf
}

// Trigger wakes the scheduling loop without waiting for the next tick.
func (d *Dispatcher) Trigger() {
	select {
	case d.trigger <- struct{}{}:
	default:
	}
}

// Run ticks until ctx is cancelled, then waits for in-flight tasks to
// finish. The tick never blocks on task completion.
func (d *Dispatcher) Run(ctx context.Context) error {
	ticker := time.NewTicker(d.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			d.logf("[scheduler] stopping, draining %d in-flight tasks", d.InFlight())
			d.wg.Wait()
			return ctx.Err()
		case <-ticker.C:
			d.DispatchOnce(ctx)
		case <-d.trigger:
			d.DispatchOnce(ctx)
		}
	}
}

// DispatchOnce runs a single scheduling round: for every agent with free
// capacity, claim up to that many suitable tasks from the front of the
// queue and start them asynchronously. Returns the number dispatched.
func (d *Dispatcher) DispatchOnce(ctx context.Context) int {
	if ctx.Err() != nil {
		return 0
	}

	d.dispatchMu.Lock()
	defer d.dispatchMu.Unlock()

	dispatched := 0
	for _, agent := range d.reg.All() {
		capacity := agent.MaxConcurrentTasks - d.ActiveCount(agent.ID)
		if capacity <= 0 {
			continue
		}

		tasks := d.queue.TakeMatching(capacity, func(t *models.Task) bool {
			return entitlement.Suits(t.Type, &agent)
		})
		for _, task := range tasks {
			d.start(ctx, task, agent)
			dispatched++
		}
	}
	if dispatched > 0 {
		d.logf("[scheduler] dispatched %d task(s), queue depth %d", dispatched, d.queue.Len())
	}
	return dispatched
}

// start claims an agent slot and runs the task in its own goroutine.
// The dispatch loop does not await completion. Execution is detached
// from the dispatch context: cancelling the loop stops new dispatches
// while claimed tasks run to completion.
func (d *Dispatcher) start(ctx context.Context, task *models.Task, agent models.AgentProfile) {
	d.mu.Lock()
	d.active[agent.ID]++
	d.mu.Unlock()

	d.logf("[scheduler] task %s -> agent %s (priority %d)", task.ID, agent.ID, task.Priority)

	runCtx := context.WithoutCancel(ctx)
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		err := d.runner.Run(runCtx, task, agent)
		d.onComplete(agent.ID, err)
	}()
}

// onComplete releases the agent slot and tracks failures.
func (d *Dispatcher) onComplete(agentID string, err error) {
	d.mu.Lock()
	d.active[agentID]--
	if err != nil {
		d.errCounts[agentID]++
	}
	d.mu.Unlock()

	if err != nil {
		d.logf("[scheduler] agent %s task failed: %v", agentID, err)
	}
	// A freed slot may let a queued task through before the next tick.
	d.Trigger()
}

// ActiveCount returns an agent's current in-flight task count.
func (d *Dispatcher) ActiveCount(agentID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.active[agentID]
}

// ErrorCount returns an agent's cumulative failed-task count.
func (d *Dispatcher) ErrorCount(agentID string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.errCounts[agentID]
}

// ErrorCounts returns a copy of all agent error counters.
func (d *Dispatcher) ErrorCounts() map[string]int {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make(map[string]int, len(d.errCounts))
	for id, n := range d.errCounts {
		out[id] = n
	}
	return out
}

// InFlight returns the total number of in-flight tasks across agents.
func (d *Dispatcher) InFlight() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	total := 0
	for _, n := range d.active {
		total += n
	}
	return total
}

// Wait blocks until all in-flight task goroutines have finished.
func (d *Dispatcher) Wait() {
	d.wg.Wait()
}
