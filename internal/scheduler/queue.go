// Package scheduler holds pending tasks and dispatches them to agents
// under priority and concurrency constraints.
package scheduler

import (
	"sort"
	"sync"

	"github.com/coreflow360/agentcore/pkg/models"
)

// Queue is the pending-task queue, ordered by ascending priority number
// and then by arrival time. The ordering is re-established on every
// mutation so concurrent submission never corrupts it.
type Queue struct {
	// items are the queued tasks in dispatch order.
	items []*models.Task
	// mu protects items.
	mu sync.Mutex
}

// NewQueue creates an empty queue.
func NewQueue() *Queue {
	return &Queue{}
}

// Enqueue inserts a task and restores queue order.
func (q *Queue) Enqueue(t *models.Task) {
	q.mu.Lock()
	defer q.mu.Unlock()
	q.items = append(q.items, t)
	q.sortLocked()
}

// sortLocked stable-sorts by priority then creation time.
// Caller must hold q.mu.
func (q *Queue) sortLocked() {
	sort.SliceStable(q.items, func(i, j int) bool {
		if q.items[i].Priority != q.items[j].Priority {
			return q.items[i].Priority < q.items[j].Priority
		}
		return q.items[i].CreatedAt.Before(q.items[j].CreatedAt)
	})
}

// Remove deletes a task by ID, returning it if present.
// Used by cancellation; a task already taken by the dispatcher is gone
// from the queue and cannot be removed.
func (q *Queue) Remove(id string) (*models.Task, bool) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, t := range q.items {
		if t.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return t, true
		}
	}
	return nil, false
}

// TakeMatching removes and returns up to max tasks matching the
// predicate, scanning from the front so priority order is respected for
// selection. Removed tasks are claimed; they will not be seen by another
// agent in the same tick.
func (q *Queue) TakeMatching(max int, match func(*models.Task) bool) []*models.Task {
	if max <= 0 {
		return nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	var taken []*models.Task
	var rest []*models.Task
	for _, t := range q.items {
		if len(taken) < max && match(t) {
			taken = append(taken, t)
			continue
		}
		rest = append(rest, t)
	}
	q.items = rest
	return taken
}

// Len returns the number of queued tasks.
func (q *Queue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

// Snapshot returns a copy of the queue contents in dispatch order.
func (q *Queue) Snapshot() []*models.Task {
	q.mu.Lock()
	defer q.mu.Unlock()
	out := make([]*models.Task, len(q.items))
	copy(out, q.items)
	return out
}
