package models

import "testing"

func TestTaskStatusValid(t *testing.T) {
	valid := []TaskStatus{
		TaskStatusPending, TaskStatusQueued, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled,
	}
	for _, s := range valid {
		if !s.Valid() {
			t.Errorf("status %q should be valid", s)
		}
	}
	if TaskStatus("running").Valid() {
		t.Error("unknown status should not be valid")
	}
}

func TestTaskStatusTerminal(t *testing.T) {
	cases := map[TaskStatus]bool{
		TaskStatusPending:    false,
		TaskStatusQueued:     false,
		TaskStatusInProgress: false,
		TaskStatusCompleted:  true,
		TaskStatusFailed:     true,
		TaskStatusCancelled:  true,
	}
	for s, want := range cases {
		if got := s.Terminal(); got != want {
			t.Errorf("Terminal(%q) = %v, want %v", s, got, want)
		}
	}
}

func TestTaskStatusTransitionsAreMonotonic(t *testing.T) {
	// No status may transition back to pending or queued.
	all := []TaskStatus{
		TaskStatusPending, TaskStatusQueued, TaskStatusInProgress,
		TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled,
	}
	for _, s := range all {
		if s != TaskStatusPending && s.CanTransitionTo(TaskStatusPending) {
			t.Errorf("%q must not re-enter pending", s)
		}
		if s != TaskStatusPending && s.CanTransitionTo(TaskStatusQueued) {
			t.Errorf("%q must not re-enter queued", s)
		}
	}
	for _, s := range []TaskStatus{TaskStatusCompleted, TaskStatusFailed, TaskStatusCancelled} {
		for _, next := range all {
			if s.CanTransitionTo(next) {
				t.Errorf("terminal status %q must not transition to %q", s, next)
			}
		}
	}
}

func TestTaskStatusLifecyclePath(t *testing.T) {
	path := []TaskStatus{TaskStatusPending, TaskStatusQueued, TaskStatusInProgress, TaskStatusCompleted}
	for i := 0; i < len(path)-1; i++ {
		if !path[i].CanTransitionTo(path[i+1]) {
			t.Errorf("transition %q -> %q should be allowed", path[i], path[i+1])
		}
	}
	if !TaskStatusInProgress.CanTransitionTo(TaskStatusFailed) {
		t.Error("in_progress -> failed should be allowed")
	}
	if !TaskStatusQueued.CanTransitionTo(TaskStatusCancelled) {
		t.Error("queued -> cancelled should be allowed")
	}
	if TaskStatusInProgress.CanTransitionTo(TaskStatusCancelled) {
		t.Error("in_progress tasks are not preemptible")
	}
}

func TestTaskTypeValid(t *testing.T) {
	if !TaskTypePredictAttrition.Valid() {
		t.Error("predict_attrition should be valid")
	}
	if TaskType("make_coffee").Valid() {
		t.Error("unknown task type should not be valid")
	}
}
