package state

import (
	"github.com/coreflow360/agentcore/internal/cache"
	"github.com/coreflow360/agentcore/internal/quota"
	"github.com/coreflow360/agentcore/pkg/models"
)

// TaskStore persists tasks and serves status queries after restarts.
type TaskStore interface {
	SaveTask(task *models.Task) error
	GetTask(id string) (*models.Task, error)
	LoadPending() ([]*models.Task, error)
}

// Store is the full persistence surface the engine depends on.
type Store interface {
	TaskStore
	cache.DurableStore
	quota.MeteringSink
	Close() error
}

// Compile-time verification that DB satisfies the persistence interfaces.
var (
	_ Store              = (*DB)(nil)
	_ cache.DurableStore = (*DB)(nil)
	_ quota.MeteringSink = (*DB)(nil)
)
