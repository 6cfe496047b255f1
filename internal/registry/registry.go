// Package registry manages the catalog of agent profiles.
// It provides thread-safe registration and lookup; no invocation logic
// lives here.
package registry

import (
	"fmt"
	"sort"
	"sync"

	"github.com/coreflow360/agentcore/pkg/models"
)

// ErrAgentNotFound is returned when an agent ID is not registered.
type ErrAgentNotFound struct {
	ID string
}

func (e *ErrAgentNotFound) Error() string {
	return fmt.Sprintf("agent %q not found", e.ID)
}

// Registry is the in-memory catalog of agent profiles.
// Profiles are immutable once stored; re-registering an ID replaces the
// profile wholesale (last write wins).
type Registry struct {
	// profiles maps agent IDs to their profiles.
	profiles map[string]models.AgentProfile
	// mu protects profiles.
	mu sync.RWMutex
}

// New creates an empty Registry.
func New() *Registry {
	return &Registry{profiles: make(map[string]models.AgentProfile)}
}

// Register validates and stores an agent profile.
// Registration is idempotent by ID.
func (r *Registry) Register(p models.AgentProfile) error {
	if err := validateProfile(&p); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles[p.ID] = p
	return nil
}

// Get retrieves a profile by ID.
func (r *Registry) Get(id string) (models.AgentProfile, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.profiles[id]
	if !ok {
		return models.AgentProfile{}, &ErrAgentNotFound{ID: id}
	}
	return p, nil
}

// ListByCapability returns all profiles carrying the given capability tag,
// sorted by ID for deterministic iteration.
func (r *Registry) ListByCapability(c models.Capability) []models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.AgentProfile
	for _, p := range r.profiles {
		if p.HasCapability(c) {
			out = append(out, p)
		}
	}
	sortProfiles(out)
	return out
}

// ListByDomain returns all profiles in the given domain, sorted by ID.
func (r *Registry) ListByDomain(d models.DomainType) []models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []models.AgentProfile
	for _, p := range r.profiles {
		if p.Domain == d {
			out = append(out, p)
		}
	}
	sortProfiles(out)
	return out
}

// All returns every registered profile, sorted by ID.
func (r *Registry) All() []models.AgentProfile {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]models.AgentProfile, 0, len(r.profiles))
	for _, p := range r.profiles {
		out = append(out, p)
	}
	sortProfiles(out)
	return out
}

// Count returns the number of registered agents.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.profiles)
}

// Replace swaps the entire catalog for the given profiles.
// Used by the catalog watcher on reload; each profile is validated first
// so a broken catalog file never replaces a working registry.
func (r *Registry) Replace(profiles []models.AgentProfile) error {
	next := make(map[string]models.AgentProfile, len(profiles))
	for i := range profiles {
		if err := validateProfile(&profiles[i]); err != nil {
			return err
		}
		next[profiles[i].ID] = profiles[i]
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	r.profiles = next
	return nil
}

func validateProfile(p *models.AgentProfile) error {
	if p.ID == "" {
		return fmt.Errorf("agent profile: id is required")
	}
	if !p.Domain.Valid() {
		return fmt.Errorf("agent %s: unknown domain %q", p.ID, p.Domain)
	}
	if p.MaxConcurrentTasks <= 0 {
		return fmt.Errorf("agent %s: max_concurrent_tasks must be positive", p.ID)
	}
	if p.MinTier != "" && !p.MinTier.Valid() {
		return fmt.Errorf("agent %s: unknown min_tier %q", p.ID, p.MinTier)
	}
	for _, c := range p.Capabilities {
		if !c.Valid() {
			return fmt.Errorf("agent %s: unknown capability %q", p.ID, c)
		}
	}
	return nil
}

func sortProfiles(ps []models.AgentProfile) {
	sort.Slice(ps, func(i, j int) bool { return ps[i].ID < ps[j].ID })
}
