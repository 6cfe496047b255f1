// Package entitlement computes which agents a tenant may use, based on
// its active business modules and subscription tier.
package entitlement

import (
	"fmt"
	"sort"
	"strings"

	"github.com/coreflow360/agentcore/internal/registry"
	"github.com/coreflow360/agentcore/pkg/models"
)

// UpgradeRequired is the structured outcome returned when no agent is
// available to a tenant for a requested task type. It names what would
// unlock one: missing modules, a higher tier, or both. This is a
// first-class admission result, not a generic failure.
type UpgradeRequired struct {
	// TaskType is the requested operation.
	TaskType models.TaskType
	// MissingEntitlements are modules that would unlock a suitable agent.
	MissingEntitlements []models.Entitlement
	// NeededTier is the lowest tier that would unlock a suitable agent
	// the tenant's modules already grant. Empty if no tier change helps.
	NeededTier models.Tier
}

// Error renders a user-actionable explanation.
func (u *UpgradeRequired) Error() string {
	var parts []string
	if len(u.MissingEntitlements) > 0 {
		mods := make([]string, len(u.MissingEntitlements))
		for i, e := range u.MissingEntitlements {
			mods[i] = string(e)
		}
		parts = append(parts, fmt.Sprintf("requires entitlement(s): %s", strings.Join(mods, ", ")))
	}
	if u.NeededTier != "" {
		parts = append(parts, fmt.Sprintf("requires tier %s or above", u.NeededTier))
	}
	if len(parts) == 0 {
		parts = append(parts, "no agent supports this operation")
	}
	return fmt.Sprintf("upgrade required for %s: %s", u.TaskType, strings.Join(parts, "; "))
}

// Filter computes tenant-visible agent sets from the registry and the
// static entitlement tables.
type Filter struct {
	reg *registry.Registry
}

// NewFilter creates a Filter backed by the given registry.
func NewFilter(reg *registry.Registry) *Filter {
	return &Filter{reg: reg}
}

// grantedIDs returns the agent IDs the subscription's entitlement set
// unlocks: single-module sets, pair synergy sets for two or more active
// modules, and the all-modules set at five or more.
func grantedIDs(sub *models.Subscription) map[string]bool {
	ids := make(map[string]bool)
	for _, e := range sub.Entitlements {
		for _, id := range entitlementAgents[e] {
			ids[id] = true
		}
	}
	if len(sub.Entitlements) >= 2 {
		for i := 0; i < len(sub.Entitlements); i++ {
			for j := i + 1; j < len(sub.Entitlements); j++ {
				for _, id := range synergyAgents[makePair(sub.Entitlements[i], sub.Entitlements[j])] {
					ids[id] = true
				}
			}
		}
	}
	if len(sub.Entitlements) >= allModulesThreshold {
		for _, id := range allModulesAgents {
			ids[id] = true
		}
	}
	return ids
}

// AvailableAgents returns every registered agent the subscription can use,
// after entitlement and tier gating, sorted by ID.
func (f *Filter) AvailableAgents(sub *models.Subscription) []models.AgentProfile {
	var out []models.AgentProfile
	for id := range grantedIDs(sub) {
		p, err := f.reg.Get(id)
		if err != nil {
			continue // table references an agent the catalog no longer carries
		}
		if p.MinTier != "" && !sub.Tier.AtLeast(p.MinTier) {
			continue
		}
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// EligibleAgents returns the agents the subscription can use for the given
// task type, ordered by ID. When the set is empty it returns an
// *UpgradeRequired naming the missing entitlements and/or tier.
func (f *Filter) EligibleAgents(sub *models.Subscription, taskType models.TaskType) ([]models.AgentProfile, error) {
	if !taskType.Valid() {
		return nil, fmt.Errorf("unknown task type %q", taskType)
	}

	var eligible []models.AgentProfile
	for _, p := range f.AvailableAgents(sub) {
		if Suits(taskType, &p) {
			eligible = append(eligible, p)
		}
	}
	if len(eligible) > 0 {
		return eligible, nil
	}
	return nil, f.explainEmpty(sub, taskType)
}

// explainEmpty builds the UpgradeRequired result for a tenant with no
// eligible agent: which modules would unlock a suitable agent, and the
// lowest tier that would unlock an already-granted but tier-gated one.
func (f *Filter) explainEmpty(sub *models.Subscription, taskType models.TaskType) *UpgradeRequired {
	granted := grantedIDs(sub)
	result := &UpgradeRequired{TaskType: taskType}

	missing := make(map[models.Entitlement]bool)
	for e, ids := range entitlementAgents {
		if sub.HasEntitlement(e) {
			continue
		}
		for _, id := range ids {
			if f.suits(id, taskType) {
				missing[e] = true
				break
			}
		}
	}
	// A partially-held synergy pair is unlocked by acquiring its other half.
	for pair, ids := range synergyAgents {
		held := sub.HasEntitlement(pair.a)
		other := pair.b
		if !held {
			held = sub.HasEntitlement(pair.b)
			other = pair.a
		}
		if !held || sub.HasEntitlement(other) {
			continue
		}
		for _, id := range ids {
			if f.suits(id, taskType) {
				missing[other] = true
				break
			}
		}
	}
	for e := range missing {
		result.MissingEntitlements = append(result.MissingEntitlements, e)
	}
	sort.Slice(result.MissingEntitlements, func(i, j int) bool {
		return result.MissingEntitlements[i] < result.MissingEntitlements[j]
	})

	// Tier upgrade helps when a granted agent is suitable but tier-gated.
	for id := range granted {
		p, err := f.reg.Get(id)
		if err != nil || !Suits(taskType, &p) {
			continue
		}
		if p.MinTier != "" && !sub.Tier.AtLeast(p.MinTier) {
			if result.NeededTier == "" || p.MinTier.Level() < result.NeededTier.Level() {
				result.NeededTier = p.MinTier
			}
		}
	}

	return result
}

// suits reports whether a registered agent serves the task type.
func (f *Filter) suits(agentID string, taskType models.TaskType) bool {
	p, err := f.reg.Get(agentID)
	if err != nil {
		return false
	}
	return Suits(taskType, &p)
}
