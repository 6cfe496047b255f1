package models

import "time"

// Tier represents an ordered subscription level.
type Tier string

const (
	// TierStarter is the entry-level subscription.
	TierStarter Tier = "starter"
	// TierProfessional unlocks mid-level agents and workflows.
	TierProfessional Tier = "professional"
	// TierEnterprise unlocks enterprise-gated agents.
	TierEnterprise Tier = "enterprise"
	// TierUltimate unlocks everything.
	TierUltimate Tier = "ultimate"
)

// Valid returns true if the tier is a known value.
func (t Tier) Valid() bool {
	switch t {
	case TierStarter, TierProfessional, TierEnterprise, TierUltimate:
		return true
	default:
		return false
	}
}

// Level returns the ordinal rank of the tier. Unknown tiers rank below
// starter so a misconfigured subscription never unlocks gated agents.
func (t Tier) Level() int {
	switch t {
	case TierStarter:
		return 1
	case TierProfessional:
		return 2
	case TierEnterprise:
		return 3
	case TierUltimate:
		return 4
	default:
		return 0
	}
}

// AtLeast returns true if t ranks at or above other.
func (t Tier) AtLeast(other Tier) bool {
	return t.Level() >= other.Level()
}

// Entitlement identifies a business module a tenant has access to.
type Entitlement string

const (
	EntitlementRelationship  Entitlement = "relationship_management"
	EntitlementFinance       Entitlement = "finance"
	EntitlementOperations    Entitlement = "operations"
	EntitlementHR            Entitlement = "human_resources"
	EntitlementManufacturing Entitlement = "manufacturing"
	EntitlementAnalytics     Entitlement = "analytics"
)

// Valid returns true if the entitlement is a known value.
func (e Entitlement) Valid() bool {
	switch e {
	case EntitlementRelationship, EntitlementFinance, EntitlementOperations,
		EntitlementHR, EntitlementManufacturing, EntitlementAnalytics:
		return true
	default:
		return false
	}
}

// Usage tracks a subscription's consumption within the current period.
type Usage struct {
	// ConsumedOperations is the number of AI operations used this period.
	ConsumedOperations int64 `json:"consumed_operations" yaml:"consumed_operations"`
	// ConsumedCost is the total dollar cost accrued this period.
	ConsumedCost float64 `json:"consumed_cost" yaml:"consumed_cost"`
	// PeriodStart is when the current usage period began.
	PeriodStart time.Time `json:"period_start" yaml:"period_start"`
}

// Subscription describes a tenant's active plan.
type Subscription struct {
	// TenantID is the owning tenant.
	TenantID string `json:"tenant_id" yaml:"tenant_id"`
	// Entitlements are the active business modules.
	Entitlements []Entitlement `json:"entitlements" yaml:"entitlements"`
	// Tier is the subscription level.
	Tier Tier `json:"tier" yaml:"tier"`
	// Usage is the consumption within the current period.
	Usage Usage `json:"usage" yaml:"usage,omitempty"`
	// CustomLimit overrides the tier-default operation limit when positive.
	CustomLimit int64 `json:"custom_limit,omitempty" yaml:"custom_limit,omitempty"`
	// Addons are a-la-carte resources purchased outside the tier.
	Addons []string `json:"addons,omitempty" yaml:"addons,omitempty"`
}

// HasEntitlement returns true if the subscription includes the module.
func (s *Subscription) HasEntitlement(e Entitlement) bool {
	for _, have := range s.Entitlements {
		if have == e {
			return true
		}
	}
	return false
}

// tierOperationLimits are the default per-period operation limits by tier.
var tierOperationLimits = map[Tier]int64{
	TierStarter:      1_000,
	TierProfessional: 10_000,
	TierEnterprise:   100_000,
	TierUltimate:     1_000_000,
}

// EffectiveLimit returns the operation limit in force for this subscription:
// the custom limit if set, otherwise the tier default.
func (s *Subscription) EffectiveLimit() int64 {
	if s.CustomLimit > 0 {
		return s.CustomLimit
	}
	return tierOperationLimits[s.Tier]
}
