package models

import "time"

// DomainType identifies the business domain an agent specializes in.
type DomainType string

const (
	// DomainRelationship covers customer relationship management.
	DomainRelationship DomainType = "relationship_management"
	// DomainFinance covers financial analysis and forecasting.
	DomainFinance DomainType = "finance"
	// DomainOperations covers ERP and operational workflows.
	DomainOperations DomainType = "operations"
	// DomainHR covers human resources and payroll.
	DomainHR DomainType = "human_resources"
	// DomainManufacturing covers production and supply chain.
	DomainManufacturing DomainType = "manufacturing"
	// DomainOrchestrator coordinates agents across domains.
	DomainOrchestrator DomainType = "orchestrator"
)

// Valid returns true if the domain type is a known value.
func (d DomainType) Valid() bool {
	switch d {
	case DomainRelationship, DomainFinance, DomainOperations,
		DomainHR, DomainManufacturing, DomainOrchestrator:
		return true
	default:
		return false
	}
}

// Capability is a tag describing a class of operation an agent can perform.
type Capability string

const (
	CapabilityAnalysis       Capability = "analysis"
	CapabilityPrediction     Capability = "prediction"
	CapabilityRecommendation Capability = "recommendation"
	CapabilityAutomation     Capability = "automation"
	CapabilityDecisionMaking Capability = "decision_making"
	CapabilityCrossDomain    Capability = "cross_domain"
	CapabilityRealTime       Capability = "real_time"
	CapabilityLearning       Capability = "learning"
)

// Valid returns true if the capability is a known value.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityAnalysis, CapabilityPrediction, CapabilityRecommendation,
		CapabilityAutomation, CapabilityDecisionMaking, CapabilityCrossDomain,
		CapabilityRealTime, CapabilityLearning:
		return true
	default:
		return false
	}
}

// PerformanceTargets are the performance expectations declared for an agent.
type PerformanceTargets struct {
	// TargetLatency is the expected per-operation latency.
	TargetLatency time.Duration `json:"target_latency" yaml:"target_latency"`
	// TargetAccuracy is the expected result accuracy (0-1).
	TargetAccuracy float64 `json:"target_accuracy" yaml:"target_accuracy"`
	// CostPerOperation is the expected cost in dollars per operation.
	CostPerOperation float64 `json:"cost_per_operation" yaml:"cost_per_operation"`
	// ThroughputPerHour is the expected sustained operations per hour.
	ThroughputPerHour int `json:"throughput_per_hour" yaml:"throughput_per_hour"`
	// MaxErrorRate is the acceptable error-rate ceiling (0-1).
	MaxErrorRate float64 `json:"max_error_rate" yaml:"max_error_rate"`
}

// AgentProfile describes a registered agent. Profiles are immutable after
// registration and are looked up by ID throughout the engine.
type AgentProfile struct {
	// ID is the unique identifier for this agent.
	ID string `json:"id" yaml:"id"`
	// Name is a human-readable label.
	Name string `json:"name" yaml:"name"`
	// Domain is the business domain this agent specializes in.
	Domain DomainType `json:"domain" yaml:"domain"`
	// Capabilities are the capability tags this agent supports.
	Capabilities []Capability `json:"capabilities" yaml:"capabilities"`
	// Model is the underlying model identifier passed to the invoker.
	Model string `json:"model" yaml:"model"`
	// Targets are declared performance expectations.
	Targets PerformanceTargets `json:"targets" yaml:"targets"`
	// MaxConcurrentTasks caps how many tasks may run on this agent at once.
	MaxConcurrentTasks int `json:"max_concurrent_tasks" yaml:"max_concurrent_tasks"`
	// CostBudget is an optional spend ceiling in dollars (0 means unlimited).
	CostBudget float64 `json:"cost_budget,omitempty" yaml:"cost_budget,omitempty"`
	// MinTier gates this agent to tenants at or above the given tier.
	// Empty means available at every tier.
	MinTier Tier `json:"min_tier,omitempty" yaml:"min_tier,omitempty"`
}

// HasCapability returns true if the profile lists the given capability.
func (p *AgentProfile) HasCapability(c Capability) bool {
	for _, have := range p.Capabilities {
		if have == c {
			return true
		}
	}
	return false
}
