package registry

import (
	"time"

	"github.com/coreflow360/agentcore/pkg/models"
)

// DefaultAgents returns the built-in agent catalog used when no catalog
// file is configured. IDs here line up with the entitlement tables.
func DefaultAgents() []models.AgentProfile {
	return []models.AgentProfile{
		{
			ID: "crm-analyzer", Name: "CRM Entity Analyzer",
			Domain:             models.DomainRelationship,
			Capabilities:       []models.Capability{models.CapabilityAnalysis, models.CapabilityRecommendation},
			Model:              "claude-sonnet-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 500 * time.Millisecond, TargetAccuracy: 0.85, CostPerOperation: 0.004, ThroughputPerHour: 600, MaxErrorRate: 0.02},
			MaxConcurrentTasks: 3,
		},
		{
			ID: "churn-predictor", Name: "Churn Predictor",
			Domain:             models.DomainRelationship,
			Capabilities:       []models.Capability{models.CapabilityPrediction, models.CapabilityLearning},
			Model:              "claude-sonnet-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 800 * time.Millisecond, TargetAccuracy: 0.80, CostPerOperation: 0.006, ThroughputPerHour: 300, MaxErrorRate: 0.05},
			MaxConcurrentTasks: 2,
			MinTier:            models.TierProfessional,
		},
		{
			ID: "fin-forecaster", Name: "Financial Forecaster",
			Domain:             models.DomainFinance,
			Capabilities:       []models.Capability{models.CapabilityPrediction, models.CapabilityAnalysis},
			Model:              "claude-sonnet-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 1200 * time.Millisecond, TargetAccuracy: 0.80, CostPerOperation: 0.010, ThroughputPerHour: 200, MaxErrorRate: 0.05},
			MaxConcurrentTasks: 2,
		},
		{
			ID: "anomaly-detector", Name: "Anomaly Detector",
			Domain:             models.DomainFinance,
			Capabilities:       []models.Capability{models.CapabilityAnalysis, models.CapabilityRealTime},
			Model:              "claude-haiku-3-5-20241022",
			Targets:            models.PerformanceTargets{TargetLatency: 400 * time.Millisecond, TargetAccuracy: 0.85, CostPerOperation: 0.005, ThroughputPerHour: 900, MaxErrorRate: 0.03},
			MaxConcurrentTasks: 4,
		},
		{
			ID: "ops-automator", Name: "Operations Automator",
			Domain:             models.DomainOperations,
			Capabilities:       []models.Capability{models.CapabilityAutomation, models.CapabilityDecisionMaking},
			Model:              "claude-haiku-3-5-20241022",
			Targets:            models.PerformanceTargets{TargetLatency: time.Second, TargetAccuracy: 0.90, CostPerOperation: 0.003, ThroughputPerHour: 1200, MaxErrorRate: 0.02},
			MaxConcurrentTasks: 5,
		},
		{
			ID: "hr-payroll", Name: "HR & Payroll Processor",
			Domain:             models.DomainHR,
			Capabilities:       []models.Capability{models.CapabilityAutomation, models.CapabilityAnalysis},
			Model:              "claude-sonnet-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 1500 * time.Millisecond, TargetAccuracy: 0.95, CostPerOperation: 0.008, ThroughputPerHour: 150, MaxErrorRate: 0.01},
			MaxConcurrentTasks: 2,
		},
		{
			ID: "attrition-predictor", Name: "Workforce Attrition Predictor",
			Domain:             models.DomainHR,
			Capabilities:       []models.Capability{models.CapabilityPrediction, models.CapabilityAnalysis},
			Model:              "claude-sonnet-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 900 * time.Millisecond, TargetAccuracy: 0.80, CostPerOperation: 0.006, ThroughputPerHour: 250, MaxErrorRate: 0.05},
			MaxConcurrentTasks: 2,
		},
		{
			ID: "mfg-optimizer", Name: "Manufacturing Optimizer",
			Domain:             models.DomainManufacturing,
			Capabilities:       []models.Capability{models.CapabilityRecommendation, models.CapabilityAnalysis},
			Model:              "claude-sonnet-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 2 * time.Second, TargetAccuracy: 0.85, CostPerOperation: 0.012, ThroughputPerHour: 100, MaxErrorRate: 0.05},
			MaxConcurrentTasks: 2,
		},
		{
			ID: "insight-engine", Name: "Analytics Insight Engine",
			Domain:             models.DomainOrchestrator,
			Capabilities:       []models.Capability{models.CapabilityCrossDomain, models.CapabilityAnalysis},
			Model:              "claude-sonnet-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 3 * time.Second, TargetAccuracy: 0.75, CostPerOperation: 0.020, ThroughputPerHour: 60, MaxErrorRate: 0.08},
			MaxConcurrentTasks: 2,
			MinTier:            models.TierProfessional,
		},
		{
			ID: "revenue-synthesizer", Name: "Revenue Synthesizer",
			Domain:             models.DomainFinance,
			Capabilities:       []models.Capability{models.CapabilityCrossDomain, models.CapabilityPrediction},
			Model:              "claude-sonnet-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 2 * time.Second, TargetAccuracy: 0.80, CostPerOperation: 0.015, ThroughputPerHour: 80, MaxErrorRate: 0.05},
			MaxConcurrentTasks: 2,
		},
		{
			ID: "cost-optimizer", Name: "Cost Optimizer",
			Domain:             models.DomainOperations,
			Capabilities:       []models.Capability{models.CapabilityCrossDomain, models.CapabilityRecommendation},
			Model:              "claude-sonnet-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 2 * time.Second, TargetAccuracy: 0.85, CostPerOperation: 0.012, ThroughputPerHour: 90, MaxErrorRate: 0.04},
			MaxConcurrentTasks: 2,
		},
		{
			ID: "workforce-planner", Name: "Workforce Planner",
			Domain:             models.DomainHR,
			Capabilities:       []models.Capability{models.CapabilityCrossDomain, models.CapabilityPrediction},
			Model:              "claude-sonnet-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 2500 * time.Millisecond, TargetAccuracy: 0.80, CostPerOperation: 0.014, ThroughputPerHour: 70, MaxErrorRate: 0.05},
			MaxConcurrentTasks: 1,
		},
		{
			ID: "experience-strategist", Name: "Customer Experience Strategist",
			Domain:             models.DomainRelationship,
			Capabilities:       []models.Capability{models.CapabilityCrossDomain, models.CapabilityDecisionMaking},
			Model:              "claude-opus-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 3 * time.Second, TargetAccuracy: 0.85, CostPerOperation: 0.025, ThroughputPerHour: 40, MaxErrorRate: 0.05},
			MaxConcurrentTasks: 1,
			MinTier:            models.TierProfessional,
		},
		{
			ID: "exec-orchestrator", Name: "Executive Orchestrator",
			Domain:             models.DomainOrchestrator,
			Capabilities:       []models.Capability{models.CapabilityCrossDomain, models.CapabilityDecisionMaking, models.CapabilityLearning},
			Model:              "claude-opus-4-20250514",
			Targets:            models.PerformanceTargets{TargetLatency: 4 * time.Second, TargetAccuracy: 0.75, CostPerOperation: 0.030, ThroughputPerHour: 30, MaxErrorRate: 0.08},
			MaxConcurrentTasks: 1,
			MinTier:            models.TierEnterprise,
		},
	}
}
