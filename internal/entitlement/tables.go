package entitlement

import "github.com/coreflow360/agentcore/pkg/models"

// entitlementAgents maps each business module to the agents a tenant
// unlocks by holding that module alone.
var entitlementAgents = map[models.Entitlement][]string{
	models.EntitlementRelationship:  {"crm-analyzer", "churn-predictor"},
	models.EntitlementFinance:       {"fin-forecaster", "anomaly-detector"},
	models.EntitlementOperations:    {"ops-automator"},
	models.EntitlementHR:            {"hr-payroll", "attrition-predictor"},
	models.EntitlementManufacturing: {"mfg-optimizer"},
	models.EntitlementAnalytics:     {"insight-engine"},
}

// pairKey is an order-independent entitlement pair.
type pairKey struct {
	a, b models.Entitlement
}

func makePair(a, b models.Entitlement) pairKey {
	if b < a {
		a, b = b, a
	}
	return pairKey{a: a, b: b}
}

// synergyAgents maps entitlement pairs to the agents unlocked only when
// both modules are simultaneously active.
var synergyAgents = map[pairKey][]string{
	makePair(models.EntitlementRelationship, models.EntitlementFinance):   {"revenue-synthesizer"},
	makePair(models.EntitlementFinance, models.EntitlementOperations):     {"cost-optimizer"},
	makePair(models.EntitlementHR, models.EntitlementManufacturing):       {"workforce-planner"},
	makePair(models.EntitlementRelationship, models.EntitlementAnalytics): {"experience-strategist"},
}

// allModulesThreshold is the entitlement count at which the
// all-modules agents unlock.
const allModulesThreshold = 5

// allModulesAgents are unlocked only for tenants holding at least
// allModulesThreshold entitlements.
var allModulesAgents = []string{"exec-orchestrator"}

// taskDomains maps each task type to the agent domains suited to it.
var taskDomains = map[models.TaskType][]models.DomainType{
	models.TaskTypeAnalyzeEntity:      {models.DomainRelationship},
	models.TaskTypePredictAttrition:   {models.DomainRelationship, models.DomainHR},
	models.TaskTypeDetectAnomaly:      {models.DomainFinance, models.DomainOperations},
	models.TaskTypeForecastCashFlow:   {models.DomainFinance},
	models.TaskTypeProcessPayroll:     {models.DomainHR},
	models.TaskTypeOptimizeBOM:        {models.DomainManufacturing},
	models.TaskTypeAutomateProcess:    {models.DomainOperations},
	models.TaskTypeCrossDomainInsight: {models.DomainOrchestrator},
}

// taskCaps maps each task type to the capability tag an agent must carry
// to serve it. Domain narrows by business area; the tag narrows by the
// kind of operation, so an analysis-only agent is never handed a
// prediction task that shares its domain.
var taskCaps = map[models.TaskType]models.Capability{
	models.TaskTypeAnalyzeEntity:      models.CapabilityAnalysis,
	models.TaskTypePredictAttrition:   models.CapabilityPrediction,
	models.TaskTypeDetectAnomaly:      models.CapabilityAnalysis,
	models.TaskTypeForecastCashFlow:   models.CapabilityPrediction,
	models.TaskTypeProcessPayroll:     models.CapabilityAutomation,
	models.TaskTypeOptimizeBOM:        models.CapabilityRecommendation,
	models.TaskTypeAutomateProcess:    models.CapabilityAutomation,
	models.TaskTypeCrossDomainInsight: models.CapabilityCrossDomain,
}

// DomainSuits returns true if an agent in domain d can serve task type t.
func DomainSuits(t models.TaskType, d models.DomainType) bool {
	for _, want := range taskDomains[t] {
		if want == d {
			return true
		}
	}
	return false
}

// Suits returns true if the agent's domain and capability set both match
// the task type. Eligibility filtering and dispatch use the same check.
func Suits(t models.TaskType, p *models.AgentProfile) bool {
	return DomainSuits(t, p.Domain) && p.HasCapability(taskCaps[t])
}
