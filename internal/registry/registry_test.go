package registry

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/coreflow360/agentcore/internal/invoker"
	"github.com/coreflow360/agentcore/pkg/models"
)

func sampleProfile(id string, domain models.DomainType) models.AgentProfile {
	return models.AgentProfile{
		ID:                 id,
		Name:               id,
		Domain:             domain,
		Capabilities:       []models.Capability{models.CapabilityAnalysis},
		Model:              "claude-sonnet-4-20250514",
		MaxConcurrentTasks: 2,
	}
}

func TestRegisterAndGet(t *testing.T) {
	reg := New()
	p := sampleProfile("crm-analyzer", models.DomainRelationship)
	if err := reg.Register(p); err != nil {
		t.Fatalf("register: %v", err)
	}

	got, err := reg.Get("crm-analyzer")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Domain != models.DomainRelationship {
		t.Errorf("unexpected domain %q", got.Domain)
	}
}

func TestGetUnknownAgent(t *testing.T) {
	reg := New()
	_, err := reg.Get("ghost")
	if err == nil {
		t.Fatal("expected error for unknown agent")
	}
	if _, ok := err.(*ErrAgentNotFound); !ok {
		t.Errorf("expected *ErrAgentNotFound, got %T", err)
	}
}

func TestRegisterIsIdempotent(t *testing.T) {
	reg := New()
	p := sampleProfile("fin-forecaster", models.DomainFinance)
	if err := reg.Register(p); err != nil {
		t.Fatal(err)
	}
	p.MaxConcurrentTasks = 5
	if err := reg.Register(p); err != nil {
		t.Fatal(err)
	}

	got, _ := reg.Get("fin-forecaster")
	if got.MaxConcurrentTasks != 5 {
		t.Error("last write should win")
	}
	if reg.Count() != 1 {
		t.Errorf("expected 1 agent, got %d", reg.Count())
	}
}

func TestRegisterRejectsInvalidProfiles(t *testing.T) {
	reg := New()

	p := sampleProfile("", models.DomainFinance)
	if err := reg.Register(p); err == nil {
		t.Error("expected error for empty id")
	}

	p = sampleProfile("a", "astrology")
	if err := reg.Register(p); err == nil {
		t.Error("expected error for unknown domain")
	}

	p = sampleProfile("b", models.DomainFinance)
	p.MaxConcurrentTasks = 0
	if err := reg.Register(p); err == nil {
		t.Error("expected error for zero concurrency")
	}

	p = sampleProfile("c", models.DomainFinance)
	p.Capabilities = []models.Capability{"clairvoyance"}
	if err := reg.Register(p); err == nil {
		t.Error("expected error for unknown capability")
	}
}

func TestListByCapability(t *testing.T) {
	reg := New()
	a := sampleProfile("ops-automator", models.DomainOperations)
	a.Capabilities = []models.Capability{models.CapabilityAutomation}
	b := sampleProfile("crm-analyzer", models.DomainRelationship)

	if err := reg.Register(a); err != nil {
		t.Fatal(err)
	}
	if err := reg.Register(b); err != nil {
		t.Fatal(err)
	}

	got := reg.ListByCapability(models.CapabilityAutomation)
	if len(got) != 1 || got[0].ID != "ops-automator" {
		t.Errorf("unexpected result: %v", got)
	}
	if n := len(reg.ListByCapability(models.CapabilityLearning)); n != 0 {
		t.Errorf("expected no learning agents, got %d", n)
	}
}

func TestReplaceRejectsBrokenSetWholesale(t *testing.T) {
	reg := New()
	if err := reg.Register(sampleProfile("keeper", models.DomainFinance)); err != nil {
		t.Fatal(err)
	}

	bad := []models.AgentProfile{
		sampleProfile("new-one", models.DomainFinance),
		sampleProfile("", models.DomainFinance),
	}
	if err := reg.Replace(bad); err == nil {
		t.Fatal("expected error replacing with invalid set")
	}

	// Previous contents must survive a failed replace.
	if _, err := reg.Get("keeper"); err != nil {
		t.Error("existing agent lost after failed replace")
	}
	if _, err := reg.Get("new-one"); err == nil {
		t.Error("partial replace must not apply")
	}
}

func TestLoadCatalog(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	catalog := `
agents:
  - id: crm-analyzer
    name: CRM Analyzer
    domain: relationship_management
    capabilities: [analysis, prediction]
    model: claude-sonnet-4-20250514
    max_concurrent_tasks: 3
    targets:
      target_latency: 500ms
      target_accuracy: 0.85
      cost_per_operation: 0.004
  - id: exec-orchestrator
    name: Executive Orchestrator
    domain: orchestrator
    capabilities: [cross_domain, decision_making]
    model: claude-opus-4-20250514
    max_concurrent_tasks: 1
    min_tier: enterprise
capabilities:
  - name: entity-analysis
    auth:
      method: none
    accuracy_threshold: 0.75
    expected_latency: 500ms
    cost_per_call: 0.004
`
	if err := os.WriteFile(path, []byte(catalog), 0644); err != nil {
		t.Fatal(err)
	}

	cat, err := LoadCatalog(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(cat.Agents) != 2 {
		t.Fatalf("expected 2 agents, got %d", len(cat.Agents))
	}
	if cat.Agents[1].MinTier != models.TierEnterprise {
		t.Errorf("min_tier not parsed: %q", cat.Agents[1].MinTier)
	}
	if cat.Agents[0].Targets.TargetLatency != 500*time.Millisecond {
		t.Errorf("target_latency not parsed: %v", cat.Agents[0].Targets.TargetLatency)
	}

	reg := New()
	caps := invoker.NewCatalog()
	if err := cat.Apply(reg, caps); err != nil {
		t.Fatalf("apply: %v", err)
	}
	if reg.Count() != 2 {
		t.Errorf("expected 2 registered agents, got %d", reg.Count())
	}
	if _, err := caps.Resolve("entity-analysis"); err != nil {
		t.Errorf("capability not applied: %v", err)
	}
}

func TestLoadCatalogRejectsInvalid(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "agents.yaml")
	if err := os.WriteFile(path, []byte("agents:\n  - id: x\n    domain: astrology\n    max_concurrent_tasks: 1\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Error("expected error for unknown domain")
	}

	if err := os.WriteFile(path, []byte("agents: []\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadCatalog(path); err == nil {
		t.Error("expected error for empty catalog")
	}
}
