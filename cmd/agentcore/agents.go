package main

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coreflow360/agentcore/internal/entitlement"
	"github.com/coreflow360/agentcore/internal/invoker"
	"github.com/coreflow360/agentcore/internal/registry"
	"github.com/coreflow360/agentcore/pkg/models"
)

var (
	agentsTenant        string
	agentsSubscriptions string
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List registered agents",
	Long: `List the agents in the catalog. With --tenant and --subscriptions,
show only the agents that tenant's entitlements and tier unlock.`,
	RunE: runAgents,
}

func init() {
	agentsCmd.Flags().StringVar(&agentsTenant, "tenant", "", "show the view for this tenant")
	agentsCmd.Flags().StringVar(&agentsSubscriptions, "subscriptions", "", "YAML file of tenant subscriptions")
}

func runAgents(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	caps := invoker.NewCatalog()
	for _, c := range invoker.DefaultCapabilities() {
		if err := caps.Register(c); err != nil {
			return err
		}
	}
	reg := registry.New()
	if cfg.Catalog.Path != "" {
		catalog, err := registry.LoadCatalog(cfg.Catalog.Path)
		if err != nil {
			return err
		}
		if err := catalog.Apply(reg, caps); err != nil {
			return err
		}
	} else {
		for _, p := range registry.DefaultAgents() {
			if err := reg.Register(p); err != nil {
				return err
			}
		}
	}

	profiles := reg.All()
	if agentsTenant != "" {
		if agentsSubscriptions == "" {
			return fmt.Errorf("--tenant requires --subscriptions")
		}
		subs, err := loadSubscriptions(agentsSubscriptions)
		if err != nil {
			return err
		}
		var sub *models.Subscription
		for _, s := range subs {
			if s.TenantID == agentsTenant {
				sub = s
				break
			}
		}
		if sub == nil {
			return fmt.Errorf("tenant %s not in %s", agentsTenant, agentsSubscriptions)
		}
		profiles = entitlement.NewFilter(reg).AvailableAgents(sub)
		fmt.Printf("agents available to %s (%s tier):\n", sub.TenantID, sub.Tier)
	}

	for _, p := range profiles {
		line := fmt.Sprintf("%-22s %-26s slots=%d", p.ID, p.Domain, p.MaxConcurrentTasks)
		if p.MinTier != "" {
			color.Cyan("%s  min-tier=%s", line, p.MinTier)
		} else {
			fmt.Println(line)
		}
	}
	fmt.Printf("%d agent(s)\n", len(profiles))
	return nil
}
