package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/coreflow360/agentcore/internal/config"
	"github.com/coreflow360/agentcore/internal/engine"
	"github.com/coreflow360/agentcore/internal/invoker"
	"github.com/coreflow360/agentcore/internal/state"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "agentcore",
	Short: "Multi-agent task orchestration engine",
	Long: `agentcore schedules AI agent tasks for multi-tenant business workloads.

It registers domain-specialized agents with bounded concurrency, admits
work against subscription entitlements and usage quotas, dispatches queued
tasks on a timer tick, and executes multi-step workflows with templated
data dependencies, retries, and fallbacks.`,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default: XDG config path)")

	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(submitCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(workflowCmd)
	rootCmd.AddCommand(versionCmd)
}

// loadConfig loads the effective configuration for a command invocation.
func loadConfig() (*config.Config, error) {
	if configPath != "" {
		return config.LoadFromPath(configPath)
	}
	return config.Load()
}

// buildEngine assembles a production engine from configuration.
// logger may be nil when debug logging is not requested.
func buildEngine(cfg *config.Config, logger *engine.DebugLogger) (*engine.Engine, *state.DB, error) {
	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = state.DefaultDBPath()
	}
	db, err := state.Open(dbPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open store: %w", err)
	}
	if err := db.Migrate(); err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("migrate store: %w", err)
	}

	inv, err := invoker.NewAnthropicInvoker(invoker.AnthropicConfig{
		APIKey:        cfg.Anthropic.APIKey,
		UseAWSBedrock: cfg.Anthropic.UseAWSBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
		MaxTokens:     cfg.Anthropic.MaxTokens,
	})
	if err != nil {
		db.Close()
		return nil, nil, fmt.Errorf("build invoker: %w", err)
	}

	eng, err := engine.New(cfg, engine.Deps{Store: db, Invoker: inv, Logger: logger})
	if err != nil {
		db.Close()
		return nil, nil, err
	}
	return eng, db, nil
}
