package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coreflow360/agentcore/internal/engine"
	"github.com/coreflow360/agentcore/pkg/models"
)

var (
	serveSubscriptions string
	serveDebugLog      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the orchestration engine",
	Long: `Start the engine: load tenant subscriptions, recover queued tasks
from the store, and dispatch until interrupted. Events are printed as they
occur.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveSubscriptions, "subscriptions", "", "YAML file of tenant subscriptions")
	serveCmd.Flags().StringVar(&serveDebugLog, "debug-log", "", "write a debug log to this file")
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	var logger *engine.DebugLogger
	if serveDebugLog != "" {
		logger, err = engine.NewDebugLogger(serveDebugLog)
		if err != nil {
			return err
		}
		defer logger.Close()
	}

	eng, db, err := buildEngine(cfg, logger)
	if err != nil {
		return err
	}
	defer db.Close()

	if serveSubscriptions != "" {
		subs, err := loadSubscriptions(serveSubscriptions)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			eng.PutSubscription(sub)
		}
		fmt.Printf("loaded %d subscription(s)\n", len(subs))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.Start(ctx); err != nil {
		return err
	}

	h := eng.Health()
	fmt.Printf("engine running: %d agent(s), %d capabilit(ies)\n", h.Agents, len(h.Capabilities))

	for {
		select {
		case ev := <-eng.Events():
			printEvent(ev)
		case <-ctx.Done():
			fmt.Println("shutting down, draining in-flight tasks")
			return eng.Stop()
		}
	}
}

// loadSubscriptions reads tenant subscriptions from a YAML file.
func loadSubscriptions(path string) ([]*models.Subscription, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read subscriptions: %w", err)
	}
	var doc struct {
		Subscriptions []*models.Subscription `yaml:"subscriptions"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parse subscriptions: %w", err)
	}
	for _, sub := range doc.Subscriptions {
		if sub.TenantID == "" {
			return nil, fmt.Errorf("subscription without tenant_id")
		}
		if !sub.Tier.Valid() {
			return nil, fmt.Errorf("tenant %s: unknown tier %q", sub.TenantID, sub.Tier)
		}
	}
	return doc.Subscriptions, nil
}

// printEvent renders one engine event for the terminal.
func printEvent(ev engine.Event) {
	ts := ev.Timestamp.Format("15:04:05")
	switch ev.Type {
	case engine.EventTaskCompleted, engine.EventWorkflowCompleted:
		color.Green("[%s] %s task=%s agent=%s cost=$%.4f", ts, ev.Type, ev.TaskID, ev.AgentID, ev.Cost)
	case engine.EventTaskFailed, engine.EventWorkflowFailed, engine.EventTaskRejected:
		color.Red("[%s] %s task=%s agent=%s err=%v", ts, ev.Type, ev.TaskID, ev.AgentID, ev.Error)
	default:
		fmt.Printf("[%s] %s task=%s agent=%s %s\n", ts, ev.Type, ev.TaskID, ev.AgentID, ev.Message)
	}
}
