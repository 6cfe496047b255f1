package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coreflow360/agentcore/internal/engine"
	"github.com/coreflow360/agentcore/internal/entitlement"
	"github.com/coreflow360/agentcore/internal/quota"
	"github.com/coreflow360/agentcore/pkg/models"
)

var (
	submitTenant        string
	submitPriority      int
	submitInput         string
	submitSubscriptions string
	submitWait          time.Duration
)

var submitCmd = &cobra.Command{
	Use:   "submit <task-type>",
	Short: "Submit a task and wait for its result",
	Long: `Submit one task to the engine and wait for it to complete.

The task type is one of: analyze_entity, predict_attrition, detect_anomaly,
forecast_cash_flow, process_payroll, optimize_bom, automate_process,
cross_domain_insight.`,
	Args: cobra.ExactArgs(1),
	RunE: runSubmit,
}

func init() {
	submitCmd.Flags().StringVar(&submitTenant, "tenant", "", "tenant ID (required)")
	submitCmd.Flags().IntVar(&submitPriority, "priority", 5, "task priority, lower runs first")
	submitCmd.Flags().StringVar(&submitInput, "input", "{}", "task input as JSON")
	submitCmd.Flags().StringVar(&submitSubscriptions, "subscriptions", "", "YAML file of tenant subscriptions")
	submitCmd.Flags().DurationVar(&submitWait, "wait", 2*time.Minute, "how long to wait for completion")
	submitCmd.MarkFlagRequired("tenant")
}

func runSubmit(cmd *cobra.Command, args []string) error {
	taskType := models.TaskType(args[0])
	if !taskType.Valid() {
		return fmt.Errorf("unknown task type %q", args[0])
	}

	var input map[string]any
	if err := json.Unmarshal([]byte(submitInput), &input); err != nil {
		return fmt.Errorf("parse --input: %w", err)
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	eng, db, err := buildEngine(cfg, nil)
	if err != nil {
		return err
	}
	defer db.Close()

	if submitSubscriptions != "" {
		subs, err := loadSubscriptions(submitSubscriptions)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			eng.PutSubscription(sub)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), submitWait)
	defer cancel()
	if err := eng.Start(ctx); err != nil {
		return err
	}
	defer eng.Stop()

	taskID, err := eng.SubmitTask(ctx, engine.SubmitRequest{
		Type:     taskType,
		Input:    input,
		Priority: submitPriority,
		TenantID: submitTenant,
	})
	if err != nil {
		return renderRejection(err)
	}
	fmt.Printf("queued %s\n", taskID)

	for {
		select {
		case <-ctx.Done():
			return fmt.Errorf("timed out waiting for %s", taskID)
		case <-time.After(200 * time.Millisecond):
		}
		task, err := eng.GetTaskStatus(taskID)
		if err != nil {
			return err
		}
		if !task.Status.Terminal() {
			continue
		}
		if task.Status != models.TaskStatusCompleted {
			color.Red("task %s: %s", task.Status, task.Error)
			return nil
		}
		out, _ := json.MarshalIndent(task.Result, "", "  ")
		color.Green("task completed by %s", task.AssignedAgent)
		fmt.Println(string(out))
		return nil
	}
}

// renderRejection prints the actionable part of an admission rejection.
func renderRejection(err error) error {
	var upgrade *entitlement.UpgradeRequired
	if errors.As(err, &upgrade) {
		color.Yellow("submission rejected: %v", upgrade)
		return nil
	}
	var limit *quota.LimitExceeded
	if errors.As(err, &limit) {
		color.Yellow("submission rejected: %v", limit)
		return nil
	}
	return err
}
