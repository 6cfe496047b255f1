package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coreflow360/agentcore/pkg/models"
)

var (
	workflowTenant        string
	workflowSubscriptions string
	workflowContext       string
	workflowTimeout       time.Duration
)

var workflowCmd = &cobra.Command{
	Use:   "workflow <workflow.yaml>",
	Short: "Execute a workflow definition",
	Long: `Execute a YAML workflow definition: steps run strictly in order,
step inputs may reference the execution context or prior step outputs with
{{source.path}} templates, and failed steps retry per their policy.`,
	Args: cobra.ExactArgs(1),
	RunE: runWorkflow,
}

func init() {
	workflowCmd.Flags().StringVar(&workflowTenant, "tenant", "", "tenant ID (required)")
	workflowCmd.Flags().StringVar(&workflowSubscriptions, "subscriptions", "", "YAML file of tenant subscriptions")
	workflowCmd.Flags().StringVar(&workflowContext, "context", "{}", "execution context as JSON")
	workflowCmd.Flags().DurationVar(&workflowTimeout, "timeout", 5*time.Minute, "overall execution timeout")
	workflowCmd.MarkFlagRequired("tenant")
}

func runWorkflow(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("read workflow: %w", err)
	}
	var wf models.Workflow
	if err := yaml.Unmarshal(data, &wf); err != nil {
		return fmt.Errorf("parse workflow: %w", err)
	}
	if wf.ID == "" || len(wf.Steps) == 0 {
		return fmt.Errorf("workflow needs an id and at least one step")
	}

	var ectx models.ExecutionContext
	if err := json.Unmarshal([]byte(workflowContext), &ectx); err != nil {
		return fmt.Errorf("parse --context: %w", err)
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

	if workflowSubscriptions != "" {
		subs, err := loadSubscriptions(workflowSubscriptions)
		if err != nil {
			return err
		}
		for _, sub := range subs {
			eng.PutSubscription(sub)
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), workflowTimeout)
	defer cancel()

	result, err := eng.ExecuteWorkflow(ctx, &wf, ectx, workflowTenant)
	if err != nil {
		return renderRejection(err)
	}

	for _, sr := range result.Steps {
		mark := color.GreenString("ok")
		if !sr.Success {
			mark = color.RedString("failed (%s)", sr.FailureReason)
		}
		fmt.Printf("  %-20s %s retries=%d\n", sr.StepID, mark, sr.Retries)
	}
	if result.Success {
		color.Green("workflow %s completed in %s, cost $%.4f", wf.ID, result.Duration.Round(time.Millisecond), result.TotalCost)
		out, _ := json.MarshalIndent(result.Output, "", "  ")
		fmt.Println(string(out))
	} else {
		color.Red("workflow %s failed: %v", wf.ID, result.Errors)
	}
	return nil
}
