package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/coreflow360/agentcore/internal/state"
	"github.com/coreflow360/agentcore/pkg/models"
)

var statusCmd = &cobra.Command{
	Use:   "status <task-id>",
	Short: "Show a task's persisted state",
	Args:  cobra.ExactArgs(1),
	RunE:  runStatus,
}

func runStatus(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	dbPath := cfg.Store.Path
	if dbPath == "" {
		dbPath = state.DefaultDBPath()
	}
	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		fmt.Println("No store found. Run 'agentcore serve' first.")
		return nil
	}

	db, err := state.Open(dbPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer db.Close()
	if err := db.Migrate(); err != nil {
		return fmt.Errorf("migrate store: %w", err)
	}

	task, err := db.GetTask(args[0])
	if err != nil {
		return err
	}
	if task == nil {
		fmt.Printf("task %s not found\n", args[0])
		return nil
	}

	switch task.Status {
	case models.TaskStatusCompleted:
		color.Green("%s  %s", task.ID, task.Status)
	case models.TaskStatusFailed, models.TaskStatusCancelled:
		color.Red("%s  %s", task.ID, task.Status)
	default:
		color.Yellow("%s  %s", task.ID, task.Status)
	}
	fmt.Printf("  type:     %s\n", task.Type)
	fmt.Printf("  tenant:   %s\n", task.TenantID)
	fmt.Printf("  priority: %d\n", task.Priority)
	if task.AssignedAgent != "" {
		fmt.Printf("  agent:    %s\n", task.AssignedAgent)
	}
	fmt.Printf("  updated:  %s\n", task.UpdatedAt.Format("2006-01-02 15:04:05"))
	if task.Error != "" {
		fmt.Printf("  error:    %s\n", task.Error)
	}
	if len(task.Result) > 0 {
		out, _ := json.MarshalIndent(task.Result, "  ", "  ")
		fmt.Printf("  result:   %s\n", out)
	}
	return nil
}
