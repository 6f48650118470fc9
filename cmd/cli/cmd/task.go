package cmd

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fleetops/pkg/api"
)

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage maintenance tasks",
}

var taskCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Create a new maintenance task",
	Long: `Create a new maintenance task in PLANNED state.

Example:
  fleetctl task create --id TASK-100 --description "Replace brake pads" --priority HIGH
  fleetctl task create --id TASK-101 --description "Oil change" --priority LOW --estimated 45`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		id, _ := flags.GetString("id")
		description, _ := flags.GetString("description")
		priority, _ := flags.GetString("priority")
		estimated, _ := flags.GetInt64("estimated")

		if id == "" {
			id = "TASK-" + strings.ToUpper(uuid.NewString()[:8])
		}
		if description == "" {
			cmd.Println("Error: --description is required")
			return
		}

		client := NewFleetClient(viper.GetString("url"))
		req := api.CreateTaskRequest{
			TaskID:           id,
			Description:      description,
			Priority:         priority,
			EstimatedMinutes: estimated,
		}

		result, err := client.CreateTask(req)
		if err != nil {
			printError(cmd, err)
			return
		}

		cmd.Printf("✓ Task created!\nID: %s\nStatus: %s\n", result.TaskID, result.Status)
	},
}

var taskGetCmd = &cobra.Command{
	Use:   "get [task_id]",
	Short: "Get details of a maintenance task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewFleetClient(viper.GetString("url"))
		task, err := client.GetTask(args[0])
		if err != nil {
			printError(cmd, err)
			return
		}
		printTask(cmd, task)
	},
}

var taskStatusCmd = &cobra.Command{
	Use:   "status [task_id] [status]",
	Short: "Set a task's lifecycle status",
	Long:  `Set a task's status to one of PLANNED, SCHEDULED, PENDING, ASSIGNED, IN_PROGRESS, ON_HOLD, COMPLETED or CANCELLED.`,
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewFleetClient(viper.GetString("url"))
		task, err := client.UpdateTaskStatus(args[0], args[1])
		if err != nil {
			printError(cmd, err)
			return
		}
		cmd.Printf("✓ Task %s is now %s\n", task.TaskID, colorizeTaskStatus(task.Status))
	},
}

func printTask(cmd *cobra.Command, task *api.TaskResponse) {
	cmd.Printf("%sTask Details%s\n", colorBold, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sID:%s          %s\n", colorDim, colorReset, task.TaskID)
	cmd.Printf("%sDescription:%s %s\n", colorDim, colorReset, task.Description)
	cmd.Printf("%sPriority:%s    %s\n", colorDim, colorReset, task.Priority)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeTaskStatus(task.Status))
	cmd.Printf("%sProgress:%s    %.0f%%\n", colorDim, colorReset, task.CompletionPct)

	if task.EstimatedMinutes > 0 {
		cmd.Printf("%sEstimated:%s   %dm\n", colorDim, colorReset, task.EstimatedMinutes)
	}
	if task.TechnicianID != nil {
		cmd.Printf("%sTechnician:%s  %d\n", colorDim, colorReset, *task.TechnicianID)
	}
	if task.EquipmentID != nil {
		cmd.Printf("%sEquipment:%s   %d\n", colorDim, colorReset, *task.EquipmentID)
	}
	if len(task.RequiredSkills) > 0 {
		cmd.Printf("%sSkills:%s      %v\n", colorDim, colorReset, task.RequiredSkills)
	}
	if len(task.RequiredParts) > 0 {
		cmd.Printf("%sParts:%s       %v\n", colorDim, colorReset, task.RequiredParts)
	}
	cmd.Printf("%sCreated:%s     %s\n", colorDim, colorReset, formatTimeWithRelative(&task.CreatedAt))
	if task.DueDate != nil {
		due := task.DueDate.Format("Mon, 02 Jan 2006 15:04:05 MST")
		if task.DueDate.Before(time.Now()) && task.Status != "COMPLETED" {
			cmd.Printf("%sDue:%s         %s%s (overdue)%s\n", colorDim, colorReset, colorRed, due, colorReset)
		} else {
			cmd.Printf("%sDue:%s         %s\n", colorDim, colorReset, due)
		}
	}
	if task.CompletedAt != nil {
		cmd.Printf("%sCompleted:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(task.CompletedAt))
	}
}

func colorizeTaskStatus(status string) string {
	switch status {
	case "COMPLETED":
		return colorGreen + status + colorReset
	case "CANCELLED", "ON_HOLD":
		return colorRed + status + colorReset
	case "IN_PROGRESS":
		return colorYellow + status + colorReset
	case "ASSIGNED", "SCHEDULED":
		return colorCyan + status + colorReset
	default:
		return status
	}
}

func printError(cmd *cobra.Command, err error) {
	if apiErr, ok := err.(*APIError); ok {
		cmd.Printf("Error (%d): %s\n", apiErr.StatusCode, apiErr.Message)
		return
	}
	cmd.Printf("Error: %v\n", err)
}

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorBold   = "\033[1m"
	colorDim    = "\033[2m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorCyan   = "\033[36m"
)

func formatTimeWithRelative(t *time.Time) string {
	if t == nil {
		return "-"
	}
	return fmt.Sprintf("%s %s(%s ago)%s", t.Format("Mon, 02 Jan 2006 15:04:05 MST"), colorDim, relativeTime(*t), colorReset)
}

func relativeTime(t time.Time) string {
	duration := time.Since(t)

	if duration < time.Minute {
		return fmt.Sprintf("%ds", int(duration.Seconds()))
	} else if duration < time.Hour {
		return fmt.Sprintf("%dm", int(duration.Minutes()))
	} else if duration < 24*time.Hour {
		return fmt.Sprintf("%dh", int(duration.Hours()))
	}
	days := int(duration.Hours() / 24)
	if days == 1 {
		return "1 day"
	}
	return fmt.Sprintf("%d days", days)
}

func init() {
	flags := taskCreateCmd.Flags()
	flags.String("id", "", "Task identifier (generated when omitted)")
	flags.StringP("description", "d", "", "Task description (required)")
	flags.StringP("priority", "p", "MEDIUM", "Priority: LOW, MEDIUM, HIGH or CRITICAL")
	flags.Int64("estimated", 0, "Estimated duration in minutes (optional)")

	taskCmd.AddCommand(taskCreateCmd)
	taskCmd.AddCommand(taskGetCmd)
	taskCmd.AddCommand(taskStatusCmd)
	rootCmd.AddCommand(taskCmd)
}
