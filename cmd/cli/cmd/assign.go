package cmd

import (
	"strconv"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fleetops/pkg/api"
)

var assignCmd = &cobra.Command{
	Use:   "assign",
	Short: "Assign tasks to technicians",
}

var assignAutoCmd = &cobra.Command{
	Use:   "auto [task_id]",
	Short: "Assign a task to the least-loaded available technician",
	Long: `Pick the available technician with the fewest active assignments and
create a PENDING_ACCEPTANCE assignment for the task.

Example:
  fleetctl assign auto TASK-100`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		client := NewFleetClient(viper.GetString("url"))
		result, err := client.AssignAuto(args[0])
		if err != nil {
			printError(cmd, err)
			return
		}
		printAssignment(cmd, result)
	},
}

var assignManualCmd = &cobra.Command{
	Use:   "manual [task_id]",
	Short: "Assign a task to a specific technician",
	Long: `Create a PENDING_ACCEPTANCE assignment for a specific technician.
The technician must have capacity for another active assignment.

Example:
  fleetctl assign manual TASK-100 --technician 42`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		technicianID, _ := cmd.Flags().GetInt64("technician")
		if technicianID <= 0 {
			cmd.Println("Error: --technician is required")
			return
		}

		client := NewFleetClient(viper.GetString("url"))
		result, err := client.AssignManual(args[0], technicianID)
		if err != nil {
			printError(cmd, err)
			return
		}
		printAssignment(cmd, result)
	},
}

var respondCmd = &cobra.Command{
	Use:   "respond [assignment_id]",
	Short: "Record a technician's answer to a pending assignment",
	Long: `Accept or reject a PENDING_ACCEPTANCE assignment on behalf of the
assigned technician.

Example:
  fleetctl respond 17 --accept
  fleetctl respond 17 --reject --reason "on another job"`,
	Args: cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		assignmentID, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			cmd.Printf("Invalid assignment id: %s\n", args[0])
			return
		}

		flags := cmd.Flags()
		accept, _ := flags.GetBool("accept")
		reject, _ := flags.GetBool("reject")
		reason, _ := flags.GetString("reason")

		if accept == reject {
			cmd.Println("Error: pass exactly one of --accept or --reject")
			return
		}

		client := NewFleetClient(viper.GetString("url"))
		result, err := client.Respond(assignmentID, accept, reason)
		if err != nil {
			printError(cmd, err)
			return
		}
		printAssignment(cmd, result)
	},
}

func printAssignment(cmd *cobra.Command, a *api.AssignmentResponse) {
	icon := assignmentIcon(a.Status)
	cmd.Printf("%s %sAssignment Details%s\n", icon, colorBold, colorReset)
	cmd.Println("──────────────────────────────")
	cmd.Printf("%sID:%s          %d\n", colorDim, colorReset, a.ID)
	cmd.Printf("%sTask:%s        %s\n", colorDim, colorReset, a.TaskID)
	cmd.Printf("%sTechnician:%s  %d\n", colorDim, colorReset, a.TechnicianID)
	cmd.Printf("%sStatus:%s      %s\n", colorDim, colorReset, colorizeAssignmentStatus(a.Status))
	cmd.Printf("%sMethod:%s      %s\n", colorDim, colorReset, a.Method)
	if a.RejectionReason != nil {
		cmd.Printf("%sReason:%s      %s%s%s\n", colorDim, colorReset, colorRed, *a.RejectionReason, colorReset)
	}
	cmd.Printf("%sAssigned:%s    %s\n", colorDim, colorReset, formatTimeWithRelative(&a.AssignedAt))
	if a.RespondedAt != nil {
		cmd.Printf("%sResponded:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(a.RespondedAt))
	}
	if a.StartedAt != nil {
		cmd.Printf("%sStarted:%s     %s\n", colorDim, colorReset, formatTimeWithRelative(a.StartedAt))
	}
	if a.CompletedAt != nil {
		cmd.Printf("%sCompleted:%s   %s\n", colorDim, colorReset, formatTimeWithRelative(a.CompletedAt))
	}
}

func assignmentIcon(status string) string {
	switch status {
	case "COMPLETED", "ACCEPTED":
		return colorGreen + "✓" + colorReset
	case "REJECTED":
		return colorRed + "✗" + colorReset
	case "IN_PROGRESS":
		return colorYellow + "⏳" + colorReset
	case "PENDING_ACCEPTANCE":
		return colorCyan + "◯" + colorReset
	default:
		return "•"
	}
}

func colorizeAssignmentStatus(status string) string {
	switch status {
	case "COMPLETED", "ACCEPTED":
		return colorGreen + status + colorReset
	case "REJECTED":
		return colorRed + status + colorReset
	case "IN_PROGRESS":
		return colorYellow + status + colorReset
	case "PENDING_ACCEPTANCE":
		return colorCyan + status + colorReset
	default:
		return status
	}
}

func init() {
	assignManualCmd.Flags().Int64P("technician", "t", 0, "Technician staff ID (required)")

	respondCmd.Flags().Bool("accept", false, "Accept the assignment")
	respondCmd.Flags().Bool("reject", false, "Reject the assignment")
	respondCmd.Flags().String("reason", "", "Rejection reason (with --reject)")

	assignCmd.AddCommand(assignAutoCmd)
	assignCmd.AddCommand(assignManualCmd)
	rootCmd.AddCommand(assignCmd)
	rootCmd.AddCommand(respondCmd)
}
