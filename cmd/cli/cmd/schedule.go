package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"fleetops/pkg/api"
)

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Manage schedule slots",
}

var scheduleCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Book a schedule slot for a technician",
	Long: `Book a schedule slot for a task and technician. The slot is refused
when it overlaps one of the technician's existing schedules; slots that only
touch at a boundary do not conflict.

Times are RFC3339, e.g. 2026-09-01T09:00:00Z.

Example:
  fleetctl schedule create --task TASK-100 --technician 42 \
    --start 2026-09-01T09:00:00Z --end 2026-09-01T11:00:00Z --notes "Bay 3"`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		taskID, _ := flags.GetString("task")
		technicianID, _ := flags.GetInt64("technician")
		startStr, _ := flags.GetString("start")
		endStr, _ := flags.GetString("end")
		priority, _ := flags.GetString("priority")
		notes, _ := flags.GetString("notes")

		if taskID == "" {
			cmd.Println("Error: --task is required")
			return
		}
		if technicianID <= 0 {
			cmd.Println("Error: --technician is required")
			return
		}

		start, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			cmd.Printf("Invalid --start time: %v\n", err)
			return
		}
		end, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			cmd.Printf("Invalid --end time: %v\n", err)
			return
		}

		req := api.ScheduleRequest{
			TaskID:       &taskID,
			TechnicianID: &technicianID,
			StartTime:    &start,
			EndTime:      &end,
		}
		if priority != "" {
			req.Priority = &priority
		}
		if notes != "" {
			req.Notes = &notes
		}

		client := NewFleetClient(viper.GetString("url"))
		result, err := client.CreateSchedule(req)
		if err != nil {
			printError(cmd, err)
			return
		}

		cmd.Printf("✓ Schedule booked!\nID: %d\nTask: %s\nTechnician: %d\nSlot: %s → %s\n",
			result.ID, result.TaskID, result.TechnicianID,
			result.StartTime.Format(time.RFC3339), result.EndTime.Format(time.RFC3339))
	},
}

func init() {
	flags := scheduleCreateCmd.Flags()
	flags.String("task", "", "Task identifier (required)")
	flags.Int64P("technician", "t", 0, "Technician staff ID (required)")
	flags.String("start", "", "Slot start time, RFC3339 (required)")
	flags.String("end", "", "Slot end time, RFC3339 (required)")
	flags.StringP("priority", "p", "", "Priority: LOW, MEDIUM, HIGH or CRITICAL")
	flags.String("notes", "", "Free-form notes")

	scheduleCmd.AddCommand(scheduleCreateCmd)
	rootCmd.AddCommand(scheduleCmd)
}
