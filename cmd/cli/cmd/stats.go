package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show assignment statistics for a period",
	Long: `Show assignment counts and the completion rate for a date range.
Times are RFC3339; --end defaults to now and --start to 30 days before --end.

Example:
  fleetctl stats
  fleetctl stats --start 2026-09-01T00:00:00Z --end 2026-10-01T00:00:00Z`,
	Run: func(cmd *cobra.Command, args []string) {
		flags := cmd.Flags()
		startStr, _ := flags.GetString("start")
		endStr, _ := flags.GetString("end")

		end := time.Now()
		if endStr != "" {
			parsed, err := time.Parse(time.RFC3339, endStr)
			if err != nil {
				cmd.Printf("Invalid --end time: %v\n", err)
				return
			}
			end = parsed
		}

		start := end.AddDate(0, 0, -30)
		if startStr != "" {
			parsed, err := time.Parse(time.RFC3339, startStr)
			if err != nil {
				cmd.Printf("Invalid --start time: %v\n", err)
				return
			}
			start = parsed
		}

		client := NewFleetClient(viper.GetString("url"))
		stats, err := client.Statistics(start, end)
		if err != nil {
			printError(cmd, err)
			return
		}

		cmd.Printf("%sAssignment Statistics%s\n", colorBold, colorReset)
		cmd.Printf("%s%s → %s%s\n", colorDim, start.Format("2006-01-02"), end.Format("2006-01-02"), colorReset)
		cmd.Println("──────────────────────────────")
		cmd.Printf("%sTotal:%s       %d\n", colorDim, colorReset, stats.Total)
		cmd.Printf("%sCompleted:%s   %s%d%s\n", colorDim, colorReset, colorGreen, stats.Completed, colorReset)
		cmd.Printf("%sPending:%s     %s%d%s\n", colorDim, colorReset, colorCyan, stats.Pending, colorReset)
		cmd.Printf("%sRejected:%s    %s%d%s\n", colorDim, colorReset, colorRed, stats.Rejected, colorReset)
		cmd.Printf("%sCompletion:%s  %.1f%%\n", colorDim, colorReset, stats.CompletionRate*100)
	},
}

func init() {
	statsCmd.Flags().String("start", "", "Period start, RFC3339")
	statsCmd.Flags().String("end", "", "Period end, RFC3339")

	rootCmd.AddCommand(statsCmd)
}
