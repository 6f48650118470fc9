package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "fleetctl",
	Short: "Fleetctl is a command line tool for the fleet maintenance back end",
	Long: `fleetctl is the command-line interface for the FleetOps maintenance platform.

FleetOps tracks maintenance tasks for a municipal transit fleet, assigns them
to technicians, and books conflict-checked schedule slots.

Common workflows:

  Create a maintenance task:
    fleetctl task create --id TASK-100 --description "Replace brake pads" --priority HIGH

  Inspect a task:
    fleetctl task get TASK-100

  Assign it to the least-loaded available technician:
    fleetctl assign auto TASK-100

  Assign it to a specific technician:
    fleetctl assign manual TASK-100 --technician 42

  Record the technician's answer:
    fleetctl respond 17 --accept
    fleetctl respond 17 --reject --reason "on another job"

  Book a schedule slot:
    fleetctl schedule create --task TASK-100 --technician 42 \
      --start 2026-09-01T09:00:00Z --end 2026-09-01T11:00:00Z

  Assignment statistics for a period:
    fleetctl stats --start 2026-09-01T00:00:00Z --end 2026-10-01T00:00:00Z

Configuration:
  Set the API endpoint via an environment variable or a config file:
    FLEETOPS_URL    API endpoint (default: http://localhost:7070)`,
}

func Execute() error {
	return rootCmd.Execute()
}

func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Println(err)
			os.Exit(1)
		}

		// Search config in home directory with name ".fleetctl"
		viper.AddConfigPath(home)
		viper.SetConfigName(".fleetctl")
		viper.SetConfigType("yaml")
	}

	// Read environment variables that match "FLEETOPS_VARNAME"
	viper.SetEnvPrefix("FLEETOPS")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Println("Using config file:", viper.ConfigFileUsed())
	}
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.fleetctl.yaml)")

	rootCmd.PersistentFlags().String("url", "http://localhost:7070", "FleetOps API URL")
	viper.BindPFlag("url", rootCmd.PersistentFlags().Lookup("url"))
}
