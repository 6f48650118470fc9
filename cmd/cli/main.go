// Package main is the entry point for the fleetctl CLI.
// The CLI is the dispatcher terminal tool for interacting with the fleetops API.
package main

import (
	"os"

	"fleetops/cmd/cli/cmd"
)

func main() {
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}
