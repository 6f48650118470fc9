package cmd

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/viper"
)

func TestRootCommand_EnvVarBinding(t *testing.T) {
	resetViper()

	t.Setenv("FLEETOPS_URL", "http://depot-api:8080")

	if got := viper.GetString("url"); got != "http://depot-api:8080" {
		t.Errorf("expected url from env var, got: %s", got)
	}
}

func TestRootCommand_HelpExecutes(t *testing.T) {
	resetViper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&out)
	rootCmd.SetArgs([]string{"--help"})

	if err := rootCmd.Execute(); err != nil {
		t.Fatalf("help should execute without error: %v", err)
	}
}

func TestRootCommand_RegistersSubcommands(t *testing.T) {
	want := map[string]bool{
		"task":                    false,
		"assign":                  false,
		"respond [assignment_id]": false,
		"schedule":                false,
		"stats":                   false,
	}

	for _, cmd := range rootCmd.Commands() {
		if _, ok := want[cmd.Use]; ok {
			want[cmd.Use] = true
		}
	}

	for use, found := range want {
		if !found {
			t.Errorf("expected %q subcommand to be registered", use)
		}
	}
}

func TestExecute_UnknownCommandFails(t *testing.T) {
	resetViper()

	rootCmd.SetArgs([]string{"no-such-command"})

	if err := Execute(); err == nil {
		t.Error("expected error for unknown command")
	}
}

func TestRootCommand_ConfigFile(t *testing.T) {
	resetViper()

	tmpFile, err := os.CreateTemp("", "fleetctl-test-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(tmpFile.Name())

	tmpFile.WriteString("url: http://from-config:9999\n")
	tmpFile.Close()

	cfgFile = tmpFile.Name()
	initConfig()

	if got := viper.GetString("url"); got != "http://from-config:9999" {
		t.Errorf("expected url from config file, got: %s", got)
	}

	cfgFile = ""
}
