// Package cmd provides CLI commands for the mailcow bulk manager.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mailcow-tools/bulk-manager/internal/bind"
	"github.com/mailcow-tools/bulk-manager/internal/config"
	"github.com/mailcow-tools/bulk-manager/internal/logger"
)

const defaultConfigPath = "/etc/mailcow-bulk-manager/config.yaml"

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var rootCmd = &cobra.Command{
	Use:   "mailcow-bulk-manager",
	Short: "Provision mailcow domains, mailboxes and BIND zones in bulk",
	Long: `A CLI tool for bulk-provisioning mail infrastructure.

It creates domains and mailboxes on a mailcow server via its management API,
publishes matching DNS zones on a local BIND9 name server, and exports the
generated credentials as a ReachInbox-compatible CSV.

Zone operations (create, remove, list, verify, reload) are also available
individually for day-two maintenance.`,
	Version:       fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringP(
		"config", "c", defaultConfigPath, "Path to the YAML configuration file")
	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose/debug output")
	rootCmd.PersistentFlags().Bool("json", false, "Output in JSON format (structured logging)")
	rootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}

// loadEnvironment builds the logger from persistent flags and loads the
// configuration, the common preamble of every subcommand.
func loadEnvironment(cmd *cobra.Command) (*config.Config, *logger.Logger, error) {
	configPath, err := cmd.Flags().GetString("config")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get config flag: %w", err)
	}

	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get verbose flag: %w", err)
	}

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get json flag: %w", err)
	}

	noColor, err := cmd.Flags().GetBool("no-color")
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get no-color flag: %w", err)
	}

	log := logger.New(logger.Options{
		Verbose: verbose,
		JSON:    jsonOutput,
		NoColor: noColor,
	})

	log.Debug("Loading configuration from %s", configPath)
	cfg, err := config.LoadFromFile(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, log, nil
}

func newSynchronizer(cfg *config.Config, log *logger.Logger) *bind.Synchronizer {
	return bind.NewSynchronizer(cfg.DNS, bind.NewExecControl(), bind.NewDNSResolver(), log)
}
