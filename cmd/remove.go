package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var removeCmd = &cobra.Command{
	Use:   "remove <domain>",
	Short: "Remove a domain's DNS zone and reload BIND",
	Long: `Remove a domain's declaration block from the master configuration and
delete its zone file, then reload the daemon. A reload failure is reported
separately: the zone is already gone from the configuration, the running
server just has not picked up the change yet.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runRemove,
}

func init() {
	rootCmd.AddCommand(removeCmd)
}

func runRemove(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	domain := args[0]
	sync := newSynchronizer(cfg, log)

	if err := sync.Remove(cmd.Context(), domain); err != nil {
		return fmt.Errorf("failed to remove zone %s: %w", domain, err)
	}

	if err := sync.Reload(cmd.Context()); err != nil {
		return fmt.Errorf("zone %s removed, but reload failed: %w", domain, err)
	}

	log.Info("Removed zone %s", domain)
	return nil
}
