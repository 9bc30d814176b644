package cmd

import (
	"github.com/spf13/cobra"
)

var reloadCmd = &cobra.Command{
	Use:          "reload",
	Short:        "Validate the BIND configuration and reload the daemon",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runReload,
}

func init() {
	rootCmd.AddCommand(reloadCmd)
}

func runReload(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	return newSynchronizer(cfg, log).Reload(cmd.Context())
}
