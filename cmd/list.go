package cmd

import (
	"github.com/spf13/cobra"
)

var listCmd = &cobra.Command{
	Use:          "list",
	Short:        "List all registered zones",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE:         runList,
}

func init() {
	rootCmd.AddCommand(listCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	cfg, log, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	zones, err := newSynchronizer(cfg, log).List()
	if err != nil {
		return err
	}

	rows := make([][]string, len(zones))
	for i, zone := range zones {
		rows[i] = []string{zone}
	}
	log.Table("Configured zones", []string{"DOMAIN"}, rows)
	return nil
}
