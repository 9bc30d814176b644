package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var verifyCmd = &cobra.Command{
	Use:   "verify <domain>",
	Short: "Verify DNS resolution for a domain",
	Long: `Query the configured name server for the domain's A record and check
that it resolves to the configured mail server address.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runVerify,
}

func init() {
	rootCmd.AddCommand(verifyCmd)
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	domain := args[0]
	if !newSynchronizer(cfg, log).Verify(cmd.Context(), domain) {
		return fmt.Errorf("DNS verification failed for %s", domain)
	}

	log.Info("DNS resolution working for %s", domain)
	return nil
}
