package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var createCmd = &cobra.Command{
	Use:   "create <domain> [signing-key]",
	Short: "Create a domain's DNS zone and reload BIND",
	Long: `Create (or rewrite) the BIND zone for a domain.

Writes the zone file, registers the zone in the master configuration if it
is not already declared, validates the configuration and reloads the
daemon. The optional signing-key argument is DKIM public key material to
publish; PEM headers and whitespace are stripped automatically.`,
	Args:         cobra.RangeArgs(1, 2),
	SilenceUsage: true,
	RunE:         runCreate,
}

var signingKeyFile string

func init() {
	rootCmd.AddCommand(createCmd)
	createCmd.Flags().StringVar(&signingKeyFile, "key-file", "",
		"Read the DKIM public key from a file instead of an argument")
}

func runCreate(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}

	domain := args[0]
	signingKey := ""
	switch {
	case signingKeyFile != "":
		data, err := os.ReadFile(signingKeyFile) //nolint:gosec // path is from CLI argument
		if err != nil {
			return fmt.Errorf("failed to read key file: %w", err)
		}
		signingKey = string(data)
	case len(args) > 1:
		signingKey = args[1]
	}

	sync := newSynchronizer(cfg, log)
	if err := sync.Create(cmd.Context(), domain, signingKey); err != nil {
		return fmt.Errorf("failed to create zone for %s: %w", domain, err)
	}

	log.Info("DNS setup complete for %s", domain)
	return nil
}
