package cmd

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mailcow-tools/bulk-manager/internal/export"
	"github.com/mailcow-tools/bulk-manager/internal/logger"
	"github.com/mailcow-tools/bulk-manager/internal/mailcow"
	"github.com/mailcow-tools/bulk-manager/internal/provision"
)

var setupCmd = &cobra.Command{
	Use:   "setup <input-csv>",
	Short: "Bulk-create domains and mailboxes from a CSV file",
	Long: `Process a bulk input sheet and provision everything it describes.

For each row, this command:
1. Creates the domain in mailcow (once per distinct domain)
2. Retrieves the domain's DKIM key and publishes the BIND zone
3. Creates the mailbox with a generated password

CSV format:
Domain,Username,First Name,Last Name,Daily Limit,Tracking Domain
example1.com,john,John,Doe,50,track.example1.com

Generated credentials are exported as a ReachInbox-compatible CSV.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE:         runSetup,
}

var (
	outputFile  string
	dryRun      bool
	autoConfirm bool
)

func init() {
	rootCmd.AddCommand(setupCmd)
	setupCmd.Flags().StringVarP(&outputFile, "output", "o", "mailboxes_export.csv",
		"Export file for generated credentials")
	setupCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Show what would be created without applying")
	setupCmd.Flags().BoolVarP(&autoConfirm, "auto-confirm", "y", false, "Skip confirmation prompt")
}

func runSetup(cmd *cobra.Command, args []string) error {
	cfg, log, err := loadEnvironment(cmd)
	if err != nil {
		return err
	}
	log.SetDryRun(dryRun)

	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return fmt.Errorf("failed to get json flag: %w", err)
	}

	inputFile := args[0]
	log.Info("Loading rows from %s", inputFile)
	log.Debug("API URL: %s", cfg.Mailcow.APIURL)
	log.Debug("API key: %s", logger.MaskSecret(cfg.Mailcow.APIKey))

	file, err := os.Open(inputFile) //nolint:gosec // path is from CLI argument
	if err != nil {
		return fmt.Errorf("failed to open input file: %w", err)
	}
	rows, err := provision.ReadRows(file)
	file.Close()
	if err != nil {
		return err
	}
	log.Info("Loaded %d row(s)", len(rows))

	client := mailcow.NewClient(cfg.Mailcow.APIURL, cfg.Mailcow.APIKey, cfg.Mailcow.SkipTLSVerify, log)
	sync := newSynchronizer(cfg, log)
	prov := provision.NewProvisioner(client, sync, cfg, log)

	// Interactive confirmation (skip in JSON mode or auto-confirm)
	if !jsonOutput && !autoConfirm && !dryRun {
		prov.SetConfirmFunc(func(prompt string) bool {
			fmt.Printf("%s [y/N]: ", prompt)
			reader := bufio.NewReader(os.Stdin)
			response, err := reader.ReadString('\n')
			if err != nil {
				return false
			}
			response = strings.TrimSpace(strings.ToLower(response))
			return response == "y" || response == "yes"
		})
	}

	opts := provision.Options{
		DryRun:      dryRun,
		AutoConfirm: jsonOutput || autoConfirm,
	}

	result, err := prov.Run(cmd.Context(), rows, opts)
	if err != nil {
		return err
	}

	if !dryRun && len(result.Mailboxes) > 0 {
		if err := writeExport(outputFile, result.Mailboxes); err != nil {
			return err
		}
		log.Info("Export completed: %s (%d mailboxes)", outputFile, len(result.Mailboxes))
	}

	printSetupResult(log, result, dryRun, jsonOutput)

	if len(result.Errors) > 0 {
		return fmt.Errorf("setup completed with %d error(s)", len(result.Errors))
	}
	return nil
}

func writeExport(path string, boxes []export.Mailbox) error {
	out, err := os.Create(path) //nolint:gosec // path is from CLI argument
	if err != nil {
		return fmt.Errorf("failed to create export file: %w", err)
	}

	if err := export.WriteReachInbox(out, boxes); err != nil {
		out.Close()
		return fmt.Errorf("failed to write export: %w", err)
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("failed to close export file: %w", err)
	}
	return nil
}

func printSetupResult(log *logger.Logger, result *provision.Result, isDryRun, jsonOutput bool) {
	if jsonOutput {
		log.InfoWithData("Setup completed", map[string]interface{}{
			"domainsCreated":   result.DomainsCreated,
			"mailboxesCreated": len(result.Mailboxes),
			"errors":           len(result.Errors),
		})
		return
	}

	prefix := ""
	if isDryRun {
		prefix = "[DRY RUN] "
	}

	fmt.Printf("\n%sResults:\n", prefix)
	fmt.Printf("  Domains created:   %d\n", result.DomainsCreated)
	fmt.Printf("  Mailboxes created: %d\n", len(result.Mailboxes))

	if len(result.Errors) > 0 {
		fmt.Fprintf(os.Stderr, "\nErrors:\n")
		for _, err := range result.Errors {
			fmt.Fprintf(os.Stderr, "  - %v\n", err)
		}
	}
}
