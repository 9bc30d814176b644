// Package provision drives the end-to-end bulk workflow: CSV rows in,
// mail domains, mailboxes and DNS zones out.
package provision

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mailcow-tools/bulk-manager/internal/config"
	"github.com/mailcow-tools/bulk-manager/internal/export"
	"github.com/mailcow-tools/bulk-manager/internal/logger"
	"github.com/mailcow-tools/bulk-manager/internal/mailcow"
)

// ErrAborted is returned when the user cancels the operation.
var ErrAborted = errors.New("operation aborted by user")

// Pacing delays between external calls, to stay under mailcow's API rate
// limit and to give it time to generate DKIM keys for fresh domains.
const (
	domainSettleDelay   = 2 * time.Second
	dnsPropagationDelay = 1 * time.Second
	rowPaceDelay        = 500 * time.Millisecond
)

const mailboxQuota = 3072

// MailAPI defines the mail platform operations the provisioner needs.
type MailAPI interface {
	CreateDomain(ctx context.Context, domain string) error
	CreateMailbox(ctx context.Context, req mailcow.MailboxRequest) error
	GetDKIM(ctx context.Context, domain string) (string, error)
}

// ZoneSynchronizer publishes DNS state for a provisioned domain.
type ZoneSynchronizer interface {
	Create(ctx context.Context, domain, signingKey string) error
}

// ConfirmFunc is a function that asks for user confirmation.
type ConfirmFunc func(prompt string) bool

// Options contains options for a provisioning run.
type Options struct {
	DryRun      bool
	AutoConfirm bool
}

// Result contains the outcome of a provisioning run.
type Result struct {
	Mailboxes      []export.Mailbox
	Errors         []error
	DomainsCreated int
}

// Provisioner processes bulk-setup rows strictly sequentially. Retries and
// pacing live here, not in the synchronizer.
type Provisioner struct {
	api       MailAPI
	zones     ZoneSynchronizer
	cfg       *config.Config
	log       *logger.Logger
	confirmFn ConfirmFunc
	sleep     func(time.Duration)
}

// NewProvisioner creates a provisioner over the given mail API and zone
// synchronizer.
func NewProvisioner(api MailAPI, zones ZoneSynchronizer, cfg *config.Config, log *logger.Logger) *Provisioner {
	return &Provisioner{
		api:   api,
		zones: zones,
		cfg:   cfg,
		log:   log,
		sleep: time.Sleep,
	}
}

// SetConfirmFunc sets the confirmation function for interactive prompts.
func (p *Provisioner) SetConfirmFunc(fn ConfirmFunc) {
	p.confirmFn = fn
}

// Run processes all rows. Row and domain failures are logged, collected
// and skipped; only a cancelled confirmation aborts the whole run.
func (p *Provisioner) Run(ctx context.Context, rows []Row, opts Options) (*Result, error) {
	if !opts.DryRun && !opts.AutoConfirm && p.confirmFn != nil {
		prompt := fmt.Sprintf(
			"Provision %d mailbox(es) across %d domain(s)?",
			len(rows), countDomains(rows))
		if !p.confirmFn(prompt) {
			return nil, ErrAborted
		}
	}

	result := &Result{}
	domainsReady := make(map[string]bool)

	for i, row := range rows {
		rowNum := i + 2 // header is line 1

		if row.Domain == "" || row.Username == "" {
			p.log.Warn("Skipping row %d: missing domain or username", rowNum)
			continue
		}

		if !domainsReady[row.Domain] {
			if err := p.provisionDomain(ctx, row.Domain, opts, result); err != nil {
				p.log.Error("Row %d: %v", rowNum, err)
				result.Errors = append(result.Errors, fmt.Errorf("row %d: %w", rowNum, err))
				continue
			}
			// Marked ready only on success, so later rows for a
			// failed domain retry the creation.
			domainsReady[row.Domain] = true
			result.DomainsCreated++
		}

		box, err := p.provisionMailbox(ctx, row, opts)
		if err != nil {
			p.log.Error("Row %d: %v", rowNum, err)
			result.Errors = append(result.Errors, fmt.Errorf("row %d: %w", rowNum, err))
			continue
		}
		result.Mailboxes = append(result.Mailboxes, *box)

		if !opts.DryRun {
			p.sleep(rowPaceDelay)
		}
	}

	return result, nil
}

// provisionDomain creates the domain on the mail platform and publishes its
// DNS zone. A failed zone synchronization does not fail the domain: the
// mailboxes exist server-side either way, so the error is recorded and the
// operator can re-run the DNS step by hand.
func (p *Provisioner) provisionDomain(ctx context.Context, domain string, opts Options, result *Result) error {
	p.log.Info("Creating domain: %s", domain)
	if opts.DryRun {
		return nil
	}

	if err := p.api.CreateDomain(ctx, domain); err != nil {
		return fmt.Errorf("failed to create domain %s: %w", domain, err)
	}
	p.sleep(domainSettleDelay)

	signingKey, err := p.api.GetDKIM(ctx, domain)
	if err != nil {
		p.log.Warn("Could not retrieve DKIM key for %s: %v", domain, err)
		signingKey = ""
	}
	if signingKey == "" {
		p.log.Warn("No DKIM key for %s, zone will be published without one", domain)
	}

	if err := p.zones.Create(ctx, domain, signingKey); err != nil {
		p.log.Error("DNS setup for %s failed: %v", domain, err)
		result.Errors = append(result.Errors, fmt.Errorf("dns for %s: %w", domain, err))
	} else {
		p.sleep(dnsPropagationDelay)
	}

	return nil
}

func (p *Provisioner) provisionMailbox(ctx context.Context, row Row, opts Options) (*export.Mailbox, error) {
	email := row.Username + "@" + row.Domain
	p.log.Info("Creating mailbox: %s", email)

	password, err := GeneratePassword(PasswordLength)
	if err != nil {
		return nil, err
	}

	if !opts.DryRun {
		req := mailcow.MailboxRequest{
			LocalPart: row.Username,
			Domain:    row.Domain,
			Name:      row.FirstName + " " + row.LastName,
			Password:  password,
			Password2: password,
			Quota:     mailboxQuota,
			Active:    1,
		}
		if err := p.api.CreateMailbox(ctx, req); err != nil {
			return nil, fmt.Errorf("failed to create mailbox %s: %w", email, err)
		}
	}

	mailHost := "mail." + p.cfg.DNS.NSBase
	return &export.Mailbox{
		Email:          email,
		FirstName:      row.FirstName,
		LastName:       row.LastName,
		Password:       password,
		IMAPHost:       mailHost,
		IMAPPort:       993,
		SMTPHost:       mailHost,
		SMTPPort:       587,
		DailyLimit:     row.DailyLimit,
		TrackingDomain: row.TrackingDomain,
	}, nil
}

func countDomains(rows []Row) int {
	seen := make(map[string]bool)
	for _, row := range rows {
		if row.Domain != "" {
			seen[row.Domain] = true
		}
	}
	return len(seen)
}
