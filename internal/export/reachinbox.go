// Package export writes provisioned credentials in spreadsheet formats
// accepted by cold-email sending tools.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"
)

// Mailbox is one provisioned account ready for export.
type Mailbox struct {
	Email          string
	FirstName      string
	LastName       string
	Password       string
	IMAPHost       string
	IMAPPort       int
	SMTPHost       string
	SMTPPort       int
	DailyLimit     int
	TrackingDomain string
}

// Warmup defaults expected by ReachInbox imports.
const (
	warmupLimit         = 20
	warmupIncrement     = 1
	warmupFilterTag     = "shadow"
	warmupOpenRate      = 95
	warmupSpamRate      = 85
	warmupImportantRate = 90
)

var reachInboxHeader = []string{
	"Email", "First Name", "Last Name", "IMAP Username", "IMAP Password",
	"IMAP Host", "IMAP Port", "SMTP Username", "SMTP Password",
	"SMTP Host", "SMTP Port", "Daily Limit", "Warmup Enabled",
	"Warmup Limit", "Warmup Increment", "Tracking Domain",
	"Warmup Filter Tag", "Warmup On Weekdays", "Warmup Open Rate",
	"Warmup Spam Protection Rate", "Warmup Mark As Important Rate",
}

// WriteReachInbox writes mailboxes as a ReachInbox-compatible CSV.
func WriteReachInbox(w io.Writer, boxes []Mailbox) error {
	cw := csv.NewWriter(w)

	if err := cw.Write(reachInboxHeader); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	for _, box := range boxes {
		record := []string{
			box.Email,
			box.FirstName,
			box.LastName,
			box.Email, // IMAP username is the address itself
			box.Password,
			box.IMAPHost,
			strconv.Itoa(box.IMAPPort),
			box.Email,
			box.Password,
			box.SMTPHost,
			strconv.Itoa(box.SMTPPort),
			strconv.Itoa(box.DailyLimit),
			"TRUE",
			strconv.Itoa(warmupLimit),
			strconv.Itoa(warmupIncrement),
			box.TrackingDomain,
			warmupFilterTag,
			"TRUE",
			strconv.Itoa(warmupOpenRate),
			strconv.Itoa(warmupSpamRate),
			strconv.Itoa(warmupImportantRate),
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("failed to write record for %s: %w", box.Email, err)
		}
	}

	cw.Flush()
	return cw.Error()
}
