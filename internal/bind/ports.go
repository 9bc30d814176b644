package bind

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os/exec"
	"strings"
	"time"

	"github.com/miekg/dns"
)

// Control drives the name server's external check and reload commands.
type Control interface {
	CheckConf(ctx context.Context) error
	Reload(ctx context.Context) error
}

// Resolver answers address queries against a specific DNS server.
type Resolver interface {
	LookupA(ctx context.Context, name, server string) ([]string, error)
}

// ExecControl shells out to the utilities BIND installations ship with.
// Every invocation runs under a deadline so a hung daemon surfaces as a
// reload failure instead of blocking the whole run.
type ExecControl struct {
	CheckConfCmd []string
	ReloadCmd    []string
	Timeout      time.Duration
}

// NewExecControl returns a Control using named-checkconf and systemctl.
func NewExecControl() *ExecControl {
	return &ExecControl{
		CheckConfCmd: []string{"named-checkconf"},
		ReloadCmd:    []string{"systemctl", "reload", "bind9"},
		Timeout:      30 * time.Second,
	}
}

func (c *ExecControl) CheckConf(ctx context.Context) error {
	return c.run(ctx, c.CheckConfCmd)
}

func (c *ExecControl) Reload(ctx context.Context) error {
	return c.run(ctx, c.ReloadCmd)
}

func (c *ExecControl) run(ctx context.Context, argv []string) error {
	ctx, cancel := context.WithTimeout(ctx, c.Timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...) //nolint:gosec // argv is fixed at construction
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return fmt.Errorf("%s timed out after %s", argv[0], c.Timeout)
		}
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return fmt.Errorf("%s: %s", argv[0], msg)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// DNSResolver queries a name server directly over UDP.
type DNSResolver struct {
	Timeout time.Duration
}

// NewDNSResolver returns a Resolver with a 10 second query timeout.
func NewDNSResolver() *DNSResolver {
	return &DNSResolver{Timeout: 10 * time.Second}
}

// LookupA resolves the A records of name against the given server.
func (r *DNSResolver) LookupA(ctx context.Context, name, server string) ([]string, error) {
	client := &dns.Client{Timeout: r.Timeout}
	msg := new(dns.Msg)
	msg.SetQuestion(dns.Fqdn(name), dns.TypeA)

	reply, _, err := client.ExchangeContext(ctx, msg, net.JoinHostPort(server, "53"))
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	if reply.Rcode != dns.RcodeSuccess {
		return nil, fmt.Errorf("query returned %s", dns.RcodeToString[reply.Rcode])
	}

	var addrs []string
	for _, rr := range reply.Answer {
		if a, ok := rr.(*dns.A); ok {
			addrs = append(addrs, a.A.String())
		}
	}
	return addrs, nil
}
