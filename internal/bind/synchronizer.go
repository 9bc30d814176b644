package bind

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/mailcow-tools/bulk-manager/internal/config"
	"github.com/mailcow-tools/bulk-manager/internal/logger"
)

// Stage identifies the step of a staged zone operation.
type Stage string

// Stages of Create/Remove/Reload, in execution order.
const (
	StageZoneFile      Stage = "zone-file"
	StageRegistryRead  Stage = "registry-read"
	StageRegistryWrite Stage = "registry-write"
	StageCheckConf     Stage = "checkconf"
	StageReload        Stage = "reload"
)

// StageError reports which step of a zone operation failed. Earlier steps'
// artifacts stay on disk; the stage tells an operator exactly what is left
// to complete or roll back by hand.
type StageError struct {
	Stage Stage
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("%s: %v", e.Stage, e.Err)
}

func (e *StageError) Unwrap() error {
	return e.Err
}

// Synchronizer keeps zone files, the registry, and the running daemon
// consistent for one BIND deployment. It performs no locking; concurrent
// invocations must be serialized by the caller.
type Synchronizer struct {
	cfg      config.DNS
	registry *Registry
	control  Control
	resolver Resolver
	log      *logger.Logger
	now      func() time.Time
}

// NewSynchronizer creates a synchronizer over the given control and
// resolver ports.
func NewSynchronizer(cfg config.DNS, control Control, resolver Resolver, log *logger.Logger) *Synchronizer {
	return &Synchronizer{
		cfg:      cfg,
		registry: &Registry{Path: cfg.RegistryPath},
		control:  control,
		resolver: resolver,
		log:      log,
		now:      time.Now,
	}
}

// ZoneFilePath returns where domain's zone file lives.
func (s *Synchronizer) ZoneFilePath(domain string) string {
	return filepath.Join(s.cfg.ZonesDir, "db."+domain)
}

func normalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

// Create writes the zone file for domain, registers the zone if it is not
// already declared, validates the registry and reloads the daemon.
// signingKey may be empty; when set, it is cleaned and published as a DKIM
// TXT record. Rewriting an existing zone always bumps the serial.
func (s *Synchronizer) Create(ctx context.Context, domain, signingKey string) error {
	domain = normalizeDomain(domain)
	path := s.ZoneFilePath(domain)

	prev, _ := readSerial(path)
	body, err := renderZone(zoneData{
		Domain:     domain,
		NSBase:     s.cfg.NSBase,
		ServerIP:   s.cfg.ServerIP,
		SigningKey: CleanSigningKey(signingKey),
		TTL:        s.cfg.TTL,
		Serial:     nextSerial(prev, s.now()),
	})
	if err != nil {
		return &StageError{Stage: StageZoneFile, Err: err}
	}
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil { //nolint:gosec // zone files must stay readable by named
		return &StageError{Stage: StageZoneFile, Err: err}
	}
	s.log.Info("Created zone file: %s", path)

	registered, err := s.registry.Has(domain)
	if err != nil {
		return &StageError{Stage: StageRegistryRead, Err: err}
	}
	if registered {
		s.log.Info("Zone %s already registered, registry unchanged", domain)
	} else {
		if err := s.registry.Append(domain, path); err != nil {
			return &StageError{Stage: StageRegistryWrite, Err: err}
		}
		s.log.Info("Registered zone %s", domain)
	}

	return s.Reload(ctx)
}

// Remove deletes domain's registry block and zone file together. A missing
// zone file is not an error. The daemon reload is left to the caller so the
// removal outcome and the reload outcome stay separately reportable.
func (s *Synchronizer) Remove(_ context.Context, domain string) error {
	domain = normalizeDomain(domain)

	if err := s.registry.Remove(domain); err != nil {
		return &StageError{Stage: StageRegistryWrite, Err: err}
	}
	s.log.Info("Removed zone %s from registry", domain)

	path := s.ZoneFilePath(domain)
	if err := os.Remove(path); err != nil {
		if !os.IsNotExist(err) {
			return &StageError{Stage: StageZoneFile, Err: err}
		}
	} else {
		s.log.Info("Removed zone file: %s", path)
	}
	return nil
}

// List returns all registered domains in registry order, excluding the
// name server's own base zone.
func (s *Synchronizer) List() ([]string, error) {
	all, err := s.registry.List()
	if err != nil {
		return nil, &StageError{Stage: StageRegistryRead, Err: err}
	}

	zones := make([]string, 0, len(all))
	for _, zone := range all {
		if zone != s.cfg.NSBase {
			zones = append(zones, zone)
		}
	}
	return zones, nil
}

// Verify checks that the configured server answers an A query for domain
// with the configured mail server address. Query errors and timeouts are
// verification failures, never returned errors.
func (s *Synchronizer) Verify(ctx context.Context, domain string) bool {
	domain = normalizeDomain(domain)

	addrs, err := s.resolver.LookupA(ctx, domain, s.cfg.ServerIP)
	if err != nil {
		s.log.Debug("Verification query for %s failed: %v", domain, err)
		return false
	}
	for _, addr := range addrs {
		if addr == s.cfg.ServerIP {
			return true
		}
	}
	s.log.Debug("Verification for %s: got %v, want %s", domain, addrs, s.cfg.ServerIP)
	return false
}

// Reload validates the registry syntax and reloads the daemon. The check
// runs first so a broken registry never reaches the live server.
func (s *Synchronizer) Reload(ctx context.Context) error {
	if err := s.control.CheckConf(ctx); err != nil {
		return &StageError{Stage: StageCheckConf, Err: err}
	}
	if err := s.control.Reload(ctx); err != nil {
		return &StageError{Stage: StageReload, Err: err}
	}
	s.log.Info("Name server reloaded")
	return nil
}
