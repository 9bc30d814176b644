// Package config handles loading and validating the tool configuration from YAML files.
package config

import (
	"fmt"
	"net"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// DefaultTTL is applied to zones when dns.ttl is not set.
const DefaultTTL = 300

// Config is the top-level tool configuration.
type Config struct {
	Mailcow Mailcow `yaml:"mailcow"`
	DNS     DNS     `yaml:"dns"`
}

// Mailcow holds connection settings for the mailcow management API.
type Mailcow struct {
	// APIURL is the base API URL including the version path,
	// e.g. https://mail.example.com/api/v1
	APIURL string `yaml:"api_url"`
	// APIKey is generated in the mailcow admin panel.
	APIKey string `yaml:"api_key"`
	// SkipTLSVerify disables certificate verification, for
	// installations still running on self-signed certificates.
	SkipTLSVerify bool `yaml:"skip_tls_verify"`
}

// DNS holds settings for the BIND zone synchronizer.
type DNS struct {
	// RegistryPath is the master zone list, usually /etc/bind/named.conf.local.
	RegistryPath string `yaml:"registry_path"`
	// ZonesDir is where db.<domain> files are written, usually /etc/bind.
	ZonesDir string `yaml:"zones_dir"`
	// ServerIP is the public IPv4 address of the mail server.
	ServerIP string `yaml:"server_ip"`
	// NSBase is the domain under which the ns1/ns2 hostnames live.
	NSBase string `yaml:"ns_base"`
	// TTL in seconds, also substituted for refresh/retry/negative-cache.
	TTL int `yaml:"ttl"`
}

// LoadFromFile loads and validates configuration from a YAML file.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path is from CLI argument
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse YAML: %w", err)
	}

	cfg.applyDefaults()
	if verr := cfg.Validate(); verr != nil {
		return nil, verr
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.DNS.TTL == 0 {
		c.DNS.TTL = DefaultTTL
	}
}

// ValidationError holds all validation errors.
type ValidationError struct {
	Errors []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf(
		"validation failed with %d error(s):\n  - %s",
		len(e.Errors),
		strings.Join(e.Errors, "\n  - "),
	)
}

// Add appends a formatted error message to the validation errors.
func (e *ValidationError) Add(format string, args ...interface{}) {
	e.Errors = append(e.Errors, fmt.Sprintf(format, args...))
}

// HasErrors returns true if there are any validation errors.
func (e *ValidationError) HasErrors() bool {
	return len(e.Errors) > 0
}

// Validate checks the configuration and returns all errors at once.
// Missing required keys are rejected here rather than allowed to surface
// as empty strings deep inside an API call or a zone write.
func (c *Config) Validate() *ValidationError {
	errs := &ValidationError{}

	if c.Mailcow.APIURL == "" {
		errs.Add("mailcow.api_url is required")
	}
	if c.Mailcow.APIKey == "" {
		errs.Add("mailcow.api_key is required")
	}

	if c.DNS.RegistryPath == "" {
		errs.Add("dns.registry_path is required")
	}
	if c.DNS.ZonesDir == "" {
		errs.Add("dns.zones_dir is required")
	}
	if c.DNS.NSBase == "" {
		errs.Add("dns.ns_base is required")
	}

	switch ip := net.ParseIP(c.DNS.ServerIP); {
	case c.DNS.ServerIP == "":
		errs.Add("dns.server_ip is required")
	case ip == nil || ip.To4() == nil:
		errs.Add("dns.server_ip %q is not a valid IPv4 address", c.DNS.ServerIP)
	}

	if c.DNS.TTL < 0 {
		errs.Add("dns.ttl must not be negative")
	}

	if errs.HasErrors() {
		return errs
	}
	return nil
}
