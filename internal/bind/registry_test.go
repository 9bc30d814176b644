package bind

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func newTestRegistry(t *testing.T, content string) *Registry {
	t.Helper()
	path := filepath.Join(t.TempDir(), "named.conf.local")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return &Registry{Path: path}
}

func registryContent(t *testing.T, r *Registry) string {
	t.Helper()
	data, err := os.ReadFile(r.Path)
	if err != nil {
		t.Fatal(err)
	}
	return string(data)
}

func TestRegistry_AppendAndHas(t *testing.T) {
	r := newTestRegistry(t, "")

	has, err := r.Has("example.com")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if has {
		t.Error("Expected Has=false on empty registry")
	}

	if err := r.Append("example.com", "/etc/bind/db.example.com"); err != nil {
		t.Fatalf("Append failed: %v", err)
	}

	has, err = r.Has("example.com")
	if err != nil {
		t.Fatalf("Has failed: %v", err)
	}
	if !has {
		t.Error("Expected Has=true after Append")
	}

	content := registryContent(t, r)
	for _, want := range []string{
		`zone "example.com" {`,
		"type master;",
		`file "/etc/bind/db.example.com";`,
		"allow-transfer { any; };",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("Registry missing %q:\n%s", want, content)
		}
	}
}

func TestRegistry_HasExactMatch(t *testing.T) {
	r := newTestRegistry(t, "")
	if err := r.Append("aa.com", "/etc/bind/db.aa.com"); err != nil {
		t.Fatal(err)
	}

	has, err := r.Has("a.com")
	if err != nil {
		t.Fatal(err)
	}
	if has {
		t.Error("Has(a.com) must not match the aa.com declaration")
	}
}

func TestRegistry_RemoveSoleZone(t *testing.T) {
	r := newTestRegistry(t, "")
	if err := r.Append("example.com", "/etc/bind/db.example.com"); err != nil {
		t.Fatal(err)
	}

	if err := r.Remove("example.com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	zones, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(zones) != 0 {
		t.Errorf("Expected empty registry, got zones %v", zones)
	}
	if strings.Contains(registryContent(t, r), "zone") {
		t.Errorf("Expected no zone blocks left:\n%s", registryContent(t, r))
	}
}

func TestRegistry_RemovePrefixDomain(t *testing.T) {
	r := newTestRegistry(t, "")
	for _, domain := range []string{"a.com", "aa.com"} {
		if err := r.Append(domain, "/etc/bind/db."+domain); err != nil {
			t.Fatal(err)
		}
	}

	if err := r.Remove("a.com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	zones, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(zones) != 1 || zones[0] != "aa.com" {
		t.Errorf("Expected only aa.com to remain, got %v", zones)
	}

	// The surviving block must be intact
	content := registryContent(t, r)
	if !strings.Contains(content, `zone "aa.com" {`) || !strings.Contains(content, `file "/etc/bind/db.aa.com";`) {
		t.Errorf("aa.com block corrupted by removing a.com:\n%s", content)
	}
}

func TestRegistry_RemoveBraceOnOwnLine(t *testing.T) {
	// Unusual but legal formatting: opening brace on its own line,
	// plus a nested block inside.
	content := `zone "first.com"
{
    type master;
    file "/etc/bind/db.first.com";
    allow-transfer { any; };
};
zone "second.com" {
    type master;
    file "/etc/bind/db.second.com";
};
`
	r := newTestRegistry(t, content)

	if err := r.Remove("first.com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}

	zones, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(zones) != 1 || zones[0] != "second.com" {
		t.Errorf("Expected only second.com to remain, got %v", zones)
	}
}

func TestRegistry_RemoveAbsentZoneIsNoop(t *testing.T) {
	r := newTestRegistry(t, "")
	if err := r.Append("example.com", "/etc/bind/db.example.com"); err != nil {
		t.Fatal(err)
	}
	before := registryContent(t, r)

	if err := r.Remove("other.com"); err != nil {
		t.Fatalf("Remove failed: %v", err)
	}
	if after := registryContent(t, r); after != before {
		t.Errorf("Registry changed by removing absent zone:\n%s", after)
	}
}

func TestRegistry_ListPreservesOrder(t *testing.T) {
	r := newTestRegistry(t, "")
	domains := []string{"charlie.com", "alpha.com", "bravo.com"}
	for _, domain := range domains {
		if err := r.Append(domain, "/etc/bind/db."+domain); err != nil {
			t.Fatal(err)
		}
	}

	zones, err := r.List()
	if err != nil {
		t.Fatal(err)
	}
	if len(zones) != len(domains) {
		t.Fatalf("Expected %d zones, got %v", len(domains), zones)
	}
	for i, domain := range domains {
		if zones[i] != domain {
			t.Errorf("Expected insertion order %v, got %v", domains, zones)
			break
		}
	}
}

func TestRegistry_MissingFile(t *testing.T) {
	r := &Registry{Path: filepath.Join(t.TempDir(), "absent.conf")}

	if _, err := r.Has("example.com"); err == nil {
		t.Error("Expected error for missing registry file")
	}
	if _, err := r.List(); err == nil {
		t.Error("Expected error for missing registry file")
	}
	if err := r.Remove("example.com"); err == nil {
		t.Error("Expected error for missing registry file")
	}
}
