package bind

import (
	"fmt"
	"os"
	"regexp"
	"strings"
)

// Registry manipulates the master zone list (named.conf.local). Declaration
// blocks are treated as a brace-delimited grammar rather than matched by
// substring, so removing "a.com" never touches "aa.com" and nested braces
// inside a block (allow-transfer { any; };) do not terminate it early.
type Registry struct {
	Path string
}

var zoneDeclRe = regexp.MustCompile(`^\s*zone\s+"([^"]+)"`)

const zoneBlockFormat = `
zone "%s" {
    type master;
    file "%s";
    allow-transfer { any; };
};
`

// Has reports whether a declaration block for domain exists.
func (r *Registry) Has(domain string) (bool, error) {
	data, err := os.ReadFile(r.Path) //nolint:gosec // path is from config
	if err != nil {
		return false, fmt.Errorf("failed to read registry: %w", err)
	}

	for _, line := range strings.Split(string(data), "\n") {
		if m := zoneDeclRe.FindStringSubmatch(line); m != nil && m[1] == domain {
			return true, nil
		}
	}
	return false, nil
}

// Append adds a master zone declaration block for domain at the end of the
// registry. Callers are expected to check Has first; Append does not.
func (r *Registry) Append(domain, zoneFilePath string) error {
	file, err := os.OpenFile(r.Path, os.O_APPEND|os.O_WRONLY, 0o644) //nolint:gosec // path is from config
	if err != nil {
		return fmt.Errorf("failed to open registry: %w", err)
	}
	defer file.Close()

	if _, err := fmt.Fprintf(file, zoneBlockFormat, domain, zoneFilePath); err != nil {
		return fmt.Errorf("failed to append zone block: %w", err)
	}
	return nil
}

// Remove deletes the declaration block for domain, leaving every other line
// untouched. Removing an unregistered domain is a no-op.
func (r *Registry) Remove(domain string) error {
	data, err := os.ReadFile(r.Path) //nolint:gosec // path is from config
	if err != nil {
		return fmt.Errorf("failed to read registry: %w", err)
	}

	lines := strings.Split(string(data), "\n")
	kept := make([]string, 0, len(lines))

	skipping := false
	opened := false
	depth := 0
	for _, line := range lines {
		if !skipping {
			m := zoneDeclRe.FindStringSubmatch(line)
			if m == nil || m[1] != domain {
				kept = append(kept, line)
				continue
			}
			skipping = true
			opened = false
			depth = 0
		}

		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if strings.Contains(line, "{") {
			opened = true
		}
		if opened && depth <= 0 {
			skipping = false
		}
	}

	if err := os.WriteFile(r.Path, []byte(strings.Join(kept, "\n")), 0o644); err != nil { //nolint:gosec // registry must stay readable by named
		return fmt.Errorf("failed to write registry: %w", err)
	}
	return nil
}

// List returns all declared zone names in file order.
func (r *Registry) List() ([]string, error) {
	data, err := os.ReadFile(r.Path) //nolint:gosec // path is from config
	if err != nil {
		return nil, fmt.Errorf("failed to read registry: %w", err)
	}

	var zones []string
	skipping := false
	opened := false
	depth := 0
	for _, line := range strings.Split(string(data), "\n") {
		if !skipping {
			if m := zoneDeclRe.FindStringSubmatch(line); m != nil {
				zones = append(zones, m[1])
				skipping = true
				opened = false
				depth = 0
			} else {
				continue
			}
		}

		depth += strings.Count(line, "{") - strings.Count(line, "}")
		if strings.Contains(line, "{") {
			opened = true
		}
		if opened && depth <= 0 {
			skipping = false
		}
	}
	return zones, nil
}
