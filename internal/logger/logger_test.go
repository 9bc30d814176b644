package logger

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
)

func TestMaskSecret(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"", "****"},
		{"ab", "****"},
		{"abcd", "****"},
		{"abcde", "ab*de"},
		{"secretkey123", "se********23"},
	}

	for _, tt := range tests {
		result := MaskSecret(tt.input)
		if result != tt.expected {
			t.Errorf("MaskSecret(%q) = %q, want %q", tt.input, result, tt.expected)
		}
		// Ensure the original secret is not exposed
		if len(tt.input) > 4 && strings.Contains(result, tt.input) {
			t.Errorf("MaskSecret(%q) = %q should not contain the original secret", tt.input, result)
		}
	}
}

func TestLogger_DebugSuppressed(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{NoColor: true})
	log.out = &buf

	log.Debug("hidden message")
	if buf.Len() != 0 {
		t.Errorf("Expected no debug output without verbose, got %q", buf.String())
	}

	log.level = LevelDebug
	log.Debug("visible message")
	if !strings.Contains(buf.String(), "visible message") {
		t.Errorf("Expected debug output in verbose mode, got %q", buf.String())
	}
}

func TestLogger_DryRunPrefix(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{NoColor: true})
	log.out = &buf
	log.SetDryRun(true)

	log.Info("creating domain")
	if !strings.Contains(buf.String(), "[DRY RUN] creating domain") {
		t.Errorf("Expected dry-run prefix, got %q", buf.String())
	}
}

func TestLogger_JSONOutput(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{JSON: true})
	log.out = &buf

	log.InfoWithData("setup complete", map[string]interface{}{"mailboxes": 3})

	var entry LogEntry
	if err := json.Unmarshal(buf.Bytes(), &entry); err != nil {
		t.Fatalf("Output is not valid JSON: %v: %q", err, buf.String())
	}
	if entry.Level != "info" || entry.Message != "setup complete" {
		t.Errorf("Unexpected entry: %+v", entry)
	}
	if entry.Data["mailboxes"] != float64(3) {
		t.Errorf("Expected mailboxes=3 in data, got %v", entry.Data)
	}
}

func TestLogger_TableEmpty(t *testing.T) {
	var buf bytes.Buffer
	log := New(Options{NoColor: true})
	log.out = &buf

	log.Table("Configured zones", []string{"DOMAIN"}, nil)
	if !strings.Contains(buf.String(), "(none)") {
		t.Errorf("Expected (none) marker for empty table, got %q", buf.String())
	}
}
