package provision

import (
	"strings"
	"testing"
)

func TestReadRows(t *testing.T) {
	input := `Domain,Username,First Name,Last Name,Daily Limit,Tracking Domain
Example1.com,John,John,Doe,50,track.example1.com
example1.com,jane,Jane,Smith,30,
example2.com,bob,Bob,Stone,,
`
	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("Expected 3 rows, got %d", len(rows))
	}

	// Domain and username lowercased
	if rows[0].Domain != "example1.com" || rows[0].Username != "john" {
		t.Errorf("Expected lowercased domain/username, got %q/%q", rows[0].Domain, rows[0].Username)
	}
	if rows[0].FirstName != "John" || rows[0].LastName != "Doe" {
		t.Errorf("Names must keep their case, got %q %q", rows[0].FirstName, rows[0].LastName)
	}
	if rows[0].DailyLimit != 50 || rows[1].DailyLimit != 30 {
		t.Errorf("Unexpected daily limits: %d, %d", rows[0].DailyLimit, rows[1].DailyLimit)
	}

	// Defaults
	if rows[2].DailyLimit != DefaultDailyLimit {
		t.Errorf("Expected default daily limit %d, got %d", DefaultDailyLimit, rows[2].DailyLimit)
	}
	if rows[1].TrackingDomain != "track.example1.com" {
		t.Errorf("Expected tracking domain default, got %q", rows[1].TrackingDomain)
	}
}

func TestReadRows_ColumnOrderIndependent(t *testing.T) {
	input := `Username,Last Name,First Name,Domain
john,Doe,John,example.com
`
	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if rows[0].Domain != "example.com" || rows[0].FirstName != "John" {
		t.Errorf("Header-based mapping broken: %+v", rows[0])
	}
	if rows[0].DailyLimit != DefaultDailyLimit {
		t.Errorf("Expected default daily limit without the column, got %d", rows[0].DailyLimit)
	}
}

func TestReadRows_UnrecognizedFormat(t *testing.T) {
	input := `email,name
john@example.com,John
`
	if _, err := ReadRows(strings.NewReader(input)); err == nil {
		t.Error("Expected error for unrecognized CSV format")
	} else if !strings.Contains(err.Error(), "Domain") {
		t.Errorf("Error should name the missing column, got: %v", err)
	}
}

func TestReadRows_EmptyFile(t *testing.T) {
	if _, err := ReadRows(strings.NewReader("")); err == nil {
		t.Error("Expected error for empty input")
	}
}

func TestReadRows_ShortRecord(t *testing.T) {
	input := `Domain,Username,First Name,Last Name,Daily Limit
example.com,john
`
	rows, err := ReadRows(strings.NewReader(input))
	if err != nil {
		t.Fatalf("ReadRows failed: %v", err)
	}
	if rows[0].FirstName != "" || rows[0].DailyLimit != DefaultDailyLimit {
		t.Errorf("Short record should yield empty/default fields, got %+v", rows[0])
	}
}
