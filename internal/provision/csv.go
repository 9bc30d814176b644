package provision

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// Row is one line of the bulk input sheet.
type Row struct {
	Domain         string
	Username       string
	FirstName      string
	LastName       string
	DailyLimit     int
	TrackingDomain string
}

// DefaultDailyLimit is used when the Daily Limit column is absent or empty.
const DefaultDailyLimit = 50

var requiredColumns = []string{"Domain", "Username", "First Name", "Last Name"}

// ReadRows parses the bulk input CSV. Columns are matched by header name,
// so column order does not matter. Domain and username are lowercased; the
// tracking domain defaults to track.<domain>.
func ReadRows(r io.Reader) ([]Row, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("failed to read CSV header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, required := range requiredColumns {
		if _, ok := index[required]; !ok {
			return nil, fmt.Errorf(
				"CSV format not recognized: missing %q column (expected: %s)",
				required, strings.Join(requiredColumns, ", "))
		}
	}

	field := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[i])
	}

	var rows []Row
	for {
		record, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to read CSV record: %w", err)
		}

		row := Row{
			Domain:         strings.ToLower(field(record, "Domain")),
			Username:       strings.ToLower(field(record, "Username")),
			FirstName:      field(record, "First Name"),
			LastName:       field(record, "Last Name"),
			DailyLimit:     DefaultDailyLimit,
			TrackingDomain: field(record, "Tracking Domain"),
		}
		if v := field(record, "Daily Limit"); v != "" {
			if limit, err := strconv.Atoi(v); err == nil {
				row.DailyLimit = limit
			}
		}
		if row.TrackingDomain == "" && row.Domain != "" {
			row.TrackingDomain = "track." + row.Domain
		}
		rows = append(rows, row)
	}
	return rows, nil
}
