package importer

import (
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
)

// row is one data record of a headed CSV, addressed by column name.
type row struct {
	cols   map[string]int
	fields []string
}

// get returns the trimmed value of the named column, or "" when absent.
func (r row) get(name string) string {
	i, ok := r.cols[name]
	if !ok || i >= len(r.fields) {
		return ""
	}
	return strings.TrimSpace(r.fields[i])
}

// eachRow streams the data rows of a headed CSV to fn. Column names are
// matched case-insensitively. Errors are prefixed with the 1-based file row.
func eachRow(r io.Reader, required []string, fn func(row) error) error {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("reading header: %w", err)
	}

	cols := make(map[string]int, len(header))
	for i, h := range header {
		cols[strings.ToLower(strings.TrimSpace(h))] = i
	}
	for _, name := range required {
		if _, ok := cols[name]; !ok {
			return fmt.Errorf("missing %q column", name)
		}
	}

	for line := 2; ; line++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
		if err := fn(row{cols: cols, fields: fields}); err != nil {
			return fmt.Errorf("row %d: %w", line, err)
		}
	}
}
