package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"clickscan/internal/detect"
)

// csvHeader names every exported column; one row per flagged resource
var csvHeader = []string{
	"Subscription",
	"Resource ID",
	"Resource Name",
	"Resource Type",
	"Resource Group",
	"Tags",
	"Created By",
	"Managed By",
	"Created Time",
	"Provisioning State",
	"Portal Creation Indicators",
}

// Writer serializes findings to a CSV file. Only flagged findings are
// exported. The file is truncated at creation and the header row written
// once, before any data rows.
type Writer struct {
	path string
	file *os.File
	csv  *csv.Writer
}

// NewWriter creates the output file and writes the header row. Errors here
// are fatal to the run: an unwritable output path should stop the scan
// before any subscriptions are queried.
func NewWriter(path string) (*Writer, error) {
	file, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file %s: %w", path, err)
	}

	w := &Writer{
		path: path,
		file: file,
		csv:  csv.NewWriter(file),
	}

	if err := w.csv.Write(csvHeader); err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to write CSV header to %s: %w", path, err)
	}

	return w, nil
}

// Path returns the output file path
func (w *Writer) Path() string {
	return w.path
}

// Write appends one row per flagged finding, preserving discovery order
func (w *Writer) Write(findings detect.Findings) error {
	for _, f := range findings {
		if !f.Flagged() {
			continue
		}

		row := []string{
			f.SubscriptionName,
			f.Resource.ID,
			f.Resource.Name,
			f.Resource.Type,
			f.Resource.ResourceGroup,
			formatTags(f.Resource.Tags),
			f.Resource.CreatedBy,
			f.Resource.ManagedBy,
			f.Resource.CreatedTime,
			f.Resource.ProvisioningState,
			strings.Join(f.Indicators, "; "),
		}
		if err := w.csv.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row to %s: %w", w.path, err)
		}
	}

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		return fmt.Errorf("failed to flush CSV output to %s: %w", w.path, err)
	}
	return nil
}

// Close flushes buffered rows and closes the file. Safe to call more than
// once so error paths can close unconditionally.
func (w *Writer) Close() error {
	if w.file == nil {
		return nil
	}
	defer func() { w.file = nil }()

	w.csv.Flush()
	if err := w.csv.Error(); err != nil {
		w.file.Close()
		return fmt.Errorf("failed to flush CSV output to %s: %w", w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return fmt.Errorf("failed to close output file %s: %w", w.path, err)
	}
	return nil
}

// formatTags joins tags as "k=v; ..." with sorted keys, "No tags" when empty
func formatTags(tags map[string]string) string {
	if len(tags) == 0 {
		return "No tags"
	}
	pairs := make([]string, 0, len(tags))
	for _, k := range sortedKeys(tags) {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, tags[k]))
	}
	return strings.Join(pairs, "; ")
}
