// Package output writes the enriched company table.
package output

import (
	"encoding/csv"
	"fmt"
	"os"
	"sync"

	"github.com/ramkansal/corpscout/pkg/plugin"
)

// Header is the fixed output header: company name, homepage URL, contact email.
var Header = []string{"企業名", "ホームページURL", "お問い合わせメールアドレス"}

// WriteError reports an output table that could not be written.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("write companies to %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error { return e.Err }

// CSVWriter buffers enriched records and writes them to a CSV file
// in one go when the run is finalized.
type CSVWriter struct {
	path    string
	records []plugin.CompanyRecord
	mu      sync.Mutex
}

// NewCSVWriter creates a new CSV output writer. Nothing touches the
// file system until Finalize.
func NewCSVWriter(path string) *CSVWriter {
	return &CSVWriter{path: path}
}

func (w *CSVWriter) Name() string { return "csv" }

// Path returns the destination file.
func (w *CSVWriter) Path() string { return w.path }

func (w *CSVWriter) WriteResult(record plugin.CompanyRecord) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.records = append(w.records, record)
	return nil
}

// Finalize creates or overwrites the destination file with the buffered records.
func (w *CSVWriter) Finalize(_ *plugin.RunSummary) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	return WriteCompanies(w.path, w.records)
}

// WriteCompanies writes records to path under the fixed header,
// replacing any existing file. Absent fields become empty cells.
func WriteCompanies(path string, records []plugin.CompanyRecord) error {
	file, err := os.Create(path)
	if err != nil {
		return &WriteError{Path: path, Err: err}
	}

	cw := csv.NewWriter(file)
	if err := cw.Write(Header); err != nil {
		file.Close()
		return &WriteError{Path: path, Err: err}
	}
	for _, r := range records {
		if err := cw.Write([]string{r.Name, r.Homepage, r.Email}); err != nil {
			file.Close()
			return &WriteError{Path: path, Err: err}
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		file.Close()
		return &WriteError{Path: path, Err: err}
	}

	if err := file.Close(); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}
