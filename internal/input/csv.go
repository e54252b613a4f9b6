// Package input reads the company table.
package input

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/ramkansal/corpscout/pkg/plugin"
)

// Header aliases per field, in priority order. The first non-empty cell wins.
var (
	NameColumns     = []string{"企業名", "companyName", "name"}
	HomepageColumns = []string{"ホームページURL", "URL", "homepageUrl", "url"}
	EmailColumns    = []string{"お問い合わせメールアドレス", "メールアドレス", "contactEmail", "email"}
)

// ErrNoNameColumn is returned when the header has none of the name aliases.
var ErrNoNameColumn = errors.New("no company name column in header")

// ReadError reports an input table that could not be read.
type ReadError struct {
	Path string
	Err  error
}

func (e *ReadError) Error() string {
	if e.Path == "" {
		return "read companies: " + e.Err.Error()
	}
	return fmt.Sprintf("read companies from %s: %v", e.Path, e.Err)
}

func (e *ReadError) Unwrap() error { return e.Err }

// ReadCompanies loads the company table at path.
func ReadCompanies(path string) ([]plugin.CompanyRecord, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, &ReadError{Path: path, Err: err}
	}
	defer file.Close()

	records, err := ReadCompaniesFrom(file)
	if err != nil {
		var re *ReadError
		if errors.As(err, &re) {
			re.Path = path
		}
		return nil, err
	}
	return records, nil
}

// ReadCompaniesFrom parses a UTF-8 CSV table with a header row.
// Rows whose cells are all blank are skipped.
func ReadCompaniesFrom(r io.Reader) ([]plugin.CompanyRecord, error) {
	content, err := io.ReadAll(r)
	if err != nil {
		return nil, &ReadError{Err: err}
	}
	content = bytes.TrimPrefix(content, []byte("\xef\xbb\xbf"))

	cr := csv.NewReader(bytes.NewReader(content))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if err == io.EOF {
		return nil, &ReadError{Err: errors.New("missing header row")}
	}
	if err != nil {
		return nil, &ReadError{Err: fmt.Errorf("read header: %w", err)}
	}

	cols := newColumnMap(header)
	if len(cols.name) == 0 {
		return nil, &ReadError{Err: ErrNoNameColumn}
	}

	var records []plugin.CompanyRecord
	for {
		row, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, &ReadError{Err: fmt.Errorf("read row: %w", err)}
		}
		if isBlank(row) {
			continue
		}
		records = append(records, plugin.CompanyRecord{
			Name:     cols.lookup(row, cols.name),
			Homepage: cols.lookup(row, cols.homepage),
			Email:    cols.lookup(row, cols.email),
		})
	}
	return records, nil
}

// columnMap holds, per field, the indexes of matching header cells in alias priority order.
type columnMap struct {
	name     []int
	homepage []int
	email    []int
}

func newColumnMap(header []string) columnMap {
	index := make(map[string]int, len(header))
	for i, h := range header {
		h = strings.TrimSpace(h)
		if _, dup := index[h]; !dup {
			index[h] = i
		}
	}

	resolve := func(aliases []string) []int {
		var idx []int
		for _, a := range aliases {
			if i, ok := index[a]; ok {
				idx = append(idx, i)
			}
		}
		return idx
	}

	return columnMap{
		name:     resolve(NameColumns),
		homepage: resolve(HomepageColumns),
		email:    resolve(EmailColumns),
	}
}

func (m columnMap) lookup(row []string, idx []int) string {
	for _, i := range idx {
		if i >= len(row) {
			continue
		}
		if v := strings.TrimSpace(row[i]); v != "" {
			return v
		}
	}
	return ""
}

func isBlank(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
