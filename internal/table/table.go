// Package table turns uploaded merchant spreadsheets (CSV or XLSX) into an
// in-memory table of named columns and string cells.
//
// Column names keep their original spelling and order. Every row carries the
// full column set, so consumers never need to check for missing keys.
package table

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// Row maps an original column name to its raw cell value.
type Row map[string]string

// Table is an ordered set of columns and rows parsed from an upload.
type Table struct {
	Columns []string
	Rows    []Row
}

// Len returns the number of data rows (header excluded).
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.Rows)
}

// Format identifies a supported upload format.
type Format string

const (
	FormatCSV  Format = "csv"
	FormatTSV  Format = "tsv"
	FormatXLSX Format = "xlsx"
)

var extensionFormats = map[string]Format{
	".csv":  FormatCSV,
	".tsv":  FormatTSV,
	".xlsx": FormatXLSX,
	".xlsm": FormatXLSX,
}

// SupportedExtensions lists the file extensions accepted by Parse.
func SupportedExtensions() []string {
	return []string{".csv", ".tsv", ".xlsx", ".xlsm"}
}

// DetectFormat maps a filename to its format using the extension only.
func DetectFormat(filename string) (Format, error) {
	ext := strings.ToLower(filepath.Ext(strings.TrimSpace(filename)))
	if format, ok := extensionFormats[ext]; ok {
		return format, nil
	}
	return "", &FormatError{
		Filename: filename,
		Err:      fmt.Errorf("%w: %q (supported: %s)", ErrUnsupportedFormat, ext, strings.Join(SupportedExtensions(), ", ")),
	}
}

// Parse reads an upload and returns its table. The filename is used only as a
// format hint. Any failure is returned as a *FormatError.
func Parse(filename string, r io.Reader) (*Table, error) {
	format, err := DetectFormat(filename)
	if err != nil {
		return nil, err
	}

	var t *Table
	switch format {
	case FormatXLSX:
		t, err = ParseXLSX(r)
	case FormatTSV:
		t, err = ParseDelimited(r, '\t')
	default:
		t, err = ParseCSV(r)
	}
	if err != nil {
		return nil, &FormatError{Filename: filename, Err: err}
	}
	return t, nil
}

// FromRecords builds a table from raw records where the first non-blank
// record is the header. Header names are trimmed, blank names become
// "Unnamed: <index>" and duplicates are suffixed ".1", ".2", ... Short rows are
// padded and fully blank rows are dropped.
func FromRecords(records [][]string) (*Table, error) {
	start := -1
	for i, rec := range records {
		if !isBlank(rec) {
			start = i
			break
		}
	}
	if start < 0 {
		return nil, ErrEmptyTable
	}

	columns := normalizeHeader(records[start])
	t := &Table{Columns: columns}

	for _, rec := range records[start+1:] {
		if isBlank(rec) {
			continue
		}
		row := make(Row, len(columns))
		for i, name := range columns {
			if i < len(rec) {
				row[name] = strings.TrimSpace(rec[i])
			} else {
				row[name] = ""
			}
		}
		t.Rows = append(t.Rows, row)
	}

	return t, nil
}

func normalizeHeader(header []string) []string {
	columns := make([]string, len(header))
	used := make(map[string]struct{}, len(header))
	for i, raw := range header {
		name := strings.TrimSpace(raw)
		if i == 0 {
			name = strings.TrimSpace(strings.TrimPrefix(name, "\ufeff"))
		}
		if name == "" {
			name = fmt.Sprintf("Unnamed: %d", i)
		}
		candidate := name
		if _, dup := used[candidate]; dup {
			for n := 1; ; n++ {
				candidate = fmt.Sprintf("%s.%d", name, n)
				if _, taken := used[candidate]; !taken {
					break
				}
			}
		}
		used[candidate] = struct{}{}
		columns[i] = candidate
	}
	return columns
}

func isBlank(rec []string) bool {
	for _, cell := range rec {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
