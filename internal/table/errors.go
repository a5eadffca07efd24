package table

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedFormat is returned for uploads whose extension is not a
	// known spreadsheet format.
	ErrUnsupportedFormat = errors.New("unsupported file format")

	// ErrEmptyTable is returned when an upload has no header row.
	ErrEmptyTable = errors.New("table has no header row")

	// ErrNoSheets is returned for workbooks without any worksheet.
	ErrNoSheets = errors.New("workbook has no sheets")
)

// FormatError reports an upload that could not be turned into a table.
// It aborts a conversion before any row is processed.
type FormatError struct {
	Filename string
	Err      error
}

func (e *FormatError) Error() string {
	if e.Filename == "" {
		return fmt.Sprintf("invalid input: %v", e.Err)
	}
	return fmt.Sprintf("invalid input %q: %v", e.Filename, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// IsFormatError reports whether err is (or wraps) a *FormatError.
func IsFormatError(err error) bool {
	var fe *FormatError
	return errors.As(err, &fe)
}
