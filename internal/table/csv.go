package table

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// delimiterCandidates are tried in order; ties keep the earlier candidate.
var delimiterCandidates = []rune{',', ';', '\t', '|'}

// ParseCSV reads a delimited text upload, sniffing the delimiter from the
// first non-empty line. Input that is not valid UTF-8 is decoded as
// Windows-1251, the legacy encoding of most Cyrillic spreadsheet exports.
func ParseCSV(r io.Reader) (*Table, error) {
	data, err := readText(r)
	if err != nil {
		return nil, err
	}
	return parseDelimited(data, SniffDelimiter(data))
}

// ParseDelimited reads a text upload with a fixed delimiter.
func ParseDelimited(r io.Reader, delimiter rune) (*Table, error) {
	data, err := readText(r)
	if err != nil {
		return nil, err
	}
	return parseDelimited(data, delimiter)
}

func parseDelimited(data []byte, delimiter rune) (*Table, error) {
	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.LazyQuotes = true
	reader.FieldsPerRecord = -1

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return FromRecords(records)
}

func readText(r io.Reader) ([]byte, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read upload: %w", err)
	}
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	if !utf8.Valid(data) {
		decoded, err := charmap.Windows1251.NewDecoder().Bytes(data)
		if err != nil {
			return nil, fmt.Errorf("decode upload: %w", err)
		}
		data = decoded
	}
	return data, nil
}

// SniffDelimiter picks the candidate delimiter that occurs most often outside
// quotes on the first non-empty line. It defaults to a comma.
func SniffDelimiter(data []byte) rune {
	line := firstLine(data)
	best, bestCount := ',', 0
	for _, candidate := range delimiterCandidates {
		count := 0
		inQuotes := false
		for _, r := range string(line) {
			switch {
			case r == '"':
				inQuotes = !inQuotes
			case r == candidate && !inQuotes:
				count++
			}
		}
		if count > bestCount {
			best, bestCount = candidate, count
		}
	}
	return best
}

func firstLine(data []byte) []byte {
	for len(data) > 0 {
		idx := bytes.IndexByte(data, '\n')
		var line []byte
		if idx < 0 {
			line, data = data, nil
		} else {
			line, data = data[:idx], data[idx+1:]
		}
		if len(bytes.TrimSpace(line)) > 0 {
			return line
		}
	}
	return nil
}
