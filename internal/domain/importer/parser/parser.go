// Package parser reads uploaded CSV and Excel files into ordered sequences
// of header-keyed rows. It is the ingestion edge of the bulk-import pipeline;
// column mapping and validation happen downstream.
package parser

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/gocarina/gocsv"
)

// gocsv configures its reader through a package-global hook. The mutex
// serializes the hook swap with the decode that uses it, so concurrent
// uploads with different delimiters cannot mis-parse each other.
var gocsvMu sync.Mutex

// RawRow maps a source column header to the raw cell value for one row.
type RawRow map[string]string

// ParseResult holds a fully parsed upload. Headers keeps the original column
// order; Rows is the ordered sequence of data rows.
type ParseResult struct {
	Headers []string
	Rows    []RawRow
}

// ParseError is fatal for the current upload. The session surfaces it as a
// single validation issue and resets itself.
type ParseError struct {
	FileName string
	Message  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %s: %s", e.FileName, e.Message)
}

var (
	ErrEmptyFile         = errors.New("file is empty")
	ErrNoDataRows        = errors.New("file has no data rows")
	ErrUnsupportedFormat = errors.New("unsupported file format")
)

// ParseFile dispatches on the file extension before reading any content.
// Only .csv, .xlsx and .xls are accepted.
func ParseFile(fileName string, data []byte) (*ParseResult, error) {
	ext := strings.ToLower(filepath.Ext(fileName))
	switch ext {
	case ".csv":
		return parseCSV(fileName, data)
	case ".xlsx", ".xls":
		return parseExcel(fileName, data)
	default:
		return nil, &ParseError{FileName: fileName, Message: ErrUnsupportedFormat.Error()}
	}
}

func parseCSV(fileName string, data []byte) (*ParseResult, error) {
	data = normalizeCSVBytes(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{FileName: fileName, Message: ErrEmptyFile.Error()}
	}

	delimiter := detectDelimiter(firstLine(data))

	newReader := func(in io.Reader) *csv.Reader {
		r := csv.NewReader(in)
		r.Comma = delimiter
		r.LazyQuotes = true
		r.TrimLeadingSpace = true
		r.FieldsPerRecord = -1
		return r
	}

	// Headers first, in source order.
	headerReader := newReader(bytes.NewReader(data))
	headers, err := headerReader.Read()
	if err != nil {
		return nil, &ParseError{FileName: fileName, Message: fmt.Sprintf("invalid header row: %v", err)}
	}
	for i, h := range headers {
		headers[i] = strings.TrimSpace(h)
	}

	gocsvMu.Lock()
	gocsv.SetCSVReader(func(in io.Reader) gocsv.CSVReader {
		return newReader(in)
	})
	maps, err := gocsv.CSVToMaps(bytes.NewReader(data))
	gocsvMu.Unlock()
	if err != nil {
		return nil, &ParseError{FileName: fileName, Message: fmt.Sprintf("malformed content: %v", err)}
	}
	if len(maps) == 0 {
		return nil, &ParseError{FileName: fileName, Message: ErrNoDataRows.Error()}
	}

	rows := make([]RawRow, 0, len(maps))
	for _, m := range maps {
		row := make(RawRow, len(m))
		for k, v := range m {
			row[strings.TrimSpace(k)] = v
		}
		rows = append(rows, row)
	}

	return &ParseResult{Headers: headers, Rows: rows}, nil
}

func firstLine(data []byte) string {
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		data = data[:idx]
	}
	return strings.TrimRight(string(data), "\r")
}

// detectDelimiter picks the delimiter that splits the header line into the
// most fields. Comma wins ties since it is checked last with >=.
func detectDelimiter(line string) rune {
	best := ','
	bestCount := 0
	for _, d := range []rune{';', '\t', '|', ','} {
		if count := strings.Count(line, string(d)); count >= bestCount && count > 0 {
			best = d
			bestCount = count
		}
	}
	return best
}

// normalizeCSVBytes strips a UTF-8 BOM and reinterprets non-UTF-8 content as
// Latin-1, matching how spreadsheet exports from older SIS tools arrive.
func normalizeCSVBytes(data []byte) []byte {
	data = stripUTF8BOM(data)
	if utf8.Valid(data) {
		return data
	}
	return decodeLatin1(data)
}

func stripUTF8BOM(data []byte) []byte {
	if len(data) >= 3 && data[0] == 0xEF && data[1] == 0xBB && data[2] == 0xBF {
		return data[3:]
	}
	return data
}

func decodeLatin1(data []byte) []byte {
	runes := make([]rune, len(data))
	for i, b := range data {
		runes[i] = rune(b)
	}
	return []byte(string(runes))
}
