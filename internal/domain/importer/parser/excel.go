package parser

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/xuri/excelize/v2"
)

// parseExcel reads the first sheet of an Excel workbook, treating the first
// row as headers.
func parseExcel(fileName string, data []byte) (*ParseResult, error) {
	if len(data) == 0 {
		return nil, &ParseError{FileName: fileName, Message: ErrEmptyFile.Error()}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{FileName: fileName, Message: fmt.Sprintf("malformed content: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{FileName: fileName, Message: "workbook has no sheets"}
	}

	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{FileName: fileName, Message: fmt.Sprintf("failed to read sheet %s: %v", sheets[0], err)}
	}
	if len(grid) == 0 {
		return nil, &ParseError{FileName: fileName, Message: ErrEmptyFile.Error()}
	}

	headers := make([]string, len(grid[0]))
	for i, h := range grid[0] {
		headers[i] = strings.TrimSpace(h)
	}

	rows := make([]RawRow, 0, len(grid)-1)
	for _, cells := range grid[1:] {
		row := make(RawRow, len(headers))
		for i, header := range headers {
			if header == "" {
				continue
			}
			if i < len(cells) {
				row[header] = cells[i]
			} else {
				row[header] = ""
			}
		}
		rows = append(rows, row)
	}
	if len(rows) == 0 {
		return nil, &ParseError{FileName: fileName, Message: ErrNoDataRows.Error()}
	}

	return &ParseResult{Headers: headers, Rows: rows}, nil
}

// SheetGrid returns an upload as a two-dimensional cell array without
// interpreting any row as headers. The attendance importer uses it to sniff
// legacy fixed-layout reports before deciding how to read the file. CSV
// uploads become a grid through the same delimiter detection as ParseFile;
// workbooks contribute their first sheet.
func SheetGrid(fileName string, data []byte) ([][]string, error) {
	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		return csvGrid(fileName, data)
	case ".xlsx", ".xls":
	default:
		return nil, &ParseError{FileName: fileName, Message: ErrUnsupportedFormat.Error()}
	}

	if len(data) == 0 {
		return nil, &ParseError{FileName: fileName, Message: ErrEmptyFile.Error()}
	}

	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, &ParseError{FileName: fileName, Message: fmt.Sprintf("malformed content: %v", err)}
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, &ParseError{FileName: fileName, Message: "workbook has no sheets"}
	}

	grid, err := f.GetRows(sheets[0])
	if err != nil {
		return nil, &ParseError{FileName: fileName, Message: fmt.Sprintf("failed to read sheet %s: %v", sheets[0], err)}
	}
	if len(grid) == 0 {
		return nil, &ParseError{FileName: fileName, Message: ErrEmptyFile.Error()}
	}
	return grid, nil
}

func csvGrid(fileName string, data []byte) ([][]string, error) {
	data = normalizeCSVBytes(data)
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, &ParseError{FileName: fileName, Message: ErrEmptyFile.Error()}
	}

	r := csv.NewReader(bytes.NewReader(data))
	r.Comma = detectDelimiter(firstLine(data))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1

	grid, err := r.ReadAll()
	if err != nil {
		return nil, &ParseError{FileName: fileName, Message: fmt.Sprintf("malformed content: %v", err)}
	}
	return grid, nil
}
