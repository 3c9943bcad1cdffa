// Package attendance imports bulk attendance records from spreadsheet
// exports. Unlike the generic column-mapped import, this path cross-
// references existing students and commits all-or-nothing: any bad row
// rejects the whole batch.
package attendance

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
)

// maxReportedErrors caps how many row errors a rejected batch reports.
const maxReportedErrors = 10

// headerScanRows is how many leading rows are scanned for a recognizable
// header row on the standard path.
const headerScanRows = 10

// Record is one normalized attendance record ready for persistence.
type Record struct {
	StudentID       uuid.UUID `json:"student_id"`
	SchoolStudentID string    `json:"school_student_id"`
	RecordDate      string    `json:"record_date"`
	Status          string    `json:"status"`
	Notes           string    `json:"notes,omitempty"`
}

// RowError describes why one source row was rejected. Row is the 1-based
// position in the sheet.
type RowError struct {
	Row     int    `json:"row"`
	Message string `json:"message"`
}

func (e RowError) Error() string {
	return fmt.Sprintf("row %d: %s", e.Row, e.Message)
}

// BatchError rejects an entire import. Errors holds at most
// maxReportedErrors entries; Total counts every failing row.
type BatchError struct {
	Errors []RowError
	Total  int
}

func (e *BatchError) Error() string {
	return fmt.Sprintf("attendance import rejected: %d row(s) failed", e.Total)
}

// StudentDirectory resolves school-issued student IDs against the registry.
type StudentDirectory interface {
	FindStudentByExternalID(ctx context.Context, schoolStudentID string) (uuid.UUID, bool, error)
}

// Importer turns a sheet grid into attendance records.
type Importer struct {
	students StudentDirectory
	aliases  *aliasMatcher
	logger   *slog.Logger
}

// NewImporter creates an attendance importer backed by the given student
// directory.
func NewImporter(students StudentDirectory, logger *slog.Logger) *Importer {
	return &Importer{
		students: students,
		aliases:  newAliasMatcher(),
		logger:   logger,
	}
}

// Import detects the sheet layout, extracts and validates every row, and
// returns the full record set or a BatchError. Row failures never abort the
// scan early; they are collected so the user sees them together, but a
// non-empty error list rejects the batch with zero records.
func (imp *Importer) Import(ctx context.Context, grid [][]string) ([]Record, error) {
	kind := detectLayout(grid)

	var (
		records []Record
		rowErrs []RowError
		err     error
	)

	switch kind {
	case layoutRegister, layoutDailyExport:
		records, rowErrs = imp.extractFixed(ctx, grid, fixedLayouts[kind])
	case layoutStandard:
		records, rowErrs, err = imp.extractStandard(ctx, grid)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("empty attendance sheet")
	}

	if len(rowErrs) > 0 {
		imp.logger.Warn("attendance import rejected",
			"failed_rows", len(rowErrs), "layout", kind)
		reported := rowErrs
		if len(reported) > maxReportedErrors {
			reported = reported[:maxReportedErrors]
		}
		return nil, &BatchError{Errors: reported, Total: len(rowErrs)}
	}

	return records, nil
}

// extractFixed reads rows from position-addressed columns.
func (imp *Importer) extractFixed(ctx context.Context, grid [][]string, layout fixedLayout) ([]Record, []RowError) {
	var records []Record
	var rowErrs []RowError

	for i := layout.dataStart; i < len(grid); i++ {
		row := grid[i]
		if isBlankRow(row) {
			continue
		}

		rec, err := imp.buildRecord(ctx, i+1,
			cell(row, layout.idCol),
			cell(row, layout.dateCol),
			cell(row, layout.statusCol),
			cell(row, layout.notesCol),
		)
		if err != nil {
			rowErrs = append(rowErrs, *err)
			continue
		}
		records = append(records, *rec)
	}

	return records, rowErrs
}

// extractStandard locates the header row by scanning for a student-ID anchor
// cell, resolves columns through the alias table, then reads the data rows.
func (imp *Importer) extractStandard(ctx context.Context, grid [][]string) ([]Record, []RowError, error) {
	headerRow := -1
	var cols map[string]int

	limit := headerScanRows
	if len(grid) < limit {
		limit = len(grid)
	}
	for i := 0; i < limit; i++ {
		candidate := imp.aliases.mapHeaders(grid[i])
		if _, ok := candidate["school_student_id"]; ok {
			headerRow = i
			cols = candidate
			break
		}
	}
	if headerRow < 0 {
		return nil, nil, fmt.Errorf("no attendance header row found in first %d rows", headerScanRows)
	}

	idCol, ok := cols["school_student_id"]
	if !ok {
		return nil, nil, fmt.Errorf("no student ID column found")
	}
	dateCol, ok := cols["record_date"]
	if !ok {
		return nil, nil, fmt.Errorf("no date column found")
	}
	statusCol := -1
	if c, ok := cols["status"]; ok {
		statusCol = c
	}
	notesCol := -1
	if c, ok := cols["notes"]; ok {
		notesCol = c
	}

	var records []Record
	var rowErrs []RowError

	for i := headerRow + 1; i < len(grid); i++ {
		row := grid[i]
		if isBlankRow(row) {
			continue
		}

		rec, err := imp.buildRecord(ctx, i+1,
			cell(row, idCol),
			cell(row, dateCol),
			cell(row, statusCol),
			cell(row, notesCol),
		)
		if err != nil {
			rowErrs = append(rowErrs, *err)
			continue
		}
		records = append(records, *rec)
	}

	return records, rowErrs, nil
}

// buildRecord validates one row: required values first, then the student
// lookup, then date normalization.
func (imp *Importer) buildRecord(ctx context.Context, rowNum int, externalID, rawDate, status, notes string) (*Record, *RowError) {
	if externalID == "" {
		return nil, &RowError{Row: rowNum, Message: "missing student ID"}
	}
	if rawDate == "" {
		return nil, &RowError{Row: rowNum, Message: "missing attendance date"}
	}

	studentID, found, err := imp.students.FindStudentByExternalID(ctx, externalID)
	if err != nil {
		return nil, &RowError{Row: rowNum, Message: fmt.Sprintf("student lookup failed: %v", err)}
	}
	if !found {
		return nil, &RowError{Row: rowNum, Message: fmt.Sprintf("no student with ID %q", externalID)}
	}

	date, err := NormalizeDate(rawDate)
	if err != nil {
		return nil, &RowError{Row: rowNum, Message: fmt.Sprintf("unparseable date %q", rawDate)}
	}

	if status == "" {
		status = "absent"
	}

	return &Record{
		StudentID:       studentID,
		SchoolStudentID: externalID,
		RecordDate:      date,
		Status:          strings.ToLower(status),
		Notes:           notes,
	}, nil
}

var nativeDateFormats = []string{
	"2006-01-02",
	"01/02/2006",
	"1/2/2006",
	"2006/01/02",
	"01-02-2006",
}

// NormalizeDate converts a raw cell value to YYYY-MM-DD. Native parsing runs
// first; on failure the value is split on "/" or "-" and reinterpreted as
// year-first or month-first depending on which segment has length 4.
func NormalizeDate(raw string) (string, error) {
	raw = strings.TrimSpace(raw)

	for _, format := range nativeDateFormats {
		if t, err := time.Parse(format, raw); err == nil {
			return t.Format("2006-01-02"), nil
		}
	}

	parts := strings.FieldsFunc(raw, func(r rune) bool {
		return r == '/' || r == '-'
	})
	if len(parts) != 3 {
		return "", fmt.Errorf("unrecognized date %q", raw)
	}

	var year, month, day string
	switch {
	case len(parts[0]) == 4:
		year, month, day = parts[0], parts[1], parts[2]
	case len(parts[2]) == 4:
		year, month, day = parts[2], parts[0], parts[1]
	default:
		return "", fmt.Errorf("unrecognized date %q", raw)
	}

	return fmt.Sprintf("%s-%s-%s", year, pad2(month), pad2(day)), nil
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func isBlankRow(row []string) bool {
	for _, c := range row {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
