package attendance

import "strings"

// layoutKind identifies how a sheet's cells are addressed.
type layoutKind int

const (
	layoutUnknown layoutKind = iota
	// layoutRegister is the printable "attendance register" export: two
	// metadata rows under a title cell, then fixed columns
	// (id, name, date, status, notes) starting at row 3.
	layoutRegister
	// layoutDailyExport is the SIS daily export: a labeled title row, a
	// generation timestamp row, then a wide grid with the interesting
	// columns at fixed indices 1/3/5.
	layoutDailyExport
	// layoutStandard is an ordinary header-row sheet resolved through the
	// alias table.
	layoutStandard
)

// fixedLayout addresses cells by position rather than header name.
type fixedLayout struct {
	dataStart int
	idCol     int
	dateCol   int
	statusCol int
	notesCol  int
}

var fixedLayouts = map[layoutKind]fixedLayout{
	layoutRegister:    {dataStart: 3, idCol: 0, dateCol: 2, statusCol: 3, notesCol: 4},
	layoutDailyExport: {dataStart: 2, idCol: 1, dateCol: 3, statusCol: 5, notesCol: -1},
}

// detectLayout sniffs labeled cells in the first rows of the grid. Legacy
// layouts are identified by their title cells; anything else falls back to
// the standard header path.
func detectLayout(grid [][]string) layoutKind {
	if len(grid) == 0 {
		return layoutUnknown
	}

	title := ""
	if len(grid[0]) > 0 {
		title = strings.ToUpper(strings.TrimSpace(grid[0][0]))
	}

	switch {
	case strings.Contains(title, "ATTENDANCE REGISTER"):
		return layoutRegister
	case strings.Contains(title, "DAILY ATTENDANCE EXPORT"):
		return layoutDailyExport
	}

	return layoutStandard
}

func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[idx])
}
