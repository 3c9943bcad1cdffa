package attendance

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirectory resolves a fixed set of school-issued IDs.
type fakeDirectory struct {
	known map[string]uuid.UUID
	err   error
}

func (d *fakeDirectory) FindStudentByExternalID(_ context.Context, id string) (uuid.UUID, bool, error) {
	if d.err != nil {
		return uuid.Nil, false, d.err
	}
	studentID, ok := d.known[id]
	return studentID, ok, nil
}

func newTestImporter(known ...string) (*Importer, map[string]uuid.UUID) {
	dir := &fakeDirectory{known: make(map[string]uuid.UUID)}
	for _, id := range known {
		dir.known[id] = uuid.New()
	}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewImporter(dir, logger), dir.known
}

func TestImportStandardLayout(t *testing.T) {
	imp, known := newTestImporter("S1", "S2")

	t.Run("header row with aliases", func(t *testing.T) {
		grid := [][]string{
			{"Student ID", "Attendance Date", "Status", "Comments"},
			{"S1", "2024-09-03", "Absent", "sick"},
			{"S2", "2024-09-03", "", ""},
		}
		records, err := imp.Import(context.Background(), grid)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, known["S1"], records[0].StudentID)
		assert.Equal(t, "absent", records[0].Status, "status lowercased")
		assert.Equal(t, "sick", records[0].Notes)
		assert.Equal(t, "absent", records[1].Status, "blank status defaults to absent")
	})

	t.Run("header found below leading junk rows", func(t *testing.T) {
		grid := [][]string{
			{"Lakeside Elementary"},
			{""},
			{"Pupil ID", "Date", "Mark"},
			{"S1", "09/03/2024", "present"},
		}
		records, err := imp.Import(context.Background(), grid)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "2024-09-03", records[0].RecordDate)
	})

	t.Run("blank rows are skipped", func(t *testing.T) {
		grid := [][]string{
			{"Student ID", "Date"},
			{"", "", ""},
			{"S1", "2024-09-03"},
		}
		records, err := imp.Import(context.Background(), grid)
		require.NoError(t, err)
		assert.Len(t, records, 1)
	})

	t.Run("no recognizable header rejected", func(t *testing.T) {
		grid := [][]string{
			{"a", "b"},
			{"c", "d"},
		}
		_, err := imp.Import(context.Background(), grid)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "header")
	})

	t.Run("empty grid rejected", func(t *testing.T) {
		_, err := imp.Import(context.Background(), nil)
		require.Error(t, err)
	})
}

func TestImportFixedLayouts(t *testing.T) {
	imp, known := newTestImporter("S1", "S2")

	t.Run("attendance register", func(t *testing.T) {
		grid := [][]string{
			{"ATTENDANCE REGISTER"},
			{"Lakeside Elementary", "Fall 2024"},
			{"ID", "Name", "Date", "Status", "Notes"},
			{"S1", "Avery Kim", "2024-09-03", "Tardy", "bus"},
			{"S2", "Dana Reyes", "2024-09-03", "present", ""},
		}
		records, err := imp.Import(context.Background(), grid)
		require.NoError(t, err)
		require.Len(t, records, 2)
		assert.Equal(t, known["S1"], records[0].StudentID)
		assert.Equal(t, "tardy", records[0].Status)
		assert.Equal(t, "bus", records[0].Notes)
	})

	t.Run("daily attendance export", func(t *testing.T) {
		grid := [][]string{
			{"DAILY ATTENDANCE EXPORT"},
			{"Generated 2024-09-04 06:00"},
			{"Lakeside", "S1", "Avery Kim", "2024-09-03", "3", "Absent", "x"},
		}
		records, err := imp.Import(context.Background(), grid)
		require.NoError(t, err)
		require.Len(t, records, 1)
		assert.Equal(t, "S1", records[0].SchoolStudentID)
		assert.Equal(t, "absent", records[0].Status)
		assert.Empty(t, records[0].Notes, "export layout carries no notes column")
	})
}

func TestImportAllOrNothing(t *testing.T) {
	imp, _ := newTestImporter("S1")

	t.Run("any bad row rejects the whole batch", func(t *testing.T) {
		grid := [][]string{
			{"Student ID", "Date", "Status"},
			{"S1", "2024-09-03", "present"},
			{"UNKNOWN", "2024-09-03", "present"},
			{"S1", "", "present"},
		}
		records, err := imp.Import(context.Background(), grid)
		assert.Nil(t, records)

		var batchErr *BatchError
		require.ErrorAs(t, err, &batchErr)
		assert.Equal(t, 2, batchErr.Total)
		require.Len(t, batchErr.Errors, 2)
		assert.Equal(t, 3, batchErr.Errors[0].Row, "row numbers are 1-based sheet positions")
		assert.Contains(t, batchErr.Errors[0].Message, "UNKNOWN")
		assert.Equal(t, 4, batchErr.Errors[1].Row)
	})

	t.Run("reported errors capped but total counts all", func(t *testing.T) {
		grid := [][]string{{"Student ID", "Date", "Status"}}
		for i := 0; i < maxReportedErrors+5; i++ {
			grid = append(grid, []string{fmt.Sprintf("MISSING-%d", i), "2024-09-03", "present"})
		}
		_, err := imp.Import(context.Background(), grid)

		var batchErr *BatchError
		require.ErrorAs(t, err, &batchErr)
		assert.Len(t, batchErr.Errors, maxReportedErrors)
		assert.Equal(t, maxReportedErrors+5, batchErr.Total)
	})

	t.Run("directory failure reported as row error", func(t *testing.T) {
		dir := &fakeDirectory{err: fmt.Errorf("connection refused")}
		logger := slog.New(slog.NewTextHandler(io.Discard, nil))
		broken := NewImporter(dir, logger)

		grid := [][]string{
			{"Student ID", "Date"},
			{"S1", "2024-09-03"},
		}
		_, err := broken.Import(context.Background(), grid)
		var batchErr *BatchError
		require.ErrorAs(t, err, &batchErr)
		assert.Contains(t, batchErr.Errors[0].Message, "lookup failed")
	})
}

func TestNormalizeDate(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"2024-09-03", "2024-09-03"},
		{"09/03/2024", "2024-09-03"},
		{"9/3/2024", "2024-09-03"},
		{"2024/09/03", "2024-09-03"},
		{"09-03-2024", "2024-09-03"},
		{" 2024-09-03 ", "2024-09-03"},
		// Month and day are not swapped or range-checked on the fallback
		// path; a day-first export comes through reinterpreted.
		{"14/3/2024", "2024-14-03"},
	}
	for _, tc := range cases {
		t.Run(tc.in, func(t *testing.T) {
			got, err := NormalizeDate(tc.in)
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}

	t.Run("unrecognized values rejected", func(t *testing.T) {
		for _, raw := range []string{"", "yesterday", "2024", "3.9.24.x"} {
			_, err := NormalizeDate(raw)
			assert.Error(t, err, "raw %q", raw)
		}
	})
}

func TestAliasMatching(t *testing.T) {
	am := newAliasMatcher()

	t.Run("containment with punctuation variants", func(t *testing.T) {
		assert.Equal(t, "school_student_id", am.fieldFor("Student_ID"))
		assert.Equal(t, "school_student_id", am.fieldFor("SIS ID Number"))
		assert.Equal(t, "record_date", am.fieldFor("Attendance Date"))
		assert.Equal(t, "notes", am.fieldFor("Teacher Comments"))
		assert.Equal(t, "", am.fieldFor("Homeroom"))
	})

	t.Run("longest alias wins", func(t *testing.T) {
		// "attendance status" contains both the "status" and the
		// "attendance status" spellings; the longer one decides.
		assert.Equal(t, "status", am.fieldFor("Attendance Status"))
		// "attendance date" contains both "date" and "attendance date".
		assert.Equal(t, "record_date", am.fieldFor("attendance date"))
	})

	t.Run("equal-length tie resolves the same in every matcher", func(t *testing.T) {
		// "Date Code" contains the 4-char "date" and "code" spellings;
		// every freshly built matcher must break the tie identically.
		want := am.fieldFor("Date Code")
		require.NotEmpty(t, want)
		for i := 0; i < 25; i++ {
			assert.Equal(t, want, newAliasMatcher().fieldFor("Date Code"))
		}
	})

	t.Run("first column wins per field", func(t *testing.T) {
		cols := am.mapHeaders([]string{"Student ID", "Alt Student ID", "Date"})
		assert.Equal(t, 0, cols["school_student_id"])
		assert.Equal(t, 2, cols["record_date"])
	})
}
