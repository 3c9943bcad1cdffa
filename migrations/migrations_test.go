package migrations

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistryTablesMatchEntityModel(t *testing.T) {
	raw, err := FS.ReadFile("00001_create_registry_tables.sql")
	require.NoError(t, err)
	sql := string(raw)

	t.Run("optional grade columns are nullable integers", func(t *testing.T) {
		// The entity model carries grades as *int; a NOT NULL or TEXT
		// column here would reject every row inserted without one.
		assert.Contains(t, sql, "grade_low INT,")
		assert.Contains(t, sql, "grade_high INT,")
		assert.Contains(t, sql, "grade_level INT,")
		assert.NotContains(t, sql, "grade_low TEXT")
		assert.NotContains(t, sql, "grade_high TEXT")
		assert.NotContains(t, sql, "grade_level TEXT")
	})

	t.Run("every registry table is created and dropped", func(t *testing.T) {
		for _, table := range []string{
			"districts", "schools", "staff_members", "students",
			"classrooms", "enrollments", "attendance_entries", "assessment_results",
		} {
			assert.Contains(t, sql, "CREATE TABLE "+table+" (")
			assert.Contains(t, sql, "DROP TABLE "+table+";")
		}
	})

	t.Run("students carry a unique external id index", func(t *testing.T) {
		assert.Contains(t, sql, "CREATE UNIQUE INDEX students_school_student_id_idx")
	})
}
