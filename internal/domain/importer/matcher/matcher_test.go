package matcher

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSimilarity(t *testing.T) {
	t.Run("exact match after normalization", func(t *testing.T) {
		assert.Equal(t, 1.0, Similarity("First Name", "first_name"))
		assert.Equal(t, 1.0, Similarity("STUDENT-ID", "student id"))
	})

	t.Run("containment scores above threshold", func(t *testing.T) {
		score := Similarity("Guardian 1 Email Address", "guardian1_email")
		assert.GreaterOrEqual(t, score, MatchThreshold)
		assert.Less(t, score, 1.0)
	})

	t.Run("unrelated strings score low", func(t *testing.T) {
		score := Similarity("zebra", "guardian1_email")
		assert.Less(t, score, MatchThreshold)
	})

	t.Run("empty input scores zero", func(t *testing.T) {
		assert.Equal(t, 0.0, Similarity("", "first_name"))
		assert.Equal(t, 0.0, Similarity("---", "first_name"))
	})

	t.Run("score stays within bounds", func(t *testing.T) {
		pairs := [][2]string{
			{"Student ID", "school_student_id"},
			{"DOB", "birth_date"},
			{"e-mail", "email"},
			{"x", "assessment_name"},
			{"Phone Number", "phone"},
		}
		for _, p := range pairs {
			score := Similarity(p[0], p[1])
			assert.GreaterOrEqual(t, score, 0.0, "pair %v", p)
			assert.LessOrEqual(t, score, 1.0, "pair %v", p)
		}
	})

	t.Run("symmetric containment", func(t *testing.T) {
		assert.Equal(t, Similarity("status", "attendance status"), Similarity("attendance status", "status"))
	})
}

func TestNormalize(t *testing.T) {
	assert.Equal(t, "firstname", Normalize("First Name"))
	assert.Equal(t, "guardian1email", Normalize("Guardian #1 E-Mail"))
	assert.Equal(t, "", Normalize(" _-! "))
}

func TestMatch(t *testing.T) {
	fields := []string{"school_student_id", "first_name", "last_name", "grade_level"}

	t.Run("one mapping per header in input order", func(t *testing.T) {
		headers := []string{"Student ID", "First Name", "Last Name", "Grade", "Homeroom"}
		mappings := Match(headers, fields)
		require.Len(t, mappings, len(headers))
		for i, m := range mappings {
			assert.Equal(t, headers[i], m.SourceColumn)
			assert.NotEmpty(t, m.TargetField)
		}
	})

	t.Run("recognizable headers auto match", func(t *testing.T) {
		mappings := Match([]string{"First Name", "last-name"}, fields)
		require.Len(t, mappings, 2)
		assert.True(t, mappings[0].Matched)
		assert.Equal(t, "first_name", mappings[0].TargetField)
		assert.True(t, mappings[1].Matched)
		assert.Equal(t, "last_name", mappings[1].TargetField)
	})

	t.Run("unrecognizable header is returned unmatched", func(t *testing.T) {
		mappings := Match([]string{"Favorite Color"}, fields)
		require.Len(t, mappings, 1)
		assert.False(t, mappings[0].Matched)
		assert.Less(t, mappings[0].Score, MatchThreshold)
	})

	t.Run("deterministic over repeated runs", func(t *testing.T) {
		headers := []string{"Student ID", "Name", "Grade", "Notes"}
		first := Match(headers, fields)
		for i := 0; i < 20; i++ {
			assert.Equal(t, first, Match(headers, fields))
		}
	})

	t.Run("two headers may share a target", func(t *testing.T) {
		mappings := Match([]string{"First Name", "first name "}, fields)
		require.Len(t, mappings, 2)
		assert.Equal(t, mappings[0].TargetField, mappings[1].TargetField)
	})
}

func TestManual(t *testing.T) {
	m := Manual("Col A", "first_name")
	assert.Equal(t, 1.0, m.Score)
	assert.True(t, m.Matched)
	assert.True(t, m.Manual)
}
