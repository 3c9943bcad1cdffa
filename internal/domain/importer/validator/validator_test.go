package validator

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/enrollhub/onboarding-api/internal/domain/importer/matcher"
	"github.com/enrollhub/onboarding-api/internal/domain/importer/parser"
	"github.com/enrollhub/onboarding-api/internal/domain/schema"
)

func manualMappings(pairs map[string]string) []matcher.ColumnMapping {
	mappings := make([]matcher.ColumnMapping, 0, len(pairs))
	for source, target := range pairs {
		mappings = append(mappings, matcher.Manual(source, target))
	}
	return mappings
}

func TestValidate(t *testing.T) {
	t.Run("clean rows produce no issues", func(t *testing.T) {
		rows := []parser.RawRow{
			{"ID": "S1", "Email": "a@b.co"},
			{"ID": "S2", "Email": "parent@example.org"},
		}
		mappings := []matcher.ColumnMapping{
			matcher.Manual("ID", "school_student_id"),
			matcher.Manual("Email", "guardian1_email"),
		}
		issues, states := Validate(rows, mappings, []string{"school_student_id"}, nil)
		assert.Empty(t, issues)
		require.Len(t, states, 2)
		assert.True(t, states[0].Valid())
		assert.True(t, states[1].Valid())
	})

	t.Run("required empty value is flagged with 1-based row", func(t *testing.T) {
		rows := []parser.RawRow{
			{"ID": "S1"},
			{"ID": "   "},
		}
		mappings := manualMappings(map[string]string{"ID": "school_student_id"})
		issues, states := Validate(rows, mappings, []string{"school_student_id"}, nil)
		require.Len(t, issues, 1)
		assert.Equal(t, KindRequiredFieldEmpty, issues[0].Kind)
		assert.Equal(t, 2, issues[0].Row)
		assert.True(t, states[0].Valid())
		assert.False(t, states[1].Valid())
	})

	t.Run("email format checked by field name", func(t *testing.T) {
		rows := []parser.RawRow{{"Email": "not-an-email"}}
		mappings := manualMappings(map[string]string{"Email": "guardian1_email"})
		issues, _ := Validate(rows, mappings, nil, nil)
		require.Len(t, issues, 1)
		assert.Equal(t, KindFormatInvalid, issues[0].Kind)
		assert.Equal(t, "not-an-email", issues[0].RawValue)
	})

	t.Run("date check is shape only", func(t *testing.T) {
		rows := []parser.RawRow{
			{"Date": "2024-09-03"},
			{"Date": "2024-13-40"},
			{"Date": "09/03/2024"},
		}
		mappings := manualMappings(map[string]string{"Date": "record_date"})
		issues, states := Validate(rows, mappings, nil, nil)
		require.Len(t, issues, 1)
		assert.True(t, states[0].Valid())
		// Out-of-range values with the right shape pass; only the shape
		// mismatch on row 3 fails.
		assert.True(t, states[1].Valid())
		assert.False(t, states[2].Valid())
		assert.Equal(t, 3, issues[0].Row)
	})

	t.Run("numeric and integer hints", func(t *testing.T) {
		rows := []parser.RawRow{
			{"Score": "87.5", "Grade": "3"},
			{"Score": "eighty", "Grade": "3.5"},
		}
		mappings := []matcher.ColumnMapping{
			matcher.Manual("Score", "score"),
			matcher.Manual("Grade", "grade_level"),
		}
		hints := map[string]schema.FieldType{
			"score":       schema.TypeNumeric,
			"grade_level": schema.TypeInteger,
		}
		issues, states := Validate(rows, mappings, nil, hints)
		assert.Len(t, issues, 2)
		assert.True(t, states[0].Valid())
		assert.Len(t, states[1].Issues, 2)
	})

	t.Run("uuid hint", func(t *testing.T) {
		rows := []parser.RawRow{
			{"District": "0b812aa2-6f5d-4e3a-9c1f-1a2b3c4d5e6f"},
			{"District": "not-a-uuid"},
		}
		mappings := manualMappings(map[string]string{"District": "district_id"})
		hints := map[string]schema.FieldType{"district_id": schema.TypeUUID}
		issues, _ := Validate(rows, mappings, nil, hints)
		require.Len(t, issues, 1)
		assert.Equal(t, 2, issues[0].Row)
	})

	t.Run("unmatched mappings are skipped", func(t *testing.T) {
		rows := []parser.RawRow{{"Email": "garbage"}}
		mappings := []matcher.ColumnMapping{{
			SourceColumn: "Email",
			TargetField:  "guardian1_email",
			Score:        0.2,
			Matched:      false,
		}}
		issues, _ := Validate(rows, mappings, []string{"guardian1_email"}, nil)
		assert.Empty(t, issues)
	})

	t.Run("all checks accumulate on one value", func(t *testing.T) {
		// Empty required value that also sits on an email field: only the
		// required check fires since format checks skip blanks.
		rows := []parser.RawRow{{"Email": ""}}
		mappings := manualMappings(map[string]string{"Email": "guardian1_email"})
		issues, _ := Validate(rows, mappings, []string{"guardian1_email"}, nil)
		require.Len(t, issues, 1)
		assert.Equal(t, KindRequiredFieldEmpty, issues[0].Kind)
	})

	t.Run("repeated validation is idempotent", func(t *testing.T) {
		rows := []parser.RawRow{{"Email": "bad"}, {"Email": "ok@example.com"}}
		mappings := manualMappings(map[string]string{"Email": "guardian1_email"})
		first, _ := Validate(rows, mappings, nil, nil)
		second, _ := Validate(rows, mappings, nil, nil)
		assert.Equal(t, first, second)
	})
}

func TestCheckMappingCompleteness(t *testing.T) {
	t.Run("complete mapping set passes", func(t *testing.T) {
		mappings := []matcher.ColumnMapping{
			matcher.Manual("ID", "school_student_id"),
			matcher.Manual("First", "first_name"),
		}
		assert.Nil(t, CheckMappingCompleteness(mappings, []string{"school_student_id", "first_name"}))
	})

	t.Run("missing required fields reported sorted", func(t *testing.T) {
		mappings := []matcher.ColumnMapping{matcher.Manual("First", "first_name")}
		issue := CheckMappingCompleteness(mappings, []string{"school_student_id", "last_name", "first_name"})
		require.NotNil(t, issue)
		assert.Equal(t, KindMissingMapping, issue.Kind)
		assert.Contains(t, issue.Message, "last_name, school_student_id")
	})

	t.Run("unmatched mapping does not satisfy a requirement", func(t *testing.T) {
		mappings := []matcher.ColumnMapping{{
			SourceColumn: "ID",
			TargetField:  "school_student_id",
			Matched:      false,
		}}
		issue := CheckMappingCompleteness(mappings, []string{"school_student_id"})
		require.NotNil(t, issue)
	})
}
