// Package validator checks imported rows against an import profile through
// the current column mapping set. Checks are format-only: every failing check
// for a row is reported, and nothing is dropped on the user's behalf.
package validator

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/enrollhub/onboarding-api/internal/domain/importer/matcher"
	"github.com/enrollhub/onboarding-api/internal/domain/importer/parser"
	"github.com/enrollhub/onboarding-api/internal/domain/schema"
)

// Kind classifies a validation issue.
type Kind string

const (
	KindMissingMapping     Kind = "missing_mapping"
	KindRequiredFieldEmpty Kind = "required_field_empty"
	KindFormatInvalid      Kind = "format_invalid"
)

// Issue is one user-facing validation finding. Row is 1-based and zero when
// the issue is not tied to a specific row.
type Issue struct {
	Kind     Kind   `json:"kind"`
	Field    string `json:"field,omitempty"`
	Row      int    `json:"row,omitempty"`
	Message  string `json:"message"`
	RawValue string `json:"raw_value,omitempty"`
}

// RowState tracks one parsed source row across re-validations. Index is
// 0-based and stable for the lifetime of the session.
type RowState struct {
	Index    int     `json:"index"`
	Issues   []Issue `json:"issues"`
	Excluded bool    `json:"excluded"`
}

// Valid reports whether the row passed every check under the current mapping.
func (r *RowState) Valid() bool {
	return len(r.Issues) == 0
}

var (
	emailPattern = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)
	// Format-only: 2024-13-40 passes the shape test on purpose and is not
	// range-checked here.
	datePattern = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	uuidPattern = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)
)

// Validate runs every check for every row under the matched mappings.
// Unmatched mappings are skipped entirely. The returned issue sequence is the
// concatenation of every row's issues in row order; rowStates carries the
// same issues grouped per row with exclusion flags zeroed.
func Validate(rows []parser.RawRow, mappings []matcher.ColumnMapping, required []string, hints map[string]schema.FieldType) ([]Issue, []RowState) {
	requiredSet := make(map[string]bool, len(required))
	for _, f := range required {
		requiredSet[f] = true
	}

	issues := make([]Issue, 0)
	states := make([]RowState, len(rows))

	for i, row := range rows {
		state := RowState{Index: i}
		rowNum := i + 1

		for _, m := range mappings {
			if !m.Matched {
				continue
			}
			state.Issues = append(state.Issues, checkField(row, m, rowNum, requiredSet, hints)...)
		}

		issues = append(issues, state.Issues...)
		states[i] = state
	}

	return issues, states
}

// checkField applies the fixed check sequence for one mapping on one row.
// All checks run; earlier failures do not short-circuit later ones.
func checkField(row parser.RawRow, m matcher.ColumnMapping, rowNum int, required map[string]bool, hints map[string]schema.FieldType) []Issue {
	raw := row[m.SourceColumn]
	value := strings.TrimSpace(raw)
	field := m.TargetField

	var found []Issue

	if required[field] && value == "" {
		found = append(found, Issue{
			Kind:    KindRequiredFieldEmpty,
			Field:   field,
			Row:     rowNum,
			Message: fmt.Sprintf("required field %s is empty", field),
		})
	}

	if value == "" {
		return found
	}

	lower := strings.ToLower(field)

	if strings.Contains(lower, "email") && !emailPattern.MatchString(value) {
		found = append(found, Issue{
			Kind:     KindFormatInvalid,
			Field:    field,
			Row:      rowNum,
			Message:  fmt.Sprintf("%s is not a valid email address", field),
			RawValue: value,
		})
	}

	if strings.Contains(lower, "date") && !datePattern.MatchString(value) {
		found = append(found, Issue{
			Kind:     KindFormatInvalid,
			Field:    field,
			Row:      rowNum,
			Message:  fmt.Sprintf("%s must be formatted YYYY-MM-DD", field),
			RawValue: value,
		})
	}

	switch hints[field] {
	case schema.TypeNumeric:
		if _, err := decimal.NewFromString(value); err != nil {
			found = append(found, Issue{
				Kind:     KindFormatInvalid,
				Field:    field,
				Row:      rowNum,
				Message:  fmt.Sprintf("%s must be a number", field),
				RawValue: value,
			})
		}
	case schema.TypeInteger:
		if d, err := decimal.NewFromString(value); err != nil || !d.IsInteger() {
			found = append(found, Issue{
				Kind:     KindFormatInvalid,
				Field:    field,
				Row:      rowNum,
				Message:  fmt.Sprintf("%s must be a whole number", field),
				RawValue: value,
			})
		}
	case schema.TypeUUID:
		if !uuidPattern.MatchString(value) {
			found = append(found, Issue{
				Kind:     KindFormatInvalid,
				Field:    field,
				Row:      rowNum,
				Message:  fmt.Sprintf("%s must be a UUID", field),
				RawValue: value,
			})
		}
	}

	return found
}

// CheckMappingCompleteness verifies that every required field has at least
// one matched mapping. It runs once per mapping set, not per row, and gates
// the transition to preview. A nil result means the mapping set is complete.
func CheckMappingCompleteness(mappings []matcher.ColumnMapping, required []string) *Issue {
	mapped := make(map[string]bool)
	for _, m := range mappings {
		if m.Matched {
			mapped[m.TargetField] = true
		}
	}

	var missing []string
	for _, f := range required {
		if !mapped[f] {
			missing = append(missing, f)
		}
	}
	if len(missing) == 0 {
		return nil
	}

	sort.Strings(missing)
	return &Issue{
		Kind:    KindMissingMapping,
		Message: fmt.Sprintf("required fields not mapped: %s", strings.Join(missing, ", ")),
	}
}
