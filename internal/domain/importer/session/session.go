// Package session holds the state of one in-flight bulk import: the parsed
// rows, the current column mappings, per-row validation results, and row
// exclusion flags. One session is active per wizard step; uploading a new
// file replaces it wholesale.
package session

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/enrollhub/onboarding-api/internal/domain/importer/matcher"
	"github.com/enrollhub/onboarding-api/internal/domain/importer/parser"
	"github.com/enrollhub/onboarding-api/internal/domain/importer/validator"
	"github.com/enrollhub/onboarding-api/internal/domain/schema"
)

// Record is one transformed, schema-shaped output row.
type Record map[string]string

var (
	ErrNoFile          = errors.New("no file loaded")
	ErrIndexOutOfRange = errors.New("index out of range")
)

// MappingError reports an invalid mapping edit. The session state is left
// untouched when one is returned.
type MappingError struct {
	Message string
}

func (e *MappingError) Error() string {
	return e.Message
}

// Session is the import state for one wizard step. The store's lock only
// guards its map; callers holding a session across a mutation take the
// session's own lock.
type Session struct {
	mu sync.Mutex

	ID      uuid.UUID
	Profile *schema.Profile

	FileName string
	Headers  []string
	Rows     []parser.RawRow

	Mappings  []matcher.ColumnMapping
	RowStates []validator.RowState
	Issues    []validator.Issue

	ExcludeAllInvalid bool

	// snapshot preserves per-row exclusion flags taken when the bulk
	// exclude toggle turned on, so turning it off restores them exactly.
	snapshot []bool
}

// Lock acquires the session for the duration of one request.
func (s *Session) Lock() { s.mu.Lock() }

// Unlock releases the session.
func (s *Session) Unlock() { s.mu.Unlock() }

// New creates an empty session for the given profile.
func New(profile *schema.Profile) *Session {
	return &Session{
		ID:      uuid.New(),
		Profile: profile,
	}
}

// LoadFile resets all session state and parses the upload fully into memory.
// On a parse failure the session holds exactly one format issue, no mappings,
// and the error is returned for the transport layer to report.
func (s *Session) LoadFile(fileName string, data []byte) error {
	s.reset()
	s.FileName = fileName

	result, err := parser.ParseFile(fileName, data)
	if err != nil {
		s.Issues = []validator.Issue{{
			Kind:    validator.KindFormatInvalid,
			Message: err.Error(),
		}}
		return err
	}

	s.Headers = result.Headers
	s.Rows = result.Rows
	s.Mappings = matcher.Match(s.Headers, s.Profile.Fields)
	s.revalidate()
	return nil
}

func (s *Session) reset() {
	s.FileName = ""
	s.Headers = nil
	s.Rows = nil
	s.Mappings = nil
	s.RowStates = nil
	s.Issues = nil
	s.ExcludeAllInvalid = false
	s.snapshot = nil
}

// revalidate recomputes every row's issues under the current mapping set,
// preserving exclusion flags across the pass.
func (s *Session) revalidate() {
	issues, states := validator.Validate(s.Rows, s.Mappings, s.Profile.Required, s.Profile.TypeHints)
	for i := range states {
		if i < len(s.RowStates) {
			states[i].Excluded = s.RowStates[i].Excluded
		}
	}
	s.Issues = issues
	s.RowStates = states
}

// AddMapping appends a manual mapping defaulting to the first source column
// and the first target field.
func (s *Session) AddMapping() error {
	if len(s.Headers) == 0 {
		return ErrNoFile
	}
	s.Mappings = append(s.Mappings, matcher.Manual(s.Headers[0], s.Profile.Fields[0]))
	s.revalidate()
	return nil
}

// EditMapping replaces the mapping at index with a manual one. A target
// outside the profile's field set is rejected without mutating anything.
func (s *Session) EditMapping(index int, sourceColumn, targetField string) error {
	if index < 0 || index >= len(s.Mappings) {
		return ErrIndexOutOfRange
	}
	if !s.Profile.HasField(targetField) {
		return &MappingError{Message: fmt.Sprintf("%q is not a valid %s field", targetField, s.Profile.ID)}
	}
	s.Mappings[index] = matcher.Manual(sourceColumn, targetField)
	s.revalidate()
	return nil
}

// DeleteMapping removes the mapping at index. Row issues are intentionally
// not recomputed here; stale results persist until the next edit.
func (s *Session) DeleteMapping(index int) error {
	if index < 0 || index >= len(s.Mappings) {
		return ErrIndexOutOfRange
	}
	s.Mappings = append(s.Mappings[:index], s.Mappings[index+1:]...)
	return nil
}

// ToggleRowExclusion flips the exclusion flag for exactly one row,
// independent of the bulk toggle.
func (s *Session) ToggleRowExclusion(rowIndex int) error {
	if rowIndex < 0 || rowIndex >= len(s.RowStates) {
		return ErrIndexOutOfRange
	}
	s.RowStates[rowIndex].Excluded = !s.RowStates[rowIndex].Excluded
	return nil
}

// ToggleExcludeAllInvalid snapshots the per-row flags and excludes every row
// with issues when turning on. Turning off restores the snapshot exactly;
// manual exclusions made while the bulk toggle was on are discarded.
func (s *Session) ToggleExcludeAllInvalid() {
	if !s.ExcludeAllInvalid {
		s.snapshot = make([]bool, len(s.RowStates))
		for i, state := range s.RowStates {
			s.snapshot[i] = state.Excluded
			if !state.Valid() {
				s.RowStates[i].Excluded = true
			}
		}
		s.ExcludeAllInvalid = true
		return
	}

	for i := range s.RowStates {
		if i < len(s.snapshot) {
			s.RowStates[i].Excluded = s.snapshot[i]
		}
	}
	s.snapshot = nil
	s.ExcludeAllInvalid = false
}

// RequestPreview gates the transition to the preview step: every required
// field must have at least one matched mapping. A nil result allows the
// transition.
func (s *Session) RequestPreview() *validator.Issue {
	return validator.CheckMappingCompleteness(s.Mappings, s.Profile.Required)
}

// Commit transforms the included rows into canonical records, in source
// order. A row is skipped when it is excluded, or when the bulk toggle is on
// and the row has any issue. Matched mappings write in mapping order; later
// mappings targeting the same field overwrite earlier ones.
func (s *Session) Commit() []Record {
	records := make([]Record, 0, len(s.Rows))

	for i, row := range s.Rows {
		state := s.RowStates[i]
		if state.Excluded {
			continue
		}
		if s.ExcludeAllInvalid && !state.Valid() {
			continue
		}

		record := make(Record)
		for _, m := range s.Mappings {
			if !m.Matched {
				continue
			}
			record[m.TargetField] = row[m.SourceColumn]
		}
		records = append(records, record)
	}

	return records
}
