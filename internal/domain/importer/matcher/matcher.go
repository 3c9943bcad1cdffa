// Package matcher proposes mappings from raw spreadsheet headers to a
// profile's canonical fields using normalized string similarity.
package matcher

import (
	"strings"
	"unicode"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// MatchThreshold is the acceptance score for an automatic mapping. Best
// guesses below it are still returned so the user can review them, flagged
// unmatched.
const MatchThreshold = 0.60

// ColumnMapping associates one source column with a canonical field.
type ColumnMapping struct {
	SourceColumn string  `json:"source_column"`
	TargetField  string  `json:"target_field"`
	Score        float64 `json:"score"`
	Matched      bool    `json:"matched"`
	Manual       bool    `json:"manual"`
}

// Match scores every source header against every target field and keeps the
// best target per header. The result always has exactly one mapping per
// header, in input order. Two headers may land on the same target; collisions
// are user-correctable, not an error.
func Match(sourceHeaders, targetFields []string) []ColumnMapping {
	mappings := make([]ColumnMapping, 0, len(sourceHeaders))

	for _, header := range sourceHeaders {
		best := ColumnMapping{SourceColumn: header}
		for _, field := range targetFields {
			score := Similarity(header, field)
			if score > best.Score || best.TargetField == "" {
				best.TargetField = field
				best.Score = score
			}
		}
		best.Matched = best.Score >= MatchThreshold
		mappings = append(mappings, best)
	}

	return mappings
}

// Manual builds a user-authored mapping. Manual mappings score 1 and are
// never recomputed by the matcher.
func Manual(sourceColumn, targetField string) ColumnMapping {
	return ColumnMapping{
		SourceColumn: sourceColumn,
		TargetField:  targetField,
		Score:        1,
		Matched:      true,
		Manual:       true,
	}
}

// Similarity scores two header-ish strings in [0,1]. Case, whitespace, and
// punctuation are ignored. Exact normalized equality scores 1; containment
// scores by length ratio; otherwise the better of an edit-distance ratio and
// a subsequence rank decides.
func Similarity(a, b string) float64 {
	na := Normalize(a)
	nb := Normalize(b)

	if na == "" || nb == "" {
		return 0
	}
	if na == nb {
		return 1
	}

	if strings.Contains(na, nb) {
		return 0.75 + 0.25*float64(len(nb))/float64(len(na))
	}
	if strings.Contains(nb, na) {
		return 0.75 + 0.25*float64(len(na))/float64(len(nb))
	}

	maxLen := len(na)
	if len(nb) > maxLen {
		maxLen = len(nb)
	}

	distance := fuzzy.LevenshteinDistance(na, nb)
	score := float64(maxLen-distance) / float64(maxLen)

	// Subsequence rank catches abbreviated headers ("stu id" vs
	// "school_student_id") that edit distance punishes.
	if rank := fuzzy.RankMatchNormalizedFold(na, nb); rank >= 0 && len(nb) > 0 {
		rankScore := 0.6 * float64(len(nb)-rank) / float64(len(nb))
		if rankScore > score {
			score = rankScore
		}
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

// Normalize lowercases and drops everything that is not a letter or digit.
func Normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(unicode.ToLower(r))
		}
	}
	return b.String()
}
