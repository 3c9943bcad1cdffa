package attendance

import (
	"sort"
	"strings"

	"github.com/cloudflare/ahocorasick"
)

// Alias spellings for the attendance fields, matched by normalized exact
// containment against header cells. This path deliberately avoids fuzzy
// scoring: a header either contains a known spelling or it does not.
var fieldAliases = map[string][]string{
	"school_student_id": {"student id", "studentid", "student number", "student no", "pupil id", "external id", "sis id"},
	"record_date":       {"attendance date", "record date", "date", "day"},
	"status":            {"attendance status", "status", "mark", "code"},
	"notes":             {"comment", "comments", "notes", "reason"},
}

// aliasMatcher resolves header cells to canonical attendance fields with a
// single multi-pattern containment pass per header.
type aliasMatcher struct {
	machine  *ahocorasick.Matcher
	patterns []string
	fields   []string
}

func newAliasMatcher() *aliasMatcher {
	am := &aliasMatcher{}
	// Sorted field order keeps the pattern list, and with it longest-match
	// tie-breaking, stable across process restarts.
	fields := make([]string, 0, len(fieldAliases))
	for field := range fieldAliases {
		fields = append(fields, field)
	}
	sort.Strings(fields)
	for _, field := range fields {
		for _, alias := range fieldAliases[field] {
			am.patterns = append(am.patterns, normalizeHeader(alias))
			am.fields = append(am.fields, field)
		}
	}
	am.machine = ahocorasick.NewStringMatcher(am.patterns)
	return am
}

// fieldFor returns the canonical field whose longest alias spelling is
// contained in the header, or "" when none matches.
func (am *aliasMatcher) fieldFor(header string) string {
	normalized := normalizeHeader(header)
	if normalized == "" {
		return ""
	}

	best := ""
	bestLen := 0
	for _, hit := range am.machine.Match([]byte(normalized)) {
		if l := len(am.patterns[hit]); l > bestLen {
			bestLen = l
			best = am.fields[hit]
		}
	}
	return best
}

// mapHeaders resolves a header row into field→column-index assignments. The
// first column matching a field wins.
func (am *aliasMatcher) mapHeaders(headers []string) map[string]int {
	cols := make(map[string]int)
	for i, header := range headers {
		field := am.fieldFor(header)
		if field == "" {
			continue
		}
		if _, taken := cols[field]; !taken {
			cols[field] = i
		}
	}
	return cols
}

// normalizeHeader lowercases and collapses runs of whitespace and
// punctuation into single spaces so "Student_ID" and "student id" compare
// equal.
func normalizeHeader(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	lastSpace := true
	for _, r := range strings.ToLower(s) {
		if r >= 'a' && r <= 'z' || r >= '0' && r <= '9' {
			b.WriteRune(r)
			lastSpace = false
			continue
		}
		if !lastSpace {
			b.WriteByte(' ')
			lastSpace = true
		}
	}
	return strings.TrimSpace(b.String())
}
