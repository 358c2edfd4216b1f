package core

import (
	"regexp"
	"strings"

	"catalogcore/pkg/domain"
)

// compositeText builds the per-record searchable string. Field order is
// fixed so matching behavior is stable across releases: title, area,
// business benefits, country, description, differentiator ("Yes"/"No"),
// vertical tags, note.
func compositeText(f domain.Feature) string {
	differentiator := "No"
	if f.Differentiator {
		differentiator = "Yes"
	}
	fields := []string{
		f.Title,
		f.Area,
		f.BusinessBenefits,
		f.Country,
		f.Description,
		differentiator,
		strings.Join(f.Vertical, ","),
		f.Note,
	}
	return strings.Join(fields, ",")
}

// Matcher tests a free-text query against a record's composite string.
// The zero value matches everything.
type Matcher struct {
	re *regexp.Regexp
}

// NewMatcher compiles a case-insensitive literal matcher for the query.
// Every pattern metacharacter in the query is escaped, so compilation cannot
// fail for any input string.
func NewMatcher(query string) Matcher {
	if query == "" {
		return Matcher{}
	}
	return Matcher{re: regexp.MustCompile("(?i)" + regexp.QuoteMeta(query))}
}

// Match reports whether the record's composite string contains the query.
func (m Matcher) Match(f domain.Feature) bool {
	if m.re == nil {
		return true
	}
	return m.re.MatchString(compositeText(f))
}

// MatchText tests the query against a single text field, using the same
// escape and case rules. The business-impact filter reuses this.
func (m Matcher) MatchText(text string) bool {
	if m.re == nil {
		return true
	}
	return m.re.MatchString(text)
}
