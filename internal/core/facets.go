package core

import (
	"sort"
	"strings"

	"catalogcore/pkg/domain"
)

// AreaOptions derives the selectable area values from the records matching
// the vertical and country constraints, each applied only when set. The area
// filter itself is deliberately excluded from the inputs so selecting an
// area can never remove that value from its own picker. Values keep their
// stored casing and appear in first-encounter order.
func AreaOptions(records []domain.Feature, vertical, country string) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range records {
		if f.Area == "" {
			continue
		}
		if vertical != "" && !f.InVertical(vertical) {
			continue
		}
		if country != "" && !strings.EqualFold(f.Country, country) {
			continue
		}
		key := strings.ToLower(f.Area)
		if !seen[key] {
			seen[key] = true
			out = append(out, f.Area)
		}
	}
	return out
}

// CountryOptions returns the distinct country values across the full record
// set in first-encounter order.
func CountryOptions(records []domain.Feature) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range records {
		if f.Country == "" {
			continue
		}
		key := strings.ToLower(f.Country)
		if !seen[key] {
			seen[key] = true
			out = append(out, f.Country)
		}
	}
	return out
}

// VerticalOptions returns the distinct vertical tags across the full record
// set in first-encounter order.
func VerticalOptions(records []domain.Feature) []string {
	var out []string
	seen := make(map[string]bool)
	for _, f := range records {
		for _, tag := range f.Vertical {
			key := strings.ToLower(tag)
			if !seen[key] {
				seen[key] = true
				out = append(out, tag)
			}
		}
	}
	return out
}

// CompetitorNames returns every competitor named by the record set. Names
// come out of per-record maps, so they are sorted for determinism.
func CompetitorNames(records []domain.Feature) []string {
	seen := make(map[string]bool)
	for _, f := range records {
		for name := range f.Competitor {
			seen[name] = true
		}
	}
	out := make([]string, 0, len(seen))
	for name := range seen {
		out = append(out, name)
	}
	sort.Strings(out)
	return out
}
