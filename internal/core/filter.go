package core

import (
	"strings"

	"catalogcore/pkg/domain"
)

// ApplyFilters projects the record set through every active constraint plus
// the free-text query, AND-combined in a single pass per record. Canonical
// order is preserved and no sort is introduced.
//
// The competitor dimension has two modes. With exactly one competitor
// selected it is a predicate: only records where that competitor is edged
// out survive. With two or more it becomes a comparison: no record is
// removed, and each surviving row carries a per-competitor edge flag for the
// presentation layer's comparison columns.
func ApplyFilters(records []domain.Feature, filter domain.FilterState, query string) []domain.Row {
	search := NewMatcher(query)
	benefits := NewMatcher(filter.BusinessBenefits)
	compare := len(filter.Competitors) >= 2

	rows := make([]domain.Row, 0, len(records))
	for _, f := range records {
		if filter.Vertical != "" && !f.InVertical(filter.Vertical) {
			continue
		}
		if filter.Country != "" && !strings.EqualFold(f.Country, filter.Country) {
			continue
		}
		if filter.Area != "" && !strings.EqualFold(f.Area, filter.Area) {
			continue
		}
		if filter.BusinessBenefits != "" && !benefits.MatchText(f.BusinessBenefits) {
			continue
		}
		if filter.UniqueZenoti && !f.Differentiator {
			continue
		}
		if len(filter.Competitors) == 1 && !f.Competitor[filter.Competitors[0]].EdgedOut() {
			continue
		}
		if !search.Match(f) {
			continue
		}

		row := domain.Row{Feature: f}
		if compare {
			row.CompetitorEdge = make(map[string]bool, len(filter.Competitors))
			for _, name := range filter.Competitors {
				row.CompetitorEdge[name] = f.Competitor[name].EdgedOut()
			}
		}
		rows = append(rows, row)
	}
	return rows
}
