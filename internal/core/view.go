package core

import "catalogcore/pkg/domain"

// Recompute assembles the visible view from the canonical record set, the
// active filter state, and the free-text query. It is a pure function of its
// inputs: equal inputs produce an identical view including order, it
// performs no I/O, and it cannot fail for a well-formed record set
// (malformed records are rejected at load time).
//
// The whole view is rebuilt on every call. Search and the structured filters
// always intersect here; there is no second recomputation path that could
// overwrite this one.
func Recompute(records []domain.Feature, filter domain.FilterState, query string) domain.VisibleView {
	return domain.VisibleView{
		Rows:        ApplyFilters(records, filter, query),
		AreaOptions: AreaOptions(records, filter.Vertical, filter.Country),
	}
}
