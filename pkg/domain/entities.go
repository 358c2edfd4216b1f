// Package domain defines the catalog entities, filter values, and derived
// view types used by catalogcore.
package domain

import "strings"

// CompetitorStatus encodes how a competitor stacks up against a feature.
type CompetitorStatus string

// Competitor status codes carried by the canonical data set.
const (
	// CompetitorSupported means the competitor offers the feature too.
	CompetitorSupported CompetitorStatus = "Y"
	// CompetitorNotSupported means the competitor lacks the feature.
	CompetitorNotSupported CompetitorStatus = "N"
	// CompetitorNotApplicable means the feature does not apply to the competitor.
	CompetitorNotApplicable CompetitorStatus = "NIA"
)

// EdgedOut reports whether the status marks the feature as an advantage over
// the competitor (the competitor either lacks it or it does not apply).
func (s CompetitorStatus) EdgedOut() bool {
	return s == CompetitorNotSupported || s == CompetitorNotApplicable
}

// Feature is one catalog entry. Country and Area may be absent; filtering
// treats an absent value as "no value", never as an error.
type Feature struct {
	ID               string                      `json:"id"`
	Title            string                      `json:"title"`
	Description      string                      `json:"description"`
	Area             string                      `json:"area,omitempty"`
	Country          string                      `json:"country,omitempty"`
	BusinessBenefits string                      `json:"business_benefits,omitempty"`
	Vertical         []string                    `json:"vertical,omitempty"`
	Differentiator   bool                        `json:"differentiator"`
	Competitor       map[string]CompetitorStatus `json:"competitor,omitempty"`
	Note             string                      `json:"note,omitempty"`
}

// Clone returns a deep copy so callers can never mutate stored state through
// a read.
func (f Feature) Clone() Feature {
	cp := f
	if f.Vertical != nil {
		cp.Vertical = append([]string(nil), f.Vertical...)
	}
	if f.Competitor != nil {
		cp.Competitor = make(map[string]CompetitorStatus, len(f.Competitor))
		for name, status := range f.Competitor {
			cp.Competitor[name] = status
		}
	}
	return cp
}

// InVertical reports whether the feature carries the vertical tag,
// compared case-insensitively.
func (f Feature) InVertical(vertical string) bool {
	for _, tag := range f.Vertical {
		if strings.EqualFold(tag, vertical) {
			return true
		}
	}
	return false
}

// FilterState holds the active filter selections. It is a pure value:
// applying it to a record set is a deterministic, side-effect-free projection.
type FilterState struct {
	Vertical         string   `json:"vertical,omitempty"`
	Country          string   `json:"country,omitempty"`
	Area             string   `json:"area,omitempty"`
	BusinessBenefits string   `json:"business_benefits,omitempty"`
	Competitors      []string `json:"competitors,omitempty"`
	UniqueZenoti     bool     `json:"unique_zenoti,omitempty"`
}

// IsEmpty reports whether no filter dimension is active.
func (f FilterState) IsEmpty() bool {
	return f.Vertical == "" && f.Country == "" && f.Area == "" &&
		f.BusinessBenefits == "" && len(f.Competitors) == 0 && !f.UniqueZenoti
}

// Clone returns a copy with its own competitor slice.
func (f FilterState) Clone() FilterState {
	cp := f
	if f.Competitors != nil {
		cp.Competitors = append([]string(nil), f.Competitors...)
	}
	return cp
}

// Row is one visible record. CompetitorEdge is populated only when two or
// more competitors are selected: it maps each selected competitor to whether
// the feature edges it out. The comparison never removes rows.
type Row struct {
	Feature
	CompetitorEdge map[string]bool `json:"competitor_edge,omitempty"`
}

// VisibleView is the consistent snapshot handed to the presentation layer.
// Rows preserve canonical record order; AreaOptions lists the area values
// reachable under the active vertical/country constraints, independent of
// the area filter itself.
type VisibleView struct {
	Rows        []Row    `json:"rows"`
	AreaOptions []string `json:"area_options"`
}

// Options lists the selectable values for the independent filter controls.
type Options struct {
	Verticals   []string `json:"verticals"`
	Countries   []string `json:"countries"`
	Competitors []string `json:"competitors"`
}

// ExportSelection is the contract handed to the export collaborator: the
// caller-selected row identifiers plus the filter state active at selection
// time.
type ExportSelection struct {
	IDs    []string    `json:"ids"`
	Filter FilterState `json:"filter"`
}
