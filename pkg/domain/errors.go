package domain

import (
	"errors"
	"fmt"
	"strings"
)

// ErrNotFound is returned when an operation targets an unknown feature ID.
// The presentation layer keeps this from happening; it still fails loudly
// rather than silently no-opping.
type ErrNotFound struct {
	ID string
}

func (e ErrNotFound) Error() string {
	return fmt.Sprintf("feature %q not found", e.ID)
}

// ErrAlreadyLoaded is returned when Load is called after the canonical set
// has been populated.
var ErrAlreadyLoaded = errors.New("catalog already loaded")

// ErrNoSession is returned when an annotation write arrives with no dialog
// session open.
var ErrNoSession = errors.New("no annotation session open")

// Violation describes one malformed record rejected at load time.
type Violation struct {
	ID      string `json:"id,omitempty"`
	Field   string `json:"field"`
	Message string `json:"message"`
}

func (v Violation) String() string {
	if v.ID == "" {
		return fmt.Sprintf("%s: %s", v.Field, v.Message)
	}
	return fmt.Sprintf("%s %s: %s", v.ID, v.Field, v.Message)
}

// LoadError reports why the canonical record set was rejected. The store
// stays empty when Load fails; the presentation layer surfaces a retry state.
type LoadError struct {
	Violations []Violation
}

func (e LoadError) Error() string {
	if len(e.Violations) == 0 {
		return "catalog load failed"
	}
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.String())
	}
	return "catalog load failed: " + strings.Join(parts, "; ")
}
