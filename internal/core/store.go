package core

import (
	"sync"

	"catalogcore/pkg/domain"
)

// MemoryStore holds the canonical feature collection. The set is populated
// exactly once; afterwards the only mutation path is the note writers, which
// replace the stored record copy-on-write. Every read hands out a defensive
// clone.
type MemoryStore struct {
	mu       sync.RWMutex
	loaded   bool
	order    []string
	features map[string]domain.Feature
}

// NewMemoryStore constructs an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{features: make(map[string]domain.Feature)}
}

// Load replaces the canonical set. It may be called once; a second call
// returns ErrAlreadyLoaded. Records missing an ID, duplicating an ID, or
// carrying an empty vertical tag are rejected as a LoadError and the store
// stays empty.
func (s *MemoryStore) Load(records []domain.Feature) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.loaded {
		return ErrAlreadyLoaded
	}
	if violations := validateRecords(records); len(violations) > 0 {
		return LoadError{Violations: violations}
	}

	s.order = make([]string, 0, len(records))
	s.features = make(map[string]domain.Feature, len(records))
	for _, r := range records {
		s.order = append(s.order, r.ID)
		s.features[r.ID] = r.Clone()
	}
	s.loaded = true
	return nil
}

func validateRecords(records []domain.Feature) []Violation {
	var violations []Violation
	seen := make(map[string]bool, len(records))
	for _, r := range records {
		if r.ID == "" {
			violations = append(violations, Violation{Field: "id", Message: "missing"})
			continue
		}
		if seen[r.ID] {
			violations = append(violations, Violation{ID: r.ID, Field: "id", Message: "duplicate"})
			continue
		}
		seen[r.ID] = true
		for _, tag := range r.Vertical {
			if tag == "" {
				violations = append(violations, Violation{ID: r.ID, Field: "vertical", Message: "empty tag"})
				break
			}
		}
	}
	return violations
}

// Loaded reports whether the canonical set has been populated.
func (s *MemoryStore) Loaded() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loaded
}

// Len returns the canonical record count.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Get retrieves a feature by ID.
func (s *MemoryStore) Get(id string) (domain.Feature, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.features[id]
	if !ok {
		return domain.Feature{}, false
	}
	return f.Clone(), true
}

// Snapshot returns all features in canonical insertion order.
func (s *MemoryStore) Snapshot() []domain.Feature {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Feature, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.features[id].Clone())
	}
	return out
}

// SetNote overwrites the note on one record and returns the updated record.
// The stored record is replaced by a fresh copy rather than mutated in place,
// so snapshots taken before the write stay intact.
func (s *MemoryStore) SetNote(id, text string) (domain.Feature, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	current, ok := s.features[id]
	if !ok {
		return domain.Feature{}, ErrNotFound{ID: id}
	}
	updated := current.Clone()
	updated.Note = text
	s.features[id] = updated
	return updated.Clone(), nil
}

// ClearNote removes the note on one record.
func (s *MemoryStore) ClearNote(id string) (domain.Feature, error) {
	return s.SetNote(id, "")
}
