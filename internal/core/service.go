package core

import (
	"context"
	"sync"
	"time"

	"catalogcore/pkg/domain"
)

// LoadState reports the outcome of the one-shot canonical load. The
// presentation layer reads Failed to decide whether to show a retry state.
type LoadState struct {
	Loaded   bool      `json:"loaded"`
	Failed   bool      `json:"failed"`
	Error    string    `json:"error,omitempty"`
	Count    int       `json:"count"`
	LoadedAt time.Time `json:"loaded_at,omitzero"`
}

// Service orchestrates the record store, derived-view recomputation, and
// annotation sessions, and exposes the export selection contract. All view
// reads are recomputed whole from the current store snapshot, so a caller
// can never observe a torn view.
type Service struct {
	store     *MemoryStore
	annotator *Annotator
	metrics   MetricsRecorder
	nowFn     func() time.Time

	mu        sync.RWMutex
	loadState LoadState
}

// ServiceOption customizes service construction.
type ServiceOption func(*Service)

// WithMetrics wires a metrics recorder into the service.
func WithMetrics(rec MetricsRecorder) ServiceOption {
	return func(s *Service) {
		if rec != nil {
			s.metrics = rec
		}
	}
}

// NewService constructs a service over a fresh store.
func NewService(opts ...ServiceOption) *Service {
	store := NewMemoryStore()
	s := &Service{
		store:     store,
		annotator: NewAnnotator(store),
		metrics:   NopMetricsRecorder{},
		nowFn:     func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Store returns the underlying record store.
func (s *Service) Store() *MemoryStore {
	return s.store
}

// LoadFromSource fetches the canonical record set and loads it exactly once.
// On failure the store stays empty and the failure is recorded so the
// presentation layer can surface a retry state; the error is also returned.
func (s *Service) LoadFromSource(ctx context.Context, source domain.RecordSource) error {
	started := s.nowFn()
	records, err := source.Fetch(ctx)
	if err == nil {
		err = s.store.Load(records)
	}

	s.mu.Lock()
	if err != nil {
		s.loadState = LoadState{Failed: true, Error: err.Error()}
	} else {
		s.loadState = LoadState{Loaded: true, Count: len(records), LoadedAt: s.nowFn()}
	}
	s.mu.Unlock()

	s.metrics.Observe(ctx, "load", err == nil, s.nowFn().Sub(started))
	return err
}

// LoadState returns the recorded outcome of the initial load.
func (s *Service) LoadState() LoadState {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.loadState
}

// View recomputes the visible row set and facet options for the given filter
// state and free-text query.
func (s *Service) View(ctx context.Context, filter domain.FilterState, query string) domain.VisibleView {
	started := s.nowFn()
	view := Recompute(s.store.Snapshot(), filter, query)
	s.metrics.Observe(ctx, "view", true, s.nowFn().Sub(started))
	return view
}

// Options derives the selectable values for the independent filter controls
// from the full record set.
func (s *Service) Options() domain.Options {
	records := s.store.Snapshot()
	return domain.Options{
		Verticals:   VerticalOptions(records),
		Countries:   CountryOptions(records),
		Competitors: CompetitorNames(records),
	}
}

// Feature retrieves one record by ID.
func (s *Service) Feature(id string) (domain.Feature, bool) {
	return s.store.Get(id)
}

// OpenAnnotation starts an annotation dialog session for the feature.
func (s *Service) OpenAnnotation(id string, mode AnnotationMode) error {
	return s.annotator.Open(id, mode)
}

// SaveAnnotation commits the open session with the given note text.
func (s *Service) SaveAnnotation(ctx context.Context, text string) (AnnotationResult, error) {
	started := s.nowFn()
	res, err := s.annotator.Save(text)
	s.metrics.Observe(ctx, "annotate", err == nil, s.nowFn().Sub(started))
	return res, err
}

// DeleteAnnotation removes the open session's note.
func (s *Service) DeleteAnnotation(ctx context.Context) (AnnotationResult, error) {
	started := s.nowFn()
	res, err := s.annotator.Delete()
	s.metrics.Observe(ctx, "annotate", err == nil, s.nowFn().Sub(started))
	return res, err
}

// CancelAnnotation closes the open session without writing.
func (s *Service) CancelAnnotation() {
	s.annotator.Cancel()
}

// AnnotationSession returns the open annotation session, if any.
func (s *Service) AnnotationSession() (Session, bool) {
	return s.annotator.Session()
}

// ExportSelection validates the caller-selected row identifiers and returns
// them, deduplicated in selection order, together with a snapshot of the
// active filter state. Unknown identifiers fail with ErrNotFound.
func (s *Service) ExportSelection(ids []string, filter domain.FilterState) (domain.ExportSelection, error) {
	out := domain.ExportSelection{Filter: filter.Clone()}
	seen := make(map[string]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		if _, ok := s.store.Get(id); !ok {
			return domain.ExportSelection{}, ErrNotFound{ID: id}
		}
		seen[id] = true
		out.IDs = append(out.IDs, id)
	}
	return out, nil
}
