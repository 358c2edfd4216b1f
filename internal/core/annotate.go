package core

import (
	"sync"

	"catalogcore/pkg/domain"
)

// AnnotationMode distinguishes creating a note from editing an existing one.
type AnnotationMode string

const (
	// ModeCreate opens a session for a record without a note.
	ModeCreate AnnotationMode = "create"
	// ModeEdit opens a session for a record with an existing note.
	ModeEdit AnnotationMode = "edit"
)

// NoteOutcome describes how an annotation session committed.
type NoteOutcome string

const (
	// OutcomeSaved indicates the note text was written.
	OutcomeSaved NoteOutcome = "saved"
	// OutcomeDeleted indicates the note was removed.
	OutcomeDeleted NoteOutcome = "deleted"
)

// AnnotationResult is returned from Save and Delete so the caller decides how
// to refresh, instead of the manager invoking an opaque completion callback.
type AnnotationResult struct {
	Record  domain.Feature `json:"record"`
	Outcome NoteOutcome    `json:"outcome"`
}

// Session describes the currently open annotation dialog.
type Session struct {
	FeatureID string         `json:"feature_id"`
	Mode      AnnotationMode `json:"mode"`
}

// Annotator runs the per-dialog state machine Closed -> Open -> Closed. At
// most one session is open; opening while open replaces the prior session
// without committing it. Save and Delete write through the store and close
// the session; Cancel closes without touching the store.
type Annotator struct {
	mu      sync.Mutex
	store   *MemoryStore
	session *Session
}

// NewAnnotator constructs an annotation manager over the store.
func NewAnnotator(store *MemoryStore) *Annotator {
	return &Annotator{store: store}
}

// Open starts a session for the feature. An already-open session is
// discarded, not an error.
func (a *Annotator) Open(featureID string, mode AnnotationMode) error {
	if _, ok := a.store.Get(featureID); !ok {
		return ErrNotFound{ID: featureID}
	}
	a.mu.Lock()
	a.session = &Session{FeatureID: featureID, Mode: mode}
	a.mu.Unlock()
	return nil
}

// Session returns the open session, if any.
func (a *Annotator) Session() (Session, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return Session{}, false
	}
	return *a.session, true
}

// Save writes the note text for the open session's record and closes the
// session.
func (a *Annotator) Save(text string) (AnnotationResult, error) {
	return a.commit(func(id string) (domain.Feature, error) {
		return a.store.SetNote(id, text)
	}, OutcomeSaved)
}

// Delete removes the open session's note and closes the session.
func (a *Annotator) Delete() (AnnotationResult, error) {
	return a.commit(a.store.ClearNote, OutcomeDeleted)
}

func (a *Annotator) commit(write func(id string) (domain.Feature, error), outcome NoteOutcome) (AnnotationResult, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.session == nil {
		return AnnotationResult{}, ErrNoSession
	}
	updated, err := write(a.session.FeatureID)
	if err != nil {
		return AnnotationResult{}, err
	}
	a.session = nil
	return AnnotationResult{Record: updated, Outcome: outcome}, nil
}

// Cancel closes the session without mutating the store. Cancelling with no
// open session is a no-op.
func (a *Annotator) Cancel() {
	a.mu.Lock()
	a.session = nil
	a.mu.Unlock()
}
