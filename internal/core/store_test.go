package core

import (
	"errors"
	"testing"

	"catalogcore/pkg/domain"
)

func testRecords() []domain.Feature {
	return []domain.Feature{
		{
			ID:               "1",
			Title:            "Online Booking",
			Description:      "Customers self-book appointments.",
			Area:             "Booking",
			Country:          "US",
			BusinessBenefits: "Fewer front-desk calls",
			Vertical:         []string{"Spa"},
			Differentiator:   true,
			Competitor: map[string]domain.CompetitorStatus{
				"Booker": domain.CompetitorNotSupported,
				"MBO":    domain.CompetitorSupported,
			},
		},
		{
			ID:               "2",
			Title:            "Integrated Payments",
			Description:      "Card on file at checkout.",
			Area:             "Payments",
			Country:          "UK",
			BusinessBenefits: "Faster checkout",
			Vertical:         []string{"Salon"},
			Differentiator:   false,
			Competitor: map[string]domain.CompetitorStatus{
				"Booker": domain.CompetitorSupported,
				"MBO":    domain.CompetitorNotApplicable,
			},
		},
		{
			ID:          "3",
			Title:       "Membership Billing",
			Description: "Recurring membership charges.",
			Vertical:    []string{"Spa", "Fitness"},
		},
	}
}

func newLoadedStore(t *testing.T) *MemoryStore {
	t.Helper()
	store := NewMemoryStore()
	if err := store.Load(testRecords()); err != nil {
		t.Fatalf("load: %v", err)
	}
	return store
}

func TestLoadOnce(t *testing.T) {
	store := newLoadedStore(t)
	if err := store.Load(testRecords()); !errors.Is(err, ErrAlreadyLoaded) {
		t.Fatalf("second load: got %v want ErrAlreadyLoaded", err)
	}
	if store.Len() != 3 {
		t.Fatalf("len=%d want 3", store.Len())
	}
}

func TestLoadRejectsMalformedRecords(t *testing.T) {
	store := NewMemoryStore()
	err := store.Load([]domain.Feature{
		{ID: "", Title: "no id"},
		{ID: "a", Title: "ok"},
		{ID: "a", Title: "duplicate"},
		{ID: "b", Vertical: []string{""}},
	})
	var loadErr LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("got %v want LoadError", err)
	}
	if len(loadErr.Violations) != 3 {
		t.Fatalf("violations=%d want 3: %v", len(loadErr.Violations), loadErr.Violations)
	}
	if store.Loaded() || store.Len() != 0 {
		t.Fatal("store must stay empty after rejected load")
	}
}

func TestSnapshotPreservesOrderAndIsDefensive(t *testing.T) {
	store := newLoadedStore(t)
	snap := store.Snapshot()
	if len(snap) != 3 || snap[0].ID != "1" || snap[1].ID != "2" || snap[2].ID != "3" {
		t.Fatalf("unexpected snapshot order: %v", snap)
	}

	snap[0].Title = "mutated"
	snap[0].Vertical[0] = "mutated"
	snap[0].Competitor["Booker"] = domain.CompetitorSupported

	fresh, _ := store.Get("1")
	if fresh.Title != "Online Booking" || fresh.Vertical[0] != "Spa" {
		t.Fatalf("snapshot mutation leaked into store: %+v", fresh)
	}
	if fresh.Competitor["Booker"] != domain.CompetitorNotSupported {
		t.Fatal("competitor map mutation leaked into store")
	}
}

func TestSetNoteRoundTrip(t *testing.T) {
	store := newLoadedStore(t)

	before := store.Snapshot()

	updated, err := store.SetNote("2", "demo talking point")
	if err != nil {
		t.Fatalf("set note: %v", err)
	}
	if updated.Note != "demo talking point" {
		t.Fatalf("returned note %q", updated.Note)
	}
	got, _ := store.Get("2")
	if got.Note != "demo talking point" {
		t.Fatalf("stored note %q", got.Note)
	}

	// Copy-on-write: snapshots taken before the write stay intact.
	if before[1].Note != "" {
		t.Fatalf("prior snapshot mutated: %q", before[1].Note)
	}

	if _, err := store.ClearNote("2"); err != nil {
		t.Fatalf("clear note: %v", err)
	}
	got, _ = store.Get("2")
	if got.Note != "" {
		t.Fatalf("note after clear %q", got.Note)
	}
}

func TestSetNoteUnknownID(t *testing.T) {
	store := newLoadedStore(t)
	_, err := store.SetNote("missing", "x")
	var notFound ErrNotFound
	if !errors.As(err, &notFound) || notFound.ID != "missing" {
		t.Fatalf("got %v want ErrNotFound{missing}", err)
	}
}
