package core

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"catalogcore/pkg/domain"
)

type staticSource struct {
	records []domain.Feature
	err     error
}

func (s staticSource) Fetch(context.Context) ([]domain.Feature, error) {
	return s.records, s.err
}

type captureMetrics struct {
	mu  sync.Mutex
	ops []string
}

func (c *captureMetrics) Observe(_ context.Context, operation string, success bool, _ time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.ops = append(c.ops, fmt.Sprintf("%s:%v", operation, success))
}

func TestServiceLoadAndView(t *testing.T) {
	metrics := &captureMetrics{}
	svc := NewService(WithMetrics(metrics))
	ctx := context.Background()

	if err := svc.LoadFromSource(ctx, staticSource{records: testRecords()}); err != nil {
		t.Fatalf("load: %v", err)
	}
	state := svc.LoadState()
	if !state.Loaded || state.Failed || state.Count != 3 {
		t.Fatalf("load state %+v", state)
	}

	view := svc.View(ctx, domain.FilterState{}, "")
	assertIDs(t, view.Rows, "1", "2", "3")

	metrics.mu.Lock()
	defer metrics.mu.Unlock()
	if len(metrics.ops) != 2 || metrics.ops[0] != "load:true" || metrics.ops[1] != "view:true" {
		t.Fatalf("observed ops %v", metrics.ops)
	}
}

func TestServiceLoadFailureKeepsEmptyView(t *testing.T) {
	svc := NewService()
	ctx := context.Background()

	sourceErr := errors.New("datasource unavailable")
	if err := svc.LoadFromSource(ctx, staticSource{err: sourceErr}); !errors.Is(err, sourceErr) {
		t.Fatalf("load: got %v want %v", err, sourceErr)
	}
	state := svc.LoadState()
	if state.Loaded || !state.Failed || state.Error == "" {
		t.Fatalf("load state %+v", state)
	}

	view := svc.View(ctx, domain.FilterState{}, "")
	if len(view.Rows) != 0 {
		t.Fatalf("expected empty view, got %d rows", len(view.Rows))
	}
}

func TestServiceOptions(t *testing.T) {
	svc := NewService()
	if err := svc.LoadFromSource(context.Background(), staticSource{records: testRecords()}); err != nil {
		t.Fatalf("load: %v", err)
	}
	opts := svc.Options()
	assertStrings(t, opts.Verticals, "Spa", "Salon", "Fitness")
	assertStrings(t, opts.Countries, "US", "UK")
	assertStrings(t, opts.Competitors, "Booker", "MBO")
}

func TestServiceAnnotationFlow(t *testing.T) {
	svc := NewService()
	ctx := context.Background()
	if err := svc.LoadFromSource(ctx, staticSource{records: testRecords()}); err != nil {
		t.Fatalf("load: %v", err)
	}

	if err := svc.OpenAnnotation("1", ModeCreate); err != nil {
		t.Fatalf("open: %v", err)
	}
	res, err := svc.SaveAnnotation(ctx, "objection handling")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if res.Record.Note != "objection handling" {
		t.Fatalf("result %+v", res)
	}

	// The note shows up in the recomputed view and is searchable.
	view := svc.View(ctx, domain.FilterState{}, "objection handling")
	assertIDs(t, view.Rows, "1")

	if err := svc.OpenAnnotation("1", ModeEdit); err != nil {
		t.Fatalf("reopen: %v", err)
	}
	if _, err := svc.DeleteAnnotation(ctx); err != nil {
		t.Fatalf("delete: %v", err)
	}
	f, _ := svc.Feature("1")
	if f.Note != "" {
		t.Fatalf("note after delete %q", f.Note)
	}
}

func TestServiceExportSelection(t *testing.T) {
	svc := NewService()
	if err := svc.LoadFromSource(context.Background(), staticSource{records: testRecords()}); err != nil {
		t.Fatalf("load: %v", err)
	}

	filter := domain.FilterState{Vertical: "Spa", Competitors: []string{"Booker"}}
	sel, err := svc.ExportSelection([]string{"3", "1", "3"}, filter)
	if err != nil {
		t.Fatalf("export selection: %v", err)
	}
	assertStrings(t, sel.IDs, "3", "1")
	if sel.Filter.Vertical != "Spa" || len(sel.Filter.Competitors) != 1 {
		t.Fatalf("filter snapshot %+v", sel.Filter)
	}

	// The snapshot is independent of the caller's filter value.
	filter.Competitors[0] = "MBO"
	if sel.Filter.Competitors[0] != "Booker" {
		t.Fatal("filter snapshot shares the caller's slice")
	}

	if _, err := svc.ExportSelection([]string{"1", "nope"}, domain.FilterState{}); err == nil {
		t.Fatal("unknown id must fail")
	}
}
