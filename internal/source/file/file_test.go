package file

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"catalogcore/pkg/domain"
)

func TestFetchDecodesRecords(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "catalog.json")
	payload := `[
		{"id":"1","title":"Online Booking","vertical":["Spa"],"differentiator":true,
		 "competitor":{"Booker":"N","MBO":"Y"}},
		{"id":"2","title":"Integrated Payments","country":"UK","area":"Payments"}
	]`
	if err := os.WriteFile(path, []byte(payload), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	records, err := New(path).Fetch(context.Background())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("records=%d want 2", len(records))
	}
	if records[0].Competitor["Booker"] != domain.CompetitorNotSupported {
		t.Fatalf("competitor status %q", records[0].Competitor["Booker"])
	}
	if !records[0].Differentiator || records[1].Area != "Payments" {
		t.Fatalf("decoded records %+v", records)
	}
}

func TestFetchMissingFile(t *testing.T) {
	if _, err := New(filepath.Join(t.TempDir(), "absent.json")).Fetch(context.Background()); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestFetchMalformedDocument(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o600); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	if _, err := New(path).Fetch(context.Background()); err == nil {
		t.Fatal("expected decode error")
	}
}

func TestFetchHonorsContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := New("catalog.json").Fetch(ctx); err == nil {
		t.Fatal("expected context error")
	}
}
