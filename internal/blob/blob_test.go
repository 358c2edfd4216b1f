package blob

import (
	"context"
	"io"
	"strings"
	"testing"
)

func stores(t *testing.T) map[string]Store {
	t.Helper()
	fsStore, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	return map[string]Store{
		"memory": NewMemory(),
		"fs":     fsStore,
	}
}

func TestPutGetRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			opts := PutOptions{ContentType: "text/csv", Metadata: map[string]string{"export": "e-1"}}
			info, err := store.Put(ctx, "exports/e-1/rows.csv", strings.NewReader("id,title\n1,Booking\n"), opts)
			if err != nil {
				t.Fatalf("put: %v", err)
			}
			if info.Size == 0 || info.ContentType != "text/csv" || info.URL == "" {
				t.Fatalf("info %+v", info)
			}

			got, rc, err := store.Get(ctx, "exports/e-1/rows.csv")
			if err != nil {
				t.Fatalf("get: %v", err)
			}
			body, err := io.ReadAll(rc)
			_ = rc.Close()
			if err != nil {
				t.Fatalf("read: %v", err)
			}
			if string(body) != "id,title\n1,Booking\n" {
				t.Fatalf("body %q", body)
			}
			if got.Metadata["export"] != "e-1" {
				t.Fatalf("metadata %v", got.Metadata)
			}
		})
	}
}

func TestPutRefusesOverwrite(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Put(ctx, "k", strings.NewReader("a"), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			if _, err := store.Put(ctx, "k", strings.NewReader("b"), PutOptions{}); err == nil {
				t.Fatal("second put must fail")
			}
		})
	}
}

func TestDeleteIdempotent(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := store.Put(ctx, "k", strings.NewReader("a"), PutOptions{}); err != nil {
				t.Fatalf("put: %v", err)
			}
			existed, err := store.Delete(ctx, "k")
			if err != nil || !existed {
				t.Fatalf("delete: %v existed=%v", err, existed)
			}
			existed, err = store.Delete(ctx, "k")
			if err != nil || existed {
				t.Fatalf("second delete: %v existed=%v", err, existed)
			}
			if _, err := store.Head(ctx, "k"); err == nil {
				t.Fatal("head after delete must fail")
			}
		})
	}
}

func TestListByPrefix(t *testing.T) {
	ctx := context.Background()
	for name, store := range stores(t) {
		t.Run(name, func(t *testing.T) {
			for _, key := range []string{"exports/a/rows.csv", "exports/b/rows.csv", "other/x"} {
				if _, err := store.Put(ctx, key, strings.NewReader("x"), PutOptions{}); err != nil {
					t.Fatalf("put %s: %v", key, err)
				}
			}
			infos, err := store.List(ctx, "exports/")
			if err != nil {
				t.Fatalf("list: %v", err)
			}
			if len(infos) != 2 || infos[0].Key != "exports/a/rows.csv" || infos[1].Key != "exports/b/rows.csv" {
				t.Fatalf("list %+v", infos)
			}
		})
	}
}

func TestFilesystemRejectsTraversal(t *testing.T) {
	store, err := NewFilesystem(t.TempDir())
	if err != nil {
		t.Fatalf("filesystem store: %v", err)
	}
	for _, key := range []string{"", "/abs", "../escape", "a/../../b"} {
		if _, err := store.Put(context.Background(), key, strings.NewReader("x"), PutOptions{}); err == nil {
			t.Fatalf("key %q must be rejected", key)
		}
	}
}

func TestOpenSelectsDriver(t *testing.T) {
	ctx := context.Background()

	t.Setenv("CATALOGCORE_BLOB_DRIVER", "memory")
	store, err := Open(ctx, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverMemory {
		t.Fatalf("driver %s", store.Driver())
	}

	t.Setenv("CATALOGCORE_BLOB_DRIVER", "fs")
	t.Setenv("CATALOGCORE_BLOB_FS_ROOT", t.TempDir())
	store, err = Open(ctx, nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if store.Driver() != DriverFilesystem {
		t.Fatalf("driver %s", store.Driver())
	}

	t.Setenv("CATALOGCORE_BLOB_DRIVER", "s3")
	if _, err := Open(ctx, nil); err == nil {
		t.Fatal("s3 without opener must fail")
	}

	t.Setenv("CATALOGCORE_BLOB_DRIVER", "gcs")
	if _, err := Open(ctx, nil); err == nil {
		t.Fatal("unknown driver must fail")
	}
}
