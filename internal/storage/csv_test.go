package storage

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"reflect"
	"testing"

	"github.com/timmy/batchpub/internal/sheet"
)

func TestCSVStore_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "uploads.csv")
	if err := os.WriteFile(path, []byte("\ufeffid,title\n1,\"a, b\"\n2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	var store CSVStore

	m, err := store.Read(ctx, path, "")
	if err != nil {
		t.Fatalf("Read: %v", err)
	}
	want := sheet.Matrix{{"id", "title"}, {"1", "a, b"}, {"2"}}
	if !reflect.DeepEqual(m, want) {
		t.Fatalf("got %q, want %q", m, want)
	}

	m.Set(0, 2, "upload_status")
	m.Set(2, 2, "done")
	if err := store.Write(ctx, path, "uploads", m); err != nil {
		t.Fatalf("Write: %v", err)
	}

	got, err := store.Read(ctx, path, "uploads")
	if err != nil {
		t.Fatalf("Read after write: %v", err)
	}
	want = sheet.Matrix{{"id", "title", "upload_status"}, {"1", "a, b", ""}, {"2", "", "done"}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %q, want %q", got, want)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatal(err)
	}
	if info.Mode().Perm() != 0o600 {
		t.Errorf("file mode changed to %v", info.Mode().Perm())
	}
}

func TestCSVStore_NotFound(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "uploads.csv")
	if err := os.WriteFile(existing, []byte("id\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	ctx := context.Background()
	var store CSVStore

	tests := []struct {
		name      string
		path      string
		sheetName string
	}{
		{"missing file", filepath.Join(dir, "nope.csv"), ""},
		{"wrong sheet", existing, "Sheet1"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := store.Read(ctx, tt.path, tt.sheetName); !errors.Is(err, ErrNotFound) {
				t.Errorf("Read: expected ErrNotFound, got %v", err)
			}
			if err := store.Write(ctx, tt.path, tt.sheetName, sheet.Matrix{{"id"}}); !errors.Is(err, ErrNotFound) {
				t.Errorf("Write: expected ErrNotFound, got %v", err)
			}
		})
	}
	if _, err := os.Stat(filepath.Join(dir, "nope.csv")); !os.IsNotExist(err) {
		t.Error("Write must not create a missing file")
	}
}
