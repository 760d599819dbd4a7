package local

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pkt.systems/docd/internal/storage"
)

func TestRoundTripAndType(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "documents")
	store, err := New(Config{Dir: dir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if store.Type() != storage.TypeLocal {
		t.Fatalf("Type = %q, want %q", store.Type(), storage.TypeLocal)
	}
	ctx := context.Background()

	src := filepath.Join(t.TempDir(), "in.docx")
	if err := os.WriteFile(src, []byte("payload"), 0o644); err != nil {
		t.Fatalf("write source: %v", err)
	}
	if _, err := store.Put(ctx, src, "a.docx"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	ok, err := store.Exists(ctx, "a.docx")
	if err != nil || !ok {
		t.Fatalf("Exists = %v, %v; want true, nil", ok, err)
	}
	dest := filepath.Join(t.TempDir(), "out.docx")
	if err := store.Fetch(ctx, "a.docx", dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, _ := os.ReadFile(dest)
	if string(data) != "payload" {
		t.Fatalf("fetched = %q, want payload", data)
	}
}

func TestFetchMissing(t *testing.T) {
	store, err := New(Config{Dir: t.TempDir()})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	err = store.Fetch(context.Background(), "nope.docx", filepath.Join(t.TempDir(), "x"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}

func TestDefaultDir(t *testing.T) {
	t.Chdir(t.TempDir())
	store, err := New(Config{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if store.Dir() != "./documents" {
		t.Fatalf("Dir = %q, want ./documents", store.Dir())
	}
}
