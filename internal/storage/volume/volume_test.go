package volume

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"pkt.systems/docd/internal/storage"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := New(Config{Root: filepath.Join(t.TempDir(), "docs"), BaseURL: "http://localhost:8000"})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return store
}

func writeScratch(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "scratch.docx")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write scratch: %v", err)
	}
	return path
}

func TestPutFetchRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	src := writeScratch(t, "document-bytes")
	locator, err := store.Put(ctx, src, "report.docx")
	if err != nil {
		t.Fatalf("Put: %v", err)
	}
	if locator == "" {
		t.Fatal("Put returned empty locator")
	}

	ok, err := store.Exists(ctx, "report.docx")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if !ok {
		t.Fatal("Exists = false after Put")
	}

	dest := filepath.Join(t.TempDir(), "fetched.docx")
	if err := store.Fetch(ctx, "report.docx", dest); err != nil {
		t.Fatalf("Fetch: %v", err)
	}
	data, err := os.ReadFile(dest)
	if err != nil {
		t.Fatalf("read fetched: %v", err)
	}
	if string(data) != "document-bytes" {
		t.Fatalf("fetched content = %q, want %q", data, "document-bytes")
	}
}

func TestFetchMissingIsNotFound(t *testing.T) {
	store := newTestStore(t)
	err := store.Fetch(context.Background(), "absent.docx", filepath.Join(t.TempDir(), "out.docx"))
	if !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Fetch missing: err = %v, want ErrNotFound", err)
	}
}

func TestDeleteReportsPresence(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	removed, err := store.Delete(ctx, "absent.docx")
	if err != nil {
		t.Fatalf("Delete absent: %v", err)
	}
	if removed {
		t.Fatal("Delete absent = true, want false")
	}

	src := writeScratch(t, "x")
	if _, err := store.Put(ctx, src, "doomed.docx"); err != nil {
		t.Fatalf("Put: %v", err)
	}
	removed, err = store.Delete(ctx, "doomed.docx")
	if err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if !removed {
		t.Fatal("Delete = false after Put")
	}
	ok, err := store.Exists(ctx, "doomed.docx")
	if err != nil {
		t.Fatalf("Exists: %v", err)
	}
	if ok {
		t.Fatal("Exists = true after Delete")
	}
}

func TestPublicURLUsesBaseURL(t *testing.T) {
	store := newTestStore(t)
	got := store.PublicURL(context.Background(), "report.docx")
	want := "http://localhost:8000/documents/report.docx"
	if got != want {
		t.Fatalf("PublicURL = %q, want %q", got, want)
	}
}

func TestNewFailsWhenRootUnwritable(t *testing.T) {
	if os.Getuid() == 0 {
		t.Skip("running as root; permission bits are not enforced")
	}
	parent := t.TempDir()
	if err := os.Chmod(parent, 0o500); err != nil {
		t.Fatalf("chmod: %v", err)
	}
	t.Cleanup(func() { _ = os.Chmod(parent, 0o755) })
	if _, err := New(Config{Root: filepath.Join(parent, "docs")}); err == nil {
		t.Fatal("New succeeded with unwritable parent, want error")
	}
}
