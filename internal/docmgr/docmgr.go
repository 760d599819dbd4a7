// Package docmgr maps logical document names to scratch copies that the
// word engine can mutate in place, and syncs mutations back to the storage
// backend.
package docmgr

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"pkt.systems/docd/internal/storage"
	"pkt.systems/pslog"
)

// DocExtension is the document-format extension enforced on logical names.
const DocExtension = ".docx"

// NormalizeName strips directory components from untrusted input and
// enforces the document extension.
func NormalizeName(name string) string {
	name = filepath.Base(strings.TrimSpace(name))
	if name == "." || name == string(filepath.Separator) {
		return ""
	}
	if !strings.HasSuffix(strings.ToLower(name), DocExtension) {
		name += DocExtension
	}
	return name
}

// Manager owns one private scratch directory for the process lifetime and
// performs fetch-or-allocate, reverse sync, and cleanup for documents.
type Manager struct {
	backend storage.Backend
	dir     string
	logger  pslog.Logger
	locks   sync.Map // name -> *sync.Mutex
}

// New creates the scratch directory and returns the manager.
func New(backend storage.Backend, logger pslog.Logger) (*Manager, error) {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	dir, err := os.MkdirTemp("", "docd-scratch-")
	if err != nil {
		return nil, fmt.Errorf("docmgr: create scratch dir: %w", err)
	}
	logger.Debug("docmgr.scratch_dir", "dir", dir)
	return &Manager{backend: backend, dir: dir, logger: logger}, nil
}

// Backend exposes the storage backend the manager wraps.
func (m *Manager) Backend() storage.Backend { return m.backend }

// ScratchDir returns the private scratch directory.
func (m *Manager) ScratchDir() string { return m.dir }

// Acquire locks the logical name and returns the release func. Two
// operations on the same name collide on the shared scratch file, so the
// dispatcher and the download endpoint hold this lock across their
// resolve/mutate/publish/cleanup sequence.
func (m *Manager) Acquire(name string) func() {
	mu, _ := m.locks.LoadOrStore(NormalizeName(name), &sync.Mutex{})
	lock := mu.(*sync.Mutex)
	lock.Lock()
	return lock.Unlock
}

// Resolve returns a scratch path for the document. When the backend has the
// document it is fetched into the scratch directory; otherwise, with
// createIfMissing, an unfetched path is allocated; else storage.ErrNotFound.
func (m *Manager) Resolve(ctx context.Context, name string, createIfMissing bool) (string, error) {
	name = NormalizeName(name)
	if name == "" {
		return "", fmt.Errorf("docmgr: empty document name")
	}
	scratch := filepath.Join(m.dir, name)
	exists, err := m.backend.Exists(ctx, name)
	if err != nil {
		return "", fmt.Errorf("docmgr: check %q: %w", name, err)
	}
	if exists {
		if err := m.backend.Fetch(ctx, name, scratch); err != nil {
			return "", fmt.Errorf("docmgr: fetch %q: %w", name, err)
		}
		return scratch, nil
	}
	if !createIfMissing {
		return "", fmt.Errorf("docmgr: document %q: %w", name, storage.ErrNotFound)
	}
	if err := os.MkdirAll(filepath.Dir(scratch), 0o755); err != nil {
		return "", fmt.Errorf("docmgr: ensure scratch dir: %w", err)
	}
	return scratch, nil
}

// Publish uploads the scratch file to the backend under name and returns
// the backend locator.
func (m *Manager) Publish(ctx context.Context, scratchPath, name string) (string, error) {
	name = NormalizeName(name)
	locator, err := m.backend.Put(ctx, scratchPath, name)
	if err != nil {
		return "", fmt.Errorf("docmgr: publish %q: %w", name, err)
	}
	m.logger.Debug("docmgr.published", "name", name, "locator", locator)
	return locator, nil
}

// PublicURL returns the backend's public URL for the document.
func (m *Manager) PublicURL(ctx context.Context, name string) string {
	return m.backend.PublicURL(ctx, NormalizeName(name))
}

// Cleanup removes one scratch file. Missing files are not an error.
func (m *Manager) Cleanup(name string) {
	name = NormalizeName(name)
	if name == "" {
		return
	}
	if err := os.Remove(filepath.Join(m.dir, name)); err != nil && !os.IsNotExist(err) {
		m.logger.Debug("docmgr.cleanup.error", "name", name, "error", err)
	}
}

// CleanupAll removes the entire scratch directory tree. Idempotent.
func (m *Manager) CleanupAll() {
	if err := os.RemoveAll(m.dir); err != nil {
		m.logger.Debug("docmgr.cleanup_all.error", "dir", m.dir, "error", err)
	}
}
