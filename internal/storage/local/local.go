// Package local implements the document backend on a local directory. It is
// the terminal fallback in the backend chain and must not fail to
// initialize under normal conditions.
package local

import (
	"context"
	"fmt"
	"io"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/natefinch/atomic"

	"pkt.systems/docd/internal/storage"
	"pkt.systems/pslog"
)

// Config controls the local-filesystem backend.
type Config struct {
	// Dir is the documents directory, created when absent.
	Dir string
	// BaseURL, when set, is used to build public document URLs.
	BaseURL string
	Logger  pslog.Logger
}

// Store implements storage.Backend on a local directory.
type Store struct {
	dir     string
	baseURL string
	logger  pslog.Logger
}

// New creates the documents directory and returns the store.
func New(cfg Config) (*Store, error) {
	dir := cfg.Dir
	if dir == "" {
		dir = "./documents"
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("local: create documents dir %q: %w", dir, err)
	}
	logger.Info("local.initialized", "dir", dir)
	return &Store{dir: dir, baseURL: cfg.BaseURL, logger: logger}, nil
}

// Type returns the backend tag.
func (s *Store) Type() string { return storage.TypeLocal }

// Close satisfies storage.Backend.
func (s *Store) Close() error { return nil }

// Dir returns the documents directory.
func (s *Store) Dir() string { return s.dir }

// Exists reports whether the document file is present.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("local: stat %q: %w", name, err)
	}
	return true, nil
}

// Fetch copies the stored document to destPath.
func (s *Store) Fetch(ctx context.Context, name, destPath string) error {
	src, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("local: open %q: %w", name, err)
	}
	defer src.Close()
	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("local: create %q: %w", destPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("local: copy %q: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("local: close %q: %w", destPath, err)
	}
	return nil
}

// Put writes the file at srcPath under name with an atomic rename.
func (s *Store) Put(ctx context.Context, srcPath, name string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("local: open source %q: %w", srcPath, err)
	}
	defer src.Close()
	dest := filepath.Join(s.dir, name)
	if err := atomic.WriteFile(dest, src); err != nil {
		return "", fmt.Errorf("local: write %q: %w", name, err)
	}
	s.logger.Debug("local.put.success", "name", name, "path", dest)
	if s.baseURL != "" {
		return fmt.Sprintf("%s/documents/%s", strings.TrimRight(s.baseURL, "/"), url.PathEscape(name)), nil
	}
	return dest, nil
}

// Delete removes the document and reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	err := os.Remove(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("local: delete %q: %w", name, err)
	}
	return true, nil
}

// PublicURL returns base-url/documents/<name> when a base URL is configured,
// else the raw filesystem path.
func (s *Store) PublicURL(ctx context.Context, name string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/documents/%s", strings.TrimRight(s.baseURL, "/"), url.PathEscape(name))
	}
	return filepath.Join(s.dir, name)
}
