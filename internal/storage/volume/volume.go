// Package volume implements the document backend on a mounted persistent
// volume. Initialization fails when the mount root cannot be created, which
// the backend factory treats as "volume not attached".
package volume

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

// Config controls the mounted-volume backend.
type Config struct {
	// Root is the directory on the attached volume holding documents.
	Root string
	// BaseURL, when set, is used to build public document URLs.
	BaseURL string
	Logger  pslog.Logger
}

// Store implements storage.Backend on a mounted volume directory.
type Store struct {
	root    string
	baseURL string
	logger  pslog.Logger
}

// New creates the volume root and returns the store. A failure to create the
// root (typically EACCES when no volume is mounted) is returned to the
// caller for fallback handling.
func New(cfg Config) (*Store, error) {
	if cfg.Root == "" {
		return nil, fmt.Errorf("volume: root directory is required")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	if err := os.MkdirAll(cfg.Root, 0o755); err != nil {
		return nil, fmt.Errorf("volume: create root %q: %w", cfg.Root, err)
	}
	logger.Info("volume.initialized", "root", cfg.Root)
	return &Store{root: cfg.Root, baseURL: cfg.BaseURL, logger: logger}, nil
}

// Type returns the backend tag.
func (s *Store) Type() string { return storage.TypeVolume }

// Close satisfies storage.Backend.
func (s *Store) Close() error { return nil }

// Root returns the volume root directory.
func (s *Store) Root() string { return s.root }

// Exists reports whether the document file is present.
func (s *Store) Exists(ctx context.Context, name string) (bool, error) {
	_, err := os.Stat(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("volume: stat %q: %w", name, err)
	}
	return true, nil
}

// Fetch copies the stored document to destPath.
func (s *Store) Fetch(ctx context.Context, name, destPath string) error {
	src, err := os.Open(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return storage.ErrNotFound
		}
		return fmt.Errorf("volume: open %q: %w", name, err)
	}
	defer src.Close()
	dst, err := os.Create(destPath)
	if err != nil {
		return fmt.Errorf("volume: create %q: %w", destPath, err)
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return fmt.Errorf("volume: copy %q: %w", name, err)
	}
	if err := dst.Close(); err != nil {
		return fmt.Errorf("volume: close %q: %w", destPath, err)
	}
	return nil
}

// Put writes the file at srcPath under name with an atomic rename.
func (s *Store) Put(ctx context.Context, srcPath, name string) (string, error) {
	src, err := os.Open(srcPath)
	if err != nil {
		return "", fmt.Errorf("volume: open source %q: %w", srcPath, err)
	}
	defer src.Close()
	dest := filepath.Join(s.root, name)
	if err := atomic.WriteFile(dest, src); err != nil {
		return "", fmt.Errorf("volume: write %q: %w", name, err)
	}
	s.logger.Debug("volume.put.success", "name", name, "path", dest)
	if s.baseURL != "" {
		return fmt.Sprintf("%s/documents/%s", strings.TrimRight(s.baseURL, "/"), url.PathEscape(name)), nil
	}
	return dest, nil
}

// Delete removes the document and reports whether it existed.
func (s *Store) Delete(ctx context.Context, name string) (bool, error) {
	err := os.Remove(filepath.Join(s.root, name))
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("volume: delete %q: %w", name, err)
	}
	return true, nil
}

// PublicURL returns base-url/documents/<name> when a base URL is configured,
// else the raw filesystem path.
func (s *Store) PublicURL(ctx context.Context, name string) string {
	if s.baseURL != "" {
		return fmt.Sprintf("%s/documents/%s", strings.TrimRight(s.baseURL, "/"), url.PathEscape(name))
	}
	return filepath.Join(s.root, name)
}
