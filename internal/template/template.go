// Package template manages the shared document template used when creating
// new documents.
package template

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/natefinch/atomic"

	"pkt.systems/pslog"
)

// ErrEmpty is returned when an upload carries no bytes. The previously
// installed template, if any, is left untouched.
var ErrEmpty = errors.New("template: upload is empty")

// Filename is the fixed template name inside the template directory. The
// leading dot keeps it out of document listings.
const Filename = ".template.docx"

// Manager owns the template file location.
type Manager struct {
	dir    string
	logger pslog.Logger
}

// New returns a manager rooted at dir. The directory is created lazily on
// the first write.
func New(dir string, logger pslog.Logger) *Manager {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Manager{dir: dir, logger: logger}
}

// Path returns the template file path.
func (m *Manager) Path() string {
	return filepath.Join(m.dir, Filename)
}

// Exists reports whether a template is set.
func (m *Manager) Exists() bool {
	_, err := os.Stat(m.Path())
	return err == nil
}

// Info returns a human-readable template status line.
func (m *Manager) Info() string {
	info, err := os.Stat(m.Path())
	if err != nil {
		return "No template is set. Upload one via POST /upload-template or the set_template_from_file tool."
	}
	return fmt.Sprintf("Template exists: %s (%s)", m.Path(), humanize.Bytes(uint64(info.Size())))
}

// SetFrom installs the template from r, creating parent directories and
// writing atomically. Returns the number of bytes written. An empty r is
// rejected with ErrEmpty before anything is written, so a bad upload can
// never replace a working template.
func (m *Manager) SetFrom(r io.Reader) (int64, error) {
	first := make([]byte, 1)
	n, err := io.ReadFull(r, first)
	if n == 0 {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return 0, ErrEmpty
		}
		return 0, fmt.Errorf("template: read upload: %w", err)
	}
	if err := os.MkdirAll(m.dir, 0o755); err != nil {
		return 0, fmt.Errorf("template: create dir %q: %w", m.dir, err)
	}
	counted := &countingReader{r: io.MultiReader(bytes.NewReader(first[:n]), r)}
	if err := atomic.WriteFile(m.Path(), counted); err != nil {
		return 0, fmt.Errorf("template: write %q: %w", m.Path(), err)
	}
	m.logger.Info("template.set", "path", m.Path(), "size", counted.n)
	return counted.n, nil
}

// SetFromFile installs the template by copying the file at src.
func (m *Manager) SetFromFile(src string) error {
	f, err := os.Open(src)
	if err != nil {
		return fmt.Errorf("template: open source %q: %w", src, err)
	}
	defer f.Close()
	_, err = m.SetFrom(f)
	return err
}

// Clear removes the template. Reports whether one was removed.
func (m *Manager) Clear() (bool, error) {
	err := os.Remove(m.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("template: remove %q: %w", m.Path(), err)
	}
	m.logger.Info("template.cleared", "path", m.Path())
	return true, nil
}

type countingReader struct {
	r io.Reader
	n int64
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.n += int64(n)
	return n, err
}
