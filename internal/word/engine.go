// Package word is the document-format engine: every operation takes a local
// file path prepared by the lifecycle manager, edits the document in place,
// and returns a human-readable status string.
package word

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"

	docx "github.com/fumiama/go-docx"

	"pkt.systems/docd/internal/template"
	"pkt.systems/pslog"
)

// Engine implements the registered document operations.
type Engine struct {
	templates *template.Manager
	logger    pslog.Logger
}

// NewEngine returns an engine backed by the given template manager.
func NewEngine(templates *template.Manager, logger pslog.Logger) *Engine {
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Engine{templates: templates, logger: logger}
}

// openDoc parses the document at path.
func openDoc(path string) (*docx.Docx, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("word: document %q does not exist", filepath.Base(path))
		}
		return nil, fmt.Errorf("word: read %q: %w", path, err)
	}
	doc, err := docx.Parse(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("word: parse %q: %w", filepath.Base(path), err)
	}
	return doc, nil
}

// saveDoc writes the document to path via a temp file and rename.
func saveDoc(doc *docx.Docx, path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".docd-save-*")
	if err != nil {
		return fmt.Errorf("word: create temp: %w", err)
	}
	if _, err := doc.WriteTo(tmp); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("word: write %q: %w", path, err)
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("word: sync %q: %w", path, err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("word: close temp: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("word: rename %q: %w", path, err)
	}
	return nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()
	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// CreateOptions carries the optional create_document arguments.
type CreateOptions struct {
	Title       string
	Author      string
	UseTemplate bool
	HeaderTitle string
	HeaderSub   string
}

// Create writes a new document at path, from the template when one is set
// and UseTemplate is true, else a fresh empty document. Header placeholder
// and core-property substitution is best-effort and never fails the
// operation.
func (e *Engine) Create(path string, opts CreateOptions) (string, error) {
	fromTemplate := opts.UseTemplate && e.templates.Exists()
	if fromTemplate {
		if err := copyFile(e.templates.Path(), path); err != nil {
			return "", fmt.Errorf("word: copy template: %w", err)
		}
	} else {
		doc := docx.New().WithDefaultTheme()
		doc.AddParagraph()
		if err := saveDoc(doc, path); err != nil {
			return "", err
		}
	}
	e.substitute(path, opts.Title, opts.Author, opts.HeaderTitle, opts.HeaderSub)

	note := ""
	if fromTemplate {
		note = " (using template)"
	}
	if opts.HeaderTitle != "" || opts.HeaderSub != "" {
		note += headerNote(opts.HeaderTitle, opts.HeaderSub)
	}
	return fmt.Sprintf("Document %s created successfully%s", filepath.Base(path), note), nil
}

// Copy duplicates the source document at destPath, substituting header
// placeholders when requested.
func (e *Engine) Copy(srcPath, destPath, headerTitle, headerSub string) (string, error) {
	if err := copyFile(srcPath, destPath); err != nil {
		return "", fmt.Errorf("word: copy document: %w", err)
	}
	e.substitute(destPath, "", "", headerTitle, headerSub)
	note := ""
	if headerTitle != "" || headerSub != "" {
		note = headerNote(headerTitle, headerSub)
	}
	return fmt.Sprintf("Document copied to %s%s", filepath.Base(destPath), note), nil
}

// substitute applies placeholder and core-property rewrites, swallowing
// failures (the overall operation must not fail on substitution).
func (e *Engine) substitute(path, title, author, headerTitle, headerSub string) {
	repl := map[string]string{}
	if headerTitle != "" {
		repl["{Document Title}"] = headerTitle
	}
	if headerSub != "" {
		repl["{Document Subtitle}"] = headerSub
	}
	if len(repl) == 0 && title == "" && author == "" {
		return
	}
	if err := rewritePackage(path, repl, title, author); err != nil {
		e.logger.Debug("word.substitute.skipped", "path", path, "error", err)
	}
}

func headerNote(headerTitle, headerSub string) string {
	parts := make([]string, 0, 2)
	if headerTitle != "" {
		parts = append(parts, fmt.Sprintf("title: %q", headerTitle))
	}
	if headerSub != "" {
		parts = append(parts, fmt.Sprintf("subtitle: %q", headerSub))
	}
	note := " (header updated: "
	for i, p := range parts {
		if i > 0 {
			note += ", "
		}
		note += p
	}
	return note + ")"
}
