package word

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
)

var (
	coreTitleRe   = regexp.MustCompile(`<dc:title>.*?</dc:title>`)
	coreCreatorRe = regexp.MustCompile(`<dc:creator>.*?</dc:creator>`)
)

// rewritePackage rewrites the OOXML package at path in place: placeholder
// replacements are applied to the main document part and every header part,
// and non-empty title/author values are written into the core properties.
func rewritePackage(path string, repl map[string]string, title, author string) error {
	return rewriteParts(path, func(name string, data []byte) []byte {
		switch {
		case isTextPart(name):
			return applyReplacements(data, repl)
		case name == "docProps/core.xml":
			return applyCoreProps(data, title, author)
		}
		return data
	})
}

// rewriteParts rebuilds the package at path, passing every entry through
// transform. The rewrite goes through a temp file and rename so a failure
// leaves the original untouched.
func rewriteParts(path string, transform func(name string, data []byte) []byte) error {
	r, err := zip.OpenReader(path)
	if err != nil {
		return fmt.Errorf("word: open package %q: %w", path, err)
	}
	defer r.Close()

	tmp, err := os.CreateTemp(filepath.Dir(path), ".docd-rewrite-*")
	if err != nil {
		return fmt.Errorf("word: create temp: %w", err)
	}
	w := zip.NewWriter(tmp)
	ok := false
	defer func() {
		if !ok {
			w.Close()
			tmp.Close()
			os.Remove(tmp.Name())
		}
	}()

	for _, entry := range r.File {
		data, err := readEntry(entry)
		if err != nil {
			return err
		}
		data = transform(entry.Name, data)
		hdr := entry.FileHeader
		hdr.Method = zip.Deflate
		out, err := w.CreateHeader(&hdr)
		if err != nil {
			return fmt.Errorf("word: rewrite entry %q: %w", entry.Name, err)
		}
		if _, err := out.Write(data); err != nil {
			return fmt.Errorf("word: rewrite entry %q: %w", entry.Name, err)
		}
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("word: finalize package: %w", err)
	}
	if err := tmp.Sync(); err != nil {
		return fmt.Errorf("word: sync package: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("word: close package: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("word: replace package: %w", err)
	}
	ok = true
	return nil
}

// isTextPart reports whether the package entry carries visible document text
// that placeholders may appear in.
func isTextPart(name string) bool {
	return name == "word/document.xml" || isHeaderPart(name)
}

func isHeaderPart(name string) bool {
	return strings.HasPrefix(name, "word/header") && strings.HasSuffix(name, ".xml")
}

type packagePart struct {
	name string
	data []byte
}

// readParts returns the matching package entries in name order.
func readParts(path string, match func(string) bool) ([]packagePart, error) {
	r, err := zip.OpenReader(path)
	if err != nil {
		return nil, fmt.Errorf("word: open package %q: %w", path, err)
	}
	defer r.Close()
	var parts []packagePart
	for _, entry := range r.File {
		if !match(entry.Name) {
			continue
		}
		data, err := readEntry(entry)
		if err != nil {
			return nil, err
		}
		parts = append(parts, packagePart{name: entry.Name, data: data})
	}
	sort.Slice(parts, func(i, j int) bool { return parts[i].name < parts[j].name })
	return parts, nil
}

func readEntry(entry *zip.File) ([]byte, error) {
	rc, err := entry.Open()
	if err != nil {
		return nil, fmt.Errorf("word: read entry %q: %w", entry.Name, err)
	}
	defer rc.Close()
	data, err := io.ReadAll(rc)
	if err != nil {
		return nil, fmt.Errorf("word: read entry %q: %w", entry.Name, err)
	}
	return data, nil
}

func applyReplacements(data []byte, repl map[string]string) []byte {
	if len(repl) == 0 {
		return data
	}
	content := string(data)
	for placeholder, value := range repl {
		content = strings.ReplaceAll(content, placeholder, escapeXML(value))
	}
	return []byte(content)
}

func applyCoreProps(data []byte, title, author string) []byte {
	content := string(data)
	if title != "" {
		content = coreTitleRe.ReplaceAllString(content, "<dc:title>"+escapeXML(title)+"</dc:title>")
	}
	if author != "" {
		content = coreCreatorRe.ReplaceAllString(content, "<dc:creator>"+escapeXML(author)+"</dc:creator>")
	}
	return []byte(content)
}

func escapeXML(s string) string {
	var buf bytes.Buffer
	if err := xml.EscapeText(&buf, []byte(s)); err != nil {
		return s
	}
	return buf.String()
}
