package word

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dustin/go-humanize"
	docx "github.com/fumiama/go-docx"
)

// bodyText returns the text of every top-level paragraph, in document order.
func bodyText(doc *docx.Docx) []string {
	var lines []string
	for _, item := range doc.Document.Body.Items {
		if p, ok := item.(*docx.Paragraph); ok {
			lines = append(lines, strings.TrimSpace(fmt.Sprint(p)))
		}
	}
	return lines
}

// Info returns document metadata as indented JSON.
func (e *Engine) Info(path string) (string, error) {
	stat, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("word: stat %q: %w", filepath.Base(path), err)
	}
	doc, err := openDoc(path)
	if err != nil {
		return "", err
	}
	paragraphs, tables := 0, 0
	words := 0
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			paragraphs++
			words += len(strings.Fields(fmt.Sprint(v)))
		case *docx.Table:
			tables++
		}
	}
	info := map[string]any{
		"filename":        filepath.Base(path),
		"size_bytes":      stat.Size(),
		"size":            humanize.Bytes(uint64(stat.Size())),
		"modified":        stat.ModTime().UTC().Format("2006-01-02T15:04:05Z"),
		"paragraph_count": paragraphs,
		"table_count":     tables,
		"word_count":      words,
	}
	out, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		return "", fmt.Errorf("word: encode info: %w", err)
	}
	return string(out), nil
}

// Outline returns the document structure as indented JSON: paragraphs in
// order with text previews, and tables with their dimensions.
func (e *Engine) Outline(path string) (string, error) {
	doc, err := openDoc(path)
	if err != nil {
		return "", err
	}
	type paragraphEntry struct {
		Index int    `json:"index"`
		Text  string `json:"text"`
	}
	type tableEntry struct {
		Index   int `json:"index"`
		Rows    int `json:"rows"`
		Columns int `json:"columns"`
	}
	paragraphs := make([]paragraphEntry, 0)
	tables := make([]tableEntry, 0)
	for _, item := range doc.Document.Body.Items {
		switch v := item.(type) {
		case *docx.Paragraph:
			text := strings.TrimSpace(fmt.Sprint(v))
			if runes := []rune(text); len(runes) > 100 {
				text = string(runes[:100])
			}
			paragraphs = append(paragraphs, paragraphEntry{Index: len(paragraphs), Text: text})
		case *docx.Table:
			rows := len(v.TableRows)
			cols := 0
			if rows > 0 {
				cols = len(v.TableRows[0].TableCells)
			}
			tables = append(tables, tableEntry{Index: len(tables), Rows: rows, Columns: cols})
		}
	}
	out, err := json.MarshalIndent(map[string]any{"paragraphs": paragraphs, "tables": tables}, "", "  ")
	if err != nil {
		return "", fmt.Errorf("word: encode outline: %w", err)
	}
	return string(out), nil
}

// XML returns the raw main document part.
func (e *Engine) XML(path string) (string, error) {
	parts, err := readParts(path, func(name string) bool { return name == "word/document.xml" })
	if err != nil {
		return "", err
	}
	if len(parts) == 0 {
		return "", fmt.Errorf("word: %s has no document part", filepath.Base(path))
	}
	return string(parts[0].data), nil
}

// Text extracts all paragraph text, one paragraph per line.
func (e *Engine) Text(path string) (string, error) {
	doc, err := openDoc(path)
	if err != nil {
		return "", err
	}
	return strings.Join(bodyText(doc), "\n"), nil
}

// FindText reports every paragraph containing the query, with match count
// and paragraph indexes. Matching is case-sensitive unless matchCase is
// false.
func (e *Engine) FindText(path, query string, matchCase bool) (string, error) {
	if query == "" {
		return "", fmt.Errorf("word: search text must not be empty")
	}
	doc, err := openDoc(path)
	if err != nil {
		return "", err
	}
	needle := query
	if !matchCase {
		needle = strings.ToLower(needle)
	}
	var sb strings.Builder
	count := 0
	for i, line := range bodyText(doc) {
		haystack := line
		if !matchCase {
			haystack = strings.ToLower(haystack)
		}
		if strings.Contains(haystack, needle) {
			count++
			fmt.Fprintf(&sb, "  paragraph %d: %s\n", i, line)
		}
	}
	if count == 0 {
		return fmt.Sprintf("No occurrences of %q found in %s", query, filepath.Base(path)), nil
	}
	return fmt.Sprintf("Found %d occurrence(s) of %q in %s:\n%s", count, query, filepath.Base(path), strings.TrimRight(sb.String(), "\n")), nil
}
