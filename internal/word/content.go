package word

import (
	"fmt"
	"path/filepath"
	"strings"

	docx "github.com/fumiama/go-docx"
)

// headingStyles maps heading level to run size (half-points) and color,
// approximating the built-in Word heading styles.
var headingStyles = map[int]struct {
	size  string
	color string
}{
	1: {"32", "2E74B5"},
	2: {"28", "2E74B5"},
	3: {"26", "1F4D78"},
	4: {"24", "2E74B5"},
	5: {"22", "2E74B5"},
}

// AddParagraph appends a paragraph of plain text.
func (e *Engine) AddParagraph(path, text string) (string, error) {
	doc, err := openDoc(path)
	if err != nil {
		return "", err
	}
	doc.AddParagraph().AddText(text)
	if err := saveDoc(doc, path); err != nil {
		return "", err
	}
	return fmt.Sprintf("Paragraph added to %s", filepath.Base(path)), nil
}

// AddHeading appends a heading. Levels outside 1..5 clamp to the nearest
// bound.
func (e *Engine) AddHeading(path, text string, level int) (string, error) {
	if level < 1 {
		level = 1
	}
	if level > 5 {
		level = 5
	}
	doc, err := openDoc(path)
	if err != nil {
		return "", err
	}
	style := headingStyles[level]
	doc.AddParagraph().AddText(text).Size(style.size).Color(style.color)
	if err := saveDoc(doc, path); err != nil {
		return "", err
	}
	return fmt.Sprintf("Heading '%s' (level %d) added to %s", text, level, filepath.Base(path)), nil
}

// AddPageBreak appends an explicit page break.
func (e *Engine) AddPageBreak(path string) (string, error) {
	doc, err := openDoc(path)
	if err != nil {
		return "", err
	}
	doc.AddParagraph().AddPageBreaks()
	if err := saveDoc(doc, path); err != nil {
		return "", err
	}
	return fmt.Sprintf("Page break added to %s", filepath.Base(path)), nil
}

// AddTable appends a rows x cols table, filling cells row-major from data.
// Missing cells stay empty, surplus data is ignored.
func (e *Engine) AddTable(path string, rows, cols int, data []string) (string, error) {
	if rows < 1 || cols < 1 {
		return "", fmt.Errorf("word: table dimensions must be positive, got %dx%d", rows, cols)
	}
	doc, err := openDoc(path)
	if err != nil {
		return "", err
	}
	tbl := doc.AddTable(rows, cols, 0, nil)
	for r := 0; r < rows && r < len(tbl.TableRows); r++ {
		row := tbl.TableRows[r]
		for c := 0; c < cols && c < len(row.TableCells); c++ {
			idx := r*cols + c
			if idx >= len(data) {
				continue
			}
			row.TableCells[c].AddParagraph().AddText(data[idx])
		}
	}
	if err := saveDoc(doc, path); err != nil {
		return "", err
	}
	return fmt.Sprintf("Table (%dx%d) added to %s", rows, cols, filepath.Base(path)), nil
}

// AddList appends one paragraph per item, prefixed according to the list
// type: "bullet" yields bullet glyphs, "number" yields an incrementing
// ordinal.
func (e *Engine) AddList(path string, items []string, bulletType string) (string, error) {
	if len(items) == 0 {
		return "", fmt.Errorf("word: list items must not be empty")
	}
	if bulletType != "number" {
		bulletType = "bullet"
	}
	doc, err := openDoc(path)
	if err != nil {
		return "", err
	}
	for i, item := range items {
		prefix := "• "
		if bulletType == "number" {
			prefix = fmt.Sprintf("%d. ", i+1)
		}
		doc.AddParagraph().AddText(prefix + item)
	}
	if err := saveDoc(doc, path); err != nil {
		return "", err
	}
	return fmt.Sprintf("List with %d item(s) added to %s", len(items), filepath.Base(path)), nil
}

// InsertParagraphNearText inserts a paragraph immediately before or after
// the first top-level paragraph containing target.
func (e *Engine) InsertParagraphNearText(path, target, text, position string) (string, error) {
	if target == "" {
		return "", fmt.Errorf("word: target text must not be empty")
	}
	if position != "before" {
		position = "after"
	}
	doc, err := openDoc(path)
	if err != nil {
		return "", err
	}
	items := doc.Document.Body.Items
	targetIdx := -1
	for i, item := range items {
		p, ok := item.(*docx.Paragraph)
		if !ok {
			continue
		}
		if strings.Contains(fmt.Sprint(p), target) {
			targetIdx = i
			break
		}
	}
	if targetIdx < 0 {
		return "", fmt.Errorf("word: target text %q not found in %s", target, filepath.Base(path))
	}

	// AddParagraph appends to the body; splice the new item back to its
	// insertion point.
	doc.AddParagraph().AddText(text)
	items = doc.Document.Body.Items
	added := items[len(items)-1]
	insertAt := targetIdx
	if position == "after" {
		insertAt = targetIdx + 1
	}
	spliced := make([]interface{}, 0, len(items))
	spliced = append(spliced, items[:insertAt]...)
	spliced = append(spliced, added)
	spliced = append(spliced, items[insertAt:len(items)-1]...)
	doc.Document.Body.Items = spliced

	if err := saveDoc(doc, path); err != nil {
		return "", err
	}
	return fmt.Sprintf("Paragraph inserted %s %q in %s", position, target, filepath.Base(path)), nil
}
