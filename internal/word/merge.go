package word

import (
	"fmt"
	"path/filepath"
	"strings"

	docx "github.com/fumiama/go-docx"
)

// Merge rebuilds the target document from the sources in order, copying
// paragraph text and table contents. Run-level formatting is not carried
// over; merged content takes the default style.
func (e *Engine) Merge(targetPath string, sourcePaths []string, pageBreaks bool) (string, error) {
	if len(sourcePaths) == 0 {
		return "", fmt.Errorf("word: at least one source document is required")
	}
	out := docx.New().WithDefaultTheme()
	for i, src := range sourcePaths {
		doc, err := openDoc(src)
		if err != nil {
			return "", err
		}
		if i > 0 && pageBreaks {
			out.AddParagraph().AddPageBreaks()
		}
		for _, item := range doc.Document.Body.Items {
			switch v := item.(type) {
			case *docx.Paragraph:
				out.AddParagraph().AddText(strings.TrimSpace(fmt.Sprint(v)))
			case *docx.Table:
				copyTableContents(out, v)
			}
		}
	}
	if err := saveDoc(out, targetPath); err != nil {
		return "", err
	}
	return fmt.Sprintf("Successfully merged %d documents into %s", len(sourcePaths), filepath.Base(targetPath)), nil
}

// copyTableContents recreates the source table in out, carrying cell text
// only.
func copyTableContents(out *docx.Docx, src *docx.Table) {
	rows := len(src.TableRows)
	if rows == 0 {
		return
	}
	cols := len(src.TableRows[0].TableCells)
	if cols == 0 {
		return
	}
	tbl := out.AddTable(rows, cols, 0, nil)
	for r, row := range src.TableRows {
		if r >= len(tbl.TableRows) {
			break
		}
		for c, cell := range row.TableCells {
			if c >= len(tbl.TableRows[r].TableCells) {
				break
			}
			texts := make([]string, 0, len(cell.Paragraphs))
			for _, p := range cell.Paragraphs {
				if t := strings.TrimSpace(fmt.Sprint(p)); t != "" {
					texts = append(texts, t)
				}
			}
			if len(texts) > 0 {
				tbl.TableRows[r].TableCells[c].AddParagraph().AddText(strings.Join(texts, "\n"))
			}
		}
	}
}
