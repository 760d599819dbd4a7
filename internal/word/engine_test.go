package word

import (
	"path/filepath"
	"strings"
	"testing"

	"pkt.systems/docd/internal/template"
)

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	return NewEngine(template.New(t.TempDir(), nil), nil)
}

func createDoc(t *testing.T, e *Engine) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "doc.docx")
	if _, err := e.Create(path, CreateOptions{}); err != nil {
		t.Fatalf("Create: %v", err)
	}
	return path
}

func TestCreateAndAddParagraph(t *testing.T) {
	e := newTestEngine(t)
	path := createDoc(t, e)

	status, err := e.AddParagraph(path, "hello world")
	if err != nil {
		t.Fatalf("AddParagraph: %v", err)
	}
	if !strings.Contains(status, "doc.docx") {
		t.Fatalf("status %q does not name the document", status)
	}
	text, err := e.Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "hello world") {
		t.Fatalf("text %q missing paragraph", text)
	}
}

func TestAddHeadingClampsLevel(t *testing.T) {
	e := newTestEngine(t)
	path := createDoc(t, e)

	status, err := e.AddHeading(path, "Overview", 9)
	if err != nil {
		t.Fatalf("AddHeading: %v", err)
	}
	if !strings.Contains(status, "level 5") {
		t.Fatalf("status %q, want clamped level 5", status)
	}
	text, err := e.Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "Overview") {
		t.Fatalf("text %q missing heading", text)
	}
}

func TestFindText(t *testing.T) {
	e := newTestEngine(t)
	path := createDoc(t, e)
	mustAdd(t, e, path, "The quick brown fox")
	mustAdd(t, e, path, "jumps over the lazy dog")

	result, err := e.FindText(path, "Quick", false)
	if err != nil {
		t.Fatalf("FindText: %v", err)
	}
	if !strings.Contains(result, "Found 1 occurrence") {
		t.Fatalf("case-insensitive search: %q", result)
	}

	result, err = e.FindText(path, "Quick", true)
	if err != nil {
		t.Fatalf("FindText: %v", err)
	}
	if !strings.Contains(result, "No occurrences") {
		t.Fatalf("case-sensitive search: %q", result)
	}

	if _, err := e.FindText(path, "", true); err == nil {
		t.Fatal("empty query accepted")
	}
}

func TestAddListNumbering(t *testing.T) {
	e := newTestEngine(t)
	path := createDoc(t, e)

	if _, err := e.AddList(path, []string{"first", "second"}, "number"); err != nil {
		t.Fatalf("AddList: %v", err)
	}
	text, err := e.Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "1. first") || !strings.Contains(text, "2. second") {
		t.Fatalf("numbered list missing ordinals: %q", text)
	}

	if _, err := e.AddList(path, nil, "bullet"); err == nil {
		t.Fatal("empty list accepted")
	}
}

func TestInsertParagraphNearText(t *testing.T) {
	e := newTestEngine(t)
	path := createDoc(t, e)
	mustAdd(t, e, path, "alpha")
	mustAdd(t, e, path, "omega")

	if _, err := e.InsertParagraphNearText(path, "omega", "middle", "before"); err != nil {
		t.Fatalf("InsertParagraphNearText: %v", err)
	}
	text, err := e.Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	mid := strings.Index(text, "middle")
	end := strings.Index(text, "omega")
	if mid < 0 || end < 0 || mid > end {
		t.Fatalf("insertion order wrong: %q", text)
	}

	if _, err := e.InsertParagraphNearText(path, "no-such-anchor", "x", "after"); err == nil {
		t.Fatal("missing anchor accepted")
	}
}

func TestAddTableCountsInInfo(t *testing.T) {
	e := newTestEngine(t)
	path := createDoc(t, e)

	if _, err := e.AddTable(path, 2, 3, []string{"a", "b", "c", "d"}); err != nil {
		t.Fatalf("AddTable: %v", err)
	}
	info, err := e.Info(path)
	if err != nil {
		t.Fatalf("Info: %v", err)
	}
	if !strings.Contains(info, `"table_count": 1`) {
		t.Fatalf("info missing table count: %s", info)
	}

	if _, err := e.AddTable(path, 0, 3, nil); err == nil {
		t.Fatal("zero-row table accepted")
	}
}

func TestCopyDocument(t *testing.T) {
	e := newTestEngine(t)
	src := createDoc(t, e)
	mustAdd(t, e, src, "original content")

	dst := filepath.Join(t.TempDir(), "copy.docx")
	if _, err := e.Copy(src, dst, "", ""); err != nil {
		t.Fatalf("Copy: %v", err)
	}
	text, err := e.Text(dst)
	if err != nil {
		t.Fatalf("Text(copy): %v", err)
	}
	if !strings.Contains(text, "original content") {
		t.Fatalf("copy text %q missing source content", text)
	}
}

func TestCreateFromTemplate(t *testing.T) {
	tpl := template.New(t.TempDir(), nil)
	e := NewEngine(tpl, nil)

	seed := filepath.Join(t.TempDir(), "seed.docx")
	if _, err := e.Create(seed, CreateOptions{}); err != nil {
		t.Fatalf("Create seed: %v", err)
	}
	mustAdd(t, e, seed, "boilerplate")
	if err := tpl.SetFromFile(seed); err != nil {
		t.Fatalf("SetFromFile: %v", err)
	}

	path := filepath.Join(t.TempDir(), "fresh.docx")
	status, err := e.Create(path, CreateOptions{UseTemplate: true})
	if err != nil {
		t.Fatalf("Create from template: %v", err)
	}
	if !strings.Contains(status, "using template") {
		t.Fatalf("status %q does not mention the template", status)
	}
	text, err := e.Text(path)
	if err != nil {
		t.Fatalf("Text: %v", err)
	}
	if !strings.Contains(text, "boilerplate") {
		t.Fatalf("templated document %q missing boilerplate", text)
	}
}

func TestOutline(t *testing.T) {
	e := newTestEngine(t)
	path := createDoc(t, e)
	mustAdd(t, e, path, "alpha section")
	if _, err := e.AddTable(path, 2, 3, nil); err != nil {
		t.Fatalf("AddTable: %v", err)
	}

	outline, err := e.Outline(path)
	if err != nil {
		t.Fatalf("Outline: %v", err)
	}
	for _, want := range []string{`"text": "alpha section"`, `"rows": 2`, `"columns": 3`} {
		if !strings.Contains(outline, want) {
			t.Fatalf("outline missing %q:\n%s", want, outline)
		}
	}
}

func TestDocumentXML(t *testing.T) {
	e := newTestEngine(t)
	path := createDoc(t, e)
	mustAdd(t, e, path, "xml-visible-marker")

	xml, err := e.XML(path)
	if err != nil {
		t.Fatalf("XML: %v", err)
	}
	if !strings.Contains(xml, "<w:body") {
		t.Fatalf("xml missing body element:\n%s", xml)
	}
	if !strings.Contains(xml, "xml-visible-marker") {
		t.Fatalf("xml missing document text:\n%s", xml)
	}
}

func TestMergeDocuments(t *testing.T) {
	e := newTestEngine(t)
	first := createDoc(t, e)
	mustAdd(t, e, first, "chapter one")
	if _, err := e.AddTable(first, 1, 2, []string{"cell-a", "cell-b"}); err != nil {
		t.Fatalf("AddTable: %v", err)
	}
	second := createDoc(t, e)
	mustAdd(t, e, second, "chapter two")

	target := filepath.Join(t.TempDir(), "merged.docx")
	status, err := e.Merge(target, []string{first, second}, true)
	if err != nil {
		t.Fatalf("Merge: %v", err)
	}
	if !strings.Contains(status, "Successfully merged 2 documents into merged.docx") {
		t.Fatalf("status = %q", status)
	}
	text, err := e.Text(target)
	if err != nil {
		t.Fatalf("Text(merged): %v", err)
	}
	one := strings.Index(text, "chapter one")
	two := strings.Index(text, "chapter two")
	if one < 0 || two < 0 || one > two {
		t.Fatalf("merged content out of order: %q", text)
	}
	info, err := e.Info(target)
	if err != nil {
		t.Fatalf("Info(merged): %v", err)
	}
	if !strings.Contains(info, `"table_count": 1`) {
		t.Fatalf("merged document lost the table: %s", info)
	}

	if _, err := e.Merge(target, nil, true); err == nil {
		t.Fatal("merge without sources accepted")
	}
	if _, err := e.Merge(target, []string{filepath.Join(t.TempDir(), "ghost.docx")}, true); err == nil {
		t.Fatal("merge with missing source accepted")
	}
}

func TestOpenMissingDocument(t *testing.T) {
	e := newTestEngine(t)
	if _, err := e.Text(filepath.Join(t.TempDir(), "ghost.docx")); err == nil {
		t.Fatal("Text on missing document succeeded")
	}
}

func mustAdd(t *testing.T, e *Engine, path, text string) {
	t.Helper()
	if _, err := e.AddParagraph(path, text); err != nil {
		t.Fatalf("AddParagraph(%q): %v", text, err)
	}
}
