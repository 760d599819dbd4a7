package word

import (
	"fmt"
	"path/filepath"
	"regexp"
	"strings"
)

var wTextRe = regexp.MustCompile(`<w:t[^>]*>([^<]*)</w:t>`)

var xmlUnescaper = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&quot;", `"`,
	"&apos;", "'",
	"&#xA;", "\n",
	"&#x9;", "\t",
	"&#xD;", "\r",
)

// headerLines extracts the visible text of one header part, one line per
// paragraph, empty paragraphs skipped.
func headerLines(data []byte) []string {
	var lines []string
	for _, para := range strings.Split(string(data), "</w:p>") {
		var sb strings.Builder
		for _, m := range wTextRe.FindAllStringSubmatch(para, -1) {
			sb.WriteString(xmlUnescaper.Replace(m[1]))
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			lines = append(lines, text)
		}
	}
	return lines
}

// HeaderInfo reports the text content of the document's header parts.
func (e *Engine) HeaderInfo(path string) (string, error) {
	parts, err := readParts(path, isHeaderPart)
	if err != nil {
		return "", err
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Document %s has no header", filepath.Base(path)), nil
	}
	var lines []string
	for _, part := range parts {
		lines = append(lines, headerLines(part.data)...)
	}
	if len(lines) == 0 {
		return "Header exists but contains no text", nil
	}
	var sb strings.Builder
	sb.WriteString("Header content:")
	for i, line := range lines {
		fmt.Fprintf(&sb, "\nLine %d: %s", i+1, line)
	}
	return sb.String(), nil
}

// UpdateHeader replaces every header part with a centered title line and an
// optional subtitle line. At least one of the two must be provided.
func (e *Engine) UpdateHeader(path, title, subtitle string) (string, error) {
	if title == "" && subtitle == "" {
		return "", fmt.Errorf("word: at least one of title or subtitle must be provided")
	}
	parts, err := readParts(path, isHeaderPart)
	if err != nil {
		return "", err
	}
	if len(parts) == 0 {
		return fmt.Sprintf("Document %s has no header section to update", filepath.Base(path)), nil
	}
	replacement := []byte(headerPartXML(title, subtitle))
	err = rewriteParts(path, func(name string, data []byte) []byte {
		if isHeaderPart(name) {
			return replacement
		}
		return data
	})
	if err != nil {
		return "", err
	}
	desc := make([]string, 0, 2)
	if title != "" {
		desc = append(desc, fmt.Sprintf("title: %q", title))
	}
	if subtitle != "" {
		desc = append(desc, fmt.Sprintf("subtitle: %q", subtitle))
	}
	return fmt.Sprintf("Header updated with %s in document %s", strings.Join(desc, ", "), filepath.Base(path)), nil
}

// headerPartXML builds a complete header part: bold centered title, plain
// centered subtitle.
func headerPartXML(title, subtitle string) string {
	var sb strings.Builder
	sb.WriteString(`<?xml version="1.0" encoding="UTF-8" standalone="yes"?>` + "\n")
	sb.WriteString(`<w:hdr xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main">`)
	if title != "" {
		sb.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:rPr><w:b/></w:rPr><w:t xml:space="preserve">`)
		sb.WriteString(escapeXML(title))
		sb.WriteString(`</w:t></w:r></w:p>`)
	}
	if subtitle != "" {
		sb.WriteString(`<w:p><w:pPr><w:jc w:val="center"/></w:pPr><w:r><w:t xml:space="preserve">`)
		sb.WriteString(escapeXML(subtitle))
		sb.WriteString(`</w:t></w:r></w:p>`)
	}
	sb.WriteString(`</w:hdr>`)
	return sb.String()
}
