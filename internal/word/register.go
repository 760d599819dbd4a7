package word

import (
	"context"

	"pkt.systems/docd/internal/rpc"
)

// Descriptors declares every document operation the service exposes. The
// dispatcher resolves filename/source_filename arguments to local scratch
// paths before Invoke runs, so the callables only ever see file paths.
func (e *Engine) Descriptors() []*rpc.Descriptor {
	return []*rpc.Descriptor{
		{
			Name:        "create_document",
			Description: "Create a new Word document, optionally from the uploaded template",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document to create"},
				{Name: "title", Type: rpc.TypeString, Description: "Document title metadata", Default: ""},
				{Name: "author", Type: rpc.TypeString, Description: "Document author metadata", Default: ""},
				{Name: "use_template", Type: rpc.TypeBoolean, Description: "Start from the uploaded template when one is set", Default: true},
				{Name: "document_title", Type: rpc.TypeString, Description: "Replaces the {Document Title} header placeholder", Default: ""},
				{Name: "document_subtitle", Type: rpc.TypeString, Description: "Replaces the {Document Subtitle} header placeholder", Default: ""},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.Create(rpc.ArgString(args, "filename", ""), CreateOptions{
					Title:       rpc.ArgString(args, "title", ""),
					Author:      rpc.ArgString(args, "author", ""),
					UseTemplate: rpc.ArgBool(args, "use_template", true),
					HeaderTitle: rpc.ArgString(args, "document_title", ""),
					HeaderSub:   rpc.ArgString(args, "document_subtitle", ""),
				})
			},
		},
		{
			Name:        "copy_document",
			Description: "Copy an existing document to a new name",
			Params: []rpc.Param{
				{Name: "source_filename", Type: rpc.TypeString, Description: "Name of the document to copy"},
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the new copy"},
				{Name: "document_title", Type: rpc.TypeString, Description: "Replaces the {Document Title} header placeholder in the copy", Default: ""},
				{Name: "document_subtitle", Type: rpc.TypeString, Description: "Replaces the {Document Subtitle} header placeholder in the copy", Default: ""},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.Copy(
					rpc.ArgString(args, "source_filename", ""),
					rpc.ArgString(args, "filename", ""),
					rpc.ArgString(args, "document_title", ""),
					rpc.ArgString(args, "document_subtitle", ""),
				)
			},
		},
		{
			Name:        "get_document_info",
			Description: "Get document metadata: size, modification time, and content counts",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.Info(rpc.ArgString(args, "filename", ""))
			},
		},
		{
			Name:        "get_document_outline",
			Description: "Get the document structure: paragraphs with text previews and table dimensions",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.Outline(rpc.ArgString(args, "filename", ""))
			},
		},
		{
			Name:        "get_document_xml",
			Description: "Get the raw main document part XML for debugging",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.XML(rpc.ArgString(args, "filename", ""))
			},
		},
		{
			Name:        "get_document_text",
			Description: "Extract all paragraph text from a document",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.Text(rpc.ArgString(args, "filename", ""))
			},
		},
		{
			Name:        "find_text_in_document",
			Description: "Find occurrences of text within a document",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
				{Name: "search_text", Type: rpc.TypeString, Description: "Text to search for"},
				{Name: "match_case", Type: rpc.TypeBoolean, Description: "Match case exactly", Default: true},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.FindText(
					rpc.ArgString(args, "filename", ""),
					rpc.ArgString(args, "search_text", ""),
					rpc.ArgBool(args, "match_case", true),
				)
			},
		},
		{
			Name:        "add_paragraph",
			Description: "Append a paragraph of text to a document",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
				{Name: "text", Type: rpc.TypeString, Description: "Paragraph text"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.AddParagraph(rpc.ArgString(args, "filename", ""), rpc.ArgString(args, "text", ""))
			},
		},
		{
			Name:        "add_heading",
			Description: "Append a heading to a document",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
				{Name: "text", Type: rpc.TypeString, Description: "Heading text"},
				{Name: "level", Type: rpc.TypeInteger, Description: "Heading level 1-5", Default: 1},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.AddHeading(
					rpc.ArgString(args, "filename", ""),
					rpc.ArgString(args, "text", ""),
					rpc.ArgInt(args, "level", 1),
				)
			},
		},
		{
			Name:        "add_page_break",
			Description: "Append an explicit page break to a document",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.AddPageBreak(rpc.ArgString(args, "filename", ""))
			},
		},
		{
			Name:        "add_table",
			Description: "Append a table to a document, optionally pre-filled row-major",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
				{Name: "rows", Type: rpc.TypeInteger, Description: "Number of rows"},
				{Name: "cols", Type: rpc.TypeInteger, Description: "Number of columns"},
				{Name: "data", Type: rpc.TypeStringArray, Description: "Cell values, row-major", Default: []string{}},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.AddTable(
					rpc.ArgString(args, "filename", ""),
					rpc.ArgInt(args, "rows", 0),
					rpc.ArgInt(args, "cols", 0),
					rpc.ArgStringSlice(args, "data"),
				)
			},
		},
		{
			Name:        "insert_paragraph_near_text",
			Description: "Insert a paragraph before or after the first paragraph containing the target text",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
				{Name: "target_text", Type: rpc.TypeString, Description: "Text identifying the anchor paragraph"},
				{Name: "text", Type: rpc.TypeString, Description: "Paragraph text to insert"},
				{Name: "position", Type: rpc.TypeString, Default: "after"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.InsertParagraphNearText(
					rpc.ArgString(args, "filename", ""),
					rpc.ArgString(args, "target_text", ""),
					rpc.ArgString(args, "text", ""),
					rpc.ArgString(args, "position", "after"),
				)
			},
		},
		{
			Name:        "add_list",
			Description: "Append a bulleted or numbered list to a document",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
				{Name: "list_items", Type: rpc.TypeStringArray, Description: "List items in order"},
				{Name: "bullet_type", Type: rpc.TypeString, Default: "bullet"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.AddList(
					rpc.ArgString(args, "filename", ""),
					rpc.ArgStringSlice(args, "list_items"),
					rpc.ArgString(args, "bullet_type", "bullet"),
				)
			},
		},
		{
			Name:        "merge_documents",
			Description: "Merge existing documents into a target document, in order",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the target document"},
				{Name: "source_filenames", Type: rpc.TypeStringArray, Description: "Documents to merge, in order"},
				{Name: "add_page_breaks", Type: rpc.TypeBoolean, Description: "Insert a page break between merged documents", Default: true},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.Merge(
					rpc.ArgString(args, "filename", ""),
					rpc.ArgStringSlice(args, "source_filenames"),
					rpc.ArgBool(args, "add_page_breaks", true),
				)
			},
		},
		{
			Name:        "update_header_title_subtitle",
			Description: "Replace the document header with a centered title and optional subtitle",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
				{Name: "title", Type: rpc.TypeString, Description: "Header title text", Default: ""},
				{Name: "subtitle", Type: rpc.TypeString, Description: "Header subtitle text", Default: ""},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.UpdateHeader(
					rpc.ArgString(args, "filename", ""),
					rpc.ArgString(args, "title", ""),
					rpc.ArgString(args, "subtitle", ""),
				)
			},
		},
		{
			Name:        "get_header_info",
			Description: "Report the text content of the document header",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the document"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.HeaderInfo(rpc.ArgString(args, "filename", ""))
			},
		},
		{
			Name:        "set_template_from_file",
			Description: "Use an existing stored document as the template for new documents",
			Params: []rpc.Param{
				{Name: "filename", Type: rpc.TypeString, Description: "Name of the stored document to install as template"},
			},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				if err := e.templates.SetFromFile(rpc.ArgString(args, "filename", "")); err != nil {
					return "", err
				}
				return "Template set. New documents created with use_template=true will start from it.", nil
			},
		},
		{
			Name:        "get_template_info",
			Description: "Report whether a template is set and its size",
			Params:      []rpc.Param{},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				return e.templates.Info(), nil
			},
		},
		{
			Name:        "clear_template",
			Description: "Remove the uploaded template",
			Params:      []rpc.Param{},
			Invoke: func(ctx context.Context, args map[string]any) (string, error) {
				removed, err := e.templates.Clear()
				if err != nil {
					return "", err
				}
				if !removed {
					return "No template was set.", nil
				}
				return "Template cleared. New documents will start empty.", nil
			},
		},
	}
}
