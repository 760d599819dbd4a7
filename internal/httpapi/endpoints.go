package httpapi

import (
	"encoding/json"
	"errors"
	"io"
	"mime"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"pkt.systems/docd/internal/docmgr"
	"pkt.systems/docd/internal/rpc"
	"pkt.systems/docd/internal/storage"
	"pkt.systems/docd/internal/template"
)

// uploadBodyLimit caps template uploads.
const uploadBodyLimit = 64 << 20

// handleStream serves the JSON-RPC endpoint. GET returns the tool catalog
// for clients probing the endpoint; POST carries one JSON-RPC request.
func (h *Handler) handleStream(w http.ResponseWriter, r *http.Request) error {
	switch r.Method {
	case http.MethodGet:
		return h.handleToolCatalog(w, r)
	case http.MethodPost:
	default:
		return httpError{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed", Detail: "use GET or POST"}
	}

	var req rpc.Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondJSON(w, http.StatusBadRequest, rpc.ParseErrorResponse(err))
		return nil
	}
	resp := h.dispatcher.Dispatch(r.Context(), &req)
	respondJSON(w, http.StatusOK, resp)
	return nil
}

// handleToolCatalog serves the registered tool list without requiring a
// JSON-RPC envelope.
func (h *Handler) handleToolCatalog(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodGet {
		return httpError{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed", Detail: "use GET"}
	}
	respondJSON(w, http.StatusOK, map[string]any{"tools": h.dispatcher.Tools()})
	return nil
}

// handleDocumentDownload streams a stored document. The name is reduced to
// its base before lookup so path segments cannot escape the store.
func (h *Handler) handleDocumentDownload(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodGet {
		return httpError{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed", Detail: "use GET"}
	}
	raw := strings.TrimPrefix(r.URL.Path, "/documents/")
	decoded, err := url.PathUnescape(raw)
	if err != nil {
		decoded = raw
	}
	name := docmgr.NormalizeName(decoded)
	if name == docmgr.DocExtension || strings.TrimSuffix(name, docmgr.DocExtension) == "" {
		return httpError{Status: http.StatusBadRequest, Code: "missing_name", Detail: "document name is required"}
	}

	release := h.docs.Acquire(name)
	defer release()

	scratch, err := h.docs.Resolve(r.Context(), name, false)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return httpError{Status: http.StatusNotFound, Code: "document_not_found", Detail: name}
		}
		return err
	}
	defer h.docs.Cleanup(name)

	f, err := os.Open(scratch)
	if err != nil {
		return err
	}
	defer f.Close()
	stat, err := f.Stat()
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", storage.DocContentType)
	w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filepath.Base(name)}))
	http.ServeContent(w, r, name, stat.ModTime(), f)
	return nil
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) error {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	return nil
}

func (h *Handler) handleTemplateInfo(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodGet {
		return httpError{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed", Detail: "use GET"}
	}
	body := map[string]any{
		"has_template": h.templates.Exists(),
		"message":      h.templates.Info(),
	}
	if stat, err := os.Stat(h.templates.Path()); err == nil {
		body["template_path"] = h.templates.Path()
		body["size_bytes"] = stat.Size()
	}
	respondJSON(w, http.StatusOK, body)
	return nil
}

// handleUploadTemplate accepts the template either as a multipart form with
// a "file" field or as a raw request body.
func (h *Handler) handleUploadTemplate(w http.ResponseWriter, r *http.Request) error {
	if r.Method != http.MethodPost {
		return httpError{Status: http.StatusMethodNotAllowed, Code: "method_not_allowed", Detail: "use POST"}
	}
	r.Body = http.MaxBytesReader(w, r.Body, uploadBodyLimit)

	var src io.Reader = r.Body
	contentType := r.Header.Get("Content-Type")
	if mediaType, _, err := mime.ParseMediaType(contentType); err == nil && mediaType == "multipart/form-data" {
		file, _, err := r.FormFile("file")
		if err != nil {
			return httpError{Status: http.StatusBadRequest, Code: "invalid_upload", Detail: "multipart form must carry a 'file' field"}
		}
		defer file.Close()
		src = file
	}

	n, err := h.templates.SetFrom(src)
	if err != nil {
		if errors.Is(err, template.ErrEmpty) {
			return httpError{Status: http.StatusBadRequest, Code: "empty_upload", Detail: "template upload was empty"}
		}
		return err
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"success":       true,
		"message":       "Template uploaded. New documents created with use_template=true will start from it.",
		"template_path": h.templates.Path(),
		"size_bytes":    n,
	})
	return nil
}
