// Package httpapi exposes the JSON-RPC stream endpoint and the REST
// surface: document downloads, health, and template management.
package httpapi

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/rs/xid"

	"pkt.systems/docd/internal/docmgr"
	"pkt.systems/docd/internal/rpc"
	"pkt.systems/docd/internal/template"
	"pkt.systems/pslog"
)

const headerCorrelationID = "X-Correlation-Id"

// DefaultRequestTimeout bounds one HTTP request end to end, including
// backend fetch and publish.
const DefaultRequestTimeout = 60 * time.Second

// Config wires the handler's collaborators.
type Config struct {
	Dispatcher *rpc.Dispatcher
	Docs       *docmgr.Manager
	Templates  *template.Manager
	// RequestTimeout bounds each request; zero means DefaultRequestTimeout.
	RequestTimeout time.Duration
	// Observe, when set, receives one sample per completed request.
	Observe func(operation string, status int, elapsed time.Duration)
	Logger  pslog.Logger
}

// Handler serves the HTTP surface.
type Handler struct {
	dispatcher *rpc.Dispatcher
	docs       *docmgr.Manager
	templates  *template.Manager
	timeout    time.Duration
	observe    func(operation string, status int, elapsed time.Duration)
	logger     pslog.Logger
}

// New builds a handler from cfg.
func New(cfg Config) *Handler {
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &Handler{
		dispatcher: cfg.Dispatcher,
		docs:       cfg.Docs,
		templates:  cfg.Templates,
		timeout:    timeout,
		observe:    cfg.Observe,
		logger:     logger,
	}
}

// Register installs all routes on mux.
func (h *Handler) Register(mux *http.ServeMux) {
	mux.Handle("/mcp/stream", h.wrap("mcp.stream", h.handleStream))
	mux.Handle("/mcp/tools", h.wrap("mcp.tools", h.handleToolCatalog))
	mux.Handle("/documents/", h.wrap("documents.download", h.handleDocumentDownload))
	mux.Handle("/health", h.wrap("health", h.handleHealth))
	mux.Handle("/template/info", h.wrap("template.info", h.handleTemplateInfo))
	mux.Handle("/upload-template", h.wrap("template.upload", h.handleUploadTemplate))
}

type handlerFunc func(http.ResponseWriter, *http.Request) error

type httpError struct {
	Status int
	Code   string
	Detail string
}

func (e httpError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Code, e.Detail)
	}
	return e.Code
}

// statusRecorder captures the response status for logging and metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(p)
}

// wrap applies the shared middleware: CORS, preflight, correlation ID,
// request timeout, panic recovery, access logging, and metrics.
func (h *Handler) wrap(operation string, fn handlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+headerCorrelationID)
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}

		reqID := r.Header.Get(headerCorrelationID)
		if reqID == "" {
			reqID = xid.New().String()
		}
		w.Header().Set(headerCorrelationID, reqID)

		logger := h.logger.With(
			"op", operation,
			"req_id", reqID,
			"method", r.Method,
			"path", r.URL.Path,
		)
		ctx := pslog.ContextWithLogger(r.Context(), logger)
		ctx, cancel := context.WithTimeout(ctx, h.timeout)
		defer cancel()
		r = r.WithContext(ctx)

		rec := &statusRecorder{ResponseWriter: w}
		defer func() {
			if p := recover(); p != nil {
				logger.Error("http.panic", "panic", p)
				if rec.status == 0 {
					writeError(rec, httpError{Status: http.StatusInternalServerError, Code: "internal_error", Detail: fmt.Sprintf("%v", p)})
				}
			}
			elapsed := time.Since(start)
			logger.Info("http.request", "status", rec.status, "elapsed", elapsed)
			if h.observe != nil {
				h.observe(operation, rec.status, elapsed)
			}
		}()

		if err := fn(rec, r); err != nil {
			writeError(rec, err)
		}
	})
}

func writeError(w http.ResponseWriter, err error) {
	he, ok := err.(httpError)
	if !ok {
		he = httpError{Status: http.StatusInternalServerError, Code: "internal_error", Detail: err.Error()}
	}
	respondJSON(w, he.Status, map[string]any{
		"error":  he.Code,
		"detail": he.Detail,
	})
}

func respondJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
