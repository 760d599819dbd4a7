package docd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"sync"
	"time"

	"pkt.systems/docd/internal/docmgr"
	"pkt.systems/docd/internal/httpapi"
	"pkt.systems/docd/internal/rpc"
	"pkt.systems/docd/internal/storage"
	"pkt.systems/docd/internal/template"
	"pkt.systems/docd/internal/word"
	"pkt.systems/pslog"
)

// ServerName and ServerVersion identify the service during JSON-RPC
// capability negotiation.
const (
	ServerName    = "docd"
	ServerVersion = "1.0.0"
)

type options struct {
	Logger  pslog.Logger
	Backend storage.Backend
}

// Option customises NewServer.
type Option func(*options)

// WithLogger installs a structured logger. Without it the server is silent.
func WithLogger(l pslog.Logger) Option {
	return func(o *options) { o.Logger = l }
}

// WithBackend injects a storage backend, bypassing the fallback chain.
// The caller keeps ownership; Shutdown will not close it.
func WithBackend(b storage.Backend) Option {
	return func(o *options) { o.Backend = b }
}

// Server ties the storage backend, document lifecycle, operation registry,
// and HTTP surface together.
type Server struct {
	cfg       Config
	logger    pslog.Logger
	backend   storage.Backend
	ownedBE   bool
	docs      *docmgr.Manager
	templates *template.Manager
	handler   *httpapi.Handler
	telemetry *telemetryBundle
	httpSrv   *http.Server
	listener  net.Listener

	mu       sync.Mutex
	shutdown bool
}

// NewServer constructs a docd server according to cfg.
// Example:
//
//	cfg := docd.Config{Storage: "local", DocumentsDir: t.TempDir()}
//	srv, err := docd.NewServer(cfg)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	go srv.Start()
func NewServer(cfg Config, opts ...Option) (*Server, error) {
	var o options
	for _, opt := range opts {
		opt(&o)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	logger := o.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}

	backend := o.Backend
	ownedBE := false
	if backend == nil {
		var err error
		backend, err = openBackend(context.Background(), cfg, logger.With("svc", "storage"))
		if err != nil {
			return nil, err
		}
		ownedBE = true
	}
	logger.Info("storage.backend.selected", "type", backend.Type())

	docs, err := docmgr.New(backend, logger.With("svc", "docmgr"))
	if err != nil {
		if ownedBE {
			_ = backend.Close()
		}
		return nil, err
	}

	templates := template.New(templateDir(cfg, backend), logger.With("svc", "template"))
	engine := word.NewEngine(templates, logger.With("svc", "word"))

	dispatcher := rpc.NewDispatcher(rpc.Config{
		Docs:          docs,
		BaseURL:       cfg.BaseURL,
		ServerName:    ServerName,
		ServerVersion: ServerVersion,
		Logger:        logger.With("svc", "rpc"),
	})
	if err := dispatcher.Register(engine.Descriptors()...); err != nil {
		docs.CleanupAll()
		if ownedBE {
			_ = backend.Close()
		}
		return nil, err
	}

	telemetry := newTelemetryBundle(logger.With("svc", "telemetry"))
	handler := httpapi.New(httpapi.Config{
		Dispatcher:     dispatcher,
		Docs:           docs,
		Templates:      templates,
		RequestTimeout: cfg.RequestTimeout,
		Observe:        telemetry.Observe,
		Logger:         logger.With("svc", "http"),
	})
	mux := http.NewServeMux()
	handler.Register(mux)

	return &Server{
		cfg:       cfg,
		logger:    logger,
		backend:   backend,
		ownedBE:   ownedBE,
		docs:      docs,
		templates: templates,
		handler:   handler,
		telemetry: telemetry,
		httpSrv:   &http.Server{Handler: mux},
	}, nil
}

// templateDir is the directory the shared template lives in: the backing
// directory of a directory-based backend, the local documents dir when the
// object store is active.
func templateDir(cfg Config, backend storage.Backend) string {
	switch backend.Type() {
	case storage.TypeVolume:
		return cfg.VolumePath
	default:
		return cfg.DocumentsDir
	}
}

// Handler returns the root HTTP handler, for mounting into an existing mux
// or driving through httptest.
func (s *Server) Handler() http.Handler {
	return s.httpSrv.Handler
}

// Start begins serving requests and blocks until the server stops.
func (s *Server) Start() error {
	if err := s.telemetry.Serve(s.cfg.MetricsListen); err != nil {
		return err
	}
	ln, err := net.Listen("tcp", s.cfg.Listen)
	if err != nil {
		return fmt.Errorf("listen %q: %w", s.cfg.Listen, err)
	}
	s.listener = ln
	s.logger.Info("listening", "address", ln.Addr().String(), "base_url", s.cfg.BaseURL)
	serveErr := s.httpSrv.Serve(ln)
	if errors.Is(serveErr, http.ErrServerClosed) {
		return nil
	}
	if serveErr != nil {
		return fmt.Errorf("http serve: %w", serveErr)
	}
	return nil
}

// Shutdown gracefully stops the server, removes the scratch directory, and
// closes an owned backend. Safe to call more than once.
func (s *Server) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	if s.shutdown {
		s.mu.Unlock()
		return nil
	}
	s.shutdown = true
	s.mu.Unlock()

	if err := s.httpSrv.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("http shutdown: %w", err)
	}
	if l := s.listener; l != nil {
		_ = l.Close()
		s.listener = nil
	}
	telemetryCtx := ctx
	if telemetryCtx.Err() != nil {
		var cancel context.CancelFunc
		telemetryCtx, cancel = context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
	}
	if err := s.telemetry.Shutdown(telemetryCtx); err != nil {
		return err
	}
	s.docs.CleanupAll()
	if s.ownedBE {
		if err := s.backend.Close(); err != nil {
			return err
		}
	}
	return nil
}

// Close shuts the server down with a background context.
func (s *Server) Close() error {
	return s.Shutdown(context.Background())
}
