package rpc

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"os"
	"runtime/debug"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"pkt.systems/docd/internal/docmgr"
	"pkt.systems/docd/internal/storage"
	"pkt.systems/pslog"
)

// Config wires the dispatcher's collaborators.
type Config struct {
	Docs *docmgr.Manager
	// BaseURL is the externally visible service URL used for download links.
	BaseURL       string
	ServerName    string
	ServerVersion string
	Logger        pslog.Logger
}

// Dispatcher owns the static operation registry and implements the three
// JSON-RPC methods (initialize, tools/list, tools/call).
type Dispatcher struct {
	docs     *docmgr.Manager
	baseURL  string
	name     string
	version  string
	logger   pslog.Logger
	registry map[string]*Descriptor
	order    []string
}

// NewDispatcher builds an empty dispatcher; operations are added with
// Register before the server starts serving.
func NewDispatcher(cfg Config) *Dispatcher {
	logger := cfg.Logger
	if logger == nil {
		logger = pslog.NoopLogger()
	}
	return &Dispatcher{
		docs:     cfg.Docs,
		baseURL:  strings.TrimRight(cfg.BaseURL, "/"),
		name:     cfg.ServerName,
		version:  cfg.ServerVersion,
		logger:   logger,
		registry: make(map[string]*Descriptor),
	}
}

// Register adds an operation descriptor, deriving its schema and creation
// semantics. Duplicate names are a programming error.
func (d *Dispatcher) Register(descs ...*Descriptor) error {
	for _, desc := range descs {
		if desc.Name == "" {
			return fmt.Errorf("rpc: descriptor without name")
		}
		if desc.Invoke == nil {
			return fmt.Errorf("rpc: operation %q has no callable", desc.Name)
		}
		if _, exists := d.registry[desc.Name]; exists {
			return fmt.Errorf("rpc: operation %q already registered", desc.Name)
		}
		desc.creates = isCreating(desc.Name)
		desc.schema = buildSchema(desc)
		d.registry[desc.Name] = desc
		d.order = append(d.order, desc.Name)
	}
	return nil
}

// Lookup returns the descriptor for name, if registered.
func (d *Dispatcher) Lookup(name string) (*Descriptor, bool) {
	desc, ok := d.registry[name]
	return desc, ok
}

// Dispatch routes one JSON-RPC request. Panics anywhere in method handling
// are reported as internal errors, never as transport faults.
func (d *Dispatcher) Dispatch(ctx context.Context, req *Request) (resp *Response) {
	defer func() {
		if r := recover(); r != nil {
			d.logger.Error("rpc.panic", "method", req.Method, "panic", r, "stack", string(debug.Stack()))
			resp = errorResponse(req.ID, CodeInternalError, fmt.Sprintf("%v", r))
		}
	}()
	switch req.Method {
	case "initialize":
		return resultResponse(req.ID, InitializeResult{
			ProtocolVersion: ProtocolVersion,
			Capabilities:    map[string]any{"tools": map[string]any{}},
			ServerInfo:      ServerInfo{Name: d.name, Version: d.version},
		})
	case "tools/list":
		return resultResponse(req.ID, map[string]any{"tools": d.toolList()})
	case "tools/call":
		return d.call(ctx, req)
	default:
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Method not found: %s", req.Method))
	}
}

// Tools returns the registered catalog in registration order.
func (d *Dispatcher) Tools() []ToolInfo {
	return d.toolList()
}

func (d *Dispatcher) toolList() []ToolInfo {
	tools := make([]ToolInfo, 0, len(d.order))
	for _, name := range d.order {
		desc := d.registry[name]
		tools = append(tools, ToolInfo{
			Name:        desc.Name,
			Description: desc.Description,
			InputSchema: desc.schema,
		})
	}
	return tools
}

// call drives the resolve -> invoke -> publish -> cleanup pipeline around
// one operation invocation.
func (d *Dispatcher) call(ctx context.Context, req *Request) *Response {
	var params CallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("invalid tools/call params: %v", err))
		}
	}
	desc, ok := d.registry[params.Name]
	if !ok {
		return errorResponse(req.ID, CodeMethodNotFound, fmt.Sprintf("Tool not found: %s", params.Name))
	}
	args := params.Arguments
	if args == nil {
		args = make(map[string]any)
	}

	callID := uuid.NewString()
	logger := d.logger.With("tool", params.Name, "call_id", callID)
	start := time.Now()

	primary := docmgr.NormalizeName(ArgString(args, "filename", ""))
	source := docmgr.NormalizeName(ArgString(args, "source_filename", ""))
	var sources []string
	for _, raw := range ArgStringSlice(args, "source_filenames") {
		if name := docmgr.NormalizeName(raw); name != "" {
			sources = append(sources, name)
		}
	}
	releases := d.lockNames(append([]string{primary, source}, sources...)...)
	defer releases()

	if len(sources) > 0 {
		resolved := make([]string, 0, len(sources))
		var missing []string
		for _, name := range sources {
			scratch, err := d.docs.Resolve(ctx, name, false)
			if err != nil {
				if errors.Is(err, storage.ErrNotFound) {
					missing = append(missing, name)
					continue
				}
				logger.Error("rpc.call.resolve_source_error", "source", name, "error", err)
				return errorResponse(req.ID, CodeInternalError, err.Error())
			}
			resolved = append(resolved, scratch)
			defer d.docs.Cleanup(name)
		}
		if len(missing) > 0 {
			return errorResponse(req.ID, CodeInvalidParams,
				fmt.Sprintf("The following source documents do not exist: %s", strings.Join(missing, ", ")))
		}
		args["source_filenames"] = resolved
	}

	if source != "" {
		scratch, err := d.docs.Resolve(ctx, source, false)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("Source document %s not found", source))
			}
			logger.Error("rpc.call.resolve_source_error", "source", source, "error", err)
			return errorResponse(req.ID, CodeInternalError, err.Error())
		}
		args["source_filename"] = scratch
		defer d.docs.Cleanup(source)
	}

	var primaryScratch string
	if primary != "" {
		scratch, err := d.docs.Resolve(ctx, primary, desc.creates)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				return errorResponse(req.ID, CodeInvalidParams, fmt.Sprintf("Document %s not found", primary))
			}
			logger.Error("rpc.call.resolve_error", "name", primary, "error", err)
			return errorResponse(req.ID, CodeInternalError, err.Error())
		}
		primaryScratch = scratch
		args["filename"] = scratch
		// Cleanup is unconditional: success, operation failure, or panic.
		defer d.docs.Cleanup(primary)
	}

	result, err := desc.Invoke(ctx, args)
	if err != nil {
		logger.Warn("rpc.call.operation_error", "error", err, "elapsed", time.Since(start))
		return errorResponse(req.ID, CodeInternalError, err.Error())
	}

	if primaryScratch != "" {
		if _, statErr := os.Stat(primaryScratch); statErr == nil {
			locator, pubErr := d.docs.Publish(ctx, primaryScratch, primary)
			if pubErr != nil {
				logger.Error("rpc.call.publish_error", "name", primary, "error", pubErr)
				return errorResponse(req.ID, CodeInternalError, pubErr.Error())
			}
			result = fmt.Sprintf("%s\n\nDocument saved: %s\nStorage locator: %s\nDownload URL: %s",
				result, primary, locator, d.downloadURL(primary))
		}
	}

	logger.Info("rpc.call.success", "elapsed", time.Since(start))
	return textResult(req.ID, result)
}

// lockNames serializes operations per logical name. Names are acquired in
// sorted order so two calls referencing the same pair cannot deadlock.
func (d *Dispatcher) lockNames(names ...string) func() {
	unique := make([]string, 0, len(names))
	seen := make(map[string]struct{}, len(names))
	for _, name := range names {
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			continue
		}
		seen[name] = struct{}{}
		unique = append(unique, name)
	}
	sort.Strings(unique)
	released := make([]func(), 0, len(unique))
	for _, name := range unique {
		released = append(released, d.docs.Acquire(name))
	}
	return func() {
		for i := len(released) - 1; i >= 0; i-- {
			released[i]()
		}
	}
}

func (d *Dispatcher) downloadURL(name string) string {
	return fmt.Sprintf("%s/documents/%s", d.baseURL, url.PathEscape(name))
}
