package docd

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"pkt.systems/docd/internal/storage"
)

func newTestServer(t *testing.T) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := NewServer(Config{
		Storage:      storage.TypeLocal,
		DocumentsDir: filepath.Join(t.TempDir(), "docs"),
		BaseURL:      "http://localhost:8000",
	})
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		_ = srv.Close()
	})
	return srv, ts
}

func postRPC(t *testing.T, ts *httptest.Server, payload map[string]any) map[string]any {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(ts.URL+"/mcp/stream", "application/json", bytes.NewReader(body))
	if err != nil {
		t.Fatalf("POST /mcp/stream: %v", err)
	}
	defer resp.Body.Close()
	var decoded map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&decoded); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return decoded
}

func TestInitializeHandshake(t *testing.T) {
	_, ts := newTestServer(t)
	resp := postRPC(t, ts, map[string]any{"jsonrpc": "2.0", "id": 1, "method": "initialize"})
	result, _ := resp["result"].(map[string]any)
	if result == nil {
		t.Fatalf("no result: %v", resp)
	}
	serverInfo, _ := result["serverInfo"].(map[string]any)
	if serverInfo["name"] != ServerName {
		t.Fatalf("serverInfo = %v", serverInfo)
	}
}

func TestCreateEditDownloadFlow(t *testing.T) {
	_, ts := newTestServer(t)

	create := postRPC(t, ts, map[string]any{
		"jsonrpc": "2.0", "id": 1, "method": "tools/call",
		"params": map[string]any{"name": "create_document", "arguments": map[string]any{"filename": "minutes"}},
	})
	if create["error"] != nil {
		t.Fatalf("create error: %v", create["error"])
	}

	add := postRPC(t, ts, map[string]any{
		"jsonrpc": "2.0", "id": 2, "method": "tools/call",
		"params": map[string]any{"name": "add_paragraph", "arguments": map[string]any{"filename": "minutes", "text": "Meeting opened."}},
	})
	if add["error"] != nil {
		t.Fatalf("add_paragraph error: %v", add["error"])
	}

	read := postRPC(t, ts, map[string]any{
		"jsonrpc": "2.0", "id": 3, "method": "tools/call",
		"params": map[string]any{"name": "get_document_text", "arguments": map[string]any{"filename": "minutes"}},
	})
	text, err := json.Marshal(read)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if !strings.Contains(string(text), "Meeting opened.") {
		t.Fatalf("document text missing paragraph: %s", text)
	}

	resp, err := http.Get(ts.URL + "/documents/minutes.docx")
	if err != nil {
		t.Fatalf("download: %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("download status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); ct != storage.DocContentType {
		t.Fatalf("content type = %q", ct)
	}
}

func TestConcurrentCallsOnOneDocument(t *testing.T) {
	_, ts := newTestServer(t)

	create := postRPC(t, ts, map[string]any{
		"jsonrpc": "2.0", "id": 1, "method": "tools/call",
		"params": map[string]any{"name": "create_document", "arguments": map[string]any{"filename": "shared"}},
	})
	if create["error"] != nil {
		t.Fatalf("create error: %v", create["error"])
	}

	const writers = 8
	var wg sync.WaitGroup
	errs := make(chan string, writers)
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			resp := postRPC(t, ts, map[string]any{
				"jsonrpc": "2.0", "id": 10, "method": "tools/call",
				"params": map[string]any{"name": "add_paragraph", "arguments": map[string]any{"filename": "shared", "text": "line"}},
			})
			if resp["error"] != nil {
				errs <- strings.TrimSpace(string(mustJSON(resp["error"])))
			}
		}()
	}
	wg.Wait()
	close(errs)
	for e := range errs {
		t.Errorf("concurrent add_paragraph failed: %s", e)
	}

	read := postRPC(t, ts, map[string]any{
		"jsonrpc": "2.0", "id": 20, "method": "tools/call",
		"params": map[string]any{"name": "get_document_text", "arguments": map[string]any{"filename": "shared"}},
	})
	text := string(mustJSON(read))
	if got := strings.Count(text, "line"); got != writers {
		t.Fatalf("paragraph count = %d, want %d (lost update)", got, writers)
	}
}

func mustJSON(v any) []byte {
	b, err := json.Marshal(v)
	if err != nil {
		panic(err)
	}
	return b
}
