package docd

import (
	"context"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"pkt.systems/pslog"
)

func TestTelemetryObserveAndScrape(t *testing.T) {
	tel := newTelemetryBundle(pslog.NoopLogger())
	tel.Observe("mcp.stream", 200, 15*time.Millisecond)
	tel.Observe("mcp.stream", 200, 5*time.Millisecond)
	tel.Observe("health", 500, time.Millisecond)

	if err := tel.Serve("127.0.0.1:0"); err != nil {
		t.Fatalf("Serve: %v", err)
	}
	defer func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = tel.Shutdown(ctx)
	}()

	resp, err := http.Get("http://" + tel.MetricsAddr() + "/metrics")
	if err != nil {
		t.Fatalf("scrape: %v", err)
	}
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	text := string(body)
	if !strings.Contains(text, `docd_http_requests_total{operation="mcp.stream",status="200"} 2`) {
		t.Fatalf("scrape missing request counter:\n%s", text)
	}
	if !strings.Contains(text, "docd_http_request_duration_seconds") {
		t.Fatalf("scrape missing duration histogram:\n%s", text)
	}
}

func TestTelemetryDisabledByEmptyAddr(t *testing.T) {
	tel := newTelemetryBundle(pslog.NoopLogger())
	if err := tel.Serve(""); err != nil {
		t.Fatalf("Serve(\"\"): %v", err)
	}
	if tel.MetricsAddr() != "" {
		t.Fatalf("MetricsAddr = %q, want empty", tel.MetricsAddr())
	}
	if err := tel.Shutdown(context.Background()); err != nil {
		t.Fatalf("Shutdown: %v", err)
	}
}
