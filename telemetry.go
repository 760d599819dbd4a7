package docd

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"pkt.systems/pslog"
)

// telemetryBundle owns the Prometheus registry and the optional metrics
// listener.
type telemetryBundle struct {
	registry      *prometheus.Registry
	requestsTotal *prometheus.CounterVec
	duration      *prometheus.HistogramVec
	metricsServer *http.Server
	metricsLn     net.Listener
	logger        pslog.Logger
}

func newTelemetryBundle(logger pslog.Logger) *telemetryBundle {
	registry := prometheus.NewRegistry()
	t := &telemetryBundle{
		registry: registry,
		requestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "docd_http_requests_total",
			Help: "HTTP requests by operation and status code.",
		}, []string{"operation", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "docd_http_request_duration_seconds",
			Help:    "HTTP request latency by operation.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
		logger: logger,
	}
	registry.MustRegister(t.requestsTotal, t.duration)
	return t
}

// Observe records one completed HTTP request.
func (t *telemetryBundle) Observe(operation string, status int, elapsed time.Duration) {
	t.requestsTotal.WithLabelValues(operation, strconv.Itoa(status)).Inc()
	t.duration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// Serve starts the metrics listener when addr is non-empty.
func (t *telemetryBundle) Serve(addr string) error {
	if addr == "" {
		return nil
	}
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("telemetry: listen %q: %w", addr, err)
	}
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(t.registry, promhttp.HandlerOpts{}))
	t.metricsLn = ln
	t.metricsServer = &http.Server{Handler: mux}
	go func() {
		if err := t.metricsServer.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			t.logger.Warn("telemetry.metrics_server.error", "error", err)
		}
	}()
	t.logger.Info("telemetry.metrics_server.listening", "addr", ln.Addr().String())
	return nil
}

func (t *telemetryBundle) Shutdown(ctx context.Context) error {
	if t.metricsServer == nil {
		return nil
	}
	if err := t.metricsServer.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		t.logger.Warn("telemetry.shutdown.metrics_server_failure", "error", err)
		return fmt.Errorf("metrics server shutdown: %w", err)
	}
	return nil
}

// MetricsAddr returns the bound metrics address, or empty when disabled.
func (t *telemetryBundle) MetricsAddr() string {
	if t.metricsLn == nil {
		return ""
	}
	return t.metricsLn.Addr().String()
}
