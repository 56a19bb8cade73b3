// Package metrics exposes Prometheus instrumentation for backend calls.
package metrics

import (
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/Veraticus/upi-triage/internal/certs"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "triage"

// Metrics holds Prometheus metrics for the backend client.
type Metrics struct {
	registry         *prometheus.Registry
	RequestCounter   *prometheus.CounterVec
	RequestDuration  *prometheus.HistogramVec
	RequestsInFlight *prometheus.GaugeVec
	StoreFallbacks   *prometheus.CounterVec
}

// New creates metrics registered on a private registry.
func New() *Metrics {
	registry := prometheus.NewRegistry()
	factory := promauto.With(registry)

	return &Metrics{
		registry: registry,
		RequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_total",
				Help:      "Total number of backend requests",
			},
			[]string{"endpoint", "status"},
		),
		RequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "request_duration_seconds",
				Help:      "Backend request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"endpoint"},
		),
		RequestsInFlight: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Subsystem: "api",
				Name:      "requests_in_flight",
				Help:      "Number of backend requests awaiting a response",
			},
			[]string{"endpoint"},
		),
		StoreFallbacks: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Subsystem: "store",
				Name:      "loads_total",
				Help:      "Transaction list loads by the source that served them",
			},
			[]string{"source"},
		),
	}
}

// Registry returns the private registry.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Track marks the start of a request to endpoint. The returned function
// records the outcome; pass the HTTP status, 0 for no response or -1 for
// a failure before the request was sent.
func (m *Metrics) Track(endpoint string) func(status int) {
	m.RequestsInFlight.WithLabelValues(endpoint).Inc()
	start := time.Now()

	return func(status int) {
		m.RequestsInFlight.WithLabelValues(endpoint).Dec()
		m.RequestDuration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
		m.RequestCounter.WithLabelValues(endpoint, StatusClass(status)).Inc()
	}
}

// RecordLoad counts a transaction list load served from source.
func (m *Metrics) RecordLoad(source string) {
	m.StoreFallbacks.WithLabelValues(source).Inc()
}

// StatusClass collapses a status code to a low-cardinality label.
func StatusClass(status int) string {
	switch {
	case status == 0:
		return "network_error"
	case status < 0:
		return "error"
	case status < 100 || status > 599:
		return strconv.Itoa(status)
	default:
		return fmt.Sprintf("%dxx", status/100)
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Serve exposes the metrics on addr until ctx is done. A non-nil tlsSource
// switches the listener to HTTPS.
func (m *Metrics) Serve(ctx context.Context, addr string, tlsSource certs.Source) error {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	return m.ServeListener(ctx, ln, tlsSource)
}

// ServeListener is Serve on an existing listener, which it closes.
func (m *Metrics) ServeListener(ctx context.Context, ln net.Listener, tlsSource certs.Source) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", m.Handler())

	server := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	scheme := "http"
	if tlsSource != nil {
		tlsConfig, err := certs.TLSConfig(tlsSource)
		if err != nil {
			_ = ln.Close()
			return fmt.Errorf("failed to load metrics certificate: %w", err)
		}
		ln = tls.NewListener(ln, tlsConfig)
		scheme = "https"
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Warn("Failed to shut down metrics server", "error", err)
		}
	}()

	slog.Info("Serving metrics", "url", scheme+"://"+ln.Addr().String()+"/metrics")
	if err := server.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("metrics server failed: %w", err)
	}
	return nil
}
