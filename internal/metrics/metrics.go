// Package metrics exposes Prometheus metrics for the tracker on a
// dedicated listener.
package metrics

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics for the tracker.
type Metrics struct {
	TicksTotal   prometheus.Counter
	TicksSkipped prometheus.Counter
	SamplesTotal prometheus.Counter

	// Upstream fetch outcomes. source: price|index, kind: empty|transport
	FetchErrors   *prometheus.CounterVec
	FetchDuration *prometheus.HistogramVec

	BufferLength    prometheus.Gauge
	BufferEvictions prometheus.Counter

	WSClients      prometheus.Gauge
	BroadcastDrops prometheus.Counter
}

// NewMetrics registers and returns all Prometheus metrics.
func NewMetrics() *Metrics {
	m := &Metrics{
		TicksTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_ticks_total",
			Help: "Total aggregation ticks attempted",
		}),
		TicksSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_ticks_skipped_total",
			Help: "Ticks skipped by the min-update-interval gate",
		}),
		SamplesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_samples_total",
			Help: "Total samples appended to the rolling buffer",
		}),
		FetchErrors: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "tracker_fetch_errors_total",
			Help: "Upstream fetch failures by source and kind",
		}, []string{"source", "kind"}),
		FetchDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "tracker_fetch_duration_seconds",
			Help:    "Upstream fetch latency by source",
			Buckets: prometheus.DefBuckets,
		}, []string{"source"}),
		BufferLength: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_buffer_length",
			Help: "Current number of samples in the rolling buffer",
		}),
		BufferEvictions: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_buffer_evictions_total",
			Help: "Samples evicted to keep the buffer within capacity",
		}),
		WSClients: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "tracker_ws_clients",
			Help: "Currently connected WebSocket clients",
		}),
		BroadcastDrops: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "tracker_broadcast_drops_total",
			Help: "Messages dropped on slow WebSocket client queues",
		}),
	}

	prometheus.MustRegister(
		m.TicksTotal,
		m.TicksSkipped,
		m.SamplesTotal,
		m.FetchErrors,
		m.FetchDuration,
		m.BufferLength,
		m.BufferEvictions,
		m.WSClients,
		m.BroadcastDrops,
	)

	return m
}

// Server serves /metrics on its own address.
type Server struct {
	addr string
	srv  *http.Server
}

// NewServer creates the metrics HTTP server.
func NewServer(addr string) *Server {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	return &Server{
		addr: addr,
		srv: &http.Server{
			Addr:    addr,
			Handler: mux,
		},
	}
}

// Start launches the HTTP server in a goroutine.
func (s *Server) Start() {
	go func() {
		log.Printf("[metrics] listening on %s", s.addr)
		if err := s.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Printf("[metrics] server error: %v", err)
		}
	}()
}

// Shutdown stops the server gracefully.
func (s *Server) Shutdown(ctx context.Context) error {
	shutdownCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return s.srv.Shutdown(shutdownCtx)
}
