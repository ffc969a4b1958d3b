// Package promexport exposes live run metrics in the Prometheus text format.
package promexport

import (
	"context"
	"errors"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/torosent/volley/internal/metrics"
)

const namespace = "volley"

// Latency buckets in seconds, 1ms to 10s.
var latencyBuckets = []float64{.001, .0025, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10}

// Exporter mirrors scheduler events into Prometheus collectors. It is
// registered as a runner observer.
type Exporter struct {
	registry *prometheus.Registry

	issuedTotal    prometheus.Counter
	responsesTotal *prometheus.CounterVec
	inFlight       prometheus.Gauge
	clientTime     prometheus.Histogram
	serverTime     prometheus.Histogram

	logger *zap.Logger
}

// New creates an Exporter on its own registry. runID and target are attached
// to every series as constant labels.
func New(runID, target string, logger *zap.Logger) *Exporter {
	if logger == nil {
		logger = zap.NewNop()
	}
	labels := prometheus.Labels{"run_id": runID, "target": target}

	e := &Exporter{
		registry: prometheus.NewRegistry(),
		logger:   logger,
	}

	e.issuedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "requests_issued_total",
		Help:        "Requests handed to a worker",
		ConstLabels: labels,
	})
	e.responsesTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace:   namespace,
		Name:        "responses_total",
		Help:        "Completed requests by status code; 0 is a transport failure",
		ConstLabels: labels,
	}, []string{"status"})
	e.inFlight = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace:   namespace,
		Name:        "in_flight",
		Help:        "Requests issued but not yet completed",
		ConstLabels: labels,
	})
	e.clientTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   namespace,
		Name:        "client_time_seconds",
		Help:        "Client-measured request time",
		Buckets:     latencyBuckets,
		ConstLabels: labels,
	})
	e.serverTime = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace:   namespace,
		Name:        "server_time_seconds",
		Help:        "Server-reported compute time, when the target reports it",
		Buckets:     latencyBuckets,
		ConstLabels: labels,
	})

	e.registry.MustRegister(e.issuedTotal, e.responsesTotal, e.inFlight, e.clientTime, e.serverTime)
	return e
}

// Registry exposes the underlying registry for tests and custom handlers.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

func (e *Exporter) Issued(_ int64, inFlight int64) {
	e.issuedTotal.Inc()
	e.inFlight.Set(float64(inFlight))
}

func (e *Exporter) Completed(o metrics.Outcome, inFlight int64) {
	e.responsesTotal.WithLabelValues(strconv.Itoa(o.Status)).Inc()
	e.inFlight.Set(float64(inFlight))
	e.clientTime.Observe(millisToSeconds(o.ClientTime))
	if o.HasServerTime() {
		e.serverTime.Observe(millisToSeconds(o.ServerTime))
	}
}

// Handler serves the registry at any path.
func (e *Exporter) Handler() http.Handler {
	return promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{})
}

// Serve listens on addr and serves /metrics until ctx is done. The listener
// is bound before Serve returns so bind errors surface immediately.
func (e *Exporter) Serve(ctx context.Context, addr string) (net.Addr, error) {
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return nil, err
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", e.Handler())
	srv := &http.Server{
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.logger.Error("metrics server stopped", zap.Error(err))
		}
	}()
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	e.logger.Info("serving metrics", zap.String("addr", ln.Addr().String()))
	return ln.Addr(), nil
}

func millisToSeconds(ms int64) float64 {
	if ms < 0 {
		return 0
	}
	return float64(ms) / 1000
}
