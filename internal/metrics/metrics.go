// Package metrics exposes Prometheus counters for parsing, certificate
// verification and ICP lookups. Recording is always safe; the HTTP endpoint is
// only started when an address is configured.
package metrics

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"domainadmin/internal/logger"
)

var (
	registry          = prometheus.NewRegistry()
	defaultRegisterer = promauto.With(registry)

	serverMu sync.Mutex
	server   *http.Server
)

var durationBuckets = []float64{.005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30}

var (
	recordsTotal = defaultRegisterer.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domainadmin_records_total",
			Help: "Input entries seen by the record parser, by outcome",
		},
		[]string{"format", "outcome"},
	)
	verifyTotal = defaultRegisterer.NewCounterVec(
		prometheus.CounterOpts{
			Name: "domainadmin_cert_name_verifications_total",
			Help: "Certificate common name checks, by name kind and result",
		},
		[]string{"kind", "matched"},
	)
	checkDuration = defaultRegisterer.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "domainadmin_cert_check_duration_seconds",
			Help:    "Time spent resolving and handshaking with a monitored endpoint",
			Buckets: durationBuckets,
		},
		[]string{"result"},
	)
	icpDuration = defaultRegisterer.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "domainadmin_icp_lookup_duration_seconds",
			Help:    "ICP lookup latency, by result",
			Buckets: durationBuckets,
		},
		[]string{"result"},
	)
)

// ObserveRecord counts one parser outcome: parsed, skipped, excluded or invalid.
func ObserveRecord(format, outcome string) {
	recordsTotal.WithLabelValues(format, outcome).Inc()
}

// ObserveVerify counts one common name check; kind is "exact" or "wildcard".
func ObserveVerify(kind string, matched bool) {
	verifyTotal.WithLabelValues(kind, strconv.FormatBool(matched)).Inc()
}

// VerifyCounter exposes the verification counter for one label pair.
func VerifyCounter(kind string, matched bool) prometheus.Counter {
	return verifyTotal.WithLabelValues(kind, strconv.FormatBool(matched))
}

func ObserveCheck(result string, d time.Duration) {
	checkDuration.WithLabelValues(result).Observe(d.Seconds())
}

// ObserveICP records a lookup; result is "ok", "cached" or "error".
func ObserveICP(result string, d time.Duration) {
	icpDuration.WithLabelValues(result).Observe(d.Seconds())
}

// Handler serves the metrics registry.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// StartServer exposes /metrics on addr. Calling it again is a no-op.
func StartServer(addr string) {
	serverMu.Lock()
	defer serverMu.Unlock()
	if server != nil || addr == "" {
		return
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler())
	server = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 5 * time.Second,
	}

	srv := server
	go func() {
		logger.Info("metrics: serving on %s", addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("metrics: server error: %v", err)
		}
	}()
}

// Shutdown stops the metrics server if it was started.
func Shutdown(ctx context.Context) error {
	serverMu.Lock()
	srv := server
	server = nil
	serverMu.Unlock()

	if srv == nil {
		return nil
	}
	return srv.Shutdown(ctx)
}
