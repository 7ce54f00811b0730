package api

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	importsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "challenge_imports_total",
		Help: "Trade imports by source format.",
	}, []string{"format"})

	recomputesTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "challenge_recomputes_total",
		Help: "Metrics snapshot recomputations.",
	})

	tradesStored = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "challenge_trades_stored",
		Help: "Raw trades currently held in memory.",
	})

	requestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "challenge_http_request_duration_seconds",
		Help:    "HTTP request latency by method.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method"})
)

// instrumentHandler records request latency for API routes.
func instrumentHandler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		requestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
	})
}
