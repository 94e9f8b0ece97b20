// Package obsmetrics exposes Prometheus counters and histograms for
// relgraph construction runs, scraped by the httpapi's /metrics route.
// Mirrors the promauto wiring pattern the pack uses throughout
// AleutianAI-AleutianFOSS's agent/providers/egress and agent/llm
// packages: package-level promauto vars, small Record* functions
// called from the construction path.
package obsmetrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	buildsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relgraph",
		Subsystem: "build",
		Name:      "runs_total",
		Help:      "Total graph construction runs by outcome",
	}, []string{"outcome"})

	buildDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "relgraph",
		Subsystem: "build",
		Name:      "duration_seconds",
		Help:      "Duration of graph construction by phase; phase \"total\" is a full run",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	}, []string{"phase"})

	filesDiscovered = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "relgraph",
		Subsystem: "build",
		Name:      "files_discovered",
		Help:      "Number of files discovered in the most recent run",
	})

	edgesBuilt = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "relgraph",
		Subsystem: "graph",
		Name:      "edges_total",
		Help:      "Number of surviving edges in the most recent run's graph",
	})

	errorsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relgraph",
		Subsystem: "errors",
		Name:      "total",
		Help:      "Errors recorded during construction, by kind",
	}, []string{"kind"})

	cacheHitsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "relgraph",
		Subsystem: "cache",
		Name:      "lookups_total",
		Help:      "Cache lookups by result",
	}, []string{"result"})
)

// RecordBuild records the outcome and duration of one full construction run.
func RecordBuild(outcome string, d time.Duration) {
	buildsTotal.WithLabelValues(outcome).Inc()
	buildDuration.WithLabelValues("total").Observe(d.Seconds())
}

// RecordPhase records the duration of one construction phase
// (discover, extract, history, graph).
func RecordPhase(phase string, d time.Duration) {
	buildDuration.WithLabelValues(phase).Observe(d.Seconds())
}

// SetFilesDiscovered updates the most-recent-run file count gauge.
func SetFilesDiscovered(n int) {
	filesDiscovered.Set(float64(n))
}

// SetEdgesBuilt updates the most-recent-run edge count gauge.
func SetEdgesBuilt(n int) {
	edgesBuilt.Set(float64(n))
}

// RecordErrors merges an errs.Counter snapshot into the errors_total counter.
// Takes a plain map so callers don't need to import obsmetrics into errs.
func RecordErrors(snapshot map[string]int64) {
	for kind, n := range snapshot {
		if n > 0 {
			errorsTotal.WithLabelValues(kind).Add(float64(n))
		}
	}
}

// RecordCacheLookup records one cache lookup outcome ("hit" or "miss").
func RecordCacheLookup(result string) {
	cacheHitsTotal.WithLabelValues(result).Inc()
}

// AddCacheLookups records n cache lookups of the given outcome at once,
// used at the end of a Build to fold cachefs.Stats into the scrape
// surface without a counter increment per file.
func AddCacheLookups(result string, n int64) {
	if n <= 0 {
		return
	}
	cacheHitsTotal.WithLabelValues(result).Add(float64(n))
}

// Handler returns the default Prometheus gatherer these metrics are
// registered with. It is not an http.Handler; internal/httpapi serves
// GET /metrics through promhttp.Handler(), which reads the same registry.
func Handler() prometheus.Gatherer {
	return prometheus.DefaultGatherer
}
