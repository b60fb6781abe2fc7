// Package prom implements the observability hooks on top of Prometheus.
//
// stackbundle is a batch tool, so metrics are not scraped over HTTP; they are
// written once per run to a node_exporter textfile-collector file with
// [Metrics.WriteTextfile].
package prom

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/matzehuels/stackbundle/pkg/observability"
)

// Metrics holds a private registry and the collectors fed by the hooks.
type Metrics struct {
	registry *prometheus.Registry

	runsTotal        *prometheus.CounterVec
	runDuration      prometheus.Histogram
	nodesClassified  *prometheus.CounterVec
	bucketSize       *prometheus.GaugeVec
	rebundledEntries prometheus.Counter
	extensionsTotal  *prometheus.CounterVec
	cacheOps         *prometheus.CounterVec
	cacheBytes       prometheus.Counter
}

// New creates the collectors and registers them on a fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		runsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackbundle_resolve_runs_total",
				Help: "Number of resolution runs by outcome.",
			},
			[]string{"outcome"},
		),
		runDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "stackbundle_resolve_duration_seconds",
				Help:    "Time taken to classify a dependency tree.",
				Buckets: prometheus.DefBuckets,
			},
		),
		nodesClassified: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackbundle_nodes_classified_total",
				Help: "Node occurrences classified, by bucket.",
			},
			[]string{"bucket"},
		),
		bucketSize: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Name: "stackbundle_bucket_size",
				Help: "Deduplicated bucket sizes of the last resolution run.",
			},
			[]string{"bucket"},
		),
		rebundledEntries: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stackbundle_rebundled_entries_total",
				Help: "Archive entries copied into shared-resource side archives.",
			},
		),
		extensionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackbundle_extensions_total",
				Help: "Enabled extensions by outcome.",
			},
			[]string{"outcome"},
		),
		cacheOps: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "stackbundle_cache_operations_total",
				Help: "Cache operations by backend and result.",
			},
			[]string{"backend", "result"},
		),
		cacheBytes: prometheus.NewCounter(
			prometheus.CounterOpts{
				Name: "stackbundle_cache_written_bytes_total",
				Help: "Bytes written to the tree cache.",
			},
		),
	}
	m.registry.MustRegister(
		m.runsTotal,
		m.runDuration,
		m.nodesClassified,
		m.bucketSize,
		m.rebundledEntries,
		m.extensionsTotal,
		m.cacheOps,
		m.cacheBytes,
	)
	return m
}

// Registry exposes the underlying registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Install registers m as the global resolution, extension and cache hooks.
func (m *Metrics) Install() {
	observability.SetResolutionHooks(m)
	observability.SetExtensionHooks(m)
	observability.SetCacheHooks(m)
}

// WriteTextfile writes all metrics in the text exposition format. The file
// is written atomically, as expected by the textfile collector.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}

func (m *Metrics) OnResolveStart(context.Context, string, int) {}

func (m *Metrics) OnNodeClassified(_ context.Context, bucket string) {
	m.nodesClassified.WithLabelValues(bucket).Inc()
}

func (m *Metrics) OnRebundle(_ context.Context, _ string, entries int) {
	m.rebundledEntries.Add(float64(entries))
}

func (m *Metrics) OnResolveComplete(_ context.Context, _ string, counts observability.BucketCounts, d time.Duration, err error) {
	m.runDuration.Observe(d.Seconds())
	if err != nil {
		m.runsTotal.WithLabelValues("error").Inc()
		return
	}
	m.runsTotal.WithLabelValues("ok").Inc()
	m.bucketSize.WithLabelValues("shared").Set(float64(counts.Shared))
	m.bucketSize.WithLabelValues("nonshared").Set(float64(counts.NonShared))
	m.bucketSize.WithLabelValues("optional").Set(float64(counts.Optional))
	m.bucketSize.WithLabelValues("excluded").Set(float64(counts.Excluded))
	m.bucketSize.WithLabelValues("install").Set(float64(counts.Install))
	m.bucketSize.WithLabelValues("embedded").Set(float64(counts.Embedded))
}

func (m *Metrics) OnExtensionApplied(context.Context, string) {
	m.extensionsTotal.WithLabelValues("applied").Inc()
}

func (m *Metrics) OnExtensionSkipped(context.Context, string, string) {
	m.extensionsTotal.WithLabelValues("skipped").Inc()
}

func (m *Metrics) OnCacheHit(_ context.Context, backend string) {
	m.cacheOps.WithLabelValues(backend, "hit").Inc()
}

func (m *Metrics) OnCacheMiss(_ context.Context, backend string) {
	m.cacheOps.WithLabelValues(backend, "miss").Inc()
}

func (m *Metrics) OnCacheSet(_ context.Context, backend string, size int) {
	m.cacheOps.WithLabelValues(backend, "set").Inc()
	m.cacheBytes.Add(float64(size))
}

var (
	_ observability.ResolutionHooks = (*Metrics)(nil)
	_ observability.ExtensionHooks  = (*Metrics)(nil)
	_ observability.CacheHooks      = (*Metrics)(nil)
)
