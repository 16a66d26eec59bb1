package profiling

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"voxelcore/internal/logging"
)

// Exporter mirrors the profiler into Prometheus metrics. Publish is called
// once per frame from the render thread; the HTTP endpoint is optional.
type Exporter struct {
	mu       sync.Mutex
	registry *prometheus.Registry
	frame    *prometheus.GaugeVec
	counts   *prometheus.CounterVec
	seen     map[string]int64
}

// NewExporter creates an exporter with its own registry.
func NewExporter() *Exporter {
	e := &Exporter{
		registry: prometheus.NewRegistry(),
		frame: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "voxelcore",
			Name:      "frame_section_seconds",
			Help:      "Time spent per tracked section during the last frame.",
		}, []string{"section"}),
		counts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "voxelcore",
			Name:      "events_total",
			Help:      "Profiler counters such as chunk rebuilds.",
		}, []string{"name"}),
		seen: make(map[string]int64),
	}
	e.registry.MustRegister(e.frame, e.counts)
	return e
}

// Registry exposes the underlying registry.
func (e *Exporter) Registry() *prometheus.Registry {
	return e.registry
}

// Publish copies the current frame totals and counter deltas into the metrics.
func (e *Exporter) Publish() {
	e.mu.Lock()
	defer e.mu.Unlock()
	for name, d := range Snapshot() {
		e.frame.WithLabelValues(name).Set(d.Seconds())
	}
	for name, v := range Counters() {
		if delta := v - e.seen[name]; delta > 0 {
			e.counts.WithLabelValues(name).Add(float64(delta))
			e.seen[name] = v
		}
	}
}

// StartHTTP serves /metrics on addr in the background.
func (e *Exporter) StartHTTP(addr string) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.HandlerFor(e.registry, promhttp.HandlerOpts{}))
	go func() {
		logging.Info("profiling: metrics available at %s/metrics", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			logging.Error("profiling: metrics server stopped: %v", err)
		}
	}()
}
