// Package metrics records tool invocation counters and latencies for Prometheus.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/bobmcallan/hap-mcp/internal/hap"
)

// Recorder implements hap.Observer on its own registry, so several servers
// in one process (tests) never collide on registration.
type Recorder struct {
	registry *prometheus.Registry
	calls    *prometheus.CounterVec
	duration *prometheus.HistogramVec
}

var _ hap.Observer = (*Recorder)(nil)

// NewRecorder creates a Recorder with the Go and process collectors registered.
func NewRecorder() *Recorder {
	r := &Recorder{
		registry: prometheus.NewRegistry(),
		calls: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "hap_mcp_tool_calls_total",
				Help: "Tool invocations by tool and outcome.",
			},
			[]string{"tool", "outcome"},
		),
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "hap_mcp_tool_call_duration_seconds",
				Help:    "Tool invocation latency, including the HAP API round trip.",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"tool"},
		),
	}
	r.registry.MustRegister(
		r.calls,
		r.duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return r
}

// ObserveCall records one invocation.
func (r *Recorder) ObserveCall(tool string, outcome hap.Outcome, duration time.Duration) {
	r.calls.WithLabelValues(tool, string(outcome)).Inc()
	r.duration.WithLabelValues(tool).Observe(duration.Seconds())
}

// Handler serves the registry in the Prometheus exposition format.
func (r *Recorder) Handler() http.Handler {
	return promhttp.HandlerFor(r.registry, promhttp.HandlerOpts{Registry: r.registry})
}

// Registry returns the underlying registry.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}
