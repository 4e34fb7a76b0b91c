// Package metrics wires FlashKV's optional instrumentation: Prometheus
// counters/gauges for connections, commands, bytes, and expiry, plus a
// small HTTP surface (/metrics, /healthz) — additive, never gating command
// execution (spec.md §6, SPEC_FULL.md §6).
//
// Adapted from the teacher's internal/metrics/metrics.go Metrics type: same
// promauto-built counter/gauge/histogram shape, trimmed to FlashKV's
// domain (no WebSocket/NATS fields) and with the teacher's dual-mode
// SimpleMetrics/EnhancedMetrics/MetricsInterface abstraction collapsed
// into this single Registry — see DESIGN.md.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds every Prometheus collector FlashKV exposes.
type Registry struct {
	connectionsTotal  prometheus.Counter
	connectionsActive prometheus.Gauge
	connectionErrors  prometheus.Counter

	commandsTotal   *prometheus.CounterVec
	commandErrors   *prometheus.CounterVec
	commandDuration prometheus.Histogram

	bytesRead    prometheus.Counter
	bytesWritten prometheus.Counter

	keysTotal    prometheus.Gauge
	expiredTotal prometheus.Counter
	memoryBytes  prometheus.Gauge

	goroutines prometheus.Gauge
	cpuPercent prometheus.Gauge

	startTime time.Time
}

// NewRegistry constructs and registers every collector against the global
// Prometheus default registry, matching the teacher's promauto.NewX usage.
func NewRegistry() *Registry {
	return &Registry{
		startTime: time.Now(),

		connectionsTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flashkv_connections_total",
			Help: "Total number of accepted client connections.",
		}),
		connectionsActive: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "flashkv_connections_active",
			Help: "Number of currently open client connections.",
		}),
		connectionErrors: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flashkv_connection_errors_total",
			Help: "Total number of connections closed due to a socket or protocol error.",
		}),

		commandsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flashkv_commands_total",
			Help: "Total number of commands dispatched, by command name.",
		}, []string{"command"}),
		commandErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "flashkv_command_errors_total",
			Help: "Total number of commands that produced an error reply, by command name.",
		}, []string{"command"}),
		commandDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "flashkv_command_duration_seconds",
			Help:    "Latency of command dispatch and execution, excluding the reply write.",
			Buckets: prometheus.DefBuckets,
		}),

		bytesRead: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flashkv_bytes_read_total",
			Help: "Total bytes read from client sockets.",
		}),
		bytesWritten: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flashkv_bytes_written_total",
			Help: "Total bytes written to client sockets.",
		}),

		keysTotal: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "flashkv_keys_total",
			Help: "Advisory count of live keys across all shards.",
		}),
		expiredTotal: promauto.NewCounter(prometheus.CounterOpts{
			Name: "flashkv_expired_keys_total",
			Help: "Total number of expired keys reclaimed by the background sweeper.",
		}),
		memoryBytes: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "flashkv_memory_estimate_bytes",
			Help: "Rough byte estimate of live entry data, per storage.Engine.MemoryInfo.",
		}),

		goroutines: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "flashkv_goroutines",
			Help: "Number of goroutines, as runtime.NumGoroutine.",
		}),
		cpuPercent: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "flashkv_process_cpu_percent",
			Help: "System-wide CPU usage percentage, sampled via gopsutil.",
		}),
	}
}

func (r *Registry) ConnectionOpened() {
	r.connectionsTotal.Inc()
	r.connectionsActive.Inc()
}

func (r *Registry) ConnectionClosed() {
	r.connectionsActive.Dec()
}

func (r *Registry) ConnectionError() {
	r.connectionErrors.Inc()
}

func (r *Registry) CommandExecuted(name string, duration time.Duration, errored bool) {
	r.commandsTotal.WithLabelValues(name).Inc()
	r.commandDuration.Observe(duration.Seconds())
	if errored {
		r.commandErrors.WithLabelValues(name).Inc()
	}
}

func (r *Registry) BytesRead(n int)    { r.bytesRead.Add(float64(n)) }
func (r *Registry) BytesWritten(n int) { r.bytesWritten.Add(float64(n)) }

func (r *Registry) ExpiredKeys(n int64) {
	if n > 0 {
		r.expiredTotal.Add(float64(n))
	}
}

// SetGaugesFromStorage refreshes the storage-derived gauges; called on the
// metrics sampler's tick alongside the system sampler.
func (r *Registry) SetGaugesFromStorage(keyCount, memoryBytes int64) {
	r.keysTotal.Set(float64(keyCount))
	r.memoryBytes.Set(float64(memoryBytes))
}

func (r *Registry) SetGoroutines(n int)         { r.goroutines.Set(float64(n)) }
func (r *Registry) SetCPUPercent(pct float64)   { r.cpuPercent.Set(pct) }

func (r *Registry) Uptime() time.Duration { return time.Since(r.startTime) }
