package metrics

import (
	"encoding/json"
	"net/http"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/flashkv/flashkv/internal/storage"
)

// ConnStats exposes the connection engine's atomic counters without this
// package importing internal/server (which itself imports internal/metrics
// to build the Prometheus registry). Any *connStats satisfies this
// structurally; no import is needed on either side.
type ConnStats interface {
	Snapshot() (accepted, active, commands, bytesIn, bytesOut int64)
}

// NewHTTPHandler builds the supplemental metrics surface: /metrics via
// promhttp and /healthz returning a small JSON snapshot. This mirrors the
// shape of the teacher's setupHTTPServer/handleHealth/handleStats
// (internal/server/server.go), trimmed to what a non-goal-respecting KV
// store needs, plus canonical-redis_exporter's plain promhttp.Handler()
// registration.
func NewHTTPHandler(engine *storage.Engine, reg *Registry, conns ConnStats) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", handleHealthz(engine, reg, conns))
	return mux
}

func handleHealthz(engine *storage.Engine, reg *Registry, conns ConnStats) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := engine.Stats()
		accepted, active, commands, bytesIn, bytesOut := conns.Snapshot()
		body := map[string]any{
			"status":           "ok",
			"timestamp":        time.Now().Unix(),
			"uptime_secs":      reg.Uptime().Seconds(),
			"keys":             stats.KeyCount,
			"gets":             stats.GetCount,
			"sets":             stats.SetCount,
			"dels":             stats.DelCount,
			"expired":          stats.ExpiredCount,
			"goroutines":       runtime.NumGoroutine(),
			"conns_accepted":   accepted,
			"conns_active":     active,
			"commands_handled": commands,
			"bytes_in":         bytesIn,
			"bytes_out":        bytesOut,
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(body)
	}
}
