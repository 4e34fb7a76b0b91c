package server

import "sync/atomic"

// connStats are the connection engine's own atomic counters, independent
// of storage.Stats and updated with the same relaxed-ordering style
// (spec.md §4.4 "Statistics"): connections accepted, currently active,
// commands processed, bytes read, bytes written.
type connStats struct {
	accepted int64
	active   int64
	commands int64
	bytesIn  int64
	bytesOut int64
}

func (c *connStats) connectionAccepted() {
	atomic.AddInt64(&c.accepted, 1)
	atomic.AddInt64(&c.active, 1)
}

func (c *connStats) connectionClosed() { atomic.AddInt64(&c.active, -1) }
func (c *connStats) commandProcessed() { atomic.AddInt64(&c.commands, 1) }
func (c *connStats) addBytesIn(n int)  { atomic.AddInt64(&c.bytesIn, int64(n)) }
func (c *connStats) addBytesOut(n int) { atomic.AddInt64(&c.bytesOut, int64(n)) }

// Snapshot reads every counter, satisfying metrics.ConnStats so /healthz
// reports connection-engine activity from these counters rather than from
// the Prometheus collectors. /healthz itself is served only when Prometheus
// export is enabled and a metrics address is set (see New in server.go).
func (c *connStats) Snapshot() (accepted, active, commands, bytesIn, bytesOut int64) {
	return atomic.LoadInt64(&c.accepted),
		atomic.LoadInt64(&c.active),
		atomic.LoadInt64(&c.commands),
		atomic.LoadInt64(&c.bytesIn),
		atomic.LoadInt64(&c.bytesOut)
}
