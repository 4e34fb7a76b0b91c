package storage

import "sync/atomic"

// counters are the engine's advisory statistics, maintained with
// relaxed-ordering atomic increments/decrements (spec.md §4.2). They
// tolerate small races and never gate correctness, mirroring the snapshot
// style of the teacher's internal/metrics/connections.go ConnectionTracker
// and simple_metrics.go SimpleMetrics: plain atomics read into a value
// struct on demand, no locking beyond the atomics themselves.
type counters struct {
	keyCount     int64
	getCount     int64
	setCount     int64
	delCount     int64
	expiredCount int64
}

// Stats is a point-in-time snapshot of the engine's counters.
type Stats struct {
	KeyCount     int64
	GetCount     int64
	SetCount     int64
	DelCount     int64
	ExpiredCount int64
}

func (c *counters) incrGet()          { atomic.AddInt64(&c.getCount, 1) }
func (c *counters) incrSet()          { atomic.AddInt64(&c.setCount, 1) }
func (c *counters) incrDel(n int64)   { atomic.AddInt64(&c.delCount, n) }
func (c *counters) incrExpired(n int64) {
	atomic.AddInt64(&c.expiredCount, n)
}
func (c *counters) addKeyCount(delta int64) { atomic.AddInt64(&c.keyCount, delta) }

func (c *counters) snapshot() Stats {
	return Stats{
		KeyCount:     atomic.LoadInt64(&c.keyCount),
		GetCount:     atomic.LoadInt64(&c.getCount),
		SetCount:     atomic.LoadInt64(&c.setCount),
		DelCount:     atomic.LoadInt64(&c.delCount),
		ExpiredCount: atomic.LoadInt64(&c.expiredCount),
	}
}
