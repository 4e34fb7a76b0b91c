package metrics

import (
	"runtime"
	"sync"
	"time"

	"github.com/shirou/gopsutil/v3/cpu"
)

// SystemSampler tracks the process heap and system-wide CPU usage, fed into the
// Registry's gauges on each tick. Adapted from the teacher's
// internal/metrics/system.go SystemMetrics, trimmed to the fields FlashKV
// actually surfaces (no CPUTracker scheduler-latency proxy — gopsutil
// already gives a real reading here).
type SystemSampler struct {
	mu         sync.RWMutex
	memStats   runtime.MemStats
	cpuPercent float64
}

// NewSystemSampler constructs a sampler; call Sample periodically (the
// metrics update interval from config.MetricsConfig).
func NewSystemSampler() *SystemSampler {
	return &SystemSampler{}
}

// Sample refreshes memory and CPU readings. cpu.Percent blocks for the
// given interval to measure a delta, so this should run on its own
// goroutine/ticker rather than inline in a request path.
func (s *SystemSampler) Sample(interval time.Duration) {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	percents, err := cpu.Percent(interval, false)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.memStats = mem
	if err == nil && len(percents) > 0 {
		s.cpuPercent = percents[0]
	}
}

// HeapAllocBytes returns the current heap allocation.
func (s *SystemSampler) HeapAllocBytes() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.memStats.HeapAlloc
}

// CPUPercent returns the most recent CPU usage sample.
func (s *SystemSampler) CPUPercent() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.cpuPercent
}
