// Package sweeper implements the adaptive-cadence background expiry sweep
// described in spec.md §4.3: it reclaims memory held by entries that
// expired but were never read, adjusting its own interval based on the
// observed expiry rate.
//
// The timer-plus-context loop is grounded on the teacher's
// pkg/websocket/hub.go Hub.cleanupNonces and internal/server/server.go
// Server.collectSystemMetrics goroutines, which select over a ctx.Done()
// and a time.Ticker.C. This loop selects over ctx.Done() and a time.Timer
// that is re-armed after each pass, so the interval can change between
// passes.
package sweeper

import (
	"context"
	"log"
	"time"

	"github.com/flashkv/flashkv/internal/metrics"
	"github.com/flashkv/flashkv/internal/storage"
)

// Config holds the sweeper's fixed-at-construction cadence parameters
// (spec.md §4.3).
type Config struct {
	BaseInterval      time.Duration
	MinInterval       time.Duration
	MaxInterval       time.Duration
	SpeedupThreshold  float64
	SlowdownThreshold float64
}

// Sweeper owns the adaptive-cadence loop. It holds no locks across ticks;
// each pass acquires and releases each shard's write lock in turn.
type Sweeper struct {
	cfg      Config
	engine   *storage.Engine
	logger   *log.Logger
	registry *metrics.Registry

	current time.Duration
}

// New constructs a Sweeper bound to engine, with logger for diagnostics
// (nil selects log.Default()) and registry for the flashkv_expired_keys_total
// counter (nil when Prometheus export is disabled).
func New(cfg Config, engine *storage.Engine, logger *log.Logger, registry *metrics.Registry) *Sweeper {
	if logger == nil {
		logger = log.Default()
	}
	return &Sweeper{cfg: cfg, engine: engine, logger: logger, registry: registry, current: cfg.BaseInterval}
}

// Run blocks until ctx is cancelled, sweeping the engine at the current
// cadence and adjusting it after every pass. It never suspends while a
// shard lock is held.
func (s *Sweeper) Run(ctx context.Context) {
	timer := time.NewTimer(s.current)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-timer.C:
			s.sweepOnce()
			timer.Reset(s.current)
		}
	}
}

func (s *Sweeper) sweepOnce() {
	keysBefore := s.engine.Stats().KeyCount
	expired := s.engine.SweepExpired()
	if s.registry != nil {
		s.registry.ExpiredKeys(expired)
	}
	s.adjustCadence(keysBefore, expired)
}

// adjustCadence implements the rate-based halving/doubling rule verbatim
// from spec.md §4.3.
func (s *Sweeper) adjustCadence(keysBefore, expiredThisPass int64) {
	denom := keysBefore
	if denom < 1 {
		denom = 1
	}
	rate := float64(expiredThisPass) / float64(denom)

	switch {
	case rate > s.cfg.SpeedupThreshold:
		s.current = maxDuration(s.current/2, s.cfg.MinInterval)
	case rate < s.cfg.SlowdownThreshold && expiredThisPass == 0:
		s.current = minDuration(s.current*2, s.cfg.MaxInterval)
	}
}

func maxDuration(a, b time.Duration) time.Duration {
	if a > b {
		return a
	}
	return b
}

func minDuration(a, b time.Duration) time.Duration {
	if a < b {
		return a
	}
	return b
}
