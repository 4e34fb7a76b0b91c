package sweeper

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashkv/flashkv/internal/resp"
	"github.com/flashkv/flashkv/internal/storage"
)

func testConfig() Config {
	return Config{
		BaseInterval:      5 * time.Millisecond,
		MinInterval:       time.Millisecond,
		MaxInterval:       50 * time.Millisecond,
		SpeedupThreshold:  0.25,
		SlowdownThreshold: 0.01,
	}
}

func TestSweeper_ReclaimsExpiredKeys(t *testing.T) {
	e := storage.NewEngine()
	_, err := e.Set("k", resp.NewBytesFromString("v"), storage.SetOpts{TTL: time.Millisecond})
	require.NoError(t, err)

	s := New(testConfig(), e, nil, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 100*time.Millisecond)
	defer cancel()

	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	assert.Eventually(t, func() bool {
		return e.Stats().ExpiredCount > 0
	}, 200*time.Millisecond, 2*time.Millisecond)

	cancel()
	<-done
}

func TestSweeper_StopsOnContextCancel(t *testing.T) {
	e := storage.NewEngine()
	s := New(testConfig(), e, nil, nil)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		s.Run(ctx)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("sweeper did not exit after context cancellation")
	}
}

func TestAdjustCadence_SpeedsUpOnHighExpiryRate(t *testing.T) {
	s := &Sweeper{cfg: testConfig(), current: 20 * time.Millisecond}
	s.adjustCadence(10, 5) // rate 0.5 > 0.25 speedup threshold
	assert.Equal(t, 10*time.Millisecond, s.current)
}

func TestAdjustCadence_SlowsDownWhenIdle(t *testing.T) {
	s := &Sweeper{cfg: testConfig(), current: 10 * time.Millisecond}
	s.adjustCadence(100, 0) // rate 0, no expiries
	assert.Equal(t, 20*time.Millisecond, s.current)
}

func TestAdjustCadence_ClampsToMinMax(t *testing.T) {
	s := &Sweeper{cfg: testConfig(), current: testConfig().MinInterval}
	s.adjustCadence(10, 10) // rate 1.0, would halve below MinInterval
	assert.Equal(t, testConfig().MinInterval, s.current)

	s.current = testConfig().MaxInterval
	s.adjustCadence(100, 0)
	assert.Equal(t, testConfig().MaxInterval, s.current)
}

func TestAdjustCadence_StableMiddleRateLeavesIntervalUnchanged(t *testing.T) {
	s := &Sweeper{cfg: testConfig(), current: 10 * time.Millisecond}
	s.adjustCadence(100, 5) // rate 0.05: between slowdown and speedup thresholds
	assert.Equal(t, 10*time.Millisecond, s.current)
}
