package metrics

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestSystemSampler_ZeroValueIsSafe(t *testing.T) {
	s := NewSystemSampler()
	assert.Equal(t, uint64(0), s.HeapAllocBytes())
	assert.Equal(t, float64(0), s.CPUPercent())
}

func TestSystemSampler_SampleRefreshesHeap(t *testing.T) {
	s := NewSystemSampler()
	s.Sample(10 * time.Millisecond)
	// Heap allocation for a running test binary is never zero.
	assert.Greater(t, s.HeapAllocBytes(), uint64(0))
}
