package metrics

import (
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/flashkv/flashkv/internal/resp"
	"github.com/flashkv/flashkv/internal/storage"
)

// TestRegistry exercises every Registry method against a single instance.
// promauto registers collectors on the global default registry, so the
// package constructs exactly one Registry across all tests here to avoid
// an AlreadyRegisteredError from a second NewRegistry call.
func TestRegistry(t *testing.T) {
	r := NewRegistry()

	r.ConnectionOpened()
	r.ConnectionOpened()
	r.ConnectionClosed()
	r.ConnectionError()

	r.CommandExecuted("GET", time.Millisecond, false)
	r.CommandExecuted("SET", time.Millisecond, true)

	r.BytesRead(128)
	r.BytesWritten(64)
	r.ExpiredKeys(3)
	r.ExpiredKeys(0) // must not panic or count a zero-length pass

	r.SetGaugesFromStorage(10, 4096)
	r.SetGoroutines(5)
	r.SetCPUPercent(12.5)

	assert.GreaterOrEqual(t, r.Uptime(), time.Duration(0))

	engine := storage.NewEngine()
	_, err := engine.Set("k", resp.NewBytesFromString("v"), storage.SetOpts{})
	require.NoError(t, err)

	handler := NewHTTPHandler(engine, r, fakeConnStats{accepted: 4, active: 2, commands: 9, bytesIn: 100, bytesOut: 200})

	req := httptest.NewRequest("GET", "/healthz", nil)
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), `"status":"ok"`)

	req = httptest.NewRequest("GET", "/metrics", nil)
	w = httptest.NewRecorder()
	handler.ServeHTTP(w, req)
	assert.Equal(t, 200, w.Code)
	assert.Contains(t, w.Body.String(), "flashkv_connections_total")
}

type fakeConnStats struct {
	accepted, active, commands, bytesIn, bytesOut int64
}

func (f fakeConnStats) Snapshot() (accepted, active, commands, bytesIn, bytesOut int64) {
	return f.accepted, f.active, f.commands, f.bytesIn, f.bytesOut
}
