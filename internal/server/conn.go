package server

import (
	"bufio"
	"errors"
	"io"
	"log"
	"net"
	"strings"
	"time"

	"github.com/flashkv/flashkv/internal/dispatch"
	"github.com/flashkv/flashkv/internal/metrics"
	"github.com/flashkv/flashkv/internal/resp"
	"github.com/flashkv/flashkv/internal/storage"
)

// maxReadBuffer is the hard cap on a connection's read buffer occupancy
// (spec.md §4.4/§5).
const maxReadBuffer = 64 * 1024

// errBufferFull is the terminal condition when a connection accumulates
// maxReadBuffer bytes without completing a single command.
var errBufferFull = errors.New("BufferFull")

// conn owns one client's lifecycle: a buffered writer, a growable read
// buffer, and references to the shared engine and connection-level
// statistics. Exactly one goroutine ever runs its main loop (spec.md
// §4.4's "single connection is single-threaded" scheduling model).
type conn struct {
	nc       net.Conn
	cw       *countingWriter
	w        *bufio.Writer
	buf      []byte // occupied prefix is buf[:n]
	n        int
	engine   *storage.Engine
	stats    *connStats
	logger   *log.Logger
	registry *metrics.Registry // nil when Prometheus export is disabled
}

func newConn(nc net.Conn, engine *storage.Engine, stats *connStats, logger *log.Logger, registry *metrics.Registry) *conn {
	cw := &countingWriter{w: nc}
	return &conn{
		nc:       nc,
		cw:       cw,
		w:        bufio.NewWriterSize(cw, 4096),
		buf:      make([]byte, 4096),
		engine:   engine,
		stats:    stats,
		logger:   logger,
		registry: registry,
	}
}

// countingWriter tracks bytes written to the socket for connStats, since
// bufio.Writer itself exposes no byte count.
type countingWriter struct {
	w net.Conn
	n int
}

func (cw *countingWriter) Write(p []byte) (int, error) {
	n, err := cw.w.Write(p)
	cw.n += n
	return n, err
}

// serve runs the drain-then-read main loop until the client disconnects,
// a protocol error occurs, or the connection is told to quit. It never
// suspends while holding an engine lock — engine calls are synchronous and
// released before the next suspension point (socket read/write/flush).
func (c *conn) serve() {
	defer c.nc.Close()
	defer c.stats.connectionClosed()

	for {
		quit, err := c.drain()
		if err != nil {
			if !errors.Is(err, io.EOF) {
				c.logger.Printf("connection error from %s: %v", c.nc.RemoteAddr(), err)
				if c.registry != nil {
					c.registry.ConnectionError()
				}
			}
			return
		}
		if quit {
			c.flush()
			return
		}

		if err := c.flushErr(); err != nil {
			c.logger.Printf("flush error to %s: %v", c.nc.RemoteAddr(), err)
			if c.registry != nil {
				c.registry.ConnectionError()
			}
			return
		}

		_, err = c.fill()
		if err != nil {
			if errors.Is(err, io.EOF) {
				if c.n == 0 {
					return // graceful close, no partial command pending
				}
				c.logger.Printf("truncated command from %s: connection closed with %d unconsumed byte(s)", c.nc.RemoteAddr(), c.n)
				if c.registry != nil {
					c.registry.ConnectionError()
				}
				return
			}
			c.logger.Printf("read error from %s: %v", c.nc.RemoteAddr(), err)
			if c.registry != nil {
				c.registry.ConnectionError()
			}
			return
		}
	}
}

// drain repeatedly parses and dispatches complete commands already sitting
// in the read buffer, compacting consumed bytes as it goes. It returns once
// the buffer yields NeedMore. This is what makes pipelining free: every
// queued command is processed before the connection suspends on a read.
func (c *conn) drain() (quit bool, err error) {
	for {
		val, consumed, ok, perr := resp.Parse(c.buf[:c.n])
		if perr != nil {
			return false, perr
		}
		if !ok {
			return false, nil
		}

		c.stats.commandProcessed()
		start := time.Now()
		reply, q, cmdName := c.execute(val)
		val.Release()

		if c.registry != nil {
			c.registry.CommandExecuted(cmdName, time.Since(start), reply.Kind == resp.KindError)
		}

		if werr := resp.WriteValue(c.w, reply); werr != nil {
			return false, werr
		}
		reply.Release()

		copy(c.buf, c.buf[consumed:c.n])
		c.n -= consumed

		if q {
			return true, nil
		}
	}
}

func (c *conn) flush() { c.flushErr() }

func (c *conn) flushErr() error {
	before := c.cw.n
	err := c.w.Flush()
	written := c.cw.n - before
	c.stats.addBytesOut(written)
	if c.registry != nil {
		c.registry.BytesWritten(written)
	}
	return err
}

func (c *conn) execute(val resp.Value) (resp.Value, bool, string) {
	args := val.StringArgs()
	// StringArgs views val's pooled buffers, which drain releases after
	// execute returns; the engine keeps keys as map keys, so copy them.
	for i := range args {
		args[i] = strings.Clone(args[i])
	}
	result := dispatch.Execute(c.engine, args)
	name := "unknown"
	if len(args) > 0 {
		name = strings.ToUpper(args[0])
	}
	return result.Reply, result.Quit, name
}

// fill performs one suspending socket read, appending into the read
// buffer and growing it lazily up to maxReadBuffer. Returns BufferFull if
// the cap is reached without completing a command.
func (c *conn) fill() (int, error) {
	if c.n >= len(c.buf) {
		if len(c.buf) >= maxReadBuffer {
			return c.n, errBufferFull
		}
		grown := make([]byte, minInt(len(c.buf)*2, maxReadBuffer))
		copy(grown, c.buf[:c.n])
		c.buf = grown
	}

	n, err := c.nc.Read(c.buf[c.n:])
	c.stats.addBytesIn(n)
	if c.registry != nil {
		c.registry.BytesRead(n)
	}
	c.n += n
	return n, err
}

func minInt(a, b int) int {
	if a < b {
		return a
	}
	return b
}
