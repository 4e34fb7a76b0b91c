// Package server implements the TCP connection engine: the accept loop,
// per-connection read/execute/write cycle, and process lifecycle.
//
// Start/waitForShutdown/Shutdown mirror the teacher's
// internal/server/server.go Server of the same names almost verbatim in
// shape: a context/cancel pair, a sync.WaitGroup for background
// goroutines, a signal.Notify(SIGINT, SIGTERM) wait, and a bounded
// context.WithTimeout drain on shutdown. The accept loop itself is new —
// the teacher accepts HTTP/WebSocket upgrades, not raw TCP — grounded on
// rkruze-franz-go's brokerCxn.readConn/writeConn pattern of
// deadline-scoped, buffered socket I/O.
package server

import (
	"context"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	"github.com/flashkv/flashkv/internal/config"
	"github.com/flashkv/flashkv/internal/metrics"
	"github.com/flashkv/flashkv/internal/storage"
	"github.com/flashkv/flashkv/internal/sweeper"
)

// Server owns the TCP listener, the shared storage engine, the expiry
// sweeper, and (optionally) the metrics HTTP endpoint.
type Server struct {
	cfg    config.Config
	engine *storage.Engine
	sweep  *sweeper.Sweeper
	logger *log.Logger

	registry   *metrics.Registry
	sysSampler *metrics.SystemSampler
	httpServer *http.Server

	listener net.Listener
	stats    connStats

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// New constructs a Server from configuration. It does not start listening
// until Start is called.
func New(cfg config.Config) *Server {
	ctx, cancel := context.WithCancel(context.Background())
	logger := log.New(os.Stdout, "[flashkv] ", log.LstdFlags)

	engine := storage.NewEngine()

	s := &Server{
		cfg:    cfg,
		engine: engine,
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}

	if cfg.Metrics.EnablePrometheus && cfg.Metrics.Addr != "" {
		s.registry = metrics.NewRegistry()
		s.sysSampler = metrics.NewSystemSampler()
		s.httpServer = &http.Server{
			Addr:    cfg.Metrics.Addr,
			Handler: metrics.NewHTTPHandler(engine, s.registry, &s.stats),
		}
	}

	s.sweep = sweeper.New(sweeper.Config{
		BaseInterval:      cfg.Sweeper.BaseInterval.Dur(),
		MinInterval:       cfg.Sweeper.MinInterval.Dur(),
		MaxInterval:       cfg.Sweeper.MaxInterval.Dur(),
		SpeedupThreshold:  cfg.Sweeper.SpeedupThreshold,
		SlowdownThreshold: cfg.Sweeper.SlowdownThreshold,
	}, engine, logger, s.registry)

	return s
}

// Start binds the TCP listener, launches the sweeper, acceptor, and
// (if configured) the metrics sampler and HTTP endpoint, then blocks until
// a shutdown signal arrives. Returns a non-zero-worthy error only on a
// fatal bind failure.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.cfg.Server.Addr())
	if err != nil {
		return fmt.Errorf("bind %s: %w", s.cfg.Server.Addr(), err)
	}
	s.listener = ln
	s.logger.Printf("listening on %s", s.cfg.Server.Addr())

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.sweep.Run(s.ctx)
	}()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		s.acceptLoop()
	}()

	if s.httpServer != nil {
		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.sampleMetrics()
		}()

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			s.logger.Printf("metrics listening on %s", s.httpServer.Addr)
			if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				s.logger.Printf("metrics server error: %v", err)
			}
		}()
	}

	s.waitForShutdown()
	return nil
}

func (s *Server) acceptLoop() {
	for {
		nc, err := s.listener.Accept()
		if err != nil {
			select {
			case <-s.ctx.Done():
				return
			default:
				s.logger.Printf("accept error: %v", err)
				return
			}
		}

		if tcpConn, ok := nc.(*net.TCPConn); ok {
			if err := setTCPOptions(tcpConn); err != nil {
				s.logger.Printf("socket tuning failed for %s: %v", nc.RemoteAddr(), err)
			}
		}

		s.stats.connectionAccepted()
		if s.registry != nil {
			s.registry.ConnectionOpened()
		}

		s.wg.Add(1)
		go func() {
			defer s.wg.Done()
			c := newConn(nc, s.engine, &s.stats, s.logger, s.registry)
			c.serve()
			if s.registry != nil {
				s.registry.ConnectionClosed()
			}
		}()
	}
}

func (s *Server) sampleMetrics() {
	ticker := time.NewTicker(s.cfg.Metrics.UpdateInterval.Dur())
	defer ticker.Stop()

	for {
		select {
		case <-s.ctx.Done():
			return
		case <-ticker.C:
			s.sysSampler.Sample(time.Second)
			stats := s.engine.Stats()
			s.registry.SetGaugesFromStorage(stats.KeyCount, s.engine.MemoryInfo())
			s.registry.SetCPUPercent(s.sysSampler.CPUPercent())
			s.registry.SetGoroutines(runtime.NumGoroutine())
		}
	}
}

func (s *Server) waitForShutdown() {
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	sig := <-sigCh
	s.logger.Printf("received signal %v, shutting down", sig)
	s.Shutdown()
}

// Shutdown stops accepting new connections and drains background
// goroutines within a bounded timeout. No storage invariant depends on
// in-flight replies being delivered (spec.md §4.4).
func (s *Server) Shutdown() {
	s.cancel()
	if s.listener != nil {
		s.listener.Close()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if s.httpServer != nil {
		if err := s.httpServer.Shutdown(ctx); err != nil {
			s.logger.Printf("metrics server shutdown error: %v", err)
		}
	}

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		s.logger.Printf("shutdown complete")
	case <-ctx.Done():
		s.logger.Printf("shutdown timed out, exiting anyway")
	}
}
