//go:build linux

package server

import (
	"net"
	"syscall"
)

// setTCPOptions tunes an accepted client socket for low-latency KV traffic:
// disables Nagle's algorithm and enables keepalive so half-open connections
// are reclaimed. Adapted from the teacher's pkg/websocket/netpoll.go
// SetTCPOptions, trimmed to the options that matter for a request/response
// protocol rather than a long-lived WebSocket stream (no TCP_FASTOPEN /
// SO_REUSEPORT / custom listener — FlashKV accepts through net.Listen).
func setTCPOptions(conn *net.TCPConn) error {
	file, err := conn.File()
	if err != nil {
		return err
	}
	defer file.Close()

	fd := int(file.Fd())

	syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, syscall.TCP_NODELAY, 1)
	syscall.SetsockoptInt(fd, syscall.SOL_SOCKET, syscall.SO_KEEPALIVE, 1)
	syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, syscall.TCP_KEEPIDLE, 30)
	syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, syscall.TCP_KEEPINTVL, 10)
	syscall.SetsockoptInt(fd, syscall.IPPROTO_TCP, syscall.TCP_KEEPCNT, 3)

	return nil
}
