//go:build !linux

package server

import "net"

// setTCPOptions is a no-op on platforms without the Linux-specific
// socket-option syscalls the teacher's netpoll.go relies on.
func setTCPOptions(conn *net.TCPConn) error {
	return nil
}
