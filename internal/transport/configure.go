package transport

import (
	"fmt"
	"net"
	"time"
)

// KeepaliveConfig sets TCP keepalive probing on a connected socket.
// Idle is always applied, rounded up to whole seconds and clamped to at
// least 1s, so a zero Idle means probing after one idle second.  A zero
// Interval or Retries leaves that setting at the OS default.
type KeepaliveConfig struct {
	Idle     time.Duration // idle time before the first probe
	Interval time.Duration // time between probes
	Retries  int           // unanswered probes before the peer is dead
}

// configureTCP disables Nagle's algorithm and, when ka is non-nil,
// applies keepalive settings.
func configureTCP(conn *net.TCPConn, ka *KeepaliveConfig) error {
	if err := conn.SetNoDelay(true); err != nil {
		return fmt.Errorf("set nodelay: %w", err)
	}
	if ka == nil {
		return nil
	}
	if err := setKeepalive(conn, ka); err != nil {
		return fmt.Errorf("set keepalive: %w", err)
	}
	return nil
}

// keepaliveSeconds converts d to whole seconds for the socket options,
// rounding up and never going below one second.
func keepaliveSeconds(d time.Duration) int {
	secs := int((d + time.Second - 1) / time.Second)
	if secs < 1 {
		return 1
	}
	return secs
}
