//go:build !linux

package transport

import (
	"net"
	"time"
)

// Outside Linux only the idle time is portable through the net package;
// interval and probe count stay at the OS defaults.
func setKeepalive(conn *net.TCPConn, ka *KeepaliveConfig) error {
	if err := conn.SetKeepAlive(true); err != nil {
		return err
	}
	return conn.SetKeepAlivePeriod(time.Duration(keepaliveSeconds(ka.Idle)) * time.Second)
}
