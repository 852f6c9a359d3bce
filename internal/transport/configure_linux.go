//go:build linux

package transport

import (
	"fmt"
	"net"

	"golang.org/x/sys/unix"
)

// The keepalive knobs map onto the options described in tcp(7):
// TCP_KEEPIDLE, TCP_KEEPINTVL and TCP_KEEPCNT, plus SO_KEEPALIVE to
// switch probing on.

type sockopt struct {
	name  string
	level int
	opt   int
	value int
}

func keepaliveOpts(ka *KeepaliveConfig) []sockopt {
	opts := []sockopt{
		{"SO_KEEPALIVE", unix.SOL_SOCKET, unix.SO_KEEPALIVE, 1},
		{"TCP_KEEPIDLE", unix.IPPROTO_TCP, unix.TCP_KEEPIDLE, keepaliveSeconds(ka.Idle)},
	}
	if ka.Interval > 0 {
		opts = append(opts, sockopt{"TCP_KEEPINTVL", unix.IPPROTO_TCP, unix.TCP_KEEPINTVL, keepaliveSeconds(ka.Interval)})
	}
	if ka.Retries > 0 {
		opts = append(opts, sockopt{"TCP_KEEPCNT", unix.IPPROTO_TCP, unix.TCP_KEEPCNT, ka.Retries})
	}
	return opts
}

func setKeepalive(conn *net.TCPConn, ka *KeepaliveConfig) error {
	rawConn, err := conn.SyscallConn()
	if err != nil {
		return err
	}

	var sockErr error
	err = rawConn.Control(func(fd uintptr) {
		for _, o := range keepaliveOpts(ka) {
			if e := unix.SetsockoptInt(int(fd), o.level, o.opt, o.value); e != nil {
				sockErr = fmt.Errorf("%s: %w", o.name, e)
				return
			}
		}
	})
	if err != nil {
		return err
	}
	return sockErr
}
