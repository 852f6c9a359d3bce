// Package transport establishes the connected socket a database
// protocol layer runs over.  It handles the "how" of reaching the
// server, TCP with name-resolution fallback or a local Unix-domain
// socket, and hands back an opaque Socket.  Nothing here speaks the
// wire protocol.
package transport

import "net"

// Socket is a connected, fully configured transport handle.  It is
// either a TCPSocket or a UnixSocket; the protocol layer treats it as a
// plain net.Conn.
type Socket interface {
	net.Conn
	isSocket()
}

// TCPSocket is a connected TCP stream with NODELAY (and keepalive, if
// configured) already applied.
type TCPSocket struct{ *net.TCPConn }

// UnixSocket is a connected Unix-domain stream.
type UnixSocket struct{ *net.UnixConn }

func (TCPSocket) isSocket()  {}
func (UnixSocket) isSocket() {}

// Network returns "tcp" or "unix" for s.
func Network(s Socket) string {
	switch s.(type) {
	case TCPSocket:
		return "tcp"
	case UnixSocket:
		return "unix"
	default:
		panic("transport: unknown socket type")
	}
}
