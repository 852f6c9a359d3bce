package transport

import (
	"net/netip"
	"path/filepath"
	"strconv"
	"strings"
)

// Host identifies where to connect: a TCPHost or a UnixHost.
type Host interface {
	isHost()
	String() string
}

// TCPHost is a named (or literal IP) TCP endpoint.
type TCPHost struct {
	Name string
}

// UnixHost is a directory holding the server's Unix-domain socket.
type UnixHost struct {
	Dir string
}

func (TCPHost) isHost()  {}
func (UnixHost) isHost() {}

func (h TCPHost) String() string  { return h.Name }
func (h UnixHost) String() string { return h.Dir }

// ParseHost follows the libpq convention: an absolute path names a
// socket directory, anything else is a TCP host.
func ParseHost(s string) Host {
	if strings.HasPrefix(s, "/") {
		return UnixHost{Dir: s}
	}
	return TCPHost{Name: s}
}

// Addr is one concrete dial candidate: a TCPAddr or a UnixAddr.
type Addr interface {
	isAddr()
	String() string
}

// TCPAddr is a resolved IP and port.
type TCPAddr struct {
	AddrPort netip.AddrPort
}

// UnixAddr marks a Unix-domain candidate.  The path is derived from the
// UnixHost it is dialled with.
type UnixAddr struct{}

func (TCPAddr) isAddr()  {}
func (UnixAddr) isAddr() {}

func (a TCPAddr) String() string { return a.AddrPort.String() }
func (UnixAddr) String() string  { return "unix" }

// SocketPath returns the Unix-domain socket path for port inside dir.
func SocketPath(dir string, port uint16) string {
	return filepath.Join(dir, ".s.PGSQL."+strconv.FormatUint(uint64(port), 10))
}
