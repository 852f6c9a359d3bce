// Package testutil holds helpers shared by the test suites.  Nothing
// outside _test.go files imports it.
package testutil

import "net"

// ClosedPort returns a loopback TCP port that nothing listens on at the
// time of the call.  Dialing it yields "connection refused".
func ClosedPort() (int, error) {
	l, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		return 0, err
	}
	port := l.Addr().(*net.TCPAddr).Port
	if err := l.Close(); err != nil {
		return 0, err
	}
	return port, nil
}
