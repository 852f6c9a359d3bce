package transport

import (
	"context"
	"net/netip"
	"testing"
)

func TestNetResolver_Literal(t *testing.T) {
	tests := []struct {
		host string
		want string
	}{
		{"127.0.0.1", "127.0.0.1:5432"},
		{"::1", "[::1]:5432"},
	}
	r := &NetResolver{}
	for _, tt := range tests {
		t.Run(tt.host, func(t *testing.T) {
			addrs, err := r.Resolve(context.Background(), tt.host, 5432)
			if err != nil {
				t.Fatalf("Resolve: %v", err)
			}
			if len(addrs) != 1 {
				t.Fatalf("got %d addresses, want 1", len(addrs))
			}
			if got := addrs[0].String(); got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNetResolver_NilReceiver(t *testing.T) {
	var r *NetResolver
	addrs, err := r.Resolve(context.Background(), "127.0.0.1", 1)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	want := TCPAddr{AddrPort: netip.MustParseAddrPort("127.0.0.1:1")}
	if len(addrs) != 1 || addrs[0] != want {
		t.Errorf("got %v, want [%v]", addrs, want)
	}
}

func TestResolverFunc(t *testing.T) {
	var gotHost string
	var gotPort uint16
	f := ResolverFunc(func(_ context.Context, host string, port uint16) ([]Addr, error) {
		gotHost, gotPort = host, port
		return nil, nil
	})
	if _, err := f.Resolve(context.Background(), "db", 6432); err != nil {
		t.Fatal(err)
	}
	if gotHost != "db" || gotPort != 6432 {
		t.Errorf("got %q:%d", gotHost, gotPort)
	}
}
