package transport

import (
	"context"
	"net"
	"net/netip"
)

// Resolver turns a TCP host name and port into dial candidates.
//
// Implementations return addresses in the order the name service gave
// them.  An empty result with a nil error is valid.
type Resolver interface {
	Resolve(ctx context.Context, host string, port uint16) ([]Addr, error)
}

// ResolverFunc adapts a plain function to the Resolver interface.
type ResolverFunc func(ctx context.Context, host string, port uint16) ([]Addr, error)

// Resolve calls f.
func (f ResolverFunc) Resolve(ctx context.Context, host string, port uint16) ([]Addr, error) {
	return f(ctx, host, port)
}

// NetResolver resolves through a *net.Resolver.
type NetResolver struct {
	Resolver *net.Resolver // nil = net.DefaultResolver
}

// Resolve looks up host and pairs every address with port.  Literal IPs
// are returned as-is without a lookup.
func (r *NetResolver) Resolve(ctx context.Context, host string, port uint16) ([]Addr, error) {
	res := net.DefaultResolver
	if r != nil && r.Resolver != nil {
		res = r.Resolver
	}

	ips, err := res.LookupNetIP(ctx, "ip", host)
	if err != nil {
		return nil, err
	}

	addrs := make([]Addr, 0, len(ips))
	for _, ip := range ips {
		addrs = append(addrs, TCPAddr{AddrPort: netip.AddrPortFrom(ip.Unmap(), port)})
	}
	return addrs, nil
}
