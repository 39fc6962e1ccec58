// Package netutil provides address helpers for Minecraft host[:port] strings.
package netutil

import (
	"errors"
	"net"
	"strconv"
)

// DefaultPort is the port a Minecraft server listens on when none is given.
const DefaultPort uint16 = 25565

// HostPortAddr provides the host and port of an address in cases where
// use of host, port, err := net.SplitHostPort(addressString) is too much
// and an error is unexpected or ignored.
type HostPortAddr interface {
	// Host returns the host part from the address.
	Host() string
	// Port returns the port part from the address.
	// Zero value means the port is unspecified.
	Port() uint16
}

// Host is like HostPort, but directly returns the result of HostPortAddr.Host().
func Host(addr net.Addr) string {
	return HostPort(addr).Host()
}

// Port is like HostPort, but directly returns the result of HostPortAddr.Port().
func Port(addr net.Addr) uint16 {
	return HostPort(addr).Port()
}

// HostPort wraps addr into a HostPortAddr, ignoring parse errors.
func HostPort(addr net.Addr) HostPortAddr {
	if hp, ok := addr.(HostPortAddr); ok {
		return hp
	}
	a := &address{Addr: addr}
	host, port, err := net.SplitHostPort(addr.String())
	if err != nil {
		a.host = addr.String()
		return a
	}
	a.host = host
	p, _ := strconv.ParseUint(port, 10, 16)
	a.port = uint16(p)
	return a
}

// SplitHostPort splits addr into host and port, using defaultPort
// if addr has no port.
func SplitHostPort(addr string, defaultPort uint16) (host string, port uint16, err error) {
	h, p, err := net.SplitHostPort(addr)
	if err != nil {
		if !isMissingPortErr(err) {
			return "", 0, err
		}
		return addr, defaultPort, nil
	}
	n, err := strconv.ParseUint(p, 10, 16)
	if err != nil {
		return "", 0, &net.AddrError{Err: "invalid port", Addr: addr}
	}
	return h, uint16(n), nil
}

// EnsurePort returns addr as host:port, appending defaultPort if addr has no port.
func EnsurePort(addr string, defaultPort uint16) (string, error) {
	host, port, err := SplitHostPort(addr, defaultPort)
	if err != nil {
		return "", err
	}
	return net.JoinHostPort(host, strconv.Itoa(int(port))), nil
}

// Parse parses addr and constructs a net.Addr compatible with HostPort.
func Parse(addr, network string) (net.Addr, error) {
	host, port, err := SplitHostPort(addr, 0)
	if err != nil {
		return nil, err
	}
	return NewAddr(network, host, port), nil
}

// NewAddr returns a new net.Addr ready to use with HostPort.
func NewAddr(network, host string, port uint16) net.Addr {
	return &address{
		Addr: &customAddr{
			network: network,
			str:     net.JoinHostPort(host, strconv.Itoa(int(port))),
		},
		host: host,
		port: port,
	}
}

func isMissingPortErr(err error) bool {
	var addrErr *net.AddrError
	return errors.As(err, &addrErr) && addrErr.Err == "missing port in address"
}

type customAddr struct{ network, str string }

func (c *customAddr) Network() string { return c.network }
func (c *customAddr) String() string  { return c.str }

var _ net.Addr = (*customAddr)(nil)

type address struct {
	net.Addr
	host string
	port uint16
}

func (s *address) Host() string { return s.host }
func (s *address) Port() uint16 { return s.port }
