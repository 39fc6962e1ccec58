// Package validation checks user supplied configuration values.
package validation

import (
	"fmt"
	"net"
	"strconv"
)

// ValidHostPort returns an error if hostAndPort is not a host:port pair
// with a port in range 0-65535.
func ValidHostPort(hostAndPort string) error {
	_, port, err := net.SplitHostPort(hostAndPort)
	if err != nil {
		return err
	}
	if _, err = strconv.ParseUint(port, 10, 16); err != nil {
		return fmt.Errorf("invalid port %q", port)
	}
	return nil
}

// ValidProtocol reports whether p is a usable protocol version number.
func ValidProtocol(p int) bool {
	return p >= 0
}
