package telemetry

import (
	"net"
)

// CountConn wraps conn counting transport bytes into m.
// It returns conn unchanged if m is nil.
func CountConn(conn net.Conn, m *Metrics) net.Conn {
	if conn == nil || m == nil {
		return conn
	}
	return &countedConn{
		Conn:    conn,
		read:    m.BytesTotal.WithLabelValues("read"),
		written: m.BytesTotal.WithLabelValues("written"),
	}
}

type counter interface{ Add(float64) }

type countedConn struct {
	net.Conn
	read, written counter
}

func (c *countedConn) Read(b []byte) (n int, err error) {
	n, err = c.Conn.Read(b)
	if n > 0 {
		c.read.Add(float64(n))
	}
	return n, err
}

func (c *countedConn) Write(b []byte) (n int, err error) {
	n, err = c.Conn.Write(b)
	if n > 0 {
		c.written.Add(float64(n))
	}
	return n, err
}
