package main

import "net"

// InstrumentedConn wraps a net.Conn to report bytes read/written to
// Metrics on every call, adapting runZeroInc-conniver's WrapConn pattern
// (which reports TCP_INFO + byte counts on a callback) down to the two
// counters this store actually needs, driving Prometheus counters directly
// instead of a generic report callback.
type InstrumentedConn struct {
	net.Conn
	metrics *Metrics
}

func WrapConn(conn net.Conn, metrics *Metrics) *InstrumentedConn {
	return &InstrumentedConn{Conn: conn, metrics: metrics}
}

func (c *InstrumentedConn) Read(b []byte) (int, error) {
	n, err := c.Conn.Read(b)
	if n > 0 {
		c.metrics.AddBytesRead(n)
	}
	return n, err
}

func (c *InstrumentedConn) Write(b []byte) (int, error) {
	n, err := c.Conn.Write(b)
	if n > 0 {
		c.metrics.AddBytesWritten(n)
	}
	return n, err
}
