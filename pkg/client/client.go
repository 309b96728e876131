package client

import (
	"net"

	"github.com/pkg/errors"
)

// Connector opens the byte stream to an origin server.
type Connector interface {
	Connect(host, port string) (net.Conn, error)
}

// DialConnector connects over TCP. The zero dial timeout means the dial
// blocks for as long as the operating system lets it.
type DialConnector struct {
	dialer *net.Dialer
}

func NewConnector(opts ...ConnectorOption) *DialConnector {
	c := &DialConnector{
		dialer: &net.Dialer{},
	}

	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *DialConnector) Connect(host, port string) (net.Conn, error) {
	addr := net.JoinHostPort(host, port)
	conn, err := c.dialer.Dial("tcp", addr)
	if err != nil {
		return nil, errors.Wrapf(err, "connect %s", addr)
	}
	return conn, nil
}
