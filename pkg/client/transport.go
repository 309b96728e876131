package client

import (
	"net"
	"time"
)

type ConnectorOption func(*DialConnector)

func WithDialTimeout(timeout time.Duration) ConnectorOption {
	return func(c *DialConnector) {
		c.dialer.Timeout = timeout
	}
}

// WithKeepAlive sets the TCP keep-alive period; negative disables it.
func WithKeepAlive(period time.Duration) ConnectorOption {
	return func(c *DialConnector) {
		c.dialer.KeepAlive = period
	}
}

func WithDialer(dialer *net.Dialer) ConnectorOption {
	return func(c *DialConnector) {
		c.dialer = dialer
	}
}
