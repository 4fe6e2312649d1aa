package mpd

import (
	gompd "github.com/fhs/gompd/v2/mpd"
)

// Commander is the low-level MPD protocol surface used by a session.
// This abstraction allows us to test sessions without a running server.
type Commander interface {
	// Attrs sends a command and returns its key/value response
	Attrs(format string, args ...interface{}) (gompd.Attrs, error)

	// Strings sends a command and returns every value for key
	Strings(key, format string, args ...interface{}) ([]string, error)

	// Binary sends a command with a binary response.
	// It returns the chunk and the total size reported by the server.
	Binary(format string, args ...interface{}) ([]byte, int, error)

	// Close closes the connection
	Close() error
}

// DialFunc opens a command connection
type DialFunc func(network, addr, password string) (Commander, error)

// gompdConn is the real implementation using gompd
type gompdConn struct {
	c *gompd.Client
}

func dialGompd(network, addr, password string) (Commander, error) {
	c, err := gompd.DialAuthenticated(network, addr, password)
	if err != nil {
		return nil, err
	}
	return &gompdConn{c: c}, nil
}

func (g *gompdConn) Attrs(format string, args ...interface{}) (gompd.Attrs, error) {
	return g.c.Command(format, args...).Attrs()
}

func (g *gompdConn) Strings(key, format string, args ...interface{}) ([]string, error) {
	return g.c.Command(format, args...).Strings(key)
}

func (g *gompdConn) Binary(format string, args ...interface{}) ([]byte, int, error) {
	return g.c.Command(format, args...).Binary()
}

func (g *gompdConn) Close() error {
	return g.c.Close()
}
