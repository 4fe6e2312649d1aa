package monitor

import (
	gompd "github.com/fhs/gompd/v2/mpd"
)

// WatcherClient defines the interface for an MPD idle subscription.
// This abstraction allows us to fake the server in tests.
type WatcherClient interface {
	// Events emits changed subsystem names and is closed when the watcher stops
	Events() <-chan string

	// Errors reports connection failures
	Errors() <-chan error

	// Close ends the subscription
	Close() error
}

// WatcherDialer opens an idle subscription to the given subsystems (all when empty)
type WatcherDialer func(network, addr, password string, subsystems ...string) (WatcherClient, error)

// StdWatcherClient is the real implementation using gompd
type StdWatcherClient struct {
	w *gompd.Watcher
}

// NewStdWatcherClient connects a gompd watcher
func NewStdWatcherClient(network, addr, password string, subsystems ...string) (WatcherClient, error) {
	w, err := gompd.NewWatcher(network, addr, password, subsystems...)
	if err != nil {
		return nil, err
	}
	return &StdWatcherClient{w: w}, nil
}

// Events returns the watcher's event channel
func (c *StdWatcherClient) Events() <-chan string {
	return c.w.Event
}

// Errors returns the watcher's error channel
func (c *StdWatcherClient) Errors() <-chan error {
	return c.w.Error
}

// Close closes the watcher connection
func (c *StdWatcherClient) Close() error {
	return c.w.Close()
}
