package monitor

import (
	"context"
	"fmt"
	"sync"

	"github.com/genricoloni/mpdnotify/internal/domain"
	"go.uber.org/zap"
)

// MPDMonitor turns MPD idle notifications into an ordered stream of subsystem events
type MPDMonitor struct {
	logger  *zap.Logger
	cfg     domain.Config
	dial    WatcherDialer
	events  chan domain.SubsystemEvent
	errs    chan error
	mu      sync.Mutex
	running bool
	cancel  context.CancelFunc
	watcher WatcherClient  // Interface for testability
	wg      sync.WaitGroup // Tracks the forwarding goroutine
}

var _ domain.Monitor = (*MPDMonitor)(nil)

// NewMPDMonitor creates a new MPD monitor instance
func NewMPDMonitor(logger *zap.Logger, cfg domain.Config) *MPDMonitor {
	return &MPDMonitor{
		logger: logger,
		cfg:    cfg,
		dial:   NewStdWatcherClient,
		events: make(chan domain.SubsystemEvent),
		errs:   make(chan error, 1),
	}
}

// Start subscribes to every MPD subsystem and returns once the subscription is live.
// The subscription outlives ctx; it ends on Stop or when the server goes away.
func (m *MPDMonitor) Start(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}
	// The event stream is not restartable once stopped
	if m.cancel != nil {
		return fmt.Errorf("mpd monitor already stopped")
	}

	w, err := m.dial(m.cfg.MPDNetwork(), m.cfg.MPDAddress(), m.cfg.MPDPassword())
	if err != nil {
		m.logger.Error("Failed to subscribe to MPD", zap.Error(err))
		return fmt.Errorf("mpd idle subscription failed: %w", err)
	}

	monitorCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	m.watcher = w
	m.cancel = cancel
	m.running = true

	m.wg.Add(1)
	go m.forward(monitorCtx, w)

	m.logger.Info("MPD monitor started", zap.String("address", m.cfg.MPDAddress()))
	return nil
}

// forward relays watcher notifications in arrival order.
// Events is closed when it returns; a transport error is queued on Errors first.
func (m *MPDMonitor) forward(ctx context.Context, w WatcherClient) {
	defer m.wg.Done()
	defer close(m.events)

	watcherEvents := w.Events()
	watcherErrs := w.Errors()

	for {
		select {
		case <-ctx.Done():
			m.logger.Info("Event forwarding stopped")
			return

		case err, ok := <-watcherErrs:
			if !ok {
				watcherErrs = nil
				continue
			}
			m.logger.Error("MPD connection lost", zap.Error(err))
			m.errs <- err
			return

		case name, ok := <-watcherEvents:
			if !ok {
				m.logger.Info("MPD event stream ended")
				return
			}
			m.logger.Debug("Subsystem changed", zap.String("subsystem", name))

			select {
			case m.events <- domain.SubsystemEvent{Subsystem: name}:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Stop gracefully stops the monitor
func (m *MPDMonitor) Stop(ctx context.Context) error {
	m.mu.Lock()

	if !m.running {
		m.mu.Unlock()
		return nil
	}

	m.cancel()
	m.running = false
	w := m.watcher
	m.mu.Unlock()

	// The forwarder may already have quit. Keep the watcher's channels
	// moving until Close returns, or a watcher blocked on a send never finishes.
	closed := make(chan struct{})
	drained := make(chan struct{})
	go func() {
		defer close(drained)
		drain(w, closed)
	}()

	cerr := w.Close()
	close(closed)
	<-drained

	var err error
	if cerr != nil {
		m.logger.Warn("Failed to close MPD watcher", zap.Error(cerr))
		err = cerr
	}

	// Wait for the forwarder so Events is closed before we return
	m.wg.Wait()

	m.logger.Info("MPD monitor shutdown complete")
	return err
}

// drain discards watcher output until done is closed
func drain(w WatcherClient, done <-chan struct{}) {
	events := w.Events()
	errs := w.Errors()
	for {
		select {
		case <-done:
			return
		case _, ok := <-events:
			if !ok {
				events = nil
			}
		case _, ok := <-errs:
			if !ok {
				errs = nil
			}
		}
	}
}

// Events returns a read-only channel that emits subsystem changes
func (m *MPDMonitor) Events() <-chan domain.SubsystemEvent {
	return m.events
}

// Errors returns the channel that receives a transport failure
func (m *MPDMonitor) Errors() <-chan error {
	return m.errs
}
