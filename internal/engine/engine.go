package engine

import (
	"context"
	"fmt"
	"sync"

	"github.com/genricoloni/mpdnotify/internal/domain"
	"go.uber.org/fx"
	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Engine keeps one desktop notification in sync with the MPD player.
// It shows a notification at startup and replaces it in place on every
// player change until the event stream ends.
type Engine struct {
	logger     *zap.Logger
	monitor    domain.Monitor
	player     domain.Snapshotter
	renderer   domain.Renderer
	notifier   domain.Notifier
	shutdowner fx.Shutdowner

	// id is the single notification slot, valid once shown is set
	id    domain.NotificationID
	shown bool

	mu     sync.Mutex
	cancel context.CancelFunc
	done   chan struct{}
}

// NewEngine creates a new refresh engine
func NewEngine(
	logger *zap.Logger,
	mon domain.Monitor,
	player domain.Snapshotter,
	renderer domain.Renderer,
	notifier domain.Notifier,
	shutdowner fx.Shutdowner,
) *Engine {
	return &Engine{
		logger:     logger,
		monitor:    mon,
		player:     player,
		renderer:   renderer,
		notifier:   notifier,
		shutdowner: shutdowner,
	}
}

// Start subscribes to MPD and launches the refresh loop in a goroutine.
// It returns once the subscription is live.
func (e *Engine) Start(ctx context.Context) error {
	e.logger.Info("Engine starting...")

	if err := e.monitor.Start(ctx); err != nil {
		return err
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	done := make(chan struct{})

	e.mu.Lock()
	e.cancel = cancel
	e.done = done
	e.mu.Unlock()

	go func() {
		defer close(done)
		err := e.Run(runCtx)

		// Stop already owns the shutdown
		if runCtx.Err() != nil {
			return
		}

		if err != nil {
			e.logger.Error("Refresh loop failed", zap.Error(err))
			e.shutdown(fx.ExitCode(1))
			return
		}
		e.logger.Info("MPD event stream ended, exiting")
		e.shutdown()
	}()

	return nil
}

func (e *Engine) shutdown(opts ...fx.ShutdownOption) {
	if err := e.shutdowner.Shutdown(opts...); err != nil {
		e.logger.Warn("Failed to request shutdown", zap.Error(err))
	}
}

// Run shows the initial notification and then processes events in arrival
// order until the stream ends, a transport error occurs, or ctx is cancelled.
// Stream end and cancellation return nil.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.refresh(ctx); err != nil {
		return err
	}

	events := e.monitor.Events()
	errs := e.monitor.Errors()

	for {
		select {
		case <-ctx.Done():
			e.logger.Info("Engine loop stopped")
			return nil

		case err := <-errs:
			return fmt.Errorf("mpd event stream failed: %w", err)

		case ev, ok := <-events:
			if !ok {
				return e.streamError(errs)
			}

			if ev.Subsystem != domain.SubsystemPlayer {
				e.logger.Debug("Ignoring subsystem change", zap.String("subsystem", ev.Subsystem))
				continue
			}

			if err := e.refresh(ctx); err != nil {
				return err
			}
		}
	}
}

// streamError reports a transport error queued before the stream closed
func (e *Engine) streamError(errs <-chan error) error {
	select {
	case err := <-errs:
		return fmt.Errorf("mpd event stream failed: %w", err)
	default:
		return nil
	}
}

// refresh runs one snapshot, render and display cycle
func (e *Engine) refresh(ctx context.Context) error {
	snap, err := e.player.Snapshot(ctx)
	if err != nil {
		return fmt.Errorf("failed to read player state: %w", err)
	}

	payload, err := e.renderer.Render(ctx, snap)
	if err != nil {
		e.logger.Warn("Album art unavailable, showing text only",
			zap.String("title", snap.Title),
			zap.Error(err))
	}

	if !e.shown {
		id, err := e.notifier.Show(ctx, payload)
		if err != nil {
			return fmt.Errorf("failed to show notification: %w", err)
		}
		e.id = id
		e.shown = true
	} else {
		id, err := e.notifier.Update(ctx, e.id, payload)
		if err != nil {
			return fmt.Errorf("failed to update notification: %w", err)
		}
		e.id = id
	}

	e.logger.Info("Notification refreshed",
		zap.String("state", string(snap.State)),
		zap.String("title", snap.Title),
		zap.Uint32("id", uint32(e.id)))
	return nil
}

// Stop ends the refresh loop and releases the MPD subscription and the
// notification backend
func (e *Engine) Stop(ctx context.Context) error {
	e.logger.Info("Engine stopping...")

	e.mu.Lock()
	cancel, done := e.cancel, e.done
	e.mu.Unlock()

	if cancel != nil {
		cancel()
		select {
		case <-done:
		case <-ctx.Done():
			e.logger.Warn("Timed out waiting for refresh loop")
		}
	}

	return multierr.Append(e.monitor.Stop(ctx), e.notifier.Close())
}
