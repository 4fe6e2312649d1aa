package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/genricoloni/mpdnotify/internal/cache"
	"github.com/genricoloni/mpdnotify/internal/config"
	"github.com/genricoloni/mpdnotify/internal/domain"
	"github.com/genricoloni/mpdnotify/internal/engine"
	"github.com/genricoloni/mpdnotify/internal/fetcher"
	"github.com/genricoloni/mpdnotify/internal/monitor"
	"github.com/genricoloni/mpdnotify/internal/mpd"
	"github.com/genricoloni/mpdnotify/internal/notifier"
	"github.com/genricoloni/mpdnotify/internal/player"
	"github.com/genricoloni/mpdnotify/internal/processor"
	"github.com/genricoloni/mpdnotify/internal/render"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// AppOptions is the complete dependency graph of the daemon
var AppOptions = fx.Options(
	// Logger configuration
	fx.WithLogger(func(log *zap.Logger) fxevent.Logger {
		return &fxevent.ZapLogger{Logger: log}
	}),

	// Provide dependencies
	fx.Provide(
		newLogger,
		fx.Annotate(config.NewAppConfig, fx.As(new(domain.Config))),
		fx.Annotate(mpd.NewServer, fx.As(new(domain.SessionProvider))),
		fx.Annotate(fetcher.NewArtFetcher, fx.As(new(domain.ArtFetcher))),
		fx.Annotate(player.NewPlayer, fx.As(new(domain.Snapshotter))),
		fx.Annotate(cache.NewArtCache, fx.As(new(domain.ArtCache))),
		fx.Annotate(processor.NewThumbnailProcessor, fx.As(new(domain.ImageProcessor))),
		fx.Annotate(render.NewRenderer, fx.As(new(domain.Renderer))),
		fx.Annotate(monitor.NewMPDMonitor, fx.As(new(domain.Monitor))),
		notifier.NewNotifier,
		engine.NewEngine,
	),

	// Lifecycle hooks
	fx.Invoke(registerHooks),
)

func main() {
	app := fx.New(AppOptions)

	// Handle graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Start the application
	if err := app.Start(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "mpdnotify: %v\n", err)
		os.Exit(1)
	}

	// Wait for an interrupt or for the engine to end the app
	exitCode := 0
	select {
	case <-ctx.Done():
	case sig := <-app.Wait():
		exitCode = sig.ExitCode
	}

	// Stop the application gracefully
	if err := app.Stop(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "mpdnotify: %v\n", err)
		if exitCode == 0 {
			exitCode = 1
		}
	}

	os.Exit(exitCode)
}

// newLogger creates a new zap logger instance.
// MPDNOTIFY_LOG_LEVEL sets the level, MPDNOTIFY_LOG_FORMAT=console switches
// to the human readable encoder.
func newLogger() (*zap.Logger, error) {
	cfg := zap.NewProductionConfig()
	if strings.EqualFold(os.Getenv("MPDNOTIFY_LOG_FORMAT"), "console") {
		cfg = zap.NewDevelopmentConfig()
	}

	if raw := os.Getenv("MPDNOTIFY_LOG_LEVEL"); raw != "" {
		level, err := zapcore.ParseLevel(raw)
		if err != nil {
			return nil, fmt.Errorf("invalid MPDNOTIFY_LOG_LEVEL: %w", err)
		}
		cfg.Level = zap.NewAtomicLevelAt(level)
	} else {
		cfg.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	}

	return cfg.Build()
}

// registerHooks sets up application lifecycle hooks
func registerHooks(lc fx.Lifecycle, logger *zap.Logger, eng *engine.Engine) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			logger.Info("mpdnotify daemon started")
			return eng.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			logger.Info("Shutting down")
			err := eng.Stop(ctx)
			_ = logger.Sync()
			return err
		},
	})
}
