package render

import (
	"context"
	"errors"
	"fmt"
	"html"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/genricoloni/mpdnotify/internal/domain"
	"go.uber.org/zap"
)

// NotificationTimeoutMs is how long the notification stays on screen
const NotificationTimeoutMs = 5000

// Renderer builds notification payloads from snapshots
type Renderer struct {
	logger    *zap.Logger
	cache     domain.ArtCache
	processor domain.ImageProcessor
	inline    bool
}

// NewRenderer creates a renderer that routes art through the cache,
// or through raw pixel buffers when the config asks for inline art
func NewRenderer(logger *zap.Logger, cache domain.ArtCache, processor domain.ImageProcessor, cfg domain.Config) *Renderer {
	return &Renderer{
		logger:    logger,
		cache:     cache,
		processor: processor,
		inline:    cfg.InlineArt(),
	}
}

// Summary returns the notification title line for a playback state
func Summary(state domain.PlaybackState) string {
	switch state {
	case domain.StatePlaying:
		return "Playing:"
	case domain.StatePaused:
		return "Paused:"
	default:
		return "Stopped"
	}
}

// Body returns the markup body: emphasized title, then artist, then album
func Body(snap domain.SongSnapshot) string {
	if snap.State == domain.StateStopped {
		return ""
	}
	return fmt.Sprintf("<b>%s</b>\n%s\n%s",
		html.EscapeString(snap.Title),
		html.EscapeString(snap.Artist),
		html.EscapeString(snap.Album))
}

// Render builds the payload for snap.
// The returned payload always carries the text; a non-nil error means the art was dropped.
func (r *Renderer) Render(ctx context.Context, snap domain.SongSnapshot) (domain.NotificationPayload, error) {
	payload := domain.NotificationPayload{
		Summary:   Summary(snap.State),
		Body:      Body(snap),
		TimeoutMs: NotificationTimeoutMs,
	}

	data, ok := snap.Art.Bytes()
	if !ok {
		return payload, nil
	}

	var (
		img *domain.ImageRef
		err error
	)
	if r.inline {
		img, err = r.inlineImage(ctx, data)
	} else {
		img, err = r.cachedImage(ctx, data)
	}
	if err != nil {
		return payload, err
	}

	payload.Image = img
	return payload, nil
}

func (r *Renderer) inlineImage(ctx context.Context, data []byte) (*domain.ImageRef, error) {
	raw, err := r.processor.Pixels(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare album art: %w", err)
	}
	return &domain.ImageRef{Raw: raw}, nil
}

// cachedImage returns a path reference, encoding the thumbnail only on a cache miss
func (r *Renderer) cachedImage(ctx context.Context, data []byte) (*domain.ImageRef, error) {
	path := r.cache.ResolvePath(data)

	if _, err := os.Stat(path); err == nil {
		r.logger.Debug("Album art cache hit", zap.String("path", path))
		return &domain.ImageRef{Path: path}, nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to stat cached art: %w", err)
	}

	dir, err := r.cache.EnsureDir()
	if err != nil {
		return nil, err
	}

	thumb, err := r.processor.Process(ctx, data)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare album art: %w", err)
	}

	if err := writeAtomic(dir, path, thumb); err != nil {
		return nil, err
	}

	r.logger.Info("Album art cached",
		zap.String("path", path),
		zap.Int("bytes", len(thumb)))

	return &domain.ImageRef{Path: path}, nil
}

// writeAtomic writes data to a temp file in dir and renames it onto path,
// so readers never see a partially written entry
func writeAtomic(dir, path string, data []byte) error {
	tmp, err := os.CreateTemp(dir, "."+filepath.Base(path)+".*")
	if err != nil {
		return fmt.Errorf("failed to create cache file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Chmod(tmp.Name(), 0644); err != nil {
		return fmt.Errorf("failed to write cache file: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to move cache file into place: %w", err)
	}
	return nil
}
