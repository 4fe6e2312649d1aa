package fetcher

import (
	"context"
	"fmt"

	"github.com/genricoloni/mpdnotify/internal/domain"
	"go.uber.org/zap"
)

// _maxPrealloc bounds the buffer reserved from a server-reported size
const _maxPrealloc = 16 * 1024 * 1024

// ArtFetcher downloads a track's picture from MPD in chunks
type ArtFetcher struct {
	logger *zap.Logger
}

// NewArtFetcher creates a new chunked album art fetcher
func NewArtFetcher(logger *zap.Logger) *ArtFetcher {
	return &ArtFetcher{logger: logger}
}

// Fetch retrieves the complete picture of uri.
// The file-backed source is tried first and the embedded one only if it has nothing.
// Whichever source answers first serves every following chunk.
func (f *ArtFetcher) Fetch(ctx context.Context, s domain.Session, uri string) (domain.AlbumArt, error) {
	source := domain.ArtSourceFile
	first, err := s.ArtChunk(ctx, source, uri, 0)
	if err != nil {
		return domain.NoArt(), fmt.Errorf("albumart %q: %w", uri, err)
	}

	if first == nil {
		source = domain.ArtSourceEmbedded
		first, err = s.ArtChunk(ctx, source, uri, 0)
		if err != nil {
			return domain.NoArt(), fmt.Errorf("readpicture %q: %w", uri, err)
		}
		if first == nil {
			f.logger.Debug("No album art", zap.String("uri", uri))
			return domain.NoArt(), nil
		}
	}

	total := first.TotalSize
	if total < 0 {
		return domain.NoArt(), fmt.Errorf("%s art for %q reports negative size %d", source, uri, total)
	}

	buf := make([]byte, 0, min(total, _maxPrealloc))
	buf = append(buf, first.Data...)

	for len(buf) < total {
		chunk, err := s.ArtChunk(ctx, source, uri, len(buf))
		if err != nil {
			return domain.NoArt(), fmt.Errorf("%s art for %q at offset %d: %w", source, uri, len(buf), err)
		}
		// An empty reply would never advance the offset
		if chunk == nil || len(chunk.Data) == 0 {
			return domain.NoArt(), fmt.Errorf("%w: %s art for %q stopped at %d of %d bytes",
				domain.ErrArtTruncated, source, uri, len(buf), total)
		}
		buf = append(buf, chunk.Data...)
	}

	f.logger.Debug("Album art fetched",
		zap.String("uri", uri),
		zap.Stringer("source", source),
		zap.Int("bytes", len(buf)))

	return domain.RawArt(buf, source), nil
}
