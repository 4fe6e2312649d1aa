package player

import (
	"context"
	"strings"

	"github.com/genricoloni/mpdnotify/internal/domain"
	"go.uber.org/zap"
)

// Player captures SongSnapshots from the MPD server
type Player struct {
	logger   *zap.Logger
	sessions domain.SessionProvider
	fetcher  domain.ArtFetcher
}

// NewPlayer creates a snapshotter over the given session provider
func NewPlayer(logger *zap.Logger, sessions domain.SessionProvider, fetcher domain.ArtFetcher) *Player {
	return &Player{
		logger:   logger,
		sessions: sessions,
		fetcher:  fetcher,
	}
}

// Snapshot queries the current song, the playback state and the song's art.
// A stopped player yields an empty snapshot even if MPD still has a current song.
func (p *Player) Snapshot(ctx context.Context) (domain.SongSnapshot, error) {
	snap := domain.StoppedSnapshot()

	err := p.sessions.WithSession(ctx, func(s domain.Session) error {
		track, err := s.CurrentSong(ctx)
		if err != nil {
			return err
		}
		if track == nil {
			return nil
		}

		state, err := s.Status(ctx)
		if err != nil {
			return err
		}
		if state == domain.StateStopped {
			return nil
		}

		art, err := p.fetcher.Fetch(ctx, s, track.URI)
		if err != nil {
			return err
		}

		snap = domain.SongSnapshot{
			State:  state,
			Artist: strings.Join(track.Artists, ", "),
			Album:  track.Album,
			Title:  track.Title,
			Art:    art,
		}
		return nil
	})
	if err != nil {
		return domain.StoppedSnapshot(), err
	}

	p.logger.Debug("Snapshot captured",
		zap.String("state", string(snap.State)),
		zap.String("title", snap.Title),
		zap.String("artist", snap.Artist),
		zap.Bool("art", snap.Art.Present()))

	return snap, nil
}
