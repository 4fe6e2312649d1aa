package mpd

import (
	"context"
	"errors"
	"fmt"
	"net/textproto"

	gompd "github.com/fhs/gompd/v2/mpd"
	"github.com/genricoloni/mpdnotify/internal/domain"
	"go.uber.org/zap"
)

// noBinaryData is what gompd reports when a binary command is answered with a bare OK
const noBinaryData = "no binary data found in response"

// Session runs commands over one MPD connection
type Session struct {
	conn Commander
}

var _ domain.Session = (*Session)(nil)

// NewSession wraps an open connection
func NewSession(conn Commander) *Session {
	return &Session{conn: conn}
}

// CurrentSong returns the current track, or nil if the queue has no current song
func (s *Session) CurrentSong(ctx context.Context) (*domain.Track, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	attrs, err := s.conn.Attrs("currentsong")
	if err != nil {
		return nil, fmt.Errorf("currentsong: %w", err)
	}
	if attrs["file"] == "" {
		return nil, nil
	}

	// Attrs keeps only the last value of repeated tags
	artists, err := s.conn.Strings("Artist", "currentsong")
	if err != nil {
		return nil, fmt.Errorf("currentsong artists: %w", err)
	}

	return &domain.Track{
		URI:     attrs["file"],
		Artists: artists,
		Album:   attrs["Album"],
		Title:   attrs["Title"],
	}, nil
}

// Status returns the playback state
func (s *Session) Status(ctx context.Context) (domain.PlaybackState, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	attrs, err := s.conn.Attrs("status")
	if err != nil {
		return "", fmt.Errorf("status: %w", err)
	}
	return parseState(attrs["state"])
}

// ArtChunk requests one chunk of a picture.
// albumart serves file-backed art and readpicture serves embedded art.
func (s *Session) ArtChunk(ctx context.Context, source domain.ArtSource, uri string, offset int) (*domain.ArtChunk, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	cmd := "albumart"
	if source == domain.ArtSourceEmbedded {
		cmd = "readpicture"
	}

	data, size, err := s.conn.Binary(cmd+" %s %d", uri, offset)
	if err != nil {
		if isAbsent(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("%s: %w", cmd, err)
	}

	// A zero size is a real, empty picture
	return &domain.ArtChunk{Data: data, TotalSize: size}, nil
}

func parseState(state string) (domain.PlaybackState, error) {
	switch state {
	case "play":
		return domain.StatePlaying, nil
	case "pause":
		return domain.StatePaused, nil
	case "stop":
		return domain.StateStopped, nil
	default:
		return "", fmt.Errorf("unexpected player state %q", state)
	}
}

// isAbsent reports whether err means the server has no picture for the song.
// MPD acks "no exist" for a missing cover file, servers older than 0.22 do not
// know readpicture at all, and a song without embedded art gets a bare OK.
func isAbsent(err error) bool {
	var ack gompd.Error
	if errors.As(err, &ack) {
		return ack.Code == gompd.ErrorNoExist || ack.Code == gompd.ErrorUnknown
	}

	var perr textproto.ProtocolError
	return errors.As(err, &perr) && string(perr) == noBinaryData
}

// Server hands out short-lived command sessions.
// A fresh connection per refresh keeps MPD's idle timeout from closing it between events.
type Server struct {
	logger *zap.Logger
	cfg    domain.Config
	dial   DialFunc
}

var _ domain.SessionProvider = (*Server)(nil)

// NewServer creates a session provider for the configured MPD server
func NewServer(logger *zap.Logger, cfg domain.Config) *Server {
	return &Server{
		logger: logger,
		cfg:    cfg,
		dial:   dialGompd,
	}
}

// WithSession connects, runs fn and closes the connection
func (s *Server) WithSession(ctx context.Context, fn func(domain.Session) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	conn, err := s.dial(s.cfg.MPDNetwork(), s.cfg.MPDAddress(), s.cfg.MPDPassword())
	if err != nil {
		return fmt.Errorf("failed to connect to MPD at %s: %w", s.cfg.MPDAddress(), err)
	}
	defer func() {
		if err := conn.Close(); err != nil {
			s.logger.Warn("Failed to close MPD connection", zap.Error(err))
		}
	}()

	return fn(NewSession(conn))
}
