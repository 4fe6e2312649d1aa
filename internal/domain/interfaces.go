package domain

import "context"

//go:generate mockgen -destination=mocks/domain_mock.go -package=mocks github.com/genricoloni/mpdnotify/internal/domain Session,SessionProvider,ArtFetcher,ArtCache,ImageProcessor,Snapshotter,Renderer,Notifier,Monitor

// Session is a command connection to the MPD server
type Session interface {
	// CurrentSong returns the current track, or nil if there is none
	CurrentSong(ctx context.Context) (*Track, error)

	// Status returns the current playback state
	Status(ctx context.Context) (PlaybackState, error)

	// ArtChunk requests the picture chunk of uri starting at offset from source.
	// A nil chunk with a nil error means the source has no picture for uri.
	ArtChunk(ctx context.Context, source ArtSource, uri string, offset int) (*ArtChunk, error)
}

// SessionProvider hands out a session for the duration of fn
type SessionProvider interface {
	WithSession(ctx context.Context, fn func(Session) error) error
}

// ArtFetcher retrieves the complete artwork of a track
type ArtFetcher interface {
	// Fetch returns NoArt when neither source has a picture for uri
	Fetch(ctx context.Context, s Session, uri string) (AlbumArt, error)
}

// ArtCache maps raw art bytes to a stable location on disk
type ArtCache interface {
	// ResolvePath is pure: it never touches the filesystem
	ResolvePath(data []byte) string

	// EnsureDir creates the cache root if missing and returns it
	EnsureDir() (string, error)
}

// ImageProcessor defines the interface for in-memory image processing
// This is OS-agnostic and works purely with byte streams
type ImageProcessor interface {
	// Process decodes, downscales and re-encodes image data as JPEG
	Process(ctx context.Context, imageData []byte) ([]byte, error)

	// Pixels decodes and downscales image data into an RGB buffer
	Pixels(ctx context.Context, imageData []byte) (*RawImage, error)
}

// Snapshotter captures the player state
type Snapshotter interface {
	Snapshot(ctx context.Context) (SongSnapshot, error)
}

// Renderer turns a snapshot into a notification payload.
// The payload is always usable; a non-nil error reports that the art could not be attached.
type Renderer interface {
	Render(ctx context.Context, snap SongSnapshot) (NotificationPayload, error)
}

// Notifier defines the interface for the desktop notification server
type Notifier interface {
	// Show displays a new notification and returns its identity
	Show(ctx context.Context, p NotificationPayload) (NotificationID, error)

	// Update replaces the content of an existing notification
	Update(ctx context.Context, id NotificationID, p NotificationPayload) (NotificationID, error)

	// Close releases the connection to the notification server
	Close() error
}

// Monitor defines the interface for watching MPD subsystem changes
type Monitor interface {
	// Start subscribes to the server and returns once the subscription is live
	Start(ctx context.Context) error

	// Stop gracefully stops the monitor
	Stop(ctx context.Context) error

	// Events emits subsystem changes in arrival order.
	// It is closed when the stream ends.
	Events() <-chan SubsystemEvent

	// Errors receives at most one transport error before Events is closed
	Errors() <-chan error
}

// Config defines the interface for application configuration
type Config interface {
	// AppName namespaces the cache directory and names the notification sender
	AppName() string

	// MPDNetwork is "tcp" or "unix"
	MPDNetwork() string

	// MPDAddress is host:port or a socket path
	MPDAddress() string

	// MPDPassword is empty when the server needs no authentication
	MPDPassword() string

	// CacheDir overrides the platform cache directory when non-empty
	CacheDir() string

	// InlineArt sends pixel buffers instead of cache paths
	InlineArt() bool
}
