package domain

import "errors"

var (
	// ErrArtTruncated is returned when a chunked art transfer stops before
	// reaching the size advertised by the server.
	ErrArtTruncated = errors.New("album art transfer truncated")
	// ErrNoCacheDir is returned when no per-user cache directory can be determined
	ErrNoCacheDir = errors.New("could not determine cache directory")
	// ErrNotSupported is returned by platform stubs
	ErrNotSupported = errors.New("not supported on this platform")
)

// PlaybackState represents the current state of the music player
type PlaybackState string

const (
	// StateStopped indicates nothing is playing
	StateStopped PlaybackState = "Stopped"
	// StatePlaying indicates the current track is playing
	StatePlaying PlaybackState = "Playing"
	// StatePaused indicates the current track is paused
	StatePaused PlaybackState = "Paused"
)

// ArtSource identifies which MPD transfer mechanism delivered a track's artwork.
// A fetch picks one source with its first chunk and keeps it until the end.
type ArtSource int

const (
	// ArtSourceFile is artwork read from an image file next to the track (albumart)
	ArtSourceFile ArtSource = iota
	// ArtSourceEmbedded is artwork extracted from the track's tags (readpicture)
	ArtSourceEmbedded
)

func (s ArtSource) String() string {
	switch s {
	case ArtSourceFile:
		return "file"
	case ArtSourceEmbedded:
		return "embedded"
	default:
		return "unknown"
	}
}

// ArtChunk is one binary response of an art transfer
type ArtChunk struct {
	// Data holds the bytes of this chunk
	Data []byte
	// TotalSize is the full size of the picture as reported by the server
	TotalSize int
}

// AlbumArt is either no art or the raw bytes of a track's picture.
// The zero value is NoArt.
type AlbumArt struct {
	data    []byte
	present bool
	source  ArtSource
}

// NoArt returns the absent variant
func NoArt() AlbumArt {
	return AlbumArt{}
}

// RawArt wraps raw picture bytes delivered by source. An empty slice is
// still present art.
func RawArt(data []byte, source ArtSource) AlbumArt {
	if data == nil {
		data = []byte{}
	}
	return AlbumArt{data: data, present: true, source: source}
}

// Bytes returns the raw bytes and whether art is present
func (a AlbumArt) Bytes() ([]byte, bool) {
	return a.data, a.present
}

// Present reports whether the track has art
func (a AlbumArt) Present() bool {
	return a.present
}

// Source reports where present art came from
func (a AlbumArt) Source() ArtSource {
	return a.source
}

// Track is the subset of MPD's current song used to build a snapshot
type Track struct {
	// URI is the song's file path relative to the music directory
	URI     string
	Artists []string
	Album   string
	Title   string
}

// SongSnapshot is the player's state at one instant.
// When State is StateStopped every text field is empty and Art is NoArt.
type SongSnapshot struct {
	State  PlaybackState
	Artist string
	Album  string
	Title  string
	Art    AlbumArt
}

// StoppedSnapshot returns the normalized snapshot for a stopped player
func StoppedSnapshot() SongSnapshot {
	return SongSnapshot{State: StateStopped, Art: NoArt()}
}

// SubsystemEvent is emitted by the monitor when an MPD subsystem changes
type SubsystemEvent struct {
	// Subsystem is the MPD idle subsystem name, e.g. "player" or "playlist"
	Subsystem string
}

// SubsystemPlayer is the only subsystem that triggers a refresh
const SubsystemPlayer = "player"

// NotificationID identifies the on-screen notification so it can be replaced in place
type NotificationID uint32

// RawImage is an uncompressed RGB pixel buffer
type RawImage struct {
	Width     int
	Height    int
	RowStride int
	Pixels    []byte
}

// ImageRef points at a notification image either by path or by pixel buffer
type ImageRef struct {
	Path string
	Raw  *RawImage
}

// NotificationPayload is everything the display collaborator needs to show one notification
type NotificationPayload struct {
	Summary string
	Body    string
	// TimeoutMs is the expiry passed to the notification server
	TimeoutMs int32
	// Image is nil for a text-only notification
	Image *ImageRef
}
