package cache

import (
	"encoding/hex"
	"fmt"
	"path/filepath"

	"github.com/20after4/configdir"
	"github.com/genricoloni/mpdnotify/internal/domain"
	"github.com/zeebo/blake3"
	"go.uber.org/zap"
)

const (
	// digestVersion is mixed into every digest; bumping it orphans old entries
	digestVersion = "v1"
	digestSize    = 12
	extension     = ".jpg"
)

// ArtCache stores downscaled album art under a name derived from the original bytes
type ArtCache struct {
	logger *zap.Logger
	root   string
	ready  bool
}

// NewArtCache resolves the cache root without touching the filesystem.
// The directory itself is created on first EnsureDir.
func NewArtCache(logger *zap.Logger, cfg domain.Config) (*ArtCache, error) {
	root := cfg.CacheDir()
	if root == "" {
		root = configdir.LocalCache(cfg.AppName())
	}
	// configdir falls back to a relative path when HOME is unset
	if !filepath.IsAbs(root) {
		return nil, fmt.Errorf("%w: %q is not absolute", domain.ErrNoCacheDir, root)
	}

	logger.Debug("Art cache root resolved", zap.String("root", root))
	return &ArtCache{logger: logger, root: root}, nil
}

// Digest returns the hex-encoded, truncated BLAKE3 digest of data
func Digest(data []byte) string {
	h := blake3.New()
	_, _ = h.Write(data)
	_, _ = h.Write([]byte(digestVersion))

	var out [digestSize]byte
	_, _ = h.Digest().Read(out[:])
	return hex.EncodeToString(out[:])
}

// ResolvePath maps art bytes to their cache file. It never touches disk.
func (c *ArtCache) ResolvePath(data []byte) string {
	return filepath.Join(c.root, Digest(data)+extension)
}

// EnsureDir creates the cache root if it is missing
func (c *ArtCache) EnsureDir() (string, error) {
	if c.ready {
		return c.root, nil
	}
	if err := configdir.MakePath(c.root); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	c.ready = true
	c.logger.Info("Art cache ready", zap.String("root", c.root))
	return c.root, nil
}

// Root returns the cache directory
func (c *ArtCache) Root() string {
	return c.root
}
