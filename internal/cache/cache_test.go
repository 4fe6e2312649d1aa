package cache

import (
	"errors"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/genricoloni/mpdnotify/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// mockConfig is a simple mock implementation of domain.Config for testing
type mockConfig struct {
	cacheDir string
}

func (m *mockConfig) AppName() string     { return "mpdnotify-test" }
func (m *mockConfig) MPDNetwork() string  { return "tcp" }
func (m *mockConfig) MPDAddress() string  { return "localhost:6600" }
func (m *mockConfig) MPDPassword() string { return "" }
func (m *mockConfig) CacheDir() string    { return m.cacheDir }
func (m *mockConfig) InlineArt() bool     { return false }

var _ domain.Config = (*mockConfig)(nil)

var cacheNamePattern = regexp.MustCompile(`^[0-9a-f]{24}\.jpg$`)

func TestDigest_Deterministic(t *testing.T) {
	a := []byte("some album art bytes")
	b := []byte("some album art bytes")

	assert.Equal(t, Digest(a), Digest(b))
	assert.Len(t, Digest(a), 2*digestSize)
	assert.NotEqual(t, Digest(a), Digest([]byte("some album art byteS")))
	assert.NotEqual(t, Digest(nil), Digest([]byte{0}))
}

func TestArtCache_ResolvePath(t *testing.T) {
	root := filepath.Join(t.TempDir(), "art")
	c, err := NewArtCache(zap.NewNop(), &mockConfig{cacheDir: root})
	require.NoError(t, err)

	data := make([]byte, 5000)
	for i := range data {
		data[i] = byte(i % 251)
	}

	path := c.ResolvePath(data)
	assert.Equal(t, root, filepath.Dir(path))
	assert.Regexp(t, cacheNamePattern, filepath.Base(path))
	assert.Equal(t, path, c.ResolvePath(append([]byte(nil), data...)))

	// Resolution is pure: the root still does not exist
	_, err = os.Stat(root)
	assert.True(t, errors.Is(err, os.ErrNotExist))
}

func TestArtCache_EnsureDir(t *testing.T) {
	root := filepath.Join(t.TempDir(), "nested", "art")
	c, err := NewArtCache(zap.NewNop(), &mockConfig{cacheDir: root})
	require.NoError(t, err)

	got, err := c.EnsureDir()
	require.NoError(t, err)
	assert.Equal(t, root, got)

	info, err := os.Stat(root)
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	// Second call reuses the existing directory
	got, err = c.EnsureDir()
	require.NoError(t, err)
	assert.Equal(t, root, got)
}

func TestArtCache_EnsureDirExisting(t *testing.T) {
	root := t.TempDir()
	marker := filepath.Join(root, "keep.jpg")
	require.NoError(t, os.WriteFile(marker, []byte("x"), 0644))

	c, err := NewArtCache(zap.NewNop(), &mockConfig{cacheDir: root})
	require.NoError(t, err)
	_, err = c.EnsureDir()
	require.NoError(t, err)

	_, err = os.Stat(marker)
	assert.NoError(t, err, "existing entries must survive")
}

func TestNewArtCache_DefaultRoot(t *testing.T) {
	c, err := NewArtCache(zap.NewNop(), &mockConfig{})
	if errors.Is(err, domain.ErrNoCacheDir) {
		t.Skip("no per-user cache directory in this environment")
	}
	require.NoError(t, err)
	assert.True(t, filepath.IsAbs(c.Root()))
	assert.Equal(t, "mpdnotify-test", filepath.Base(c.Root()))
}

func TestNewArtCache_RelativeRoot(t *testing.T) {
	_, err := NewArtCache(zap.NewNop(), &mockConfig{cacheDir: "relative/art"})
	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrNoCacheDir)
}
