package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/20after4/configdir"
	"github.com/pelletier/go-toml/v2"
	"go.uber.org/zap"
)

const (
	// AppName namespaces the config and cache directories
	AppName = "mpdnotify"

	defaultHost       = "localhost"
	defaultPort       = "6600"
	defaultConfigFile = "config.toml"
)

// fileConfig mirrors the optional TOML config file
type fileConfig struct {
	MPD struct {
		Host     string `toml:"host"`
		Port     string `toml:"port"`
		Password string `toml:"password"`
	} `toml:"mpd"`

	Cache struct {
		Dir string `toml:"dir"`
	} `toml:"cache"`

	Notification struct {
		AppName   string `toml:"app_name"`
		InlineArt *bool  `toml:"inline_art"`
	} `toml:"notification"`
}

// AppConfig holds application configuration
type AppConfig struct {
	logger    *zap.Logger
	appName   string
	network   string
	address   string
	password  string
	cacheDir  string
	inlineArt bool
}

// NewAppConfig loads defaults, then the optional config file, then the environment
func NewAppConfig(logger *zap.Logger) (*AppConfig, error) {
	var fc fileConfig
	fc.MPD.Host = defaultHost
	fc.MPD.Port = defaultPort

	path := os.Getenv("MPDNOTIFY_CONFIG")
	if path == "" {
		path = filepath.Join(configdir.LocalConfig(AppName), defaultConfigFile)
	}
	if err := loadFile(path, &fc); err != nil {
		return nil, err
	}

	host := getEnvOrDefault("MPD_HOST", fc.MPD.Host)
	port := getEnvOrDefault("MPD_PORT", fc.MPD.Port)
	password := fc.MPD.Password

	// MPD_HOST may carry a password as password@host
	if i := strings.Index(host, "@"); i > 0 {
		password = host[:i]
		host = host[i+1:]
	}

	network, address := resolveAddress(host, port)

	cacheDir := expandHome(getEnvOrDefault("MPDNOTIFY_CACHE_DIR", fc.Cache.Dir))

	inlineArt := false
	if fc.Notification.InlineArt != nil {
		inlineArt = *fc.Notification.InlineArt
	}
	if v := os.Getenv("MPDNOTIFY_INLINE_ART"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return nil, fmt.Errorf("invalid MPDNOTIFY_INLINE_ART %q: %w", v, err)
		}
		inlineArt = b
	}

	appName := fc.Notification.AppName
	if appName == "" {
		appName = AppName
	}

	logger.Info("Configuration loaded",
		zap.String("network", network),
		zap.String("address", address),
		zap.Bool("password", password != ""),
		zap.String("cacheDir", cacheDir),
		zap.Bool("inlineArt", inlineArt))

	return &AppConfig{
		logger:    logger,
		appName:   appName,
		network:   network,
		address:   address,
		password:  password,
		cacheDir:  cacheDir,
		inlineArt: inlineArt,
	}, nil
}

// loadFile decodes path into fc. A missing file is not an error.
func loadFile(path string, fc *fileConfig) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewDecoder(f).Decode(fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// resolveAddress picks the dial network for an MPD host.
// Absolute paths are unix sockets and a leading @ is an abstract socket.
func resolveAddress(host, port string) (string, string) {
	if strings.HasPrefix(host, "/") || strings.HasPrefix(host, "@") {
		return "unix", host
	}
	return "tcp", net.JoinHostPort(host, port)
}

func expandHome(path string) string {
	path = os.ExpandEnv(path)
	if len(path) > 0 && path[0] == '~' {
		home, err := os.UserHomeDir()
		if err == nil {
			path = filepath.Join(home, path[1:])
		}
	}
	return path
}

func getEnvOrDefault(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return def
}

// AppName returns the application name
func (c *AppConfig) AppName() string {
	return c.appName
}

// MPDNetwork returns "tcp" or "unix"
func (c *AppConfig) MPDNetwork() string {
	return c.network
}

// MPDAddress returns the dial address of the MPD server
func (c *AppConfig) MPDAddress() string {
	return c.address
}

// MPDPassword returns the MPD password, if any
func (c *AppConfig) MPDPassword() string {
	return c.password
}

// CacheDir returns the cache directory override
func (c *AppConfig) CacheDir() string {
	return c.cacheDir
}

// InlineArt reports whether art is sent as a pixel buffer
func (c *AppConfig) InlineArt() bool {
	return c.inlineArt
}
