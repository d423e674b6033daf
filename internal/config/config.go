// Package config resolves where vuoto keeps its files and how it logs.
package config

import (
	"os"
	"path/filepath"
	"strconv"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
)

const (
	// AppDirName is the directory created under the base directory.
	AppDirName = "vuoto_cli"

	// CacheName is the name of the entry cache inside the home directory.
	CacheName = "vault"

	DefaultCacheCapacity = 512
	DefaultLogLevel      = "warning"
)

// Environment variables read by New.
const (
	EnvHome       = "VUOTO_HOME"
	EnvDebug      = "VUOTO_DEBUG"
	EnvLogLevel   = "VUOTO_LOG_LEVEL"
	EnvPassphrase = "VUOTO_PASSPHRASE"
)

// Config holds the settings of a vuoto invocation.
type Config struct {
	// Home is the directory holding the index and the cache. When empty it
	// is derived from Debug.
	Home string

	// Debug keeps the files under the temporary directory instead of the
	// user's home directory.
	Debug bool

	CacheCapacity int
	LogLevel      string
}

// New returns a Config initialized from the environment.
func New() *Config {
	c := &Config{
		Home:          os.Getenv(EnvHome),
		CacheCapacity: DefaultCacheCapacity,
		LogLevel:      DefaultLogLevel,
	}
	if v, err := strconv.ParseBool(os.Getenv(EnvDebug)); err == nil {
		c.Debug = v
	}
	if v := os.Getenv(EnvLogLevel); v != "" {
		c.LogLevel = v
	}
	return c
}

// InstallFlags adds flags overriding the configuration to flags.
func (c *Config) InstallFlags(flags *pflag.FlagSet) {
	flags.StringVar(&c.Home, "home", c.Home, "Directory holding the vault index and cache (env "+EnvHome+")")
	flags.BoolVar(&c.Debug, "debug", c.Debug, "Keep files under the temporary directory (env "+EnvDebug+")")
	flags.StringVarP(&c.LogLevel, "log-level", "l", c.LogLevel, `Set the logging level ("debug"|"info"|"warn"|"error"|"fatal") (env `+EnvLogLevel+`)`)
	flags.IntVar(&c.CacheCapacity, "cache-capacity", c.CacheCapacity, "Expected number of cached entries")
}

// HomeDir returns the directory holding the vuoto files without creating it.
func (c *Config) HomeDir() (string, error) {
	if c.Home != "" {
		return filepath.Abs(c.Home)
	}
	base := os.TempDir()
	if !c.Debug {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", errors.Wrap(err, "unable to read home dir")
		}
		base = home
	}
	return filepath.Join(base, AppDirName), nil
}

// EnsureHome creates the home directory if needed and returns its path.
func (c *Config) EnsureHome() (string, error) {
	dir, err := c.HomeDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return "", errors.Wrap(err, "failed to create app dir")
	}
	return dir, nil
}

// CachePath returns the path of the entry cache inside dir.
func CachePath(dir string) string {
	return filepath.Join(dir, CacheName)
}

// Level parses the configured logging level.
func (c *Config) Level() (logrus.Level, error) {
	lvl, err := logrus.ParseLevel(c.LogLevel)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid log level %q", c.LogLevel)
	}
	return lvl, nil
}
