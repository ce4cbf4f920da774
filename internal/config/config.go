// Package config manages application configuration.
package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/json"
	"github.com/knadh/koanf/parsers/toml"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
	"github.com/samber/lo"
	"github.com/samber/oops"

	"aitubersync/internal/youtube"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "AITUBERSYNC_"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid configuration")

// DefaultFiles are searched in order when no config file is given.
var DefaultFiles = []string{
	"aitubersync.yaml",
	"aitubersync.yml",
	"aitubersync.json",
	"aitubersync.toml",
}

// Config holds all application configuration.
type Config struct {
	// DataPath is the directory JSON file.
	DataPath string `koanf:"data_path"`

	YouTubeAPIKey          string `koanf:"youtube_api_key"`
	YouTubeAPIKeySecondary string `koanf:"youtube_api_key_secondary"`

	// UploadWindow is how many recent uploads are considered per channel.
	UploadWindow int `koanf:"upload_window"`
	// FutureCutoff bounds how far ahead a scheduled video may be featured.
	FutureCutoff time.Duration `koanf:"future_cutoff"`
	// TimezoneOffset is the fixed offset for published times, e.g. "+09:00".
	TimezoneOffset string `koanf:"timezone_offset"`

	Workers     int           `koanf:"workers"`
	APIRPS      float64       `koanf:"api_rps"`
	LockTimeout time.Duration `koanf:"lock_timeout"`
	LogLevel    string        `koanf:"log_level"`

	// ExtraHosts are additional hosts whose URLs the resolver treats as
	// channel URLs.
	ExtraHosts []string `koanf:"extra_hosts"`

	FeedTitle string `koanf:"feed_title"`
	FeedLink  string `koanf:"feed_link"`
}

// DefaultConfig returns configuration with safe defaults.
func DefaultConfig() *Config {
	return &Config{
		DataPath:       "app/data/aitubers.json",
		UploadWindow:   youtube.DefaultUploadWindow,
		FutureCutoff:   24 * time.Hour,
		TimezoneOffset: "+09:00",
		Workers:        1,
		APIRPS:         0,
		LockTimeout:    5 * time.Second,
		LogLevel:       "info",
		ExtraHosts:     []string{},
		FeedTitle:      "AITuber featured videos",
		FeedLink:       "https://www.aituberlist.net",
	}
}

func (c *Config) defaults() map[string]any {
	return map[string]any{
		"data_path":       c.DataPath,
		"upload_window":   c.UploadWindow,
		"future_cutoff":   c.FutureCutoff.String(),
		"timezone_offset": c.TimezoneOffset,
		"workers":         c.Workers,
		"api_rps":         c.APIRPS,
		"lock_timeout":    c.LockTimeout.String(),
		"log_level":       c.LogLevel,
		"extra_hosts":     c.ExtraHosts,
		"feed_title":      c.FeedTitle,
		"feed_link":       c.FeedLink,
	}
}

// Load builds the configuration from defaults, then the config file, then the
// environment. path names the config file; when empty the DefaultFiles are
// searched and a missing file is not an error.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	configFile, found := path, path != ""
	if !found {
		configFile, found = lo.Find(DefaultFiles, func(name string) bool {
			_, err := os.Stat(name)
			return err == nil
		})
	}
	if found {
		parser, err := parserFor(configFile)
		if err != nil {
			return nil, err
		}
		if err := k.Load(file.Provider(configFile), parser); err != nil {
			return nil, oops.With("config_file", configFile).Wrap(err)
		}
	}

	// Unprefixed key variables are fallbacks for the prefixed ones.
	if err := k.Load(env.Provider("YOUTUBE_", ".", func(s string) string {
		switch s {
		case "YOUTUBE_API_KEY", "YOUTUBE_API_KEY_SECONDARY":
			return strings.ToLower(s)
		}
		return ""
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
	}), nil); err != nil {
		return nil, oops.With("context", "loading environment variables").Wrap(err)
	}

	for key, val := range DefaultConfig().defaults() {
		if !k.Exists(key) {
			if err := k.Set(key, val); err != nil {
				return nil, oops.With("key", key).Wrap(err)
			}
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, oops.With("context", "unmarshaling config").Wrap(err)
	}
	cfg.ExtraHosts = lo.Compact(lo.FlatMap(cfg.ExtraHosts, func(h string, _ int) []string {
		return lo.Map(strings.Split(h, ","), func(part string, _ int) string {
			return strings.ToLower(strings.TrimSpace(part))
		})
	}))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func parserFor(path string) (koanf.Parser, error) {
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".yaml", ".yml":
		return yaml.Parser(), nil
	case ".json":
		return json.Parser(), nil
	case ".toml":
		return toml.Parser(), nil
	default:
		return nil, oops.With("config_file", path).Errorf("unsupported config file extension: %s", ext)
	}
}

// Validate checks that configuration values are valid and consistent.
func (c *Config) Validate() error {
	invalid := func(key, msg string) error {
		return oops.With("key", key).Wrapf(ErrInvalidConfig, "%s %s", key, msg)
	}
	switch {
	case strings.TrimSpace(c.DataPath) == "":
		return invalid("data_path", "must be set")
	case c.UploadWindow < 1 || c.UploadWindow > 50:
		return invalid("upload_window", "must be between 1 and 50")
	case c.FutureCutoff <= 0:
		return invalid("future_cutoff", "must be positive")
	case c.Workers < 1:
		return invalid("workers", "must be at least 1")
	case c.APIRPS < 0:
		return invalid("api_rps", "must be non-negative")
	case c.LockTimeout <= 0:
		return invalid("lock_timeout", "must be positive")
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return invalid("log_level", "must be debug, info, warn or error")
	}
	if _, err := c.Location(); err != nil {
		return invalid("timezone_offset", "must look like +09:00")
	}
	return nil
}

// Location returns the fixed zone named by TimezoneOffset.
func (c *Config) Location() (*time.Location, error) {
	s := strings.TrimSpace(c.TimezoneOffset)
	if strings.EqualFold(s, "utc") {
		s = "Z"
	}
	t, err := time.Parse("Z07:00", s)
	if err != nil {
		return nil, err
	}
	_, offset := t.Zone()
	return time.FixedZone(t.Format("-07:00"), offset), nil
}

// Credentials returns the configured API keys.
func (c *Config) Credentials() youtube.Credentials {
	return youtube.Credentials{
		Primary:   strings.TrimSpace(c.YouTubeAPIKey),
		Secondary: strings.TrimSpace(c.YouTubeAPIKeySecondary),
	}
}
