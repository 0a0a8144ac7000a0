// Package config loads pakt settings from a TOML file.
//
// A project may carry a pakt.toml next to its package.json:
//
//	registry = "https://registry.npmjs.org"
//	retries  = 3
//	timeout  = "30s"
//	store_dir = "vendor/node_modules"
//
//	[cache]
//	ttl       = "5m"
//	dir       = "/tmp/pakt-cache"
//	redis_url = "redis://localhost:6379/0"
//	disabled  = false
//
// Every key is optional. The PAKT_REGISTRY environment variable overrides the
// registry from the file; command-line flags override both.
package config

import (
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/pakt/pkg/errors"
)

// FileName is the config file looked up in the project directory.
const FileName = "pakt.toml"

// EnvRegistry overrides the registry URL.
const EnvRegistry = "PAKT_REGISTRY"

const (
	DefaultRegistry = "https://registry.npmjs.org"
	DefaultCacheTTL = 5 * time.Minute
	DefaultRetries  = 3
	DefaultTimeout  = 30 * time.Second
)

// Config holds all user-tunable settings.
type Config struct {
	Registry string        `toml:"registry"`
	StoreDir string        `toml:"store_dir"` // package store, relative to the project directory
	Retries  int           `toml:"retries"`   // attempts per request, including the first
	Timeout  time.Duration `toml:"timeout"`   // per request
	Cache    Cache         `toml:"cache"`
}

// Cache configures the registry metadata cache.
type Cache struct {
	Dir      string        `toml:"dir"`       // file cache directory (default: user cache dir)
	TTL      time.Duration `toml:"ttl"`
	RedisURL string        `toml:"redis_url"` // use Redis instead of the file cache
	Disabled bool          `toml:"disabled"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Registry: DefaultRegistry,
		Retries:  DefaultRetries,
		Timeout:  DefaultTimeout,
		Cache:    Cache{TTL: DefaultCacheTTL},
	}
}

// Load reads path on top of [Default] and applies environment overrides.
// A missing file is not an error unless required is set. Unknown keys are
// rejected so that typos do not go unnoticed.
func Load(path string, required bool) (Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			md, err := toml.Decode(string(data), &cfg)
			if err != nil {
				return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
			}
			if undecoded := md.Undecoded(); len(undecoded) > 0 {
				keys := make([]string, len(undecoded))
				for i, k := range undecoded {
					keys[i] = k.String()
				}
				return Config{}, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
			}
		case os.IsNotExist(err) && !required:
		default:
			return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
		}
	}

	if v := strings.TrimSpace(os.Getenv(EnvRegistry)); v != "" {
		cfg.Registry = v
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks that the settings are usable.
func (c Config) Validate() error {
	u, err := url.Parse(c.Registry)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "registry must be an http(s) URL, got %q", c.Registry)
	}
	if c.Retries < 1 {
		return errors.New(errors.ErrCodeInvalidConfig, "retries must be at least 1, got %d", c.Retries)
	}
	if c.Timeout <= 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "timeout must be positive, got %s", c.Timeout)
	}
	if c.Cache.TTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache ttl must not be negative, got %s", c.Cache.TTL)
	}
	if c.Cache.RedisURL != "" {
		if u, err := url.Parse(c.Cache.RedisURL); err != nil || (u.Scheme != "redis" && u.Scheme != "rediss") {
			return errors.New(errors.ErrCodeInvalidConfig, "cache redis_url must be a redis:// URL, got %q", c.Cache.RedisURL)
		}
	}
	return nil
}
