// Package cli implements the pakt command-line interface.
//
// # Commands
//
//   - add: record new top-level dependencies in package.json and the lockfile
//   - install: install the manifest's dependency tree, honoring the lockfile
//   - cache: manage the registry metadata cache
//   - completion: generate shell completion scripts
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging, which also
// reports registry requests and cache lookups.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/pakt/pkg/buildinfo"
	"github.com/matzehuels/pakt/pkg/cache"
	"github.com/matzehuels/pakt/pkg/config"
	"github.com/matzehuels/pakt/pkg/deps"
	"github.com/matzehuels/pakt/pkg/httputil"
	"github.com/matzehuels/pakt/pkg/integrations"
	"github.com/matzehuels/pakt/pkg/integrations/npm"
	"github.com/matzehuels/pakt/pkg/state"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "pakt"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	dir        string
	configPath string
	registry   string
	noCache    bool
	refresh    bool
	verbose    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:           appName,
		Short:         "pakt installs npm packages from a manifest and lockfile",
		Long:          `pakt is a minimal npm-compatible package manager. It resolves the dependencies in package.json, unpacks them into node_modules and pins every resolved version in package-lock.json.`,
		Version:       buildinfo.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if c.verbose {
				c.SetLogLevel(LogDebug)
			}
			registerHooks(c.Logger)
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())

	flags := root.PersistentFlags()
	flags.StringVarP(&c.dir, "dir", "C", ".", "project directory")
	flags.StringVar(&c.configPath, "config", "", "config file (default <dir>/"+config.FileName+" if present)")
	flags.StringVar(&c.registry, "registry", "", "registry URL (overrides config and $"+config.EnvRegistry+")")
	flags.BoolVar(&c.noCache, "no-cache", false, "disable the metadata cache")
	flags.BoolVar(&c.refresh, "refresh", false, "bypass cached metadata and refetch")
	flags.BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")

	root.AddCommand(c.addCommand())
	root.AddCommand(c.installCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Wiring
// =============================================================================

// loadConfig reads the config file and applies flag overrides.
func (c *CLI) loadConfig() (config.Config, error) {
	path, required := c.configPath, c.configPath != ""
	if path == "" {
		path = filepath.Join(c.dir, config.FileName)
	}
	cfg, err := config.Load(path, required)
	if err != nil {
		return cfg, err
	}
	if c.registry != "" {
		cfg.Registry = c.registry
	}
	if c.noCache {
		cfg.Cache.Disabled = true
	}
	return cfg, cfg.Validate()
}

// session is everything a command needs to talk to the registry and the
// project on disk.
type session struct {
	cfg       config.Config
	cache     cache.Cache
	client    *npm.Client
	installer *deps.Installer
}

func (s *session) Close() error { return s.cache.Close() }

// newSession wires config, cache, registry client and installer.
func (c *CLI) newSession(ctx context.Context) (*session, error) {
	cfg, err := c.loadConfig()
	if err != nil {
		return nil, err
	}
	mc, err := c.newCache(ctx, cfg)
	if err != nil {
		return nil, err
	}

	client := npm.NewClient(cfg.Registry, mc, cfg.Cache.TTL)
	client.SetHTTPClient(integrations.NewHTTPClient(cfg.Timeout))
	client.SetRetryPolicy(httputil.Policy{Attempts: cfg.Retries, Delay: httputil.DefaultPolicy.Delay})
	client.SetRefresh(c.refresh)

	storeDir := cfg.StoreDir
	if storeDir != "" && !filepath.IsAbs(storeDir) {
		storeDir = filepath.Join(c.dir, storeDir)
	}
	inst := deps.NewInstaller(client, client, state.NewFileStore(c.dir), deps.Options{
		Dir:      c.dir,
		StoreDir: storeDir,
		Logger:   c.Logger,
	})

	c.Logger.Debug("session", "registry", cfg.Registry, "dir", c.dir, "store", inst.StoreDir())
	return &session{cfg: cfg, cache: mc, client: client, installer: inst}, nil
}

// newCache picks the metadata cache backend. An unreachable Redis falls back
// to the file cache.
func (c *CLI) newCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.Cache.Disabled {
		return cache.NewNullCache(), nil
	}
	if cfg.Cache.RedisURL != "" {
		rc, err := cache.NewRedisCache(cfg.Cache.RedisURL)
		if err == nil {
			if err = rc.Ping(ctx); err == nil {
				return rc, nil
			}
			rc.Close()
		}
		c.Logger.Warn("redis cache unavailable, using file cache", "err", err)
	}
	dir, err := cacheDirFor(cfg)
	if err != nil {
		c.Logger.Warn("no cache directory, caching disabled", "err", err)
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/pakt/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// cacheDirFor returns the configured cache directory or the default one.
func cacheDirFor(cfg config.Config) (string, error) {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir, nil
	}
	return cacheDir()
}
