// Package cli implements the flowlane command-line interface.
//
// Commands:
//   - export: write the BPMN diagram of a process table
//   - layout: write the resolved layout of a process table as JSON
//   - serve: run the HTTP API
//   - sample: write an example snapshot to start from
//   - cache: inspect or clear the document cache
//   - config: print the effective configuration as TOML
//
// Snapshots come from a JSON or YAML file argument or from MongoDB
// (--mongo-uri or [source] in the config file). All commands log through
// one charmbracelet logger; --verbose switches it to debug level.
package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/flowlane/pkg/buildinfo"
	"github.com/matzehuels/flowlane/pkg/cache"
	"github.com/matzehuels/flowlane/pkg/config"
	"github.com/matzehuels/flowlane/pkg/pipeline"
)

const appName = "flowlane"

// configEnv names a config file used when --config is not given.
const configEnv = "FLOWLANE_CONFIG"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// CLI holds shared state for all commands.
type CLI struct {
	Logger     *log.Logger
	configPath string
}

// New creates a CLI logging to w at level.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Flowlane turns process tables into BPMN swimlane diagrams",
		Long:         `Flowlane lays out process tables (lanes, tasks, events and gateways) automatically and exports them as BPMN 2.0 documents with diagram interchange, ready for any BPMN modeler.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}
	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (TOML, default $"+configEnv+")")

	root.AddCommand(c.exportCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads --config, then $FLOWLANE_CONFIG, else the defaults.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		path = os.Getenv(configEnv)
	}
	if path == "" {
		return config.Default(), nil
	}
	c.Logger.Debug("loading config", "path", path)
	return config.Load(path)
}

// newService wires the cache backend of cfg in front of a runner.
func (c *CLI) newService(ctx context.Context, cfg config.Config, noCache bool) (*pipeline.Service, error) {
	store, err := c.newCache(ctx, cfg.Cache, noCache)
	if err != nil {
		return nil, err
	}
	// Redis applies the prefix itself; other backends scope their keys.
	var keyer cache.Keyer
	if cfg.Cache.Prefix != "" && cfg.Cache.Backend != config.CacheRedis {
		keyer = cache.NewScopedKeyer(nil, cfg.Cache.Prefix)
	}
	svc := pipeline.NewService(pipeline.NewRunner(nil, c.Logger), store, keyer)
	if cfg.Cache.TTL.Duration > 0 {
		svc.TTL = cfg.Cache.TTL.Duration
	}
	return svc, nil
}

func (c *CLI) newCache(ctx context.Context, cc config.Cache, noCache bool) (cache.Cache, error) {
	var store cache.Cache
	switch {
	case noCache || cc.Backend == config.CacheNone:
		return cache.NewNullCache(), nil
	case cc.Backend == config.CacheRedis:
		rc, err := cache.NewRedisCache(ctx, cc.RedisURL, cc.Prefix)
		if err != nil {
			return nil, err
		}
		store = rc
	default:
		dir, err := fileCacheDir(cc)
		if err != nil {
			c.Logger.Warn("no cache directory, caching disabled", "err", err)
			return cache.NewNullCache(), nil
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		store = fc
	}
	if !cc.Compress {
		return store, nil
	}
	return cache.Compress(store)
}

func fileCacheDir(cc config.Cache) (string, error) {
	if cc.Dir != "" {
		return cc.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/flowlane/).
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
