// Package config is the TOML configuration surface of flowlane.
//
// [Default] returns the documented defaults, [Load] overlays a file on
// them and [Config.Validate] rejects values no export could run with. The
// pipeline never reads configuration itself: callers turn a Config into
// pipeline.Options with [Config.PipelineOptions].
package config

import (
	"io"
	"os"
	"strings"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/flowlane/pkg/bpmn"
	"github.com/matzehuels/flowlane/pkg/color"
	"github.com/matzehuels/flowlane/pkg/errors"
	"github.com/matzehuels/flowlane/pkg/geometry"
	"github.com/matzehuels/flowlane/pkg/layout"
	"github.com/matzehuels/flowlane/pkg/pipeline"
	"github.com/matzehuels/flowlane/pkg/process"
)

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Config is the whole configuration file.
type Config struct {
	Layout   Layout   `toml:"layout"`
	Geometry Geometry `toml:"geometry"`
	Colors   Colors   `toml:"colors"`
	Document Document `toml:"document"`
	Cache    Cache    `toml:"cache"`
	Server   Server   `toml:"server"`
	Source   Source   `toml:"source"`
}

// Layout is the [layout] section. Sizes are keyed by "kind" or
// "kind/subtype" and overlay the built-in table.
type Layout struct {
	Engine      string                 `toml:"engine"`
	Direction   string                 `toml:"direction"`
	NodeSpacing float64                `toml:"node_spacing"`
	RankSpacing float64                `toml:"rank_spacing"`
	Sizes       map[string]layout.Size `toml:"sizes"`
}

// Geometry is the [geometry] section.
type Geometry struct {
	MinLaneHeight float64 `toml:"min_lane_height"`
	MinLaneWidth  float64 `toml:"min_lane_width"`
	LanePadding   float64 `toml:"lane_padding"`
	LaneHeader    float64 `toml:"lane_header"`
	PoolHeader    float64 `toml:"pool_header"`
}

// Colors is the [colors] section.
type Colors struct {
	MixRatio float64 `toml:"mix_ratio"`
	Fallback string  `toml:"fallback"`
	Font     string  `toml:"font"`
}

// Document is the [document] section.
type Document struct {
	// Executable marks the BPMN process as executable by an engine.
	Executable bool `toml:"executable"`
}

// Cache is the [cache] section. An empty Dir means the user cache
// directory.
type Cache struct {
	Backend  string   `toml:"backend"`
	Dir      string   `toml:"dir"`
	RedisURL string   `toml:"redis_url"`
	Prefix   string   `toml:"prefix"`
	TTL      Duration `toml:"ttl"`
	Compress bool     `toml:"compress"`
}

// Server is the [server] section.
type Server struct {
	Addr           string   `toml:"addr"`
	RequestTimeout Duration `toml:"request_timeout"`
	MaxBodyBytes   int64    `toml:"max_body_bytes"`
}

// Source is the [source] section. With an empty MongoURI snapshots come
// from files only.
type Source struct {
	MongoURI   string `toml:"mongo_uri"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Duration is a time.Duration written as "90s" or "168h0m0s".
type Duration struct{ time.Duration }

func (d Duration) MarshalText() ([]byte, error) { return []byte(d.String()), nil }

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// Default returns the documented defaults.
func Default() Config {
	lc, gc, cc := layout.DefaultConfig(), geometry.DefaultConfig(), color.DefaultConfig()
	return Config{
		Layout: Layout{
			Engine:      lc.Engine,
			Direction:   string(lc.Direction),
			NodeSpacing: lc.NodeSpacing,
			RankSpacing: lc.RankSpacing,
			Sizes:       lc.Sizes,
		},
		Geometry: Geometry{
			MinLaneHeight: gc.MinLaneHeight,
			MinLaneWidth:  gc.MinLaneWidth,
			LanePadding:   gc.LanePadding,
			LaneHeader:    gc.LaneHeader,
			PoolHeader:    gc.PoolHeader,
		},
		Colors: Colors{MixRatio: cc.MixRatio, Fallback: cc.Fallback, Font: cc.Font},
		Cache: Cache{
			Backend:  CacheFile,
			Prefix:   "flowlane:",
			TTL:      Duration{pipeline.DefaultTTL},
			Compress: true,
		},
		Server: Server{
			Addr:           ":8080",
			RequestTimeout: Duration{30 * time.Second},
			MaxBodyBytes:   8 << 20,
		},
		Source: Source{Database: "flowlane", Collection: "process_tables"},
	}
}

// Load reads path over the defaults. Unknown keys are rejected so typos
// do not silently fall back to defaults.
func Load(path string) (Config, error) {
	f, err := os.Open(path)
	if os.IsNotExist(err) {
		return Config{}, errors.New(errors.ErrCodeNotFound, "config file %s not found", path)
	}
	if err != nil {
		return Config{}, err
	}
	defer f.Close()
	return Decode(f)
}

// Decode reads TOML from r over the defaults.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	sizes := cfg.Layout.Sizes
	cfg.Layout.Sizes = nil

	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return Config{}, errors.New(errors.ErrCodeInvalidConfig, "unknown config keys: %s", strings.Join(keys, ", "))
	}

	for k, v := range sizes {
		if _, ok := cfg.Layout.Sizes[k]; !ok {
			if cfg.Layout.Sizes == nil {
				cfg.Layout.Sizes = make(map[string]layout.Size)
			}
			cfg.Layout.Sizes[k] = v
		}
	}
	return cfg, cfg.Validate()
}

// Encode writes cfg as TOML.
func (c Config) Encode(w io.Writer) error {
	return toml.NewEncoder(w).Encode(c)
}

// Validate rejects unusable values with INVALID_CONFIG.
func (c Config) Validate() error {
	if err := c.PipelineOptions().Validate(); err != nil {
		return err
	}
	if _, err := pipeline.NewEngine(c.Layout.Engine); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "layout.engine")
	}
	for key := range c.Layout.Sizes {
		if !validSizeKey(key) {
			return errors.New(errors.ErrCodeInvalidConfig, "layout.sizes: unknown element %q", key)
		}
	}

	switch c.Cache.Backend {
	case CacheNone, CacheFile:
	case CacheRedis:
		if err := errors.ValidateURI(c.Cache.RedisURL, "redis", "rediss"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "cache.redis_url")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "cache.backend must be none, file or redis, got %q", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "cache.ttl must not be negative")
	}

	if c.Source.MongoURI != "" {
		if err := errors.ValidateURI(c.Source.MongoURI, "mongodb", "mongodb+srv"); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "source.mongo_uri")
		}
		if c.Source.Database == "" || c.Source.Collection == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "source.database and source.collection are required with mongo_uri")
		}
	}
	return nil
}

func validSizeKey(key string) bool {
	kind, subtype, hasSub := strings.Cut(key, "/")
	if _, ok := process.Subtypes[process.Kind(kind)]; !ok {
		return false
	}
	return !hasSub || process.IsKnownSubtype(process.Kind(kind), subtype)
}

// PipelineOptions converts the layout, geometry and color sections.
func (c Config) PipelineOptions() pipeline.Options {
	opts := pipeline.DefaultOptions()
	opts.Layout = layout.Config{
		Engine:      c.Layout.Engine,
		Direction:   layout.Direction(strings.ToUpper(c.Layout.Direction)),
		NodeSpacing: c.Layout.NodeSpacing,
		RankSpacing: c.Layout.RankSpacing,
		Sizes:       layout.SizeTable(c.Layout.Sizes),
	}
	opts.Geometry = geometry.Config{
		Direction:     opts.Layout.Direction,
		MinLaneHeight: c.Geometry.MinLaneHeight,
		MinLaneWidth:  c.Geometry.MinLaneWidth,
		LanePadding:   c.Geometry.LanePadding,
		LaneHeader:    c.Geometry.LaneHeader,
		PoolHeader:    c.Geometry.PoolHeader,
	}
	opts.Colors = color.Config{MixRatio: c.Colors.MixRatio, Fallback: c.Colors.Fallback, Font: c.Colors.Font}
	opts.Document = bpmn.Options{Exporter: bpmn.DefaultExporter, Executable: c.Document.Executable}
	return opts
}
