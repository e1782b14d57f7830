// Package config loads clustergraph settings from a TOML file.
//
// The file lives at $XDG_CONFIG_HOME/clustergraph/config.toml (falling back
// to ~/.config). Every field has a default, so a missing or partial file is
// fine:
//
//	[graph]
//	path = "graph.json"
//
//	[[commands]]
//	name = "animals"
//	cluster = "4"
//	label = "Hide/show animals"
//	key = "a"
//
//	[cache]
//	backend = "redis"
//	redis_addr = "localhost:6379"
//	ttl = "24h"
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/clustergraph/pkg/controller"
	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
)

// Config holds clustergraph configuration.
type Config struct {
	Graph    GraphConfig          `toml:"graph"`
	Commands []controller.Command `toml:"commands"`
	Layout   LayoutConfig         `toml:"layout"`
	Render   RenderConfig         `toml:"render"`
	Cache    CacheConfig          `toml:"cache"`
	Server   ServerConfig         `toml:"server"`
}

// GraphConfig selects the graph file. An empty path means the sample graph.
type GraphConfig struct {
	Path string `toml:"path"`
}

// LayoutConfig holds the parameters handed to the force-layout collaborator.
// clustergraph does not simulate physics itself; the values are served as-is.
type LayoutConfig struct {
	ChargeStrength    float64 `toml:"charge_strength" json:"chargeStrength"`
	ChargeDistanceMax float64 `toml:"charge_distance_max" json:"chargeDistanceMax"`
	LinkDistance      float64 `toml:"link_distance" json:"linkDistance"`
	CooldownTicks     int     `toml:"cooldown_ticks" json:"cooldownTicks"`
	Width             int     `toml:"width" json:"width"`
	Height            int     `toml:"height" json:"height"`
	Background        string  `toml:"background" json:"background"`
	ZoomToFitMillis   int     `toml:"zoom_to_fit_ms" json:"zoomToFitMs"`
	LabelOffset       float64 `toml:"label_offset" json:"labelOffset"`
}

// RenderConfig controls static diagram output.
type RenderConfig struct {
	Format   string `toml:"format"` // "svg", "dot", "pdf", "png"
	Detailed bool   `toml:"detailed"`
}

// CacheConfig selects the render cache backend.
type CacheConfig struct {
	Backend   string   `toml:"backend"` // "none", "file", "redis"
	Dir       string   `toml:"dir"`
	RedisAddr string   `toml:"redis_addr"`
	RedisDB   int      `toml:"redis_db"`
	Prefix    string   `toml:"prefix"`
	TTL       Duration `toml:"ttl"`
}

// ServerConfig controls the HTTP API.
type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Duration is a time.Duration written as a string ("90m", "24h").
type Duration struct {
	time.Duration
}

// UnmarshalText parses a duration string.
func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	d.Duration = v
	return nil
}

// MarshalText formats the duration.
func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.String()), nil
}

// Cache backends.
const (
	CacheNone  = "none"
	CacheFile  = "file"
	CacheRedis = "redis"
)

// Default returns the default configuration. Layout values are the force
// parameters the web front end draws with.
func Default() *Config {
	return &Config{
		Layout: LayoutConfig{
			ChargeStrength:    -15,
			ChargeDistanceMax: 80,
			LinkDistance:      50,
			CooldownTicks:     100,
			Width:             800,
			Height:            600,
			Background:        "lightgray",
			ZoomToFitMillis:   400,
			LabelOffset:       16,
		},
		Render: RenderConfig{Format: "svg"},
		Cache: CacheConfig{
			Backend:   CacheFile,
			Dir:       filepath.Join(CacheDir(), "render"),
			RedisAddr: "localhost:6379",
			Prefix:    "clustergraph:",
			TTL:       Duration{24 * time.Hour},
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// ConfigDir returns the clustergraph config directory path.
func ConfigDir() string {
	dir := os.Getenv("XDG_CONFIG_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".config")
	}
	return filepath.Join(dir, "clustergraph")
}

// CacheDir returns the clustergraph cache directory path.
func CacheDir() string {
	dir := os.Getenv("XDG_CACHE_HOME")
	if dir == "" {
		home, _ := os.UserHomeDir()
		dir = filepath.Join(home, ".cache")
	}
	return filepath.Join(dir, "clustergraph")
}

// DefaultPath returns the default config file location.
func DefaultPath() string {
	return filepath.Join(ConfigDir(), "config.toml")
}

// Load reads the config file at path over the defaults. An empty path means
// [DefaultPath]. A missing file is not an error, but a malformed or invalid
// one is.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return nil, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "%s: unknown key %q", path, undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that cannot be checked by decoding alone.
func (c *Config) Validate() error {
	switch c.Cache.Backend {
	case CacheNone, CacheFile, CacheRedis:
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "cache.backend: unknown backend %q (want none, file or redis)", c.Cache.Backend)
	}
	if c.Cache.TTL.Duration < 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "cache.ttl: must not be negative")
	}
	switch c.Render.Format {
	case "svg", "dot", "pdf", "png":
	default:
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "render.format: unknown format %q", c.Render.Format)
	}
	if c.Layout.Width <= 0 || c.Layout.Height <= 0 {
		return cgerrors.New(cgerrors.ErrCodeInvalidInput, "layout: width and height must be positive")
	}
	for i, cmd := range c.Commands {
		if err := cgerrors.ValidateCommandName(cmd.Name); err != nil {
			return cgerrors.Wrap(cgerrors.ErrCodeInvalidInput, err, "commands[%d]", i)
		}
		if cmd.Cluster == "" {
			return cgerrors.New(cgerrors.ErrCodeInvalidInput, "commands[%d]: cluster is required", i)
		}
	}
	return nil
}

// Save writes the config to path, creating parent directories. An empty path
// means [DefaultPath].
func Save(cfg *Config, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	return toml.NewEncoder(f).Encode(cfg)
}

// EnsureExists creates the config file with defaults if it doesn't exist.
func EnsureExists(path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if _, err := os.Stat(path); err == nil {
		return nil
	}
	return Save(Default(), path)
}
