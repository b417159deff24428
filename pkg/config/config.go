// Package config loads localitree settings.
//
// Settings come from four layers, each overriding the previous one:
//
//  1. built-in defaults ([Default])
//  2. a TOML file ($XDG_CONFIG_HOME/localitree/config.toml, or --config)
//  3. environment variables (LOCALITREE_*), optionally read from a .env file
//  4. command-line flags, applied by the CLI
//
// Example config.toml:
//
//	source = "http://localhost:8000/"
//	formats = ["svg", "html"]
//	depth_spacing = 120
//	timeout = "30s"
//
//	[canvas]
//	width = 4000
//	height = 1200
//
//	[server]
//	addr = ":8080"
//	redis_url = "redis://localhost:6379/0"
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/joho/godotenv"

	"github.com/matzehuels/localitree/pkg/cache"
	apperr "github.com/matzehuels/localitree/pkg/errors"
	"github.com/matzehuels/localitree/pkg/layout"
	"github.com/matzehuels/localitree/pkg/loader"
	"github.com/matzehuels/localitree/pkg/pipeline"
	"github.com/matzehuels/localitree/pkg/render/nodelink"
)

const appName = "localitree"

// Environment variables read by [Config.ApplyEnv].
const (
	EnvSource   = "LOCALITREE_SOURCE"
	EnvConfig   = "LOCALITREE_CONFIG"
	EnvRedisURL = "LOCALITREE_REDIS_URL"
	EnvAddr     = "LOCALITREE_ADDR"
	EnvTimeout  = "LOCALITREE_TIMEOUT"
)

// DefaultAddr is the listen address of the HTTP server.
const DefaultAddr = ":8080"

// Config holds every persistent setting.
type Config struct {
	Source        string           `toml:"source"`
	Resource      string           `toml:"resource"`
	Output        string           `toml:"output"`
	Formats       []string         `toml:"formats"`
	Engine        string           `toml:"engine"`
	DepthSpacing  float64          `toml:"depth_spacing"`
	CollapseDepth int              `toml:"collapse_depth"`
	Scale         float64          `toml:"scale"`
	Timeout       time.Duration    `toml:"timeout"`
	CacheTTL      time.Duration    `toml:"cache_ttl"`
	NoCache       bool             `toml:"no_cache"`
	Canvas        nodelink.Canvas  `toml:"canvas"`
	Palette       nodelink.Palette `toml:"palette"`
	Server        Server           `toml:"server"`
}

// Server holds settings for `localitree serve`.
type Server struct {
	Addr     string `toml:"addr"`
	RedisURL string `toml:"redis_url"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Resource:     loader.DefaultResource,
		Formats:      []string{pipeline.FormatSVG},
		Engine:       pipeline.DefaultEngine,
		DepthSpacing: layout.DefaultDepthSpacing,
		Scale:        pipeline.DefaultScale,
		CacheTTL:     cache.DefaultTTL,
		Canvas:       nodelink.DefaultCanvas(),
		Palette:      nodelink.DefaultPalette(),
		Server:       Server{Addr: DefaultAddr},
	}
}

// Dir returns the config directory using XDG standard (~/.config/localitree/).
func Dir() (string, error) {
	if configHome := os.Getenv("XDG_CONFIG_HOME"); configHome != "" {
		return filepath.Join(configHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", appName), nil
}

// Path returns the config file location: $LOCALITREE_CONFIG if set,
// otherwise config.toml in [Dir]. explicit reports whether the location
// was chosen by the user, in which case it must exist.
func Path() (path string, explicit bool, err error) {
	if p := os.Getenv(EnvConfig); p != "" {
		return p, true, nil
	}
	dir, err := Dir()
	if err != nil {
		return "", false, err
	}
	return filepath.Join(dir, "config.toml"), false, nil
}

// LoadDotEnv loads environment variables from the given .env files
// (".env" when none are given). Missing files are ignored; variables
// already set in the environment win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, os.ErrNotExist) {
			return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "load %s", f)
		}
	}
	return nil
}

// Load reads the config file at path over the defaults and then applies
// the environment. A missing file is only an error when required is set.
func Load(path string, required bool) (Config, error) {
	cfg := Default()
	if path != "" {
		if err := cfg.decodeFile(path, required); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.ApplyEnv(os.Getenv); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

func (c *Config) decodeFile(path string, required bool) error {
	md, err := toml.DecodeFile(path, c)
	if errors.Is(err, os.ErrNotExist) {
		if required {
			return apperr.Wrap(apperr.ErrCodeNotFound, err, "config file %s", path)
		}
		return nil
	}
	if err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse %s", path)
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		keys := make([]string, len(undecoded))
		for i, k := range undecoded {
			keys[i] = k.String()
		}
		return apperr.New(apperr.ErrCodeInvalidConfig, "%s: unknown keys: %s", path, strings.Join(keys, ", "))
	}
	return nil
}

// ApplyEnv overrides settings from environment variables.
func (c *Config) ApplyEnv(getenv func(string) string) error {
	if v := getenv(EnvSource); v != "" {
		c.Source = v
	}
	if v := getenv(EnvRedisURL); v != "" {
		c.Server.RedisURL = v
	}
	if v := getenv(EnvAddr); v != "" {
		c.Server.Addr = v
	}
	if v := getenv(EnvTimeout); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "%s", EnvTimeout)
		}
		c.Timeout = d
	}
	return nil
}

// Validate checks values that cannot be caught by the pipeline.
func (c Config) Validate() error {
	if c.Timeout < 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "timeout cannot be negative")
	}
	if c.CacheTTL < 0 {
		return apperr.New(apperr.ErrCodeInvalidConfig, "cache_ttl cannot be negative")
	}
	if err := pipeline.ValidateFormats(c.Formats); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "formats")
	}
	if c.Engine != "" {
		if err := pipeline.ValidateEngine(c.Engine); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "engine")
		}
	}
	return nil
}

// PipelineOptions converts the settings into pipeline options.
func (c Config) PipelineOptions() pipeline.Options {
	return pipeline.Options{
		Source:        c.Source,
		Engine:        c.Engine,
		Canvas:        c.Canvas,
		DepthSpacing:  c.DepthSpacing,
		CollapseDepth: c.CollapseDepth,
		Formats:       append([]string(nil), c.Formats...),
		Palette:       c.Palette,
		Scale:         c.Scale,
	}
}

// LoaderOptions converts the settings into loader options. The cache is
// supplied by the caller.
func (c Config) LoaderOptions(cc cache.Cache) loader.Options {
	return loader.Options{
		Resource: c.Resource,
		Timeout:  c.Timeout,
		Cache:    cc,
		TTL:      c.CacheTTL,
	}
}

// String renders the effective configuration as TOML.
func (c Config) String() string {
	var b strings.Builder
	if err := toml.NewEncoder(&b).Encode(c); err != nil {
		return fmt.Sprintf("config: %v", err)
	}
	return b.String()
}
