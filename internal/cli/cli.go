package cli

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/localitree/pkg/buildinfo"
	"github.com/matzehuels/localitree/pkg/cache"
	"github.com/matzehuels/localitree/pkg/config"
	"github.com/matzehuels/localitree/pkg/loader"
	"github.com/matzehuels/localitree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "localitree"

	// defaultOutput is written when neither --output nor the config names a file.
	defaultOutput = "locality.svg"
)

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

	configPath string
	envFile    string
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
		Use:   appName,
		Short: "Localitree draws locality trees as node-link diagrams",
		Long: `Localitree fetches a locality tree (a JSON array whose first element is the
root node) and draws it as a top-down node-link diagram: circles sized and
colored by value, one row per tree level, connected by curved links.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/localitree/config.toml)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "environment file loaded before the config")

	root.AddCommand(c.renderCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Configuration
// =============================================================================

// loadConfig reads the .env file, the config file and the environment.
// Command flags are applied on top by each command.
func (c *CLI) loadConfig() (config.Config, error) {
	if err := config.LoadDotEnv(c.envFile); err != nil {
		return config.Config{}, err
	}

	path, explicit := c.configPath, c.configPath != ""
	if !explicit {
		var err error
		if path, explicit, err = config.Path(); err != nil {
			c.Logger.Debug("no config directory", "error", err)
			path = ""
		}
	}

	cfg, err := config.Load(path, explicit)
	if err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", path)
	return cfg, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner backed by the local file cache.
// The returned cleanup closes the cache.
func (c *CLI) newRunner(cfg config.Config) (*pipeline.Runner, func(), error) {
	cc, err := newCache(cfg.NoCache)
	if err != nil {
		return nil, nil, err
	}
	return pipeline.NewRunner(c.newLoader(cfg, cc), c.Logger), func() { _ = cc.Close() }, nil
}

func (c *CLI) newLoader(cfg config.Config, cc cache.Cache) *loader.Loader {
	opts := cfg.LoaderOptions(cc)
	opts.Logger = c.Logger
	return loader.New(opts)
}

func newCache(noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	dir, err := cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// newSharedCache connects to Redis when a URL is configured and falls back
// to the local file cache otherwise.
func newSharedCache(ctx context.Context, cfg config.Config) (cache.Cache, error) {
	if cfg.NoCache || cfg.Server.RedisURL == "" {
		return newCache(cfg.NoCache)
	}
	return cache.NewRedisCache(ctx, cfg.Server.RedisURL)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/localitree/).
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

// =============================================================================
// Options Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(strings.ToLower(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// sourceArg picks the positional source over the configured one.
func sourceArg(args []string, cfg config.Config) string {
	if len(args) > 0 {
		return args[0]
	}
	return cfg.Source
}
