package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/matzehuels/localitree/internal/server"
	"github.com/matzehuels/localitree/pkg/config"
	apperr "github.com/matzehuels/localitree/pkg/errors"
	"github.com/matzehuels/localitree/pkg/observability"
)

// serveCommand creates the serve command.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		flags    viewFlags
		addr     string
		source   string
		redisURL string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve rendered trees over HTTP",
		Long: `Serve the configured source over HTTP, rendering it on every request.

Routes:
  GET /               HTML page with the tree
  GET /tree.svg       SVG (also /tree.png, /tree.dot)
  GET /layout.json    computed layout
  GET /locality.json  the source document, unchanged
  GET /healthz        build information
  GET /metrics        Prometheus metrics

Query parameters collapse, collapse_depth, expand, engine, depth_spacing and
scale override the defaults per request. A failed fetch answers 502.

With --redis-url the fetched documents are cached in Redis so replicas
share them.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("source") {
				cfg.Source = source
			}
			if cmd.Flags().Changed("redis-url") {
				cfg.Server.RedisURL = redisURL
			}
			opts := flags.apply(cmd, &cfg)
			if err := apperr.ValidateSource(opts.Source); err != nil {
				return fmt.Errorf("serve needs a source (--source or %s): %w", config.EnvSource, err)
			}

			undo, err := maxprocs.Set(maxprocs.Logger(c.Logger.Debugf))
			if err != nil {
				c.Logger.Warn("could not adjust GOMAXPROCS", "error", err)
			}
			defer undo()

			ctx := cmd.Context()
			cc, err := newSharedCache(ctx, cfg)
			if err != nil {
				return fmt.Errorf("initialize cache: %w", err)
			}
			defer cc.Close()

			metrics := server.NewMetrics()
			metrics.Register()
			defer observability.Reset()

			srv := server.New(server.Options{
				Defaults: opts,
				Loader:   c.newLoader(cfg, cc),
				Logger:   c.Logger,
				Metrics:  metrics,
			})

			printSuccess("Serving %s", opts.Source)
			printDetail("%s", StyleLink.Render(listenURL(cfg.Server.Addr)))
			return srv.ListenAndServe(ctx, cfg.Server.Addr)
		},
	}

	flags.register(cmd, false)
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default :8080)")
	cmd.Flags().StringVar(&source, "source", "", "tree to serve (URL or path)")
	cmd.Flags().StringVar(&redisURL, "redis-url", "", "share fetched documents through Redis, e.g. redis://localhost:6379/0")

	return cmd
}

// listenURL turns a listen address into a browsable URL.
func listenURL(addr string) string {
	if strings.HasPrefix(addr, ":") {
		addr = "localhost" + addr
	}
	return "http://" + addr + "/"
}
