// Package cli implements the clustergraph command-line interface.
//
// # Commands
//
//   - show: Print the visible subgraph for a set of expanded nodes and hidden clusters
//   - render: Write the visible subgraph as DOT, SVG, PDF or PNG
//   - explore: Browse a graph interactively in the terminal
//   - serve: Run the HTTP API
//   - sample: Write the built-in sample graph
//   - cache, config: Manage the render cache and the config file
//
// Every graph argument is optional; without one the configured graph.path is
// used, and without that the built-in sample.
//
// # Logging
//
// All commands support --verbose (-v) for debug-level logging through
// charmbracelet/log.
package cli

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clustergraph/pkg/buildinfo"
	"github.com/matzehuels/clustergraph/pkg/cache"
	"github.com/matzehuels/clustergraph/pkg/config"
	"github.com/matzehuels/clustergraph/pkg/controller"
	"github.com/matzehuels/clustergraph/pkg/graph"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "clustergraph"

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
	cfg        *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		cfg:    config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Clustergraph explores clustered node-link graphs",
		Long:         `Clustergraph shows a graph of cluster nodes whose subtrees can be collapsed, expanded and hidden, as a table, a diagram, a terminal explorer or an HTTP API.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default "+config.DefaultPath()+")")

	root.AddCommand(c.showCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.exploreCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.sampleCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	c.cfg = cfg
	return nil
}

// =============================================================================
// Graph & Controller Helpers
// =============================================================================

// loadGraph resolves the graph argument: an explicit path, the configured
// path, or the sample graph. The second result reports whether the sample
// was used.
func (c *CLI) loadGraph(args []string) (*graph.Graph, bool, error) {
	path := c.cfg.Graph.Path
	if len(args) > 0 {
		path = args[0]
	}
	if path == "" {
		c.Logger.Debug("Using sample graph")
		return graph.Sample(), true, nil
	}

	g, err := graph.ReadGraphFile(path)
	if err != nil {
		return nil, false, err
	}
	c.Logger.Debug("Loaded graph", "path", path, "nodes", g.NodeCount(), "links", g.LinkCount())
	return g, false, nil
}

// commands returns the configured cluster commands, or the sample's buttons
// when the sample graph is shown and nothing is configured.
func (c *CLI) commands(sample bool) []controller.Command {
	if len(c.cfg.Commands) > 0 {
		return c.cfg.Commands
	}
	if sample {
		return controller.SampleCommands()
	}
	return nil
}

// viewFlags are the --expand/--hide flags shared by show and render.
type viewFlags struct {
	expand []string
	hide   []string
}

func (f *viewFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringSliceVar(&f.expand, "expand", nil, "node IDs to expand (comma-separated)")
	cmd.Flags().StringSliceVar(&f.hide, "hide", nil, "cluster IDs to hide (comma-separated)")
}

// newController builds a controller for the graph argument with the view
// flags applied.
func (c *CLI) newController(args []string, f viewFlags) (*controller.Controller, error) {
	g, sample, err := c.loadGraph(args)
	if err != nil {
		return nil, err
	}
	return controller.New(g,
		controller.WithLogger(c.Logger),
		controller.WithCommands(c.commands(sample)),
		controller.WithExpanded(trimAll(f.expand)...),
		controller.WithHidden(trimAll(f.hide)...),
	)
}

func trimAll(ids []string) []string {
	out := make([]string, 0, len(ids))
	for _, id := range ids {
		if id = strings.TrimSpace(id); id != "" {
			out = append(out, id)
		}
	}
	return out
}

// =============================================================================
// Cache Factory
// =============================================================================

// newCache opens the configured render cache. Cache failures never stop a
// command: an unreachable backend degrades to no caching with a warning.
func (c *CLI) newCache(noCache bool) cache.Cache {
	if noCache {
		return cache.NewNullCache()
	}
	cc := c.cfg.Cache
	switch cc.Backend {
	case config.CacheFile:
		fc, err := cache.NewFileCache(cc.Dir)
		if err != nil {
			c.Logger.Warn("File cache unavailable", "dir", cc.Dir, "err", err)
			return cache.NewNullCache()
		}
		return cache.WithHooks(fc)
	case config.CacheRedis:
		rc := cache.NewRedisCache(cache.RedisOptions{
			Addr:   cc.RedisAddr,
			DB:     cc.RedisDB,
			Prefix: cc.Prefix,
		})
		return cache.WithHooks(rc)
	default:
		return cache.NewNullCache()
	}
}

// outputWriter returns stdout for "" or "-", otherwise creates path.
func outputWriter(cmd *cobra.Command, path string) (io.WriteCloser, error) {
	if path == "" || path == "-" {
		return nopCloser{cmd.OutOrStdout()}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", path, err)
	}
	return f, nil
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }
