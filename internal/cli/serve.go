package cli

import (
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clustergraph/internal/server"
	"github.com/matzehuels/clustergraph/pkg/render/nodelink"
)

// serveCommand creates the serve command, which runs the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr        string
		noCache     bool
		maxSessions int
	)

	cmd := &cobra.Command{
		Use:   "serve [graph]",
		Short: "Serve the graph over HTTP",
		Long: `Serve the graph over HTTP. Each client creates a session with its own
collapse flags and hidden clusters; see the /api routes.`,
		Example: `  clustergraph serve
  clustergraph serve graph.json --addr :9090`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("addr") {
				addr = c.cfg.Server.Addr
			}
			g, sample, err := c.loadGraph(args)
			if err != nil {
				return err
			}

			store := c.newCache(noCache)
			defer store.Close()

			srv, err := server.New(g, server.Options{
				Commands:    c.commands(sample),
				Layout:      c.cfg.Layout,
				Renderer:    nodelink.NewRenderer(store, nil, c.cfg.Cache.TTL.Duration),
				Detailed:    c.cfg.Render.Detailed,
				MaxSessions: maxSessions,
				SessionIdle: sessionIdle,
				Logger:      c.Logger,
			})
			if err != nil {
				return err
			}

			errOut := cmd.ErrOrStderr()
			printInfo(errOut, "Serving %s on %s", StyleHighlight.Render(graphName(args, c.cfg.Graph.Path)), addr)
			backend := c.cfg.Cache.Backend
			if noCache {
				backend = "none"
			}
			printKeyValue(errOut, "Render cache", backend)
			printKeyValue(errOut, "Max sessions", strconv.Itoa(maxSessions))
			printKeyValue(errOut, "Session idle", sessionIdle.String())
			return srv.ListenAndServe(cmd.Context(), addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")
	cmd.Flags().BoolVar(&noCache, "no-cache", false, "disable the render cache")
	cmd.Flags().IntVar(&maxSessions, "max-sessions", 1000, "maximum live sessions (0 = unlimited)")
	return cmd
}

// sessionIdle is how long an unused HTTP session is kept.
const sessionIdle = 30 * time.Minute

func graphName(args []string, configured string) string {
	switch {
	case len(args) > 0:
		return args[0]
	case configured != "":
		return configured
	default:
		return "sample graph"
	}
}
