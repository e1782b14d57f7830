package server

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/matzehuels/clustergraph/pkg/config"
	"github.com/matzehuels/clustergraph/pkg/controller"
	"github.com/matzehuels/clustergraph/pkg/graph"
	"github.com/matzehuels/clustergraph/pkg/render/nodelink"
)

// Options configures a Server.
type Options struct {
	// Commands are the named cluster commands available in every session.
	Commands []controller.Command

	// Layout is served to clients that run the force layout.
	Layout config.LayoutConfig

	// Renderer renders diagrams. Defaults to an uncached renderer.
	Renderer *nodelink.Renderer

	// Detailed selects detailed node labels for rendered diagrams.
	Detailed bool

	// MaxSessions caps live sessions. Zero means unlimited.
	MaxSessions int

	// SessionIdle is how long an unused session survives. Zero disables
	// eviction.
	SessionIdle time.Duration

	// Logger defaults to log.Default().
	Logger *log.Logger
}

// Server serves one graph to many sessions.
type Server struct {
	g        *graph.Graph
	opts     Options
	renderer *nodelink.Renderer
	logger   *log.Logger
	sessions *sessionStore
}

// New creates a server for g. It fails if the configured commands do not fit
// the graph.
func New(g *graph.Graph, opts Options) (*Server, error) {
	if opts.Logger == nil {
		opts.Logger = log.Default()
	}
	if opts.Renderer == nil {
		opts.Renderer = nodelink.NewRenderer(nil, nil, 0)
	}
	// Validate commands once up front instead of failing every session.
	if _, err := controller.New(g, controller.WithCommands(opts.Commands)); err != nil {
		return nil, err
	}
	return &Server{
		g:        g,
		opts:     opts,
		renderer: opts.Renderer,
		logger:   opts.Logger,
		sessions: newSessionStore(opts.MaxSessions),
	}, nil
}

// Handler returns the HTTP handler with all routes and middleware.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(requestLogger(s.logger))

	r.Get("/health", s.health)

	r.Route("/api", func(r chi.Router) {
		r.Get("/config", s.getConfig)
		r.Get("/graph", s.getGraph)

		r.Route("/sessions", func(r chi.Router) {
			r.Post("/", s.createSession)
			r.Route("/{sessionID}", func(r chi.Router) {
				r.Get("/", s.getSubgraph)
				r.Delete("/", s.deleteSession)
				r.Get("/subgraph", s.getSubgraph)
				r.Post("/nodes/{nodeID}/select", s.selectNode)
				r.Post("/clusters/{clusterID}/toggle", s.toggleCluster)
				r.Post("/commands/{name}", s.runCommand)
				r.Post("/reset", s.reset)
				r.Get("/render", s.render)
			})
		})
	})

	return r
}

// ListenAndServe serves on addr until ctx is cancelled, then shuts down
// gracefully.
func (s *Server) ListenAndServe(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	if s.opts.SessionIdle > 0 {
		go s.evictIdle(ctx, s.opts.SessionIdle)
	}

	errc := make(chan error, 1)
	go func() {
		s.logger.Info("Listening", "addr", addr, "nodes", s.g.NodeCount(), "links", s.g.LinkCount())
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errc; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *Server) evictIdle(ctx context.Context, maxIdle time.Duration) {
	ticker := time.NewTicker(max(maxIdle/2, time.Second))
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := s.sessions.sweep(maxIdle); n > 0 {
				s.logger.Debug("Evicted idle sessions", "count", n, "live", s.sessions.len())
			}
		}
	}
}
