package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/matzehuels/clustergraph/pkg/buildinfo"
	"github.com/matzehuels/clustergraph/pkg/config"
	"github.com/matzehuels/clustergraph/pkg/controller"
	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
	"github.com/matzehuels/clustergraph/pkg/graph"
	"github.com/matzehuels/clustergraph/pkg/render/nodelink"
)

// subgraphResponse is the session view returned by every session route.
type subgraphResponse struct {
	SessionID  string       `json:"sessionId"`
	Nodes      []graph.Node `json:"nodes"`
	Links      []graph.Link `json:"links"`
	Expandable []string     `json:"expandable"`
	Expanded   []string     `json:"expanded"`
	Hidden     []string     `json:"hidden"`
	Hash       string       `json:"hash"`
}

type configResponse struct {
	Version  string               `json:"version"`
	Layout   config.LayoutConfig  `json:"layout"`
	Commands []controller.Command `json:"commands"`
	Roots    []string             `json:"roots"`
}

type createSessionRequest struct {
	Expanded []string `json:"expanded"`
	Hidden   []string `json:"hidden"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, s.logger, http.StatusOK, map[string]any{
		"status":   "ok",
		"version":  buildinfo.Version,
		"sessions": s.sessions.len(),
	})
}

func (s *Server) getConfig(w http.ResponseWriter, r *http.Request) {
	roots := s.g.ClusterRoots()
	ids := make([]string, len(roots))
	for i, n := range roots {
		ids[i] = n.ID
	}
	respondJSON(w, s.logger, http.StatusOK, configResponse{
		Version:  buildinfo.Version,
		Layout:   s.opts.Layout,
		Commands: nonNil(s.opts.Commands),
		Roots:    ids,
	})
}

func (s *Server) getGraph(w http.ResponseWriter, r *http.Request) {
	data, err := graph.MarshalGraph(s.g)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(data)
}

func (s *Server) createSession(w http.ResponseWriter, r *http.Request) {
	var req createSessionRequest
	if r.Body != nil {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
			respondError(w, s.logger, cgerrors.Wrap(cgerrors.ErrCodeInvalidFormat, err, "invalid request body"))
			return
		}
	}

	ctrl, err := controller.New(s.g,
		controller.WithLogger(s.logger),
		controller.WithCommands(s.opts.Commands),
		controller.WithExpanded(req.Expanded...),
		controller.WithHidden(req.Hidden...),
	)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	sess, err := s.sessions.add(ctrl)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	s.logger.Debug("Session created", "id", sess.id)

	w.Header().Set("Location", "/api/sessions/"+sess.id)
	respondJSON(w, s.logger, http.StatusCreated, view(sess))
}

func (s *Server) deleteSession(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if !s.sessions.remove(id) {
		respondError(w, s.logger, cgerrors.New(cgerrors.ErrCodeNotFound, "session %q not found", id))
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) getSubgraph(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, nil)
}

func (s *Server) selectNode(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "nodeID")
	s.withSession(w, r, func(c *controller.Controller) error {
		return c.OnNodeSelected(id)
	})
}

func (s *Server) toggleCluster(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "clusterID")
	s.withSession(w, r, func(c *controller.Controller) error {
		return c.ToggleClusterHidden(id)
	})
}

func (s *Server) runCommand(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	s.withSession(w, r, func(c *controller.Controller) error {
		return c.RunCommand(name)
	})
}

func (s *Server) reset(w http.ResponseWriter, r *http.Request) {
	s.withSession(w, r, func(c *controller.Controller) error {
		return c.Reset()
	})
}

// withSession runs mutate (if any) under the session lock and responds with
// the resulting view. A failed recompute is reported as an error; the session
// keeps the mutation and its last good subgraph.
func (s *Server) withSession(w http.ResponseWriter, r *http.Request, mutate func(*controller.Controller) error) {
	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}

	sess.mu.Lock()
	if mutate != nil {
		err = mutate(sess.ctrl)
	}
	resp := view(sess)
	sess.mu.Unlock()

	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	respondJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) render(w http.ResponseWriter, r *http.Request) {
	format := nodelink.FormatSVG
	if q := r.URL.Query().Get("format"); q != "" {
		f, err := nodelink.ParseFormat(q)
		if err != nil {
			respondError(w, s.logger, err)
			return
		}
		format = f
	}
	detailed := s.opts.Detailed
	if q := r.URL.Query().Get("detailed"); q != "" {
		b, err := strconv.ParseBool(q)
		if err != nil {
			respondError(w, s.logger, cgerrors.New(cgerrors.ErrCodeInvalidInput, "detailed: %q is not a boolean", q))
			return
		}
		detailed = b
	}

	sess, err := s.sessions.get(chi.URLParam(r, "sessionID"))
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	sess.mu.Lock()
	sub := sess.ctrl.GetVisibleSubgraph()
	expandable := sess.ctrl.Expandable()
	sess.mu.Unlock()

	etag := `"` + sub.Hash()[:16] + "-" + string(format)
	if detailed {
		etag += "-detailed"
	}
	etag += `"`
	if r.Header.Get("If-None-Match") == etag {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	opts := nodelink.Options{
		Detailed:   detailed,
		Expandable: expandable,
		Background: s.opts.Layout.Background,
	}
	data, err := s.renderer.Render(r.Context(), sub, format, opts)
	if err != nil {
		respondError(w, s.logger, err)
		return
	}
	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("ETag", etag)
	_, _ = w.Write(data)
}

// view snapshots a session. The caller holds sess.mu, except right after
// creation when no one else can see the session yet.
func view(sess *session) subgraphResponse {
	sub := sess.ctrl.GetVisibleSubgraph()
	return subgraphResponse{
		SessionID:  sess.id,
		Nodes:      nonNil(sub.Nodes),
		Links:      nonNil(sub.Links),
		Expandable: nonNil(sess.ctrl.Expandable()),
		Expanded:   nonNil(sess.ctrl.Expanded()),
		Hidden:     nonNil(sess.ctrl.Hidden()),
		Hash:       sub.Hash(),
	}
}

func nonNil[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
