package server

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/charmbracelet/log"

	"github.com/matzehuels/clustergraph/pkg/config"
	"github.com/matzehuels/clustergraph/pkg/controller"
	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
	"github.com/matzehuels/clustergraph/pkg/graph"
	"github.com/matzehuels/clustergraph/pkg/observability"
)

func newTestServer(t *testing.T, g *graph.Graph, opts Options) http.Handler {
	t.Helper()
	if opts.Logger == nil {
		opts.Logger = log.New(io.Discard)
	}
	s, err := New(g, opts)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s.Handler()
}

func sampleServer(t *testing.T) http.Handler {
	return newTestServer(t, graph.Sample(), Options{
		Commands: controller.SampleCommands(),
		Layout:   config.Default().Layout,
	})
}

func do(t *testing.T, h http.Handler, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != "" {
		r = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, r)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	if err := json.Unmarshal(rec.Body.Bytes(), &v); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
	return v
}

func ids(nodes []graph.Node) string {
	parts := make([]string, len(nodes))
	for i, n := range nodes {
		parts[i] = n.ID
	}
	return strings.Join(parts, ",")
}

func createSession(t *testing.T, h http.Handler, body string) subgraphResponse {
	t.Helper()
	rec := do(t, h, http.MethodPost, "/api/sessions", body)
	if rec.Code != http.StatusCreated {
		t.Fatalf("create session: status %d: %s", rec.Code, rec.Body)
	}
	return decode[subgraphResponse](t, rec)
}

func TestHealth(t *testing.T) {
	h := sampleServer(t)
	rec := do(t, h, http.MethodGet, "/health", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body := decode[map[string]any](t, rec)
	if body["status"] != "ok" {
		t.Errorf("status field = %v", body["status"])
	}
}

func TestGetConfig(t *testing.T) {
	h := sampleServer(t)
	rec := do(t, h, http.MethodGet, "/api/config", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	cfg := decode[configResponse](t, rec)
	if cfg.Layout.ChargeStrength != -15 || cfg.Layout.Background != "lightgray" {
		t.Errorf("layout = %+v", cfg.Layout)
	}
	if len(cfg.Commands) != 3 || cfg.Commands[0].Name != "animals" {
		t.Errorf("commands = %+v", cfg.Commands)
	}
	if strings.Join(cfg.Roots, ",") != "1,4,11" {
		t.Errorf("roots = %v", cfg.Roots)
	}
}

func TestGetGraph(t *testing.T) {
	h := sampleServer(t)
	rec := do(t, h, http.MethodGet, "/api/graph", "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	g, err := graph.ReadGraph(rec.Body)
	if err != nil {
		t.Fatalf("ReadGraph: %v", err)
	}
	if g.NodeCount() != 13 || g.LinkCount() != 10 {
		t.Errorf("graph has %d nodes, %d links", g.NodeCount(), g.LinkCount())
	}
}

func TestSessionScenario(t *testing.T) {
	h := sampleServer(t)
	sess := createSession(t, h, "")

	if got := ids(sess.Nodes); got != "1,4,11" {
		t.Fatalf("initial nodes = %s", got)
	}
	if len(sess.Links) != 0 {
		t.Errorf("initial links = %v", sess.Links)
	}
	if strings.Join(sess.Expandable, ",") != "1,4,11" {
		t.Errorf("expandable = %v", sess.Expandable)
	}

	base := "/api/sessions/" + sess.ID
	steps := []struct {
		method, path string
		wantNodes    string
		wantLinks    int
		wantHidden   string
	}{
		{http.MethodPost, base + "/nodes/1/select", "1,2,3,10,4,11", 3, ""},
		{http.MethodPost, base + "/commands/animals", "1,2,3,10,11", 3, "4"},
		{http.MethodPost, base + "/commands/animals", "1,2,3,10,4,11", 3, ""},
		{http.MethodPost, base + "/clusters/11/toggle", "1,2,3,10,4", 3, "11"},
		{http.MethodPost, base + "/nodes/1/select", "1,4", 0, "11"},
		{http.MethodGet, base + "/subgraph", "1,4", 0, "11"},
		{http.MethodPost, base + "/reset", "1,4,11", 0, ""},
	}
	for _, st := range steps {
		rec := do(t, h, st.method, st.path, "")
		if rec.Code != http.StatusOK {
			t.Fatalf("%s %s: status %d: %s", st.method, st.path, rec.Code, rec.Body)
		}
		resp := decode[subgraphResponse](t, rec)
		if got := ids(resp.Nodes); got != st.wantNodes {
			t.Errorf("%s %s: nodes = %s, want %s", st.method, st.path, got, st.wantNodes)
		}
		if len(resp.Links) != st.wantLinks {
			t.Errorf("%s %s: %d links, want %d", st.method, st.path, len(resp.Links), st.wantLinks)
		}
		if got := strings.Join(resp.Hidden, ","); got != st.wantHidden {
			t.Errorf("%s %s: hidden = %s, want %s", st.method, st.path, got, st.wantHidden)
		}
	}
}

func TestCreateSessionWithState(t *testing.T) {
	h := sampleServer(t)
	sess := createSession(t, h, `{"expanded":["4"],"hidden":["1"]}`)

	if got := ids(sess.Nodes); got != "4,5,6,7,8,9,11" {
		t.Errorf("nodes = %s", got)
	}
	if strings.Join(sess.Expanded, ",") != "4" || strings.Join(sess.Hidden, ",") != "1" {
		t.Errorf("expanded = %v, hidden = %v", sess.Expanded, sess.Hidden)
	}
}

func TestErrorStatus(t *testing.T) {
	h := sampleServer(t)
	sess := createSession(t, h, "")
	base := "/api/sessions/" + sess.ID

	tests := []struct {
		name   string
		method string
		path   string
		body   string
		status int
		code   cgerrors.Code
	}{
		{"unknown node", http.MethodPost, base + "/nodes/99/select", "", http.StatusNotFound, cgerrors.ErrCodeNotFound},
		{"unknown command", http.MethodPost, base + "/commands/robots", "", http.StatusNotFound, cgerrors.ErrCodeUnknownCommand},
		{"unknown session", http.MethodGet, "/api/sessions/6f1c1b7e-0000-4000-8000-000000000000/subgraph", "", http.StatusNotFound, cgerrors.ErrCodeNotFound},
		{"malformed session id", http.MethodGet, "/api/sessions/nope/subgraph", "", http.StatusNotFound, cgerrors.ErrCodeNotFound},
		{"bad body", http.MethodPost, "/api/sessions", "{", http.StatusBadRequest, cgerrors.ErrCodeInvalidFormat},
		{"unknown expanded node", http.MethodPost, "/api/sessions", `{"expanded":["99"]}`, http.StatusNotFound, cgerrors.ErrCodeNotFound},
		{"bad render format", http.MethodGet, base + "/render?format=gif", "", http.StatusBadRequest, cgerrors.ErrCodeInvalidFormat},
		{"bad detailed flag", http.MethodGet, base + "/render?detailed=maybe", "", http.StatusBadRequest, cgerrors.ErrCodeInvalidInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, h, tt.method, tt.path, tt.body)
			if rec.Code != tt.status {
				t.Fatalf("status = %d, want %d: %s", rec.Code, tt.status, rec.Body)
			}
			body := decode[errorResponse](t, rec)
			if !body.Error || body.Code != tt.code {
				t.Errorf("body = %+v, want code %s", body, tt.code)
			}
		})
	}
}

func TestUnknownNodeLeavesStateUnchanged(t *testing.T) {
	h := sampleServer(t)
	sess := createSession(t, h, "")
	base := "/api/sessions/" + sess.ID

	do(t, h, http.MethodPost, base+"/nodes/99/select", "")
	resp := decode[subgraphResponse](t, do(t, h, http.MethodGet, base+"/subgraph", ""))
	if resp.Hash != sess.Hash {
		t.Error("failed selection changed the visible subgraph")
	}
}

func TestDanglingLink(t *testing.T) {
	g, err := graph.Build(
		[]graph.Node{{ID: "1", Cluster: true}},
		[]graph.Link{{Source: "1", Target: "ghost"}},
	)
	if err != nil {
		t.Fatal(err)
	}
	h := newTestServer(t, g, Options{})
	sess := createSession(t, h, "")
	base := "/api/sessions/" + sess.ID

	rec := do(t, h, http.MethodPost, base+"/nodes/1/select", "")
	if rec.Code != http.StatusUnprocessableEntity {
		t.Fatalf("status = %d, want 422: %s", rec.Code, rec.Body)
	}
	if body := decode[errorResponse](t, rec); body.Code != cgerrors.ErrCodeDanglingLink {
		t.Errorf("code = %s", body.Code)
	}

	// The last good subgraph is still served.
	resp := decode[subgraphResponse](t, do(t, h, http.MethodGet, base+"/subgraph", ""))
	if got := ids(resp.Nodes); got != "1" {
		t.Errorf("nodes after failure = %s, want 1", got)
	}
}

func TestDeleteSession(t *testing.T) {
	h := sampleServer(t)
	sess := createSession(t, h, "")
	path := "/api/sessions/" + sess.ID

	if rec := do(t, h, http.MethodDelete, path, ""); rec.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodGet, path+"/subgraph", ""); rec.Code != http.StatusNotFound {
		t.Errorf("get after delete status = %d", rec.Code)
	}
	if rec := do(t, h, http.MethodDelete, path, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d", rec.Code)
	}
}

func TestSessionsAreIndependent(t *testing.T) {
	h := sampleServer(t)
	a := createSession(t, h, "")
	b := createSession(t, h, "")
	if a.ID == b.ID {
		t.Fatal("session IDs should differ")
	}

	do(t, h, http.MethodPost, "/api/sessions/"+a.ID+"/commands/plants", "")
	resp := decode[subgraphResponse](t, do(t, h, http.MethodGet, "/api/sessions/"+b.ID+"/subgraph", ""))
	if len(resp.Hidden) != 0 {
		t.Errorf("session b sees hidden clusters of session a: %v", resp.Hidden)
	}
}

func TestSessionLimit(t *testing.T) {
	h := newTestServer(t, graph.Sample(), Options{MaxSessions: 1})
	createSession(t, h, "")
	rec := do(t, h, http.MethodPost, "/api/sessions", "")
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}

func TestConcurrentToggles(t *testing.T) {
	h := sampleServer(t)
	sess := createSession(t, h, "")
	path := "/api/sessions/" + sess.ID + "/nodes/4/select"

	// An even number of toggles returns to the initial state.
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			do(t, h, http.MethodPost, path, "")
		}()
	}
	wg.Wait()

	resp := decode[subgraphResponse](t, do(t, h, http.MethodGet, "/api/sessions/"+sess.ID+"/subgraph", ""))
	if got := ids(resp.Nodes); got != "1,4,11" {
		t.Errorf("nodes = %s, want 1,4,11", got)
	}
}

func TestRender(t *testing.T) {
	h := sampleServer(t)
	sess := createSession(t, h, "")
	path := "/api/sessions/" + sess.ID + "/render"

	rec := do(t, h, http.MethodGet, path, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d: %s", rec.Code, rec.Body)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "image/svg+xml" {
		t.Errorf("Content-Type = %q", ct)
	}
	if !bytes.Contains(rec.Body.Bytes(), []byte("<svg")) {
		t.Error("body is not SVG")
	}

	etag := rec.Header().Get("ETag")
	if etag == "" {
		t.Fatal("missing ETag")
	}
	req := httptest.NewRequest(http.MethodGet, path, nil)
	req.Header.Set("If-None-Match", etag)
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	if rec.Code != http.StatusNotModified {
		t.Errorf("conditional GET status = %d, want 304", rec.Code)
	}

	rec = do(t, h, http.MethodGet, path+"?format=dot", "")
	if rec.Code != http.StatusOK || !strings.HasPrefix(rec.Body.String(), "digraph G {") {
		t.Errorf("dot render: %d %q", rec.Code, rec.Body.String())
	}
	if !strings.Contains(rec.Body.String(), `bgcolor="lightgray"`) {
		t.Error("dot render should use the layout background")
	}
	if strings.Contains(rec.Body.String(), "id: 1") {
		t.Error("plain render should not carry detailed labels")
	}

	rec = do(t, h, http.MethodGet, path+"?format=dot&detailed=true", "")
	if !strings.Contains(rec.Body.String(), "id: 1") {
		t.Errorf("detailed render missing IDs: %q", rec.Body.String())
	}
	if got := rec.Header().Get("ETag"); got == etag || !strings.HasSuffix(got, `-dot-detailed"`) {
		t.Errorf("detailed ETag = %s", got)
	}
}

func TestNewRejectsBadCommands(t *testing.T) {
	_, err := New(graph.Sample(), Options{
		Commands: []controller.Command{{Name: "x", Cluster: "404"}},
		Logger:   log.New(io.Discard),
	})
	if !cgerrors.Is(err, cgerrors.ErrCodeInvalidInput) {
		t.Errorf("err = %v, want INVALID_INPUT", err)
	}
}

type recordingHTTPHooks struct {
	mu       sync.Mutex
	requests []string
	statuses []int
}

func (h *recordingHTTPHooks) OnRequest(_ context.Context, method, path string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.requests = append(h.requests, method+" "+path)
}

func (h *recordingHTTPHooks) OnResponse(_ context.Context, _, _ string, status int, _ time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.statuses = append(h.statuses, status)
}

func TestHTTPHooks(t *testing.T) {
	rec := &recordingHTTPHooks{}
	observability.SetHTTPHooks(rec)
	defer observability.Reset()

	h := sampleServer(t)
	do(t, h, http.MethodGet, "/health", "")
	do(t, h, http.MethodGet, "/api/sessions/nope/subgraph", "")

	if len(rec.requests) != 2 || rec.requests[0] != "GET /health" {
		t.Errorf("requests = %v", rec.requests)
	}
	if len(rec.statuses) != 2 || rec.statuses[0] != 200 || rec.statuses[1] != 404 {
		t.Errorf("statuses = %v", rec.statuses)
	}
}

func TestSweep(t *testing.T) {
	store := newSessionStore(0)
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	store.now = func() time.Time { return now }

	ctrl, err := controller.New(graph.Sample(), controller.WithLogger(log.New(io.Discard)))
	if err != nil {
		t.Fatal(err)
	}
	old, _ := store.add(ctrl)
	now = now.Add(time.Hour)
	fresh, _ := store.add(ctrl)

	if n := store.sweep(30 * time.Minute); n != 1 {
		t.Errorf("sweep removed %d, want 1", n)
	}
	if _, err := store.get(old.id); err == nil {
		t.Error("idle session should be gone")
	}
	if _, err := store.get(fresh.id); err != nil {
		t.Errorf("fresh session should survive: %v", err)
	}
}

func TestListenAndServeShutdown(t *testing.T) {
	s, err := New(graph.Sample(), Options{Logger: log.New(io.Discard)})
	if err != nil {
		t.Fatal(err)
	}
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.ListenAndServe(ctx, "127.0.0.1:0") }()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("ListenAndServe returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("server did not shut down")
	}
}
