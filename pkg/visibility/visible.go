package visibility

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"slices"
	"time"

	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
	"github.com/matzehuels/clustergraph/pkg/graph"
	"github.com/matzehuels/clustergraph/pkg/observability"
)

// DanglingLinkError is returned by [ComputeVisible] when an expanded node owns
// a link whose target names no node.
type DanglingLinkError struct {
	Link graph.Link
}

func (e *DanglingLinkError) Error() string {
	return fmt.Sprintf("link %s: unknown target node %q", e.Link, e.Link.Target)
}

// Code returns [cgerrors.ErrCodeDanglingLink].
func (e *DanglingLinkError) Code() cgerrors.Code { return cgerrors.ErrCodeDanglingLink }

// Subgraph is the ordered set of nodes and links currently eligible for
// display. Nodes appear in traversal order; links are grouped by the node
// that owns them, in emission order.
type Subgraph struct {
	Nodes []graph.Node `json:"nodes"`
	Links []graph.Link `json:"links"`
}

// NodeIDs returns the identifiers of the visible nodes, in order.
func (s Subgraph) NodeIDs() []string {
	ids := make([]string, len(s.Nodes))
	for i, n := range s.Nodes {
		ids[i] = n.ID
	}
	return ids
}

// HasNode reports whether the node is visible.
func (s Subgraph) HasNode(id string) bool {
	return slices.ContainsFunc(s.Nodes, func(n graph.Node) bool { return n.ID == id })
}

// Clone returns a copy whose slices do not alias s.
func (s Subgraph) Clone() Subgraph {
	return Subgraph{Nodes: slices.Clone(s.Nodes), Links: slices.Clone(s.Links)}
}

// Hash returns a stable SHA-256 digest of the visible node IDs and links.
// Two subgraphs with the same sequences hash identically.
func (s Subgraph) Hash() string {
	h := sha256.New()
	for _, n := range s.Nodes {
		fmt.Fprintf(h, "n:%q\n", n.ID)
	}
	for _, l := range s.Links {
		fmt.Fprintf(h, "l:%q:%q\n", l.Source, l.Target)
	}
	return hex.EncodeToString(h.Sum(nil))
}

// ComputeVisible returns the visible subgraph of g for the given collapse
// flags and hidden clusters. See the package documentation for the traversal
// rules.
func ComputeVisible(g *graph.Graph, state ViewState, hidden HiddenSet) (Subgraph, error) {
	start := time.Now()
	sub, err := computeVisible(g, state, hidden)
	observability.Engine().OnCompute(len(sub.Nodes), len(sub.Links), time.Since(start), err)
	return sub, err
}

func computeVisible(g *graph.Graph, state ViewState, hidden HiddenSet) (Subgraph, error) {
	w := walker{
		g:       g,
		state:   state,
		emitted: make(map[string]bool),
	}
	for _, root := range g.ClusterRoots() {
		if hidden.Contains(root.ID) {
			continue
		}
		if err := w.visit(root); err != nil {
			return Subgraph{}, err
		}
	}
	return Subgraph{Nodes: w.nodes, Links: w.links}, nil
}

type walker struct {
	g       *graph.Graph
	state   ViewState
	emitted map[string]bool
	nodes   []graph.Node
	links   []graph.Link
}

func (w *walker) visit(n graph.Node) error {
	if w.emitted[n.ID] {
		return nil
	}
	w.emitted[n.ID] = true
	w.nodes = append(w.nodes, n)

	if w.state.Collapsed(n.ID) {
		return nil
	}

	children := w.g.ChildLinks(n.ID)
	targets := make([]graph.Node, len(children))
	for i, l := range children {
		child, err := w.g.Lookup(l.Target)
		if err != nil {
			return &DanglingLinkError{Link: l}
		}
		targets[i] = child
	}
	w.links = append(w.links, children...)

	for _, child := range targets {
		if err := w.visit(child); err != nil {
			return err
		}
	}
	return nil
}

// Expandable returns the IDs of visible nodes that are collapsed but own at
// least one link, in visible order. Renderers use it to mark nodes that can
// be expanded.
func Expandable(g *graph.Graph, state ViewState, sub Subgraph) []string {
	var ids []string
	for _, n := range sub.Nodes {
		if state.Collapsed(n.ID) && len(g.ChildLinks(n.ID)) > 0 {
			ids = append(ids, n.ID)
		}
	}
	return ids
}
