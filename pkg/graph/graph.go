package graph

import (
	"fmt"
	"slices"

	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
)

// MissingNodeError is returned by [Build] when a link's source does not name
// any node. It aborts graph construction.
type MissingNodeError struct {
	Link  Link // offending link
	Index int  // position of the link in the input
}

func (e *MissingNodeError) Error() string {
	return fmt.Sprintf("link %d (%s): unknown source node %q", e.Index, e.Link, e.Link.Source)
}

// Code returns [cgerrors.ErrCodeMissingNode].
func (e *MissingNodeError) Code() cgerrors.Code { return cgerrors.ErrCodeMissingNode }

// NotFoundError is returned by [Graph.Lookup] for an unknown identifier.
type NotFoundError struct {
	ID string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("node %q not found", e.ID)
}

// Code returns [cgerrors.ErrCodeNotFound].
func (e *NotFoundError) Code() cgerrors.Code { return cgerrors.ErrCodeNotFound }

// Graph is an indexed, immutable clustered graph.
//
// The zero value is an empty graph. Use [Build] to create a populated one.
type Graph struct {
	nodes    []Node
	links    []Link
	byID     map[string]int    // node ID -> index into nodes
	children map[string][]Link // node ID -> links it owns, definition order
}

// Build indexes nodes and links into a Graph.
//
// Each link is appended to the child links of the node named by its Source,
// in input order. Build returns [*MissingNodeError] if a source is unknown,
// and an INVALID_INPUT error for empty, malformed or duplicate node IDs.
// Link targets are not checked; see visibility.ComputeVisible.
//
// The inputs are copied, so later changes to them do not affect the graph.
func Build(nodes []Node, links []Link) (*Graph, error) {
	g := &Graph{
		nodes:    make([]Node, 0, len(nodes)),
		links:    slices.Clone(links),
		byID:     make(map[string]int, len(nodes)),
		children: make(map[string][]Link),
	}

	for _, n := range nodes {
		if err := cgerrors.ValidateNodeID(n.ID); err != nil {
			return nil, err
		}
		if _, exists := g.byID[n.ID]; exists {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "duplicate node ID %q", n.ID)
		}
		g.byID[n.ID] = len(g.nodes)
		g.nodes = append(g.nodes, n.clone())
	}

	for i, l := range g.links {
		if _, ok := g.byID[l.Source]; !ok {
			return nil, &MissingNodeError{Link: l, Index: i}
		}
		g.children[l.Source] = append(g.children[l.Source], l)
	}

	return g, nil
}

// MustBuild is like [Build] but panics on error. It is meant for graph
// literals in tests and examples.
func MustBuild(nodes []Node, links []Link) *Graph {
	g, err := Build(nodes, links)
	if err != nil {
		panic(err)
	}
	return g
}

// Lookup returns the node with the given identifier, or [*NotFoundError].
func (g *Graph) Lookup(id string) (Node, error) {
	i, ok := g.byID[id]
	if !ok {
		return Node{}, &NotFoundError{ID: id}
	}
	return g.nodes[i], nil
}

// Has reports whether a node with the given identifier exists.
func (g *Graph) Has(id string) bool {
	_, ok := g.byID[id]
	return ok
}

// Nodes returns all nodes in definition order. The slice is a copy.
func (g *Graph) Nodes() []Node { return slices.Clone(g.nodes) }

// Links returns all links in definition order. The slice is a copy.
func (g *Graph) Links() []Link { return slices.Clone(g.links) }

// ClusterRoots returns the nodes flagged as cluster roots, in definition order.
func (g *Graph) ClusterRoots() []Node {
	var roots []Node
	for _, n := range g.nodes {
		if n.Cluster {
			roots = append(roots, n)
		}
	}
	return roots
}

// ChildLinks returns the links owned by the node, in definition order.
// Returns nil for leaves and unknown nodes. The returned slice must not be
// modified.
func (g *Graph) ChildLinks(id string) []Link { return g.children[id] }

// NodeCount returns the number of nodes.
func (g *Graph) NodeCount() int { return len(g.nodes) }

// LinkCount returns the number of links.
func (g *Graph) LinkCount() int { return len(g.links) }
