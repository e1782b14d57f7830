package graph

import "maps"

// Metadata stores arbitrary key-value pairs attached to a node. The store
// never interprets it; renderers may.
type Metadata map[string]any

// Node is an authored graph vertex.
//
// Val and Color are the visual weight and color hints of the force-graph data
// format. They are opaque to the store and to the visibility engine.
type Node struct {
	ID      string   `json:"id" toml:"id"`
	Name    string   `json:"name,omitempty" toml:"name,omitempty"`
	Cluster bool     `json:"isClusterNode,omitempty" toml:"isClusterNode,omitempty"`
	Val     float64  `json:"val,omitempty" toml:"val,omitempty"`
	Color   string   `json:"color,omitempty" toml:"color,omitempty"`
	Meta    Metadata `json:"meta,omitempty" toml:"meta,omitempty"`
}

// Label returns the display name, falling back to the ID.
func (n Node) Label() string {
	if n.Name != "" {
		return n.Name
	}
	return n.ID
}

func (n Node) clone() Node {
	if n.Meta != nil {
		n.Meta = maps.Clone(n.Meta)
	}
	return n
}

// Link is a directed parent→child edge. It belongs to the node named by
// Source and points at the node named by Target.
type Link struct {
	Source string `json:"source" toml:"source"`
	Target string `json:"target" toml:"target"`
}

// String formats the link as "source→target".
func (l Link) String() string { return l.Source + "→" + l.Target }
