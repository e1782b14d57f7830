// Package graph is the graph store: the authored nodes and parent→child links
// of a clustered node-link graph, indexed once at load time.
//
// # Overview
//
// A [Graph] is built from a node list and a link list with [Build]. Building
// indexes nodes by identifier and records, for every node, the ordered list of
// links whose source is that node (its child links). After Build the graph is
// immutable: runtime UI state such as collapse flags lives elsewhere (see
// package visibility), so a single Graph can back any number of independent
// views.
//
// Top-level nodes flagged as cluster roots ([Node.Cluster]) are the starting
// points for visibility traversal. The graph is expected to form a forest of
// trees under the cluster roots, but Build does not check for cycles or shared
// children.
//
// # Errors
//
// Build fails with [*MissingNodeError] when a link's source is unknown.
// Unknown link targets are accepted here and reported during traversal.
// [Graph.Lookup] fails with [*NotFoundError]. Both carry codes from
// pkg/errors.
//
// # Serialization
//
// Graphs are read from JSON using the field names of the react-force-graph
// data format:
//
//	{
//	  "nodes": [{"id": "1", "name": "Planets", "isClusterNode": true, "val": 50, "color": "red"},
//	            {"id": "2", "name": "Mars", "color": "red"}],
//	  "links": [{"source": "1", "target": "2"}]
//	}
//
// Files ending in .toml are read with [github.com/BurntSushi/toml] using
// [[nodes]] and [[links]] tables with the same keys.
//
//	g, err := graph.ReadGraphFile("clusters.json")
//	sample := graph.Sample() // Planets / Animal / Plant
//
// # Concurrency
//
// A built Graph is read-only and safe for concurrent use.
package graph
