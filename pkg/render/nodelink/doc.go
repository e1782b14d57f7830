// Package nodelink renders visible subgraphs as node-link diagrams.
//
// # Overview
//
// The visibility engine decides which nodes and links are drawn; this package
// turns that [visibility.Subgraph] into Graphviz DOT and, through
// go-graphviz, into SVG. It is the static counterpart of the interactive
// force layout: the same nodes and links, laid out once by Graphviz.
//
// # Usage
//
//	sub := ctrl.GetVisibleSubgraph()
//	dot := nodelink.ToDOT(sub, nodelink.Options{Expandable: ctrl.Expandable()})
//	svg, err := nodelink.RenderSVG(dot)
//
// A [Renderer] adds caching: artifacts are stored under the subgraph's
// content hash, so toggling a node back and forth renders each state once.
//
// # Options
//
//   - Detailed: node labels include the identifier, weight and metadata
//   - Expandable: nodes drawn with a double outline to show hidden children
//   - Background: diagram background color (default transparent)
//
// Cluster roots are drawn bold. A node's Color becomes its fill color.
//
// # Dependencies
//
// This package uses [github.com/goccy/go-graphviz] for in-process SVG
// rendering. PDF and PNG conversion requires librsvg (rsvg-convert).
package nodelink
