// Package visibility computes which part of a clustered graph is drawn.
//
// # Overview
//
// [ComputeVisible] takes an immutable [graph.Graph], a [ViewState] holding
// per-node collapse flags, and a [HiddenSet] of suppressed cluster roots, and
// returns the visible [Subgraph]. It walks every cluster root that is not
// hidden, in definition order, depth-first and pre-order:
//
//  1. emit the node
//  2. stop if the node is collapsed
//  3. otherwise emit its child links and recurse into each target in link order
//
// A collapsed node stays visible as a leaf marker. A hidden cluster root
// contributes nothing, not even itself.
//
// # Purity
//
// ComputeVisible reads only its arguments and never mutates them. Calling it
// twice with the same inputs yields identical node and link sequences. The
// result is always recomputed from scratch.
//
// # Errors
//
// A child link whose target names no node aborts the whole computation with
// [*DanglingLinkError]; no partial subgraph is returned.
//
// # Shared children
//
// Input that is not a strict forest (a node reachable through more than one
// link) is tolerated: the node is emitted and descended only the first time it
// is reached. Every link that reaches it is still emitted. As a side effect the
// walk terminates on cyclic input too.
package visibility
