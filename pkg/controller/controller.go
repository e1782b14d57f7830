// Package controller mediates interaction with a visible graph.
//
// A [Controller] owns the runtime view state of one graph: the per-node
// collapse flags and the set of hidden clusters. Every mutation (a node
// selection, a cluster toggle, a named command) is applied and then followed
// by a full recomputation of the visible subgraph through
// visibility.ComputeVisible. Readers fetch the latest result with
// [Controller.GetVisibleSubgraph].
//
// Each node starts Collapsed and toggles between Collapsed and Expanded on
// selection. Each cluster starts Shown and toggles between Shown and Hidden on
// command. All transitions are reversible.
//
// A Controller has exactly one mutator and is not safe for concurrent use;
// callers that share one across goroutines must serialize access.
package controller

import (
	"time"

	"github.com/charmbracelet/log"

	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
	"github.com/matzehuels/clustergraph/pkg/graph"
	"github.com/matzehuels/clustergraph/pkg/observability"
	"github.com/matzehuels/clustergraph/pkg/visibility"
)

// Command is a named action bound to a fixed cluster, such as a
// "Hide/show animals" button.
type Command struct {
	Name    string `json:"name" toml:"name"`
	Cluster string `json:"cluster" toml:"cluster"`
	Label   string `json:"label,omitempty" toml:"label,omitempty"`
	Key     string `json:"key,omitempty" toml:"key,omitempty"` // TUI shortcut
}

// Controller holds view state for one graph and keeps its visible subgraph
// current.
type Controller struct {
	g        *graph.Graph
	state    visibility.ViewState
	hidden   visibility.HiddenSet
	visible  visibility.Subgraph
	err      error
	commands []Command
	byName   map[string]int
	logger   *log.Logger
}

// Option configures a Controller.
type Option func(*Controller)

// WithLogger sets the logger used for debug output. Defaults to log.Default().
func WithLogger(l *log.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// WithCommands binds named cluster commands.
func WithCommands(cmds []Command) Option {
	return func(c *Controller) { c.commands = append(c.commands, cmds...) }
}

// WithHidden starts the controller with the given clusters hidden.
func WithHidden(ids ...string) Option {
	return func(c *Controller) {
		for _, id := range ids {
			if !c.hidden.Contains(id) {
				c.hidden = c.hidden.Toggle(id)
			}
		}
	}
}

// WithExpanded starts the controller with the given nodes expanded.
func WithExpanded(ids ...string) Option {
	return func(c *Controller) {
		for _, id := range ids {
			c.state.SetCollapsed(id, false)
		}
	}
}

// New creates a controller for g with every node collapsed and no hidden
// clusters (unless options say otherwise), and computes the initial visible
// subgraph.
//
// New fails if a command is malformed or refers to an unknown node, if an
// expanded ID is unknown, or if the initial computation fails.
func New(g *graph.Graph, opts ...Option) (*Controller, error) {
	c := &Controller{
		g:      g,
		state:  visibility.NewViewState(),
		hidden: visibility.NewHiddenSet(),
		byName: make(map[string]int),
		logger: log.Default(),
	}
	for _, opt := range opts {
		opt(c)
	}

	for i, cmd := range c.commands {
		if err := cgerrors.ValidateCommandName(cmd.Name); err != nil {
			return nil, err
		}
		if _, dup := c.byName[cmd.Name]; dup {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "duplicate command %q", cmd.Name)
		}
		if !g.Has(cmd.Cluster) {
			return nil, cgerrors.New(cgerrors.ErrCodeInvalidInput, "command %q: unknown cluster %q", cmd.Name, cmd.Cluster)
		}
		c.byName[cmd.Name] = i
	}
	for _, id := range c.state.Expanded() {
		if _, err := g.Lookup(id); err != nil {
			return nil, err
		}
	}

	if err := c.recompute(); err != nil {
		return nil, err
	}
	return c, nil
}

// ToggleNodeCollapse flips the node's collapse flag and recomputes. Any node
// may be toggled; toggling a leaf has no visible effect. Unknown IDs return
// *graph.NotFoundError and change nothing.
func (c *Controller) ToggleNodeCollapse(id string) error {
	if _, err := c.g.Lookup(id); err != nil {
		return err
	}
	collapsed := c.state.Toggle(id)
	c.logger.Debug("toggle node", "id", id, "collapsed", collapsed)
	observability.Controller().OnNodeToggle(id, collapsed)
	return c.recompute()
}

// OnNodeSelected is the event sink for node selection in a renderer.
func (c *Controller) OnNodeSelected(id string) error {
	return c.ToggleNodeCollapse(id)
}

// ToggleClusterHidden adds id to the hidden set, or removes it if present,
// and recomputes. The ID is not validated: hiding something that is not a
// cluster root is accepted and has no visible effect.
func (c *Controller) ToggleClusterHidden(id string) error {
	c.hidden = c.hidden.Toggle(id)
	hidden := c.hidden.Contains(id)
	c.logger.Debug("toggle cluster", "id", id, "hidden", hidden)
	observability.Controller().OnClusterToggle(id, hidden)
	return c.recompute()
}

// RunCommand toggles the cluster bound to the named command.
func (c *Controller) RunCommand(name string) error {
	i, ok := c.byName[name]
	if !ok {
		return cgerrors.New(cgerrors.ErrCodeUnknownCommand, "unknown command %q", name)
	}
	return c.ToggleClusterHidden(c.commands[i].Cluster)
}

// ExpandAll expands every node and recomputes.
func (c *Controller) ExpandAll() error {
	for _, n := range c.g.Nodes() {
		c.state.SetCollapsed(n.ID, false)
	}
	return c.recompute()
}

// CollapseAll collapses every node and recomputes. Hidden clusters stay hidden.
func (c *Controller) CollapseAll() error {
	c.state = visibility.NewViewState()
	return c.recompute()
}

// Reset returns to the initial state: all collapsed, nothing hidden.
func (c *Controller) Reset() error {
	c.state = visibility.NewViewState()
	c.hidden = visibility.NewHiddenSet()
	return c.recompute()
}

// GetVisibleSubgraph returns a copy of the latest successfully computed
// visible subgraph. After a failed recomputation it keeps returning the last
// good value; see [Controller.Err].
func (c *Controller) GetVisibleSubgraph() visibility.Subgraph {
	return c.visible.Clone()
}

// Err returns the error of the most recent recomputation, or nil.
func (c *Controller) Err() error { return c.err }

// Collapsed reports whether the node is collapsed.
func (c *Controller) Collapsed(id string) bool { return c.state.Collapsed(id) }

// Expanded returns the IDs of expanded nodes, sorted.
func (c *Controller) Expanded() []string { return c.state.Expanded() }

// Hidden returns the hidden cluster IDs, sorted.
func (c *Controller) Hidden() []string { return c.hidden.IDs() }

// IsHidden reports whether the cluster is hidden.
func (c *Controller) IsHidden(id string) bool { return c.hidden.Contains(id) }

// Expandable returns visible nodes that are collapsed but have children.
func (c *Controller) Expandable() []string {
	return visibility.Expandable(c.g, c.state, c.visible)
}

// Commands returns the bound commands in configuration order.
func (c *Controller) Commands() []Command {
	return append([]Command(nil), c.commands...)
}

// Graph returns the underlying graph.
func (c *Controller) Graph() *graph.Graph { return c.g }

// recompute replaces the visible subgraph. The mutation that triggered it is
// kept even on failure.
func (c *Controller) recompute() error {
	start := time.Now()
	sub, err := visibility.ComputeVisible(c.g, c.state, c.hidden)
	c.err = err
	if err != nil {
		c.logger.Warn("visible subgraph not updated", "err", err)
		return err
	}
	c.visible = sub
	c.logger.Debug("recomputed", "nodes", len(sub.Nodes), "links", len(sub.Links),
		"elapsed", time.Since(start).Round(time.Microsecond))
	return nil
}

// SampleCommands returns the cluster commands for [graph.Sample]: one per
// cluster, bound to the keys a, p and n.
func SampleCommands() []Command {
	return []Command{
		{Name: "animals", Cluster: "4", Label: "Hide/show animals", Key: "a"},
		{Name: "plants", Cluster: "11", Label: "Hide/show plants", Key: "p"},
		{Name: "planets", Cluster: "1", Label: "Hide/show planets", Key: "n"},
	}
}
