package cli

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"

	"github.com/matzehuels/clustergraph/pkg/controller"
	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
	"github.com/matzehuels/clustergraph/pkg/visibility"
)

// List styles
var (
	listSelectedStyle = lipgloss.NewStyle().Bold(true).Foreground(colorCyan)
	listNormalStyle   = lipgloss.NewStyle().Foreground(colorWhite)
	listDimStyle      = lipgloss.NewStyle().Foreground(colorDim)
	listErrorStyle    = lipgloss.NewStyle().Foreground(colorRed)
)

// exploreCommand creates the interactive explorer.
func (c *CLI) exploreCommand() *cobra.Command {
	var view viewFlags

	cmd := &cobra.Command{
		Use:   "explore [graph]",
		Short: "Browse the graph interactively",
		Long: `Browse the visible subgraph in the terminal. Select a node to expand or
collapse it; press a command key to hide or show its cluster.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.newController(args, view)
			if err != nil {
				return err
			}
			p := tea.NewProgram(NewExploreModel(ctrl),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}

	view.register(cmd)
	return cmd
}

// =============================================================================
// ExploreModel - Interactive subgraph browser
// =============================================================================

// ExploreModel is the bubbletea model for the explorer. Every key press that
// changes view state goes through the controller, which recomputes the
// visible subgraph before the next View.
type ExploreModel struct {
	ctrl   *controller.Controller
	sub    visibility.Subgraph
	depth  map[string]int
	Cursor int
	Offset int
	Height int
	Err    error
}

// NewExploreModel creates an explorer for ctrl.
func NewExploreModel(ctrl *controller.Controller) ExploreModel {
	m := ExploreModel{ctrl: ctrl, Height: 20}
	m.refresh()
	return m
}

// refresh pulls the latest subgraph and keeps the cursor on a visible row.
func (m *ExploreModel) refresh() {
	m.sub = m.ctrl.GetVisibleSubgraph()
	m.depth = nodeDepths(m.sub)
	if m.Cursor >= len(m.sub.Nodes) {
		m.Cursor = max(len(m.sub.Nodes)-1, 0)
	}
	m.clampOffset()
}

func (m *ExploreModel) clampOffset() {
	if m.Cursor < m.Offset {
		m.Offset = m.Cursor
	}
	if m.Cursor >= m.Offset+m.Height {
		m.Offset = m.Cursor - m.Height + 1
	}
}

// nodeDepths derives indentation from link order: each link is emitted
// before its target, so the source's depth is already known.
func nodeDepths(sub visibility.Subgraph) map[string]int {
	depth := make(map[string]int, len(sub.Nodes))
	for _, l := range sub.Links {
		if _, ok := depth[l.Target]; !ok {
			depth[l.Target] = depth[l.Source] + 1
		}
	}
	return depth
}

// Selected returns the ID of the node under the cursor, or "".
func (m ExploreModel) Selected() string {
	if m.Cursor < len(m.sub.Nodes) {
		return m.sub.Nodes[m.Cursor].ID
	}
	return ""
}

// Subgraph returns the subgraph currently shown.
func (m ExploreModel) Subgraph() visibility.Subgraph { return m.sub }

func (m ExploreModel) Init() tea.Cmd {
	return nil
}

func (m ExploreModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		key := msg.String()
		switch key {
		case "q", "ctrl+c", "esc":
			return m, tea.Quit
		case "up", "k":
			if m.Cursor > 0 {
				m.Cursor--
				m.clampOffset()
			}
			return m, nil
		case "down", "j":
			if m.Cursor < len(m.sub.Nodes)-1 {
				m.Cursor++
				m.clampOffset()
			}
			return m, nil
		case "enter", " ":
			if id := m.Selected(); id != "" {
				m.apply(m.ctrl.OnNodeSelected(id))
			}
			return m, nil
		case "E":
			m.apply(m.ctrl.ExpandAll())
			return m, nil
		case "C":
			m.apply(m.ctrl.CollapseAll())
			return m, nil
		case "R":
			m.apply(m.ctrl.Reset())
			return m, nil
		}
		for _, cmd := range m.ctrl.Commands() {
			if cmd.Key != "" && cmd.Key == key {
				m.apply(m.ctrl.RunCommand(cmd.Name))
				return m, nil
			}
		}
	case tea.WindowSizeMsg:
		m.Height = max(msg.Height-10, 5)
		m.clampOffset()
	}
	return m, nil
}

// apply records the outcome of a controller call and refreshes the view.
func (m *ExploreModel) apply(err error) {
	m.Err = err
	m.refresh()
}

func (m ExploreModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Clustergraph"))
	b.WriteString("  ")
	b.WriteString(listDimStyle.Render(fmt.Sprintf("%d nodes · %d links", len(m.sub.Nodes), len(m.sub.Links))))
	b.WriteString("\n")
	b.WriteString(listDimStyle.Render("↑/↓ navigate  ⏎ expand/collapse  E expand all  C collapse all  R reset  q quit"))
	b.WriteString("\n\n")

	g := m.ctrl.Graph()
	end := min(m.Offset+m.Height, len(m.sub.Nodes))
	if len(m.sub.Nodes) == 0 {
		b.WriteString(listDimStyle.Render("  (nothing visible)"))
		b.WriteString("\n")
	}
	for i := m.Offset; i < end; i++ {
		n := m.sub.Nodes[i]
		cursor := "  "
		if i == m.Cursor {
			cursor = "> "
		}
		indent := strings.Repeat("  ", m.depth[n.ID])
		line := fmt.Sprintf("%s%s%s %s %s", cursor, indent, nodeIcon(g, m.ctrl, n.ID), n.Label(), listDimStyle.Render(n.ID))

		switch {
		case i == m.Cursor:
			b.WriteString(listSelectedStyle.Render(line))
		case n.Cluster:
			b.WriteString(styleCluster.Render(line))
		default:
			b.WriteString(listNormalStyle.Render(line))
		}
		b.WriteString("\n")
	}

	if cmds := m.ctrl.Commands(); len(cmds) > 0 {
		b.WriteString("\n")
		b.WriteString(listDimStyle.Render(strings.Repeat("-", 40)))
		b.WriteString("\n")
		for _, cmd := range cmds {
			state := StyleSuccess.Render("shown")
			if m.ctrl.IsHidden(cmd.Cluster) {
				state = StyleWarning.Render("hidden")
			}
			label := cmd.Label
			if label == "" {
				label = cmd.Name
			}
			fmt.Fprintf(&b, "  %s %-22s %s\n", styleCommand.Render("["+cmd.Key+"]"), label, state)
		}
	}

	if m.Err != nil {
		b.WriteString("\n")
		b.WriteString(listErrorStyle.Render(iconError + " " + cgerrors.UserMessage(m.Err)))
		b.WriteString("\n")
	}
	return b.String()
}
