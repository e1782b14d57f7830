package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
)

// showCommand creates the show command, which prints the visible subgraph.
func (c *CLI) showCommand() *cobra.Command {
	var (
		view   viewFlags
		asJSON bool
	)

	cmd := &cobra.Command{
		Use:   "show [graph]",
		Short: "Print the visible subgraph",
		Long: `Print the nodes and links that are visible when the given nodes are
expanded and the given clusters are hidden. Every node starts collapsed.`,
		Example: `  clustergraph show
  clustergraph show --expand 1,4 --hide 11
  clustergraph show graph.json --expand root --json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctrl, err := c.newController(args, view)
			if err != nil {
				return err
			}
			sub := ctrl.GetVisibleSubgraph()
			out := cmd.OutOrStdout()

			if asJSON {
				enc := json.NewEncoder(out)
				enc.SetIndent("", "  ")
				return enc.Encode(struct {
					Nodes      any      `json:"nodes"`
					Links      any      `json:"links"`
					Expandable []string `json:"expandable"`
				}{nonNilSlice(sub.Nodes), nonNilSlice(sub.Links), nonNilSlice(ctrl.Expandable())})
			}

			fmt.Fprintln(out, StyleTitle.Render("Visible subgraph"))
			fmt.Fprintln(out, subgraphTable(ctrl, sub))
			if len(sub.Links) > 0 {
				fmt.Fprint(out, linkList(sub.Links))
			}
			printStats(out, len(sub.Nodes), len(sub.Links), false)
			if hidden := ctrl.Hidden(); len(hidden) > 0 {
				printDetail(out, "hidden clusters: %v", hidden)
			}
			if exp := ctrl.Expandable(); len(exp) > 0 {
				fmt.Fprintln(out)
				printNextStep(out, "Expand a node", fmt.Sprintf("%s show --expand %s", appName, exp[0]))
			}
			return nil
		},
	}

	view.register(cmd)
	cmd.Flags().BoolVar(&asJSON, "json", false, "print JSON instead of a table")
	return cmd
}

func nonNilSlice[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return s
}
