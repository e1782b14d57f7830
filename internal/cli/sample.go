package cli

import (
	"github.com/spf13/cobra"

	"github.com/matzehuels/clustergraph/pkg/graph"
)

// sampleCommand writes the built-in sample graph.
func (c *CLI) sampleCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Write the sample graph as JSON",
		Long: `Write the built-in sample graph (Planets, Animal, Plant) as JSON. Use it
as a starting point for your own graph files.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			w, err := outputWriter(cmd, output)
			if err != nil {
				return err
			}
			if err := graph.WriteGraph(graph.Sample(), w); err != nil {
				w.Close()
				return err
			}
			if err := w.Close(); err != nil {
				return err
			}
			if output != "" && output != "-" {
				errOut := cmd.ErrOrStderr()
				printSuccess(errOut, "Wrote sample graph")
				printFile(errOut, output)
				printNextStep(errOut, "Show it", appName+" show "+output)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}
