package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/matzehuels/clustergraph/pkg/render/nodelink"
)

// renderOpts holds the command-line flags for the render command.
type renderOpts struct {
	view     viewFlags
	output   string // output file path, "-" or empty for stdout
	format   string // "dot", "svg", "pdf", "png"
	detailed bool   // detailed node labels
	noCache  bool   // bypass the render cache
}

// renderCommand creates the render command for writing diagrams.
func (c *CLI) renderCommand() *cobra.Command {
	var opts renderOpts

	cmd := &cobra.Command{
		Use:   "render [graph]",
		Short: "Render the visible subgraph as a diagram",
		Long: `Render the visible subgraph as Graphviz DOT, SVG, PDF or PNG.

SVG output is rendered in-process. PDF and PNG conversion requires librsvg
(rsvg-convert). Rendered artifacts are cached by subgraph content.`,
		Example: `  clustergraph render -o graph.svg
  clustergraph render --expand 1 -f dot
  clustergraph render graph.json --expand 4 -f png -o animals.png`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if !cmd.Flags().Changed("format") {
				opts.format = c.cfg.Render.Format
			}
			if !cmd.Flags().Changed("detailed") {
				opts.detailed = c.cfg.Render.Detailed
			}
			return c.runRender(cmd, args, opts)
		},
	}

	opts.view.register(cmd)
	cmd.Flags().StringVarP(&opts.output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().StringVarP(&opts.format, "format", "f", "svg", "output format: dot, svg, pdf, png")
	cmd.Flags().BoolVar(&opts.detailed, "detailed", false, "include IDs, weights and metadata in labels")
	cmd.Flags().BoolVar(&opts.noCache, "no-cache", false, "disable the render cache")

	return cmd
}

func (c *CLI) runRender(cmd *cobra.Command, args []string, opts renderOpts) error {
	format, err := nodelink.ParseFormat(opts.format)
	if err != nil {
		return err
	}
	ctrl, err := c.newController(args, opts.view)
	if err != nil {
		return err
	}

	store := c.newCache(opts.noCache)
	defer store.Close()
	renderer := nodelink.NewRenderer(store, nil, c.cfg.Cache.TTL.Duration)

	sub := ctrl.GetVisibleSubgraph()
	ropts := nodelink.Options{
		Detailed:   opts.detailed,
		Expandable: ctrl.Expandable(),
		Background: c.cfg.Layout.Background,
	}

	toFile := opts.output != "" && opts.output != "-"
	ctx, cancel := context.WithTimeout(cmd.Context(), 2*time.Minute)
	defer cancel()

	var spinner *Spinner
	if toFile {
		spinner = newSpinner(ctx, cmd.ErrOrStderr(), fmt.Sprintf("Rendering %s...", format))
		spinner.Start()
	}
	prog := newProgress(c.Logger)
	data, cached, err := renderer.RenderCached(ctx, sub, format, ropts)
	if spinner != nil {
		spinner.Stop()
	}
	if err != nil {
		return fmt.Errorf("render %s: %w", format, err)
	}
	prog.done("Rendered", "format", format, "bytes", len(data), "cached", cached)

	w, err := outputWriter(cmd, opts.output)
	if err != nil {
		return err
	}
	if _, err := w.Write(data); err != nil {
		w.Close()
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}

	if toFile {
		errOut := cmd.ErrOrStderr()
		printSuccess(errOut, "Rendered %s", format)
		printStats(errOut, len(sub.Nodes), len(sub.Links), cached)
		printFile(errOut, opts.output)
	}
	return nil
}
