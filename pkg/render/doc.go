// Package render converts rendered graph diagrams between output formats.
//
// Diagrams are produced as SVG by the [nodelink] subpackage. The [ToPDF] and
// [ToPNG] functions convert any SVG to other formats using the external
// rsvg-convert tool (from librsvg):
//
//	svg, err := nodelink.RenderSVG(dot)
//	pdf, err := render.ToPDF(svg)
//	png, err := render.ToPNG(svg, 2.0)  // 2x scale
//
// [nodelink]: github.com/matzehuels/clustergraph/pkg/render/nodelink
package render
