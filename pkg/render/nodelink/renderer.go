package nodelink

import (
	"context"
	"fmt"
	"time"

	"github.com/matzehuels/clustergraph/pkg/cache"
	cgerrors "github.com/matzehuels/clustergraph/pkg/errors"
	"github.com/matzehuels/clustergraph/pkg/render"
	"github.com/matzehuels/clustergraph/pkg/visibility"
)

// Format names an output format.
type Format string

// Supported output formats.
const (
	FormatDOT Format = "dot"
	FormatSVG Format = "svg"
	FormatPDF Format = "pdf"
	FormatPNG Format = "png"
)

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	switch f := Format(s); f {
	case FormatDOT, FormatSVG, FormatPDF, FormatPNG:
		return f, nil
	}
	return "", cgerrors.New(cgerrors.ErrCodeInvalidFormat, "unsupported format %q (want dot, svg, pdf or png)", s)
}

// ContentType returns the MIME type of the format.
func (f Format) ContentType() string {
	switch f {
	case FormatSVG:
		return "image/svg+xml"
	case FormatPDF:
		return "application/pdf"
	case FormatPNG:
		return "image/png"
	default:
		return "text/vnd.graphviz"
	}
}

// Renderer renders subgraphs and caches the artifacts.
type Renderer struct {
	cache cache.Cache
	keyer cache.Keyer
	ttl   time.Duration
}

// NewRenderer creates a renderer backed by c. A nil cache disables caching;
// a nil keyer uses [cache.NewDefaultKeyer].
func NewRenderer(c cache.Cache, keyer cache.Keyer, ttl time.Duration) *Renderer {
	if c == nil {
		c = cache.NewNullCache()
	}
	if keyer == nil {
		keyer = cache.NewDefaultKeyer()
	}
	return &Renderer{cache: c, keyer: keyer, ttl: ttl}
}

// Render produces the artifact for sub in the given format. DOT output is
// cheap and never cached. Cache failures are not fatal: a failed read renders
// afresh and a failed write still returns the artifact.
func (r *Renderer) Render(ctx context.Context, sub visibility.Subgraph, f Format, opts Options) ([]byte, error) {
	data, _, err := r.RenderCached(ctx, sub, f, opts)
	return data, err
}

// RenderCached is [Renderer.Render] that also reports whether the artifact
// came from the cache.
func (r *Renderer) RenderCached(ctx context.Context, sub visibility.Subgraph, f Format, opts Options) ([]byte, bool, error) {
	dot := ToDOT(sub, opts)
	if f == FormatDOT {
		return []byte(dot), false, nil
	}

	key := r.keyer.RenderKey(renderHash(sub, opts), cache.RenderKeyOpts{Format: string(f), Detailed: opts.Detailed})
	if data, hit, err := r.cache.Get(ctx, key); err == nil && hit {
		return data, true, nil
	}

	data, err := r.render(ctx, dot, f)
	if err != nil {
		return nil, false, err
	}
	_ = r.cache.Set(ctx, key, data, r.ttl)
	return data, false, nil
}

func (r *Renderer) render(ctx context.Context, dot string, f Format) ([]byte, error) {
	svg, err := RenderSVGContext(ctx, dot)
	if err != nil {
		return nil, err
	}
	switch f {
	case FormatSVG:
		return svg, nil
	case FormatPDF:
		return render.ToPDF(svg)
	case FormatPNG:
		return render.ToPNG(svg, 2.0)
	}
	return nil, fmt.Errorf("render: unsupported format %q", f)
}

// renderHash covers everything that changes the drawing: the subgraph, the
// node payloads it carries, and the expandable markers.
func renderHash(sub visibility.Subgraph, opts Options) string {
	return cache.Hash([]byte(ToDOT(sub, Options{Expandable: opts.Expandable, Background: opts.Background})))
}
